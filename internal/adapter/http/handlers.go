package http

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const pingTimeout = 2 * time.Second

type Handler struct {
	ping func(ctx context.Context) error
}

// NewHandler takes an optional dependency ping; nil reports ok unconditionally.
func NewHandler(ping ...func(ctx context.Context) error) *Handler {
	h := &Handler{}
	if len(ping) > 0 {
		h.ping = ping[0]
	}
	return h
}

func (h *Handler) Health(c echo.Context) error {
	status, code := "ok", http.StatusOK
	if h.ping != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), pingTimeout)
		defer cancel()
		if err := h.ping(ctx); err != nil {
			status, code = "degraded", http.StatusServiceUnavailable
		}
	}
	return c.JSON(code, map[string]any{
		"status": status,
		"time":   time.Now().UTC().Format(time.RFC3339Nano),
	})
}
