package middleware

import (
	"github.com/labstack/echo/v4"

	"civic-backoffice/internal/domain/audit"
)

// Provenance stores the client address and user agent for the audit recorder.
func Provenance() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			ctx := audit.WithProvenance(req.Context(), audit.Provenance{
				IPAddress: c.RealIP(),
				UserAgent: req.UserAgent(),
			})
			c.SetRequest(req.WithContext(ctx))
			return next(c)
		}
	}
}
