package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"civic-backoffice/internal/adapter/middleware"
	"civic-backoffice/internal/domain/actor"
	appDomain "civic-backoffice/internal/domain/application"
	"civic-backoffice/internal/domain/ward"
	"civic-backoffice/internal/infrastructure/logging"
	auditUC "civic-backoffice/internal/usecase/audit"
)

var errNoCaller = errors.New("caller identity required")

// caller returns the actor attached by middleware.Identity. Routes mounted
// without it fail closed instead of running as System.
func caller(c echo.Context) (actor.Actor, error) {
	a := middleware.ActorFrom(c)
	if a == nil || actor.IsSystem(a) {
		return nil, errNoCaller
	}
	return a, nil
}

// writeError maps usecase errors onto status codes and the ErrorResponse body.
func writeError(c echo.Context, err error) error {
	var ve *appDomain.ValidationError
	var te *appDomain.TransitionError
	switch {
	case errors.Is(err, errNoCaller):
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: err.Error()})
	case errors.As(err, &ve):
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: []FieldError{{Field: ve.Field, Message: ve.Reason}},
		})
	case errors.Is(err, ward.ErrUnknownScope):
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
	case errors.As(err, &te):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: te.Error()})
	case errors.Is(err, appDomain.ErrNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
	case errors.Is(err, appDomain.ErrForbidden), errors.Is(err, auditUC.ErrForbidden):
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: err.Error()})
	default:
		logging.FromContext(c.Request().Context()).WithError(err).Error("request failed")
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}

// decode binds and validates req. When ok is false the response has already
// been written and err is what the handler should return.
func decode(c echo.Context, req any) (ok bool, err error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request"})
	}
	if err := c.Validate(req); err != nil {
		return false, c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	return true, nil
}
