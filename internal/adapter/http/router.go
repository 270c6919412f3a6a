package http

import (
	"github.com/labstack/echo/v4"
)

type Routes struct {
	Health       *Handler
	Applications *ApplicationHandler
	Audit        *AuditHandler
}

// Register mounts the API on e. mw (identity, idempotency) wraps the business
// routes only; /health stays open for load balancers.
func Register(e *echo.Echo, r Routes, mw ...echo.MiddlewareFunc) {
	e.GET("/health", r.Health.Health)

	apps := e.Group("/applications", mw...)
	apps.POST("", r.Applications.Create)
	apps.GET("", r.Applications.List)
	apps.GET("/:application_no", r.Applications.Get)
	apps.PATCH("/:application_no", r.Applications.Update)
	apps.DELETE("/:application_no", r.Applications.Delete)
	apps.POST("/:application_no/submit", r.Applications.Submit)
	apps.POST("/:application_no/start-inspection", r.Applications.StartInspection)
	apps.POST("/:application_no/approve", r.Applications.Approve)
	apps.POST("/:application_no/reject", r.Applications.Reject)
	apps.POST("/:application_no/return", r.Applications.Return)

	logs := e.Group("/audit-logs", mw...)
	logs.GET("", r.Audit.List)
}
