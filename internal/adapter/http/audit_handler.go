package http

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	auditDomain "civic-backoffice/internal/domain/audit"
	auditUC "civic-backoffice/internal/usecase/audit"
)

type AuditHandler struct{ reader *auditUC.Reader }

func NewAuditHandler(reader *auditUC.Reader) *AuditHandler { return &AuditHandler{reader: reader} }

type listAuditReq struct {
	EntityKind string `query:"entity_kind"`
	EntityID   string `query:"entity_id" validate:"max=64"`
	Action     string `query:"action"`
	Page       int    `query:"page" validate:"gte=0"`
	PageSize   int    `query:"page_size" validate:"gte=0"`
}

func (h *AuditHandler) List(c echo.Context) error {
	who, err := caller(c)
	if err != nil {
		return writeError(c, err)
	}
	var req listAuditReq
	if ok, err := decode(c, &req); !ok {
		return err
	}
	f := auditDomain.Filter{EntityID: strings.TrimSpace(req.EntityID), Page: req.Page, PageSize: req.PageSize}

	var details []FieldError
	if s := strings.TrimSpace(req.EntityKind); s != "" {
		k, err := auditDomain.ParseEntityKind(s)
		if err != nil {
			details = append(details, FieldError{Field: "entity_kind", Message: err.Error()})
		}
		f.EntityKind = k
	}
	if s := strings.TrimSpace(req.Action); s != "" {
		a, err := auditDomain.ParseAction(s)
		if err != nil {
			details = append(details, FieldError{Field: "action", Message: err.Error()})
		}
		f.Action = a
	}
	if len(details) > 0 {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: details})
	}

	page, err := h.reader.List(c.Request().Context(), who, f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, page)
}
