package http

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	appDomain "civic-backoffice/internal/domain/application"
	"civic-backoffice/internal/usecase/application"
)

type ApplicationHandler struct{ uc *application.Usecase }

func NewApplicationHandler(uc *application.Usecase) *ApplicationHandler {
	return &ApplicationHandler{uc: uc}
}

type createApplicationReq struct {
	WardCode        string         `json:"ward_code" validate:"required,wardcode"`
	ApplicantRef    string         `json:"applicant_ref" validate:"max=64"`
	OwnerName       string         `json:"owner_name" validate:"required,notblank,max=128"`
	GuardianName    string         `json:"guardian_name" validate:"max=128"`
	ContactNumber   string         `json:"contact_number" validate:"max=20"`
	Address         string         `json:"address" validate:"required,notblank"`
	Locality        string         `json:"locality" validate:"max=128"`
	PropertyType    string         `json:"property_type" validate:"required,max=32"`
	UsageType       string         `json:"usage_type" validate:"max=32"`
	PlotAreaSqFt    float64        `json:"plot_area_sqft" validate:"gte=0,dec2"`
	BuiltUpAreaSqFt float64        `json:"built_up_area_sqft" validate:"gte=0,dec2"`
	Floors          int            `json:"floors" validate:"gte=0,lte=200"`
	Extra           map[string]any `json:"extra"`
}

func (r createApplicationReq) input() application.CreateInput {
	return application.CreateInput{
		WardCode:     r.WardCode,
		ApplicantRef: r.ApplicantRef,
		Payload: appDomain.Payload{
			OwnerName:       strings.TrimSpace(r.OwnerName),
			GuardianName:    r.GuardianName,
			ContactNumber:   r.ContactNumber,
			Address:         strings.TrimSpace(r.Address),
			Locality:        r.Locality,
			PropertyType:    strings.ToLower(strings.TrimSpace(r.PropertyType)),
			UsageType:       r.UsageType,
			PlotAreaSqFt:    r.PlotAreaSqFt,
			BuiltUpAreaSqFt: r.BuiltUpAreaSqFt,
			Floors:          r.Floors,
			Extra:           r.Extra,
		},
	}
}

// Absent fields are left unchanged.
type updateApplicationReq struct {
	WardCode        *string        `json:"ward_code" validate:"omitempty,wardcode"`
	ApplicantRef    *string        `json:"applicant_ref" validate:"omitempty,max=64"`
	OwnerName       *string        `json:"owner_name" validate:"omitempty,max=128"`
	GuardianName    *string        `json:"guardian_name" validate:"omitempty,max=128"`
	ContactNumber   *string        `json:"contact_number" validate:"omitempty,max=20"`
	Address         *string        `json:"address"`
	Locality        *string        `json:"locality" validate:"omitempty,max=128"`
	PropertyType    *string        `json:"property_type" validate:"omitempty,max=32"`
	UsageType       *string        `json:"usage_type" validate:"omitempty,max=32"`
	PlotAreaSqFt    *float64       `json:"plot_area_sqft" validate:"omitempty,gte=0,dec2"`
	BuiltUpAreaSqFt *float64       `json:"built_up_area_sqft" validate:"omitempty,gte=0,dec2"`
	Floors          *int           `json:"floors" validate:"omitempty,gte=0,lte=200"`
	Extra           map[string]any `json:"extra"`
}

func (r updateApplicationReq) input() appDomain.UpdateInput {
	if r.PropertyType != nil {
		pt := strings.ToLower(strings.TrimSpace(*r.PropertyType))
		r.PropertyType = &pt
	}
	return appDomain.UpdateInput{
		WardCode:        r.WardCode,
		ApplicantRef:    r.ApplicantRef,
		OwnerName:       r.OwnerName,
		GuardianName:    r.GuardianName,
		ContactNumber:   r.ContactNumber,
		Address:         r.Address,
		Locality:        r.Locality,
		PropertyType:    r.PropertyType,
		UsageType:       r.UsageType,
		PlotAreaSqFt:    r.PlotAreaSqFt,
		BuiltUpAreaSqFt: r.BuiltUpAreaSqFt,
		Floors:          r.Floors,
		Extra:           r.Extra,
	}
}

type listApplicationsReq struct {
	Status   string `query:"status"`
	WardCode string `query:"ward_code"`
	Page     int    `query:"page" validate:"gte=0"`
	PageSize int    `query:"page_size" validate:"gte=0"`
}

type approveReq struct {
	Remarks string `json:"remarks" validate:"max=2000"`
}

type rejectReq struct {
	Reason string `json:"reason" validate:"required,notblank,max=2000"`
}

type returnReq struct {
	Remarks string `json:"remarks" validate:"required,notblank,max=2000"`
}

func (h *ApplicationHandler) Create(c echo.Context) error {
	who, err := caller(c)
	if err != nil {
		return writeError(c, err)
	}
	var req createApplicationReq
	if ok, err := decode(c, &req); !ok {
		return err
	}
	a, err := h.uc.Create(c.Request().Context(), who, req.input())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *ApplicationHandler) List(c echo.Context) error {
	who, err := caller(c)
	if err != nil {
		return writeError(c, err)
	}
	var req listApplicationsReq
	if ok, err := decode(c, &req); !ok {
		return err
	}
	page, err := h.uc.List(c.Request().Context(), who, appDomain.Filter{
		Status:   appDomain.Status(strings.ToUpper(strings.TrimSpace(req.Status))),
		WardCode: strings.TrimSpace(req.WardCode),
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *ApplicationHandler) Get(c echo.Context) error {
	who, err := caller(c)
	if err != nil {
		return writeError(c, err)
	}
	a, err := h.uc.Get(c.Request().Context(), who, c.Param("application_no"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *ApplicationHandler) Update(c echo.Context) error {
	who, err := caller(c)
	if err != nil {
		return writeError(c, err)
	}
	var req updateApplicationReq
	if ok, err := decode(c, &req); !ok {
		return err
	}
	a, err := h.uc.Update(c.Request().Context(), who, c.Param("application_no"), req.input())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *ApplicationHandler) Submit(c echo.Context) error {
	who, err := caller(c)
	if err != nil {
		return writeError(c, err)
	}
	a, err := h.uc.Submit(c.Request().Context(), who, c.Param("application_no"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *ApplicationHandler) StartInspection(c echo.Context) error {
	who, err := caller(c)
	if err != nil {
		return writeError(c, err)
	}
	a, err := h.uc.StartInspection(c.Request().Context(), who, c.Param("application_no"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *ApplicationHandler) Approve(c echo.Context) error {
	who, err := caller(c)
	if err != nil {
		return writeError(c, err)
	}
	var req approveReq
	if ok, err := decode(c, &req); !ok {
		return err
	}
	a, err := h.uc.Approve(c.Request().Context(), who, c.Param("application_no"), req.Remarks)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *ApplicationHandler) Reject(c echo.Context) error {
	who, err := caller(c)
	if err != nil {
		return writeError(c, err)
	}
	var req rejectReq
	if ok, err := decode(c, &req); !ok {
		return err
	}
	a, err := h.uc.Reject(c.Request().Context(), who, c.Param("application_no"), req.Reason)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *ApplicationHandler) Return(c echo.Context) error {
	who, err := caller(c)
	if err != nil {
		return writeError(c, err)
	}
	var req returnReq
	if ok, err := decode(c, &req); !ok {
		return err
	}
	a, err := h.uc.Return(c.Request().Context(), who, c.Param("application_no"), req.Remarks)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *ApplicationHandler) Delete(c echo.Context) error {
	who, err := caller(c)
	if err != nil {
		return writeError(c, err)
	}
	if err := h.uc.Delete(c.Request().Context(), who, c.Param("application_no")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
