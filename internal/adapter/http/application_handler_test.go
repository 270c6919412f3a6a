package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	stdhttp "net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"civic-backoffice/internal/adapter/middleware"
	"civic-backoffice/internal/adapter/repository/mysql"
	appDomain "civic-backoffice/internal/domain/application"
	wardDomain "civic-backoffice/internal/domain/ward"
	dbinfra "civic-backoffice/internal/infrastructure/db"
	"civic-backoffice/internal/infrastructure/metrics"
	"civic-backoffice/internal/usecase/application"
	auditUC "civic-backoffice/internal/usecase/audit"
	"civic-backoffice/internal/usecase/identifier"
)

// -------- helpers --------

var (
	clerkHdr = map[string]string{
		middleware.HeaderActorSpace: "staff", middleware.HeaderActorID: "C1", middleware.HeaderActorRole: "clerk",
	}
	otherClerkHdr = map[string]string{
		middleware.HeaderActorSpace: "staff", middleware.HeaderActorID: "C2", middleware.HeaderActorRole: "clerk",
	}
	inspectorHdr = map[string]string{
		middleware.HeaderActorSpace: "staff", middleware.HeaderActorID: "I1", middleware.HeaderActorRole: "inspector",
		middleware.HeaderActorWards: "WARD-7",
	}
	adminHdr = map[string]string{
		middleware.HeaderActorSpace: "staff", middleware.HeaderActorID: "A1", middleware.HeaderActorRole: "admin",
	}
)

// newServer wires the real usecases to a temp-file sqlite db behind the identity middleware.
func newServer(t *testing.T) *echo.Echo {
	t.Helper()
	return newServerWith(t, middleware.Identity())
}

func newServerWith(t *testing.T, mw ...echo.MiddlewareFunc) *echo.Echo {
	t.Helper()
	db, err := dbinfra.OpenSQLite(filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := dbinfra.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	wards := mysql.NewWardRepository(db)
	for _, code := range []string{"WARD-7", "WARD-8"} {
		if err := wards.Upsert(context.Background(), &wardDomain.Ward{Code: code, Name: code, Active: true}); err != nil {
			t.Fatalf("seed ward: %v", err)
		}
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	m := metrics.New()
	auditRepo := mysql.NewAuditRepository(db)
	uc := application.NewUsecase(
		mysql.NewApplicationRepository(db),
		mysql.NewGormUoW(db),
		identifier.NewAllocator("PRP", 4, m),
		auditUC.NewRecorder(auditRepo, logger, m, time.Second),
		m,
	)

	e := echo.New()
	e.Validator = NewValidator()
	Register(e, Routes{
		Health:       NewHandler(),
		Applications: NewApplicationHandler(uc),
		Audit:        NewAuditHandler(auditUC.NewReader(auditRepo)),
	}, mw...)
	return e
}

func call(t *testing.T, e *echo.Echo, method, path string, body any, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if r != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeApp(t *testing.T, rec *httptest.ResponseRecorder) appDomain.Application {
	t.Helper()
	var a appDomain.Application
	if err := json.Unmarshal(rec.Body.Bytes(), &a); err != nil {
		t.Fatalf("bad json: %v; raw=%s", err, rec.Body.String())
	}
	return a
}

func decodeErr(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var er ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &er); err != nil {
		t.Fatalf("bad json: %v; raw=%s", err, rec.Body.String())
	}
	return er
}

func wantStatus(t *testing.T, rec *httptest.ResponseRecorder, code int) {
	t.Helper()
	if rec.Code != code {
		t.Fatalf("status = %d, want %d; body=%s", rec.Code, code, rec.Body.String())
	}
}

func newApplicationBody(ward string) map[string]any {
	return map[string]any{
		"ward_code":      ward,
		"owner_name":     "Asha Rao",
		"address":        "14 Temple Street",
		"property_type":  "Residential",
		"plot_area_sqft": 1200.5,
		"floors":         2,
	}
}

func createDraft(t *testing.T, e *echo.Echo, hdr map[string]string) appDomain.Application {
	t.Helper()
	rec := call(t, e, stdhttp.MethodPost, "/applications", newApplicationBody("WARD-7"), hdr)
	wantStatus(t, rec, stdhttp.StatusCreated)
	return decodeApp(t, rec)
}

// -------- tests --------

func TestApplicationRoutes_ApprovalFlowAndAuditTrail(t *testing.T) {
	e := newServer(t)

	a := createDraft(t, e, clerkHdr)
	if a.Status != appDomain.StatusDraft || a.WardCode != "WARD-7" || a.PropertyType != "residential" {
		t.Fatalf("unexpected draft: %+v", a)
	}
	base := "/applications/" + a.ApplicationNo

	wantStatus(t, call(t, e, stdhttp.MethodPost, base+"/submit", nil, clerkHdr), stdhttp.StatusOK)
	wantStatus(t, call(t, e, stdhttp.MethodPost, base+"/start-inspection", nil, inspectorHdr), stdhttp.StatusOK)

	rec := call(t, e, stdhttp.MethodPost, base+"/approve", map[string]string{"remarks": "verified on site"}, inspectorHdr)
	wantStatus(t, rec, stdhttp.StatusOK)
	got := decodeApp(t, rec)
	if got.Status != appDomain.StatusApproved || got.PropertyCode != "PRP-WARD-7-RES-0001" || got.PropertyID == nil {
		t.Fatalf("unexpected approved application: %+v", got)
	}
	if got.DecisionRemarks != "verified on site" || got.InspectedBy != "staff:I1" {
		t.Fatalf("decision not stamped: %+v", got)
	}

	// the owner still sees the outcome
	rec = call(t, e, stdhttp.MethodGet, base, nil, clerkHdr)
	wantStatus(t, rec, stdhttp.StatusOK)
	if decodeApp(t, rec).Status != appDomain.StatusApproved {
		t.Fatal("owner should read the approved application")
	}

	rec = call(t, e, stdhttp.MethodGet, "/audit-logs?entity_kind=property_application&entity_id="+a.ApplicationNo, nil, adminHdr)
	wantStatus(t, rec, stdhttp.StatusOK)
	var page struct {
		Items []struct {
			Action    string  `json:"action"`
			ActorRole string  `json:"actor_role"`
			EntityID  *string `json:"entity_id"`
		} `json:"items"`
		Total int64 `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if page.Total != 4 {
		t.Fatalf("audit total = %d, want 4; body=%s", page.Total, rec.Body.String())
	}
	actions := map[string]string{}
	for _, it := range page.Items {
		actions[it.Action] = it.ActorRole
	}
	want := map[string]string{"create": "clerk", "submit": "clerk", "start_inspection": "inspector", "approve": "inspector"}
	for action, role := range want {
		if actions[action] != role {
			t.Fatalf("audit action %s recorded with role %q, want %q (all: %v)", action, actions[action], role, actions)
		}
	}
}

func TestCreate_BindAndValidationErrors(t *testing.T) {
	e := newServer(t)

	rec := call(t, e, stdhttp.MethodPost, "/applications", `{"ward_code":`, clerkHdr)
	wantStatus(t, rec, stdhttp.StatusBadRequest)
	if er := decodeErr(t, rec); er.Error != "invalid request" {
		t.Fatalf("error = %q", er.Error)
	}

	body := newApplicationBody("ward 7")
	delete(body, "owner_name")
	body["plot_area_sqft"] = 10.123
	rec = call(t, e, stdhttp.MethodPost, "/applications", body, clerkHdr)
	wantStatus(t, rec, stdhttp.StatusUnprocessableEntity)
	er := decodeErr(t, rec)
	if !containsFieldMsg(er.Details, "ward_code", "ward code") ||
		!containsFieldMsg(er.Details, "owner_name", "is required") ||
		!containsFieldMsg(er.Details, "plot_area_sqft", "2 decimal places") {
		t.Fatalf("unexpected details: %+v", er.Details)
	}

	// well formed but not an active ward
	rec = call(t, e, stdhttp.MethodPost, "/applications", newApplicationBody("WARD-99"), clerkHdr)
	wantStatus(t, rec, stdhttp.StatusUnprocessableEntity)
	if er := decodeErr(t, rec); !containsFieldMsg(er.Details, "ward_code", "active ward") {
		t.Fatalf("unexpected details: %+v", er.Details)
	}
}

func TestRoutes_RequireIdentity(t *testing.T) {
	e := newServer(t)
	wantStatus(t, call(t, e, stdhttp.MethodGet, "/applications", nil, nil), stdhttp.StatusUnauthorized)
	wantStatus(t, call(t, e, stdhttp.MethodGet, "/audit-logs", nil, nil), stdhttp.StatusUnauthorized)
	wantStatus(t, call(t, e, stdhttp.MethodGet, "/health", nil, nil), stdhttp.StatusOK)
}

func TestRoutes_WithoutIdentityFailClosed(t *testing.T) {
	e := newServerWith(t)
	wantStatus(t, call(t, e, stdhttp.MethodGet, "/applications", nil, adminHdr), stdhttp.StatusUnauthorized)
	wantStatus(t, call(t, e, stdhttp.MethodPost, "/applications", map[string]any{"ward_code": "WARD-7"}, adminHdr), stdhttp.StatusUnauthorized)
	wantStatus(t, call(t, e, stdhttp.MethodDelete, "/applications/APP-20990101-DEADBEEF", nil, adminHdr), stdhttp.StatusUnauthorized)
	wantStatus(t, call(t, e, stdhttp.MethodGet, "/audit-logs", nil, adminHdr), stdhttp.StatusUnauthorized)
}

func TestList_DeclaredSystemRoleRejected(t *testing.T) {
	e := newServer(t)
	createDraft(t, e, clerkHdr)
	hdr := map[string]string{
		middleware.HeaderActorSpace: "public",
		middleware.HeaderActorID:    "42",
		middleware.HeaderActorRole:  "System",
	}
	wantStatus(t, call(t, e, stdhttp.MethodGet, "/applications", nil, hdr), stdhttp.StatusUnauthorized)
}

func TestTransitions_ConflictForbiddenNotFound(t *testing.T) {
	e := newServer(t)
	a := createDraft(t, e, clerkHdr)
	base := "/applications/" + a.ApplicationNo

	// another clerk cannot see it at all
	wantStatus(t, call(t, e, stdhttp.MethodGet, base, nil, otherClerkHdr), stdhttp.StatusNotFound)
	wantStatus(t, call(t, e, stdhttp.MethodPost, base+"/submit", nil, otherClerkHdr), stdhttp.StatusNotFound)

	// the owner may not inspect
	wantStatus(t, call(t, e, stdhttp.MethodPost, base+"/start-inspection", nil, clerkHdr), stdhttp.StatusForbidden)
	// the inspector sees the ward but does not own the draft
	wantStatus(t, call(t, e, stdhttp.MethodPatch, base, map[string]any{"locality": "Old Town"}, inspectorHdr), stdhttp.StatusForbidden)

	wantStatus(t, call(t, e, stdhttp.MethodPost, base+"/submit", nil, clerkHdr), stdhttp.StatusOK)
	rec := call(t, e, stdhttp.MethodPost, base+"/submit", nil, clerkHdr)
	wantStatus(t, rec, stdhttp.StatusConflict)
	if er := decodeErr(t, rec); er.Error == "" {
		t.Fatal("conflict must describe the current state")
	}

	wantStatus(t, call(t, e, stdhttp.MethodGet, "/applications/APP-20990101-DEADBEEF", nil, adminHdr), stdhttp.StatusNotFound)
}

func TestReject_RequiresReason(t *testing.T) {
	e := newServer(t)
	a := createDraft(t, e, clerkHdr)
	base := "/applications/" + a.ApplicationNo
	wantStatus(t, call(t, e, stdhttp.MethodPost, base+"/submit", nil, clerkHdr), stdhttp.StatusOK)

	rec := call(t, e, stdhttp.MethodPost, base+"/reject", map[string]string{"reason": "  "}, inspectorHdr)
	wantStatus(t, rec, stdhttp.StatusUnprocessableEntity)
	if er := decodeErr(t, rec); !containsFieldMsg(er.Details, "reason", "blank") {
		t.Fatalf("unexpected details: %+v", er.Details)
	}

	rec = call(t, e, stdhttp.MethodPost, base+"/reject", map[string]string{"reason": "boundary dispute"}, inspectorHdr)
	wantStatus(t, rec, stdhttp.StatusOK)
	got := decodeApp(t, rec)
	if got.Status != appDomain.StatusRejected || got.RejectionReason != "boundary dispute" || got.PropertyID != nil {
		t.Fatalf("unexpected rejected application: %+v", got)
	}
}

func TestReturn_UpdateAndResubmit(t *testing.T) {
	e := newServer(t)
	a := createDraft(t, e, clerkHdr)
	base := "/applications/" + a.ApplicationNo
	wantStatus(t, call(t, e, stdhttp.MethodPost, base+"/submit", nil, clerkHdr), stdhttp.StatusOK)

	wantStatus(t, call(t, e, stdhttp.MethodPost, base+"/return", map[string]string{}, inspectorHdr), stdhttp.StatusUnprocessableEntity)
	rec := call(t, e, stdhttp.MethodPost, base+"/return", map[string]string{"remarks": "attach plot area"}, inspectorHdr)
	wantStatus(t, rec, stdhttp.StatusOK)
	if got := decodeApp(t, rec); got.Status != appDomain.StatusReturned {
		t.Fatalf("status = %s", got.Status)
	}

	rec = call(t, e, stdhttp.MethodPatch, base, map[string]any{}, clerkHdr)
	wantStatus(t, rec, stdhttp.StatusUnprocessableEntity)

	rec = call(t, e, stdhttp.MethodPatch, base, map[string]any{"built_up_area_sqft": 900.25, "ward_code": "WARD-8"}, clerkHdr)
	wantStatus(t, rec, stdhttp.StatusOK)
	got := decodeApp(t, rec)
	if got.BuiltUpAreaSqFt != 900.25 || got.WardCode != "WARD-8" || got.OwnerName != "Asha Rao" {
		t.Fatalf("partial update not applied: %+v", got)
	}

	rec = call(t, e, stdhttp.MethodPost, base+"/submit", nil, clerkHdr)
	wantStatus(t, rec, stdhttp.StatusOK)
	if decodeApp(t, rec).Status != appDomain.StatusSubmitted {
		t.Fatal("resubmission should move back to SUBMITTED")
	}
}

func TestDelete_DraftOnly(t *testing.T) {
	e := newServer(t)
	a := createDraft(t, e, clerkHdr)
	base := "/applications/" + a.ApplicationNo

	rec := call(t, e, stdhttp.MethodDelete, base, nil, clerkHdr)
	wantStatus(t, rec, stdhttp.StatusNoContent)
	wantStatus(t, call(t, e, stdhttp.MethodGet, base, nil, clerkHdr), stdhttp.StatusNotFound)

	b := createDraft(t, e, clerkHdr)
	wantStatus(t, call(t, e, stdhttp.MethodPost, "/applications/"+b.ApplicationNo+"/submit", nil, clerkHdr), stdhttp.StatusOK)
	wantStatus(t, call(t, e, stdhttp.MethodDelete, "/applications/"+b.ApplicationNo, nil, clerkHdr), stdhttp.StatusConflict)
}

func TestList_ScopedAndFiltered(t *testing.T) {
	e := newServer(t)
	mine := createDraft(t, e, clerkHdr)
	_ = createDraft(t, e, otherClerkHdr)
	wantStatus(t, call(t, e, stdhttp.MethodPost, "/applications/"+mine.ApplicationNo+"/submit", nil, clerkHdr), stdhttp.StatusOK)

	type page struct {
		Items    []appDomain.Application `json:"items"`
		Total    int64                   `json:"total"`
		PageSize int                     `json:"page_size"`
	}
	list := func(path string, hdr map[string]string) page {
		t.Helper()
		rec := call(t, e, stdhttp.MethodGet, path, nil, hdr)
		wantStatus(t, rec, stdhttp.StatusOK)
		var p page
		if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
			t.Fatalf("bad json: %v", err)
		}
		return p
	}

	if p := list("/applications", clerkHdr); p.Total != 1 || p.Items[0].ApplicationNo != mine.ApplicationNo {
		t.Fatalf("clerk must only list own applications: %+v", p)
	}
	if p := list("/applications", adminHdr); p.Total != 2 || p.PageSize != appDomain.DefaultPageSize {
		t.Fatalf("admin lists everything: %+v", p)
	}
	if p := list("/applications?status=submitted", adminHdr); p.Total != 1 {
		t.Fatalf("status filter: %+v", p)
	}
	if p := list("/applications?page_size=1&page=2", adminHdr); len(p.Items) != 1 || p.Total != 2 {
		t.Fatalf("paging: %+v", p)
	}

	wantStatus(t, call(t, e, stdhttp.MethodGet, "/applications?status=ARCHIVED", nil, adminHdr), stdhttp.StatusUnprocessableEntity)
	wantStatus(t, call(t, e, stdhttp.MethodGet, "/applications?page=abc", nil, adminHdr), stdhttp.StatusBadRequest)
}
