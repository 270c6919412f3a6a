package middleware

import (
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/labstack/echo/v4"

	"civic-backoffice/internal/domain/actor"
	"civic-backoffice/internal/infrastructure/logging"
)

func TestIdentity_ParsesActors(t *testing.T) {
	tests := []struct {
		name string
		hdr  map[string]string
		want actor.Actor
	}{
		{
			name: "public account",
			hdr:  map[string]string{HeaderActorSpace: "public", HeaderActorID: "42", HeaderActorRole: "citizen", HeaderActorName: "Ravi"},
			want: actor.PublicAccount{ID: 42, RoleName: "citizen", Name: "Ravi"},
		},
		{
			name: "staff with wards",
			hdr:  map[string]string{HeaderActorSpace: "Staff", HeaderActorID: "E-7", HeaderActorRole: "inspector", HeaderActorWards: " WARD-7, ,WARD-8 "},
			want: actor.StaffMember{EmployeeID: "E-7", RoleName: "inspector", Wards: []string{"WARD-7", "WARD-8"}},
		},
		{
			name: "staff without wards",
			hdr:  map[string]string{HeaderActorSpace: "staff", HeaderActorID: "E-1", HeaderActorRole: "clerk"},
			want: actor.StaffMember{EmployeeID: "E-1", RoleName: "clerk"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got actor.Actor
			var logged string
			e := echo.New()
			e.Use(Identity())
			e.GET("/whoami", func(c echo.Context) error {
				got = ActorFrom(c)
				if v, ok := logging.FromContext(c.Request().Context()).Data["actor"].(string); ok {
					logged = v
				}
				return c.NoContent(http.StatusNoContent)
			})

			rec := doReq(t, e, http.MethodGet, "/whoami", nil, tt.hdr)
			if rec.Code != http.StatusNoContent {
				t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("actor = %#v, want %#v", got, tt.want)
			}
			if logged != tt.want.Key() {
				t.Fatalf("log actor field = %q, want %q", logged, tt.want.Key())
			}
		})
	}
}

func TestIdentity_Rejects(t *testing.T) {
	tests := []struct {
		name string
		hdr  map[string]string
	}{
		{"no headers", nil},
		{"missing id", map[string]string{HeaderActorSpace: "staff", HeaderActorRole: "clerk"}},
		{"missing role", map[string]string{HeaderActorSpace: "staff", HeaderActorID: "E-1"}},
		{"unknown space", map[string]string{HeaderActorSpace: "vendor", HeaderActorID: "1", HeaderActorRole: "clerk"}},
		{"non numeric public id", map[string]string{HeaderActorSpace: "public", HeaderActorID: "abc", HeaderActorRole: "citizen"}},
		{"zero public id", map[string]string{HeaderActorSpace: "public", HeaderActorID: "0", HeaderActorRole: "citizen"}},
		{"reserved system role", map[string]string{HeaderActorSpace: "public", HeaderActorID: "42", HeaderActorRole: "System"}},
		{"reserved system role for staff", map[string]string{HeaderActorSpace: "staff", HeaderActorID: "E-1", HeaderActorRole: " SYSTEM "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			e := echo.New()
			e.Use(Identity())
			e.GET("/whoami", func(c echo.Context) error {
				called = true
				return c.NoContent(http.StatusNoContent)
			})
			rec := doReq(t, e, http.MethodGet, "/whoami", nil, tt.hdr)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", rec.Code)
			}
			if called {
				t.Fatal("handler must not run")
			}
		})
	}
}

func TestActorFrom_EmptyContext(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	if ActorFrom(c) != nil {
		t.Fatal("want nil actor")
	}
	SetActor(c, actor.System{})
	if ActorFrom(c) == nil || ActorFrom(c).Key() != actor.RoleSystem {
		t.Fatalf("SetActor not visible: %v", ActorFrom(c))
	}
}
