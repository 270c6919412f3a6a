package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"civic-backoffice/internal/domain/actor"
	"civic-backoffice/internal/infrastructure/logging"
)

// Identity headers are set by the session gateway in front of this service.
const (
	HeaderActorSpace = "X-Actor-Space" // public | staff
	HeaderActorID    = "X-Actor-Id"
	HeaderActorRole  = "X-Actor-Role"
	HeaderActorName  = "X-Actor-Name"
	HeaderActorWards = "X-Actor-Wards" // comma separated ward codes
)

const actorKey = "civic.actor"

// Identity resolves the caller from the gateway headers and rejects requests
// without one.
func Identity() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			a, err := parseActor(c.Request().Header)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": err.Error()})
			}
			c.Set(actorKey, a)

			req := c.Request()
			entry := logging.FromContext(req.Context()).WithField("actor", a.Key())
			c.SetRequest(req.WithContext(logging.WithLogger(req.Context(), entry)))
			return next(c)
		}
	}
}

// ActorFrom returns the caller stored by Identity, or nil.
func ActorFrom(c echo.Context) actor.Actor {
	a, _ := c.Get(actorKey).(actor.Actor)
	return a
}

// SetActor is used by tests and internal routes that bypass the gateway.
func SetActor(c echo.Context, a actor.Actor) { c.Set(actorKey, a) }

func parseActor(h http.Header) (actor.Actor, error) {
	space := strings.ToLower(strings.TrimSpace(h.Get(HeaderActorSpace)))
	id := strings.TrimSpace(h.Get(HeaderActorID))
	role := strings.TrimSpace(h.Get(HeaderActorRole))
	name := strings.TrimSpace(h.Get(HeaderActorName))

	if space == "" {
		return nil, errors.New("missing " + HeaderActorSpace)
	}
	if id == "" {
		return nil, errors.New("missing " + HeaderActorID)
	}
	if role == "" {
		return nil, errors.New("missing " + HeaderActorRole)
	}
	if strings.EqualFold(role, actor.RoleSystem) {
		return nil, errors.New("reserved " + HeaderActorRole)
	}

	switch space {
	case "public":
		n, err := strconv.ParseUint(id, 10, 64)
		if err != nil || n == 0 {
			return nil, errors.New("invalid " + HeaderActorID)
		}
		return actor.PublicAccount{ID: n, RoleName: role, Name: name}, nil
	case "staff":
		return actor.StaffMember{EmployeeID: id, RoleName: role, Name: name, Wards: splitWards(h.Get(HeaderActorWards))}, nil
	default:
		return nil, errors.New("invalid " + HeaderActorSpace)
	}
}

func splitWards(raw string) []string {
	var out []string
	for _, w := range strings.Split(raw, ",") {
		if w = strings.TrimSpace(w); w != "" {
			out = append(out, w)
		}
	}
	return out
}
