package actor

import (
	"strconv"
	"strings"
)

const (
	// RoleSystem is stored when no caller is attached to an action.
	RoleSystem = "system"
	// RoleUnknown is stored for a person who declared no usable role.
	RoleUnknown = "unknown"
)

// Actor is who performed an action. It is one of PublicAccount, StaffMember or System.
// A nil Actor is treated as System.
type Actor interface {
	// Key is stable across requests and is used for ownership checks.
	Key() string
	Role() string
	DisplayName() string
	isActor()
}

// PublicAccount is a citizen/public user from the accounts table.
type PublicAccount struct {
	ID       uint64
	RoleName string
	Name     string
}

func (p PublicAccount) Key() string  { return "public:" + strconv.FormatUint(p.ID, 10) }
func (p PublicAccount) Role() string { return personRole(p.RoleName) }
func (p PublicAccount) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.Key()
}
func (PublicAccount) isActor() {}

// StaffMember is an employee from the staff directory. Wards limits the
// jurisdiction of reviewing roles; empty means every ward.
type StaffMember struct {
	EmployeeID string
	RoleName   string
	Name       string
	Wards      []string
}

func (s StaffMember) Key() string  { return "staff:" + s.EmployeeID }
func (s StaffMember) Role() string { return personRole(s.RoleName) }
func (s StaffMember) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Key()
}
func (StaffMember) isActor() {}

// System is a scheduled or internal trigger.
type System struct{}

func (System) Key() string         { return RoleSystem }
func (System) Role() string        { return RoleSystem }
func (System) DisplayName() string { return RoleSystem }
func (System) isActor()            {}

// Attribution is the storage-safe form of an Actor.
type Attribution struct {
	ActorID   *uint64
	ActorRole string
	ActorName string
}

// Resolve maps any caller onto (actorID, role). Staff ids are never written to
// actor_id because that column references the public accounts table.
func Resolve(a Actor) Attribution {
	switch v := a.(type) {
	case PublicAccount:
		id := v.ID
		return Attribution{ActorID: &id, ActorRole: roleOrUnknown(v.Role()), ActorName: v.DisplayName()}
	case *PublicAccount:
		if v == nil {
			break
		}
		return Resolve(*v)
	case StaffMember:
		return Attribution{ActorRole: roleOrUnknown(v.Role()), ActorName: v.DisplayName()}
	case *StaffMember:
		if v == nil {
			break
		}
		return Resolve(*v)
	}
	return Attribution{ActorRole: RoleSystem, ActorName: RoleSystem}
}

// OrSystem replaces a nil actor, or a nil pointer to a variant, with System.
func OrSystem(a Actor) Actor {
	switch v := a.(type) {
	case nil:
		return System{}
	case *PublicAccount:
		if v == nil {
			return System{}
		}
		return *v
	case *StaffMember:
		if v == nil {
			return System{}
		}
		return *v
	case *System:
		return System{}
	}
	return a
}

// IsSystem reports whether a is the System variant after OrSystem. A person
// never becomes System by declaring the "system" role.
func IsSystem(a Actor) bool {
	_, ok := OrSystem(a).(System)
	return ok
}

func normalizeRole(r string) string { return strings.ToLower(strings.TrimSpace(r)) }

// personRole drops the reserved system role from people.
func personRole(r string) string {
	r = normalizeRole(r)
	if r == RoleSystem {
		return ""
	}
	return r
}

func roleOrUnknown(r string) string {
	if r == "" {
		return RoleUnknown
	}
	return r
}
