package access

import (
	"civic-backoffice/internal/domain/actor"
)

const (
	RoleCitizen       = "citizen"
	RoleClerk         = "clerk"
	RoleInspector     = "inspector"
	RoleAssessor      = "assessor"
	RoleAdmin         = "admin"
	RoleAdministrator = "administrator"
	RoleSuperAdmin    = "superadmin"
)

// IsAdmin reports administrator roles. System privilege is decided by
// actor.IsSystem and never by a role string.
func IsAdmin(role string) bool {
	switch role {
	case RoleAdmin, RoleAdministrator, RoleSuperAdmin:
		return true
	}
	return false
}

// IsReviewer reports roles that may move applications through inspection and decision.
func IsReviewer(role string) bool {
	switch role {
	case RoleInspector, RoleAssessor:
		return true
	}
	return IsAdmin(role)
}

// Visibility is the set of applications a caller may see or mutate.
// The zero value matches nothing.
type Visibility struct {
	All        bool
	CreatorKey string
	WardCodes  []string
}

// For derives the caller's visibility. Reviewers are limited to the wards of
// their staff record when it lists any. Every other role only sees what it created.
func For(a actor.Actor) Visibility {
	a = actor.OrSystem(a)
	role := a.Role()
	switch {
	case actor.IsSystem(a) || IsAdmin(role):
		return Visibility{All: true}
	case IsReviewer(role):
		var wards []string
		if s, ok := staff(a); ok {
			wards = append(wards, s.Wards...)
		}
		if len(wards) == 0 {
			return Visibility{All: true}
		}
		return Visibility{WardCodes: wards}
	default:
		return Visibility{CreatorKey: a.Key()}
	}
}

// Allows reports whether a record with the given creator and ward is visible.
func (v Visibility) Allows(creatorKey, wardCode string) bool {
	if v.All {
		return true
	}
	if v.CreatorKey != "" {
		return creatorKey == v.CreatorKey
	}
	for _, w := range v.WardCodes {
		if w == wardCode {
			return true
		}
	}
	return false
}

// CanModify: owner or administrator.
func CanModify(a actor.Actor, creatorKey string) bool {
	a = actor.OrSystem(a)
	return CanAdminister(a) || a.Key() == creatorKey
}

func CanInspect(a actor.Actor) bool {
	return actor.IsSystem(a) || IsReviewer(actor.OrSystem(a).Role())
}

// CanAdminister is true for System and for administrator roles.
func CanAdminister(a actor.Actor) bool {
	return actor.IsSystem(a) || IsAdmin(actor.OrSystem(a).Role())
}

func staff(a actor.Actor) (actor.StaffMember, bool) {
	switch v := a.(type) {
	case actor.StaffMember:
		return v, true
	case *actor.StaffMember:
		if v != nil {
			return *v, true
		}
	}
	return actor.StaffMember{}, false
}
