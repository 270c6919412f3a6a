package audit

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ErrImmutable is returned by the gorm hooks when something tries to change a
// stored entry.
var ErrImmutable = errors.New("audit entries are immutable")

type Action string

const (
	ActionCreate          Action = "create"
	ActionUpdate          Action = "update"
	ActionDelete          Action = "delete"
	ActionSubmit          Action = "submit"
	ActionStartInspection Action = "start_inspection"
	ActionApprove         Action = "approve"
	ActionReject          Action = "reject"
	ActionReturn          Action = "return"
	ActionLogin           Action = "login"
	ActionLogout          Action = "logout"
	ActionExport          Action = "export"
)

var actions = map[Action]struct{}{
	ActionCreate: {}, ActionUpdate: {}, ActionDelete: {}, ActionSubmit: {},
	ActionStartInspection: {}, ActionApprove: {}, ActionReject: {}, ActionReturn: {},
	ActionLogin: {}, ActionLogout: {}, ActionExport: {},
}

func (a Action) Valid() bool { _, ok := actions[a]; return ok }

// ParseAction rejects anything outside the closed set.
func ParseAction(s string) (Action, error) {
	a := Action(s)
	if !a.Valid() {
		return "", errors.New("unknown audit action: " + s)
	}
	return a, nil
}

type EntityKind string

const (
	EntityPropertyApplication EntityKind = "property_application"
	EntityProperty            EntityKind = "property"
	EntityWard                EntityKind = "ward"
	EntityWaterConnection     EntityKind = "water_connection"
	EntityMRFFacility         EntityKind = "mrf_facility"
	EntityWasteEntry          EntityKind = "waste_entry"
	EntityGaushala            EntityKind = "gaushala"
	EntityCattle              EntityKind = "cattle"
	EntityFieldWorker         EntityKind = "field_worker"
	EntityTask                EntityKind = "task"
	EntityUser                EntityKind = "user"
	EntityEmployee            EntityKind = "employee"
	EntityAuditLog            EntityKind = "audit_log"
)

var entityKinds = map[EntityKind]struct{}{
	EntityPropertyApplication: {}, EntityProperty: {}, EntityWard: {}, EntityWaterConnection: {},
	EntityMRFFacility: {}, EntityWasteEntry: {}, EntityGaushala: {}, EntityCattle: {},
	EntityFieldWorker: {}, EntityTask: {}, EntityUser: {}, EntityEmployee: {}, EntityAuditLog: {},
}

func (k EntityKind) Valid() bool { _, ok := entityKinds[k]; return ok }

func ParseEntityKind(s string) (EntityKind, error) {
	k := EntityKind(s)
	if !k.Valid() {
		return "", errors.New("unknown audit entity kind: " + s)
	}
	return k, nil
}

// Entry is one immutable audit row. Column names are read by external
// reporting tools and must stay stable.
type Entry struct {
	ID          uint64            `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	EntryID     string            `gorm:"column:entry_id;size:36;not null;uniqueIndex:ux_audit_logs_entry_id" json:"entry_id"`
	ActorID     *uint64           `gorm:"column:actor_id;index" json:"actor_id"`
	ActorRole   string            `gorm:"column:actor_role;size:32;not null;default:'system'" json:"actor_role"`
	Action      Action            `gorm:"column:action;size:32;not null;index" json:"action"`
	EntityKind  EntityKind        `gorm:"column:entity_kind;size:48;not null;index:idx_audit_logs_entity" json:"entity_kind"`
	EntityID    *string           `gorm:"column:entity_id;size:64;index:idx_audit_logs_entity" json:"entity_id"`
	BeforeState datatypes.JSON    `gorm:"column:before_state" json:"before_state"`
	AfterState  datatypes.JSON    `gorm:"column:after_state" json:"after_state"`
	Description string            `gorm:"column:description;type:text" json:"description"`
	Metadata    datatypes.JSONMap `gorm:"column:metadata" json:"metadata"`
	IPAddress   *string           `gorm:"column:ip_address;size:45" json:"ip_address"`
	UserAgent   *string           `gorm:"column:user_agent;size:255" json:"user_agent"`
	CreatedAt   time.Time         `gorm:"column:created_at;not null;index" json:"created_at"`
}

func (Entry) TableName() string { return "audit_logs" }

func (Entry) BeforeUpdate(*gorm.DB) error { return ErrImmutable }
func (Entry) BeforeDelete(*gorm.DB) error { return ErrImmutable }

type Filter struct {
	EntityKind EntityKind
	EntityID   string
	Action     Action
	Page       int
	PageSize   int
}

const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

func (f Filter) Normalize() Filter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
	return f
}

type Repository interface {
	Create(ctx context.Context, e *Entry) error
	List(ctx context.Context, f Filter) ([]Entry, int64, error)
}
