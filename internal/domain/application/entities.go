package application

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

type Status string

const (
	StatusDraft           Status = "DRAFT"
	StatusSubmitted       Status = "SUBMITTED"
	StatusUnderInspection Status = "UNDER_INSPECTION"
	StatusApproved        Status = "APPROVED"
	StatusRejected        Status = "REJECTED"
	StatusReturned        Status = "RETURNED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusUnderInspection, StatusApproved, StatusRejected, StatusReturned:
		return true
	}
	return false
}

func (s Status) Editable() bool  { return s == StatusDraft || s == StatusReturned }
func (s Status) Terminal() bool  { return s == StatusApproved || s == StatusRejected }
func (s Status) Deletable() bool { return s == StatusDraft }

// Payload describes the property being registered. The workflow copies it
// around without interpreting it beyond the property type tag.
type Payload struct {
	OwnerName       string            `gorm:"column:owner_name;size:128;not null" json:"owner_name"`
	GuardianName    string            `gorm:"column:guardian_name;size:128" json:"guardian_name"`
	ContactNumber   string            `gorm:"column:contact_number;size:20" json:"contact_number"`
	Address         string            `gorm:"column:address;type:text;not null" json:"address"`
	Locality        string            `gorm:"column:locality;size:128" json:"locality"`
	PropertyType    string            `gorm:"column:property_type;size:32;not null" json:"property_type"`
	UsageType       string            `gorm:"column:usage_type;size:32" json:"usage_type"`
	PlotAreaSqFt    float64           `gorm:"column:plot_area_sqft" json:"plot_area_sqft"`
	BuiltUpAreaSqFt float64           `gorm:"column:built_up_area_sqft" json:"built_up_area_sqft"`
	Floors          int               `gorm:"column:floors" json:"floors"`
	Extra           datatypes.JSONMap `gorm:"column:extra" json:"extra,omitempty"`
}

// Table: property_applications
type Application struct {
	ID            uint64 `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ApplicationNo string `gorm:"column:application_no;size:32;not null;uniqueIndex:ux_property_applications_no" json:"application_no"`
	Status        Status `gorm:"column:status;size:24;not null;default:'DRAFT';index" json:"status"`
	WardID        uint64 `gorm:"column:ward_id;not null;index" json:"ward_id"`
	WardCode      string `gorm:"column:ward_code;size:32;not null;index" json:"ward_code"`
	// creator: "public:<id>" or "staff:<employee id>"
	CreatedBy     string  `gorm:"column:created_by;size:64;not null;index" json:"created_by"`
	CreatedByID   *uint64 `gorm:"column:created_by_id" json:"created_by_id"`
	CreatedByRole string  `gorm:"column:created_by_role;size:32;not null" json:"created_by_role"`
	ApplicantRef  string  `gorm:"column:applicant_ref;size:64" json:"applicant_ref"`

	Payload `gorm:"embedded"`

	SubmittedAt     *time.Time `gorm:"column:submitted_at" json:"submitted_at"`
	InspectedBy     string     `gorm:"column:inspected_by;size:64" json:"inspected_by"`
	InspectedAt     *time.Time `gorm:"column:inspected_at" json:"inspected_at"`
	DecisionRemarks string     `gorm:"column:decision_remarks;type:text" json:"decision_remarks"`
	RejectionReason string     `gorm:"column:rejection_reason;type:text" json:"rejection_reason"`
	PropertyID      *uint64    `gorm:"column:property_id;uniqueIndex:ux_property_applications_property" json:"property_id"`
	PropertyCode    string     `gorm:"column:property_code;size:64" json:"property_code"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Application) TableName() string { return "property_applications" }

// CheckInvariants verifies status validity and that a property is linked iff approved.
func (a *Application) CheckInvariants() error {
	if !a.Status.Valid() {
		return fmt.Errorf("application %s: invalid status %q", a.ApplicationNo, a.Status)
	}
	if (a.PropertyID != nil) != (a.Status == StatusApproved) {
		return fmt.Errorf("application %s: property link does not match status %s", a.ApplicationNo, a.Status)
	}
	return nil
}

// Snapshot returns the audit representation of the application. Bookkeeping
// timestamps are left out so before/after differ only in what an action changed.
func (a *Application) Snapshot() map[string]any {
	if a == nil {
		return nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return map[string]any{"application_no": a.ApplicationNo, "status": string(a.Status)}
	}
	out := map[string]any{}
	_ = json.Unmarshal(b, &out)
	delete(out, "created_at")
	delete(out, "updated_at")
	return out
}

// UpdateInput is a partial update: nil fields are left untouched.
type UpdateInput struct {
	WardCode        *string
	ApplicantRef    *string
	OwnerName       *string
	GuardianName    *string
	ContactNumber   *string
	Address         *string
	Locality        *string
	PropertyType    *string
	UsageType       *string
	PlotAreaSqFt    *float64
	BuiltUpAreaSqFt *float64
	Floors          *int
	Extra           map[string]any
}

func (in UpdateInput) Empty() bool {
	return in.WardCode == nil && in.ApplicantRef == nil && in.OwnerName == nil &&
		in.GuardianName == nil && in.ContactNumber == nil && in.Address == nil &&
		in.Locality == nil && in.PropertyType == nil && in.UsageType == nil &&
		in.PlotAreaSqFt == nil && in.BuiltUpAreaSqFt == nil && in.Floors == nil && in.Extra == nil
}

// ApplyTo copies the provided payload fields onto a. WardCode is resolved by
// the caller because it needs a ward lookup.
func (in UpdateInput) ApplyTo(a *Application) {
	set(&a.ApplicantRef, in.ApplicantRef)
	set(&a.OwnerName, in.OwnerName)
	set(&a.GuardianName, in.GuardianName)
	set(&a.ContactNumber, in.ContactNumber)
	set(&a.Address, in.Address)
	set(&a.Locality, in.Locality)
	set(&a.PropertyType, in.PropertyType)
	set(&a.UsageType, in.UsageType)
	set(&a.PlotAreaSqFt, in.PlotAreaSqFt)
	set(&a.BuiltUpAreaSqFt, in.BuiltUpAreaSqFt)
	set(&a.Floors, in.Floors)
	if in.Extra != nil {
		a.Extra = datatypes.JSONMap(in.Extra)
	}
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

type Filter struct {
	Status   Status
	WardCode string
	Page     int
	PageSize int
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Normalize clamps paging to sane values.
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
