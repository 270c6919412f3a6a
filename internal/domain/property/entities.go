package property

import (
	"time"

	"civic-backoffice/internal/domain/application"
)

// Property is the registered record created when an application is approved.
// Table: properties
type Property struct {
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	// Public code, e.g. PRP-WARD-7-RES-0001
	PropertyCode string `gorm:"column:property_code;size:64;not null;uniqueIndex:ux_properties_code" json:"property_code"`
	WardID       uint64 `gorm:"column:ward_id;not null;index" json:"ward_id"`
	WardCode     string `gorm:"column:ward_code;size:32;not null" json:"ward_code"`
	Sequence     int64  `gorm:"column:sequence;not null" json:"sequence"`
	TypeTag      string `gorm:"column:type_tag;size:8;not null" json:"type_tag"`
	// FK to property_applications.id; one property per application
	ApplicationID uint64 `gorm:"column:application_id;not null;uniqueIndex:ux_properties_application" json:"application_id"`

	application.Payload `gorm:"embedded"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Property) TableName() string { return "properties" }

// TypeTag maps a property type onto the short tag embedded in property codes.
func TypeTag(propertyType string) string {
	switch propertyType {
	case "residential":
		return "RES"
	case "commercial":
		return "COM"
	case "mixed":
		return "MIX"
	case "industrial":
		return "IND"
	case "institutional":
		return "INS"
	case "vacant_land":
		return "VAC"
	default:
		return "OTH"
	}
}
