package ward

import (
	"context"
	"errors"
	"time"
)

// ErrUnknownScope is returned when a ward code does not resolve to an active ward.
var ErrUnknownScope = errors.New("unknown scope")

// Ward is the administrative partition used for access scoping and
// identifier allocation.
type Ward struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Code      string    `gorm:"column:code;size:32;not null;uniqueIndex:ux_wards_code" json:"code"`
	Name      string    `gorm:"column:name;size:128;not null" json:"name"`
	Active    bool      `gorm:"column:active;not null" json:"active"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Ward) TableName() string { return "wards" }

// SequenceCounter holds the last issued sequence for one ward.
type SequenceCounter struct {
	WardID    uint64    `gorm:"column:ward_id;primaryKey;autoIncrement:false"`
	LastValue int64     `gorm:"column:last_value;not null;default:0"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (SequenceCounter) TableName() string { return "sequence_counters" }

type Repository interface {
	// GetByCode returns ErrUnknownScope for missing or inactive wards.
	GetByCode(ctx context.Context, code string) (*Ward, error)
	Upsert(ctx context.Context, w *Ward) error
	List(ctx context.Context) ([]Ward, error)
}

type CounterRepository interface {
	// Next increments the ward's counter under an exclusive row lock and
	// returns the new value. It must run inside a transaction.
	Next(ctx context.Context, wardID uint64) (int64, error)
	Current(ctx context.Context, wardID uint64) (int64, error)
}
