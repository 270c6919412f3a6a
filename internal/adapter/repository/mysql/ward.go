package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	wardDomain "civic-backoffice/internal/domain/ward"
)

type WardRepository struct{ db *gorm.DB }

func NewWardRepository(db *gorm.DB) *WardRepository { return &WardRepository{db: db} }

func (r *WardRepository) GetByCode(ctx context.Context, code string) (*wardDomain.Ward, error) {
	var out wardDomain.Ward
	err := r.db.WithContext(ctx).Where("code = ? AND active = ?", code, true).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, wardDomain.ErrUnknownScope
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Upsert inserts or updates a ward by code.
func (r *WardRepository) Upsert(ctx context.Context, w *wardDomain.Ward) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "active", "updated_at"}),
	}).Create(w).Error
}

func (r *WardRepository) List(ctx context.Context) ([]wardDomain.Ward, error) {
	var out []wardDomain.Ward
	err := r.db.WithContext(ctx).Order("code ASC").Find(&out).Error
	return out, err
}

type CounterRepository struct{ db *gorm.DB }

func NewCounterRepository(db *gorm.DB) *CounterRepository { return &CounterRepository{db: db} }

// Next makes sure the counter row exists, bumps it with a single UPDATE (which
// holds the row's write lock until commit) and reads the new value back
// under FOR UPDATE. Concurrent callers on the same ward queue on that lock.
func (r *CounterRepository) Next(ctx context.Context, wardID uint64) (int64, error) {
	db := r.db.WithContext(ctx)
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&wardDomain.SequenceCounter{WardID: wardID}).Error; err != nil {
		return 0, err
	}
	res := db.Model(&wardDomain.SequenceCounter{}).
		Where("ward_id = ?", wardID).
		Update("last_value", gorm.Expr("last_value + ?", 1))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected != 1 {
		return 0, errors.New("sequence counter row missing")
	}
	var c wardDomain.SequenceCounter
	if err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("ward_id = ?", wardID).
		First(&c).Error; err != nil {
		return 0, err
	}
	return c.LastValue, nil
}

func (r *CounterRepository) Current(ctx context.Context, wardID uint64) (int64, error) {
	var c wardDomain.SequenceCounter
	err := r.db.WithContext(ctx).Where("ward_id = ?", wardID).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	return c.LastValue, err
}
