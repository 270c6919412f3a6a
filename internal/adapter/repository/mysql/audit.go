package mysql

import (
	"context"

	"gorm.io/gorm"

	auditDomain "civic-backoffice/internal/domain/audit"
)

// AuditRepository is append-only; Entry hooks refuse updates and deletes.
type AuditRepository struct{ db *gorm.DB }

func NewAuditRepository(db *gorm.DB) *AuditRepository { return &AuditRepository{db: db} }

func (r *AuditRepository) Create(ctx context.Context, e *auditDomain.Entry) error {
	return r.db.WithContext(ctx).Create(e).Error
}

// List returns entries newest first.
func (r *AuditRepository) List(ctx context.Context, f auditDomain.Filter) ([]auditDomain.Entry, int64, error) {
	f = f.Normalize()

	q := r.db.WithContext(ctx).Model(&auditDomain.Entry{})
	if f.EntityKind != "" {
		q = q.Where("entity_kind = ?", f.EntityKind)
	}
	if f.EntityID != "" {
		q = q.Where("entity_id = ?", f.EntityID)
	}
	if f.Action != "" {
		q = q.Where("action = ?", f.Action)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []auditDomain.Entry
	err := q.Order("created_at DESC, id DESC").
		Offset((f.Page - 1) * f.PageSize).
		Limit(f.PageSize).
		Find(&out).Error
	return out, total, err
}
