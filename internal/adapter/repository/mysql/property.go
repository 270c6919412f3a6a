package mysql

import (
	"context"

	"gorm.io/gorm"

	propertyDomain "civic-backoffice/internal/domain/property"
)

type PropertyRepository struct{ db *gorm.DB }

func NewPropertyRepository(db *gorm.DB) *PropertyRepository { return &PropertyRepository{db: db} }

func (r *PropertyRepository) Create(ctx context.Context, p *propertyDomain.Property) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PropertyRepository) GetByCode(ctx context.Context, code string) (*propertyDomain.Property, error) {
	var out propertyDomain.Property
	res := r.db.WithContext(ctx).Where("property_code = ?", code).First(&out)
	return &out, res.Error
}

func (r *PropertyRepository) GetByApplicationID(ctx context.Context, applicationID uint64) (*propertyDomain.Property, error) {
	var out propertyDomain.Property
	res := r.db.WithContext(ctx).Where("application_id = ?", applicationID).First(&out)
	return &out, res.Error
}
