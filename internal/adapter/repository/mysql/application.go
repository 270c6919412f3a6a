package mysql

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"civic-backoffice/internal/domain/access"
	appDomain "civic-backoffice/internal/domain/application"
)

type ApplicationRepository struct{ db *gorm.DB }

func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

func (r *ApplicationRepository) Create(ctx context.Context, a *appDomain.Application) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *ApplicationRepository) Save(ctx context.Context, a *appDomain.Application) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *ApplicationRepository) Delete(ctx context.Context, a *appDomain.Application) error {
	res := r.db.WithContext(ctx).Delete(&appDomain.Application{}, a.ID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *ApplicationRepository) GetByApplicationNo(ctx context.Context, no string, vis access.Visibility) (*appDomain.Application, error) {
	var out appDomain.Application
	res := visible(r.db.WithContext(ctx), vis).
		Where("application_no = ?", no).
		First(&out)
	return &out, res.Error
}

func (r *ApplicationRepository) GetByApplicationNoForUpdate(ctx context.Context, no string, vis access.Visibility) (*appDomain.Application, error) {
	var out appDomain.Application
	res := visible(r.db.WithContext(ctx), vis).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("application_no = ?", no).
		First(&out)
	return &out, res.Error
}

func (r *ApplicationRepository) List(ctx context.Context, f appDomain.Filter, vis access.Visibility) ([]appDomain.Application, int64, error) {
	f = f.Normalize()
	q := visible(r.db.WithContext(ctx).Model(&appDomain.Application{}), vis)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.WardCode != "" {
		q = q.Where("ward_code = ?", f.WardCode)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []appDomain.Application
	err := q.Order("created_at DESC, id DESC").
		Offset((f.Page - 1) * f.PageSize).
		Limit(f.PageSize).
		Find(&out).Error
	return out, total, err
}

// visible narrows q to the rows vis allows. The zero Visibility matches nothing.
func visible(q *gorm.DB, vis access.Visibility) *gorm.DB {
	switch {
	case vis.All:
		return q
	case vis.CreatorKey != "":
		return q.Where("created_by = ?", vis.CreatorKey)
	case len(vis.WardCodes) > 0:
		return q.Where("ward_code IN ?", vis.WardCodes)
	default:
		return q.Where("1 = 0")
	}
}
