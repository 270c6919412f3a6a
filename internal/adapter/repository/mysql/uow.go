package mysql

import (
	"context"

	"gorm.io/gorm"

	"civic-backoffice/internal/domain/access"
	"civic-backoffice/internal/domain/application"
	"civic-backoffice/internal/domain/uow"
)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

func repos(tx *gorm.DB) uow.Repos {
	return uow.Repos{
		Applications: &ApplicationRepository{db: tx},
		Properties:   &PropertyRepository{db: tx},
		Wards:        &WardRepository{db: tx},
		Counters:     &CounterRepository{db: tx},
	}
}

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(repos(tx))
	})
}

func (u *GormUoW) WithinApplicationTx(ctx context.Context, applicationNo string, vis access.Visibility, fn func(r uow.Repos, a *application.Application) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repos(tx)
		// lock the application row up-front to prevent races
		a, err := r.Applications.GetByApplicationNoForUpdate(ctx, applicationNo, vis)
		if err != nil {
			return err
		}
		return fn(r, a)
	})
}
