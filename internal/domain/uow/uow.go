package uow

import (
	"context"

	"civic-backoffice/internal/domain/access"
	"civic-backoffice/internal/domain/application"
	"civic-backoffice/internal/domain/property"
	"civic-backoffice/internal/domain/ward"
)

// Repos are bound to one transaction.
type Repos struct {
	Applications application.Repository
	Properties   property.Repository
	Wards        ward.Repository
	Counters     ward.CounterRepository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// convenience: lock the visible application row first, then pass it in.
	// A missing or invisible row yields gorm.ErrRecordNotFound without calling fn.
	WithinApplicationTx(ctx context.Context, applicationNo string, vis access.Visibility, fn func(r Repos, a *application.Application) error) error
}
