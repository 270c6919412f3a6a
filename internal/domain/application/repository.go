package application

import (
	"context"

	"civic-backoffice/internal/domain/access"
)

type Repository interface {
	Create(ctx context.Context, a *Application) error
	Save(ctx context.Context, a *Application) error
	Delete(ctx context.Context, a *Application) error

	// Lookups only return rows inside vis; everything else is gorm.ErrRecordNotFound.
	GetByApplicationNo(ctx context.Context, applicationNo string, vis access.Visibility) (*Application, error)
	// Same as GetByApplicationNo but takes a row lock until the transaction ends.
	GetByApplicationNoForUpdate(ctx context.Context, applicationNo string, vis access.Visibility) (*Application, error)
	List(ctx context.Context, f Filter, vis access.Visibility) ([]Application, int64, error)
}
