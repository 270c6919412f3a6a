package applicationmock

import (
	"context"

	"civic-backoffice/internal/domain/access"
	domain "civic-backoffice/internal/domain/application"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset lookups return context.Canceled so a missing stub fails loudly.
type Repo struct {
	CreateFn                      func(ctx context.Context, a *domain.Application) error
	SaveFn                        func(ctx context.Context, a *domain.Application) error
	DeleteFn                      func(ctx context.Context, a *domain.Application) error
	GetByApplicationNoFn          func(ctx context.Context, no string, vis access.Visibility) (*domain.Application, error)
	GetByApplicationNoForUpdateFn func(ctx context.Context, no string, vis access.Visibility) (*domain.Application, error)
	ListFn                        func(ctx context.Context, f domain.Filter, vis access.Visibility) ([]domain.Application, int64, error)
}

func (m *Repo) Create(ctx context.Context, a *domain.Application) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, a)
	}
	return nil
}

func (m *Repo) Save(ctx context.Context, a *domain.Application) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, a)
	}
	return nil
}

func (m *Repo) Delete(ctx context.Context, a *domain.Application) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, a)
	}
	return nil
}

func (m *Repo) GetByApplicationNo(ctx context.Context, no string, vis access.Visibility) (*domain.Application, error) {
	if m.GetByApplicationNoFn != nil {
		return m.GetByApplicationNoFn(ctx, no, vis)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByApplicationNoForUpdate(ctx context.Context, no string, vis access.Visibility) (*domain.Application, error) {
	if m.GetByApplicationNoForUpdateFn != nil {
		return m.GetByApplicationNoForUpdateFn(ctx, no, vis)
	}
	return nil, context.Canceled
}

func (m *Repo) List(ctx context.Context, f domain.Filter, vis access.Visibility) ([]domain.Application, int64, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, f, vis)
	}
	return nil, 0, context.Canceled
}
