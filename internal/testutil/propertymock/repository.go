package propertymock

import (
	"context"

	domain "civic-backoffice/internal/domain/property"
)

var _ domain.Repository = (*Repo)(nil)

type Repo struct {
	CreateFn             func(ctx context.Context, p *domain.Property) error
	GetByCodeFn          func(ctx context.Context, code string) (*domain.Property, error)
	GetByApplicationIDFn func(ctx context.Context, applicationID uint64) (*domain.Property, error)

	// Created collects every property passed to Create.
	Created []*domain.Property
}

func (m *Repo) Create(ctx context.Context, p *domain.Property) error {
	m.Created = append(m.Created, p)
	if m.CreateFn != nil {
		return m.CreateFn(ctx, p)
	}
	return nil
}

func (m *Repo) GetByCode(ctx context.Context, code string) (*domain.Property, error) {
	if m.GetByCodeFn != nil {
		return m.GetByCodeFn(ctx, code)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByApplicationID(ctx context.Context, applicationID uint64) (*domain.Property, error) {
	if m.GetByApplicationIDFn != nil {
		return m.GetByApplicationIDFn(ctx, applicationID)
	}
	return nil, context.Canceled
}
