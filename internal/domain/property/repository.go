package property

import "context"

type Repository interface {
	// Create a property (DB uniqueness ensures at most one per application)
	Create(ctx context.Context, p *Property) error

	GetByCode(ctx context.Context, code string) (*Property, error)

	GetByApplicationID(ctx context.Context, applicationID uint64) (*Property, error)
}
