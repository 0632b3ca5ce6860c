package empire

import (
	"context"

	"github.com/astrokernel/imperium/internal/domain/shared"
)

// Repository is the storage port for empires
type Repository interface {
	// FindByID loads an empire, returning a NotFoundError when absent
	FindByID(ctx context.Context, id shared.EmpireID) (*Empire, error)

	// ListAll returns every empire (used by the economy accrual pass)
	ListAll(ctx context.Context) ([]*Empire, error)

	// Save upserts the empire's credits, tech levels and unit roster
	Save(ctx context.Context, e *Empire) error
}
