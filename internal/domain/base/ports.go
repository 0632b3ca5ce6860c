package base

import (
	"context"

	"github.com/astrokernel/imperium/internal/domain/shared"
)

// Repository is the storage port for bases
type Repository interface {
	// FindByCoord loads a base, returning a NotFoundError when absent
	FindByCoord(ctx context.Context, coord shared.Coord) (*Base, error)

	// ListByEmpire returns all bases owned by one empire
	ListByEmpire(ctx context.Context, id shared.EmpireID) ([]*Base, error)

	// Save upserts the base
	Save(ctx context.Context, b *Base) error
}

// RecordRepository is the storage port for structure/defense records
type RecordRepository interface {
	// FindByCoordAndKey loads one record; returns (nil, nil) when no record
	// exists yet for the catalog key at that base
	FindByCoordAndKey(ctx context.Context, coord shared.Coord, catalogKey string) (*Record, error)

	// ListByCoord returns every record at a base, active or not
	ListByCoord(ctx context.Context, coord shared.Coord) ([]*Record, error)

	// ListActiveByCoord returns only active records (ledger/capacity input)
	ListActiveByCoord(ctx context.Context, coord shared.Coord) ([]*Record, error)

	// Save upserts one record
	Save(ctx context.Context, r *Record) error

	// Delete removes a never-activated record after a first-build cancel
	Delete(ctx context.Context, coord shared.Coord, catalogKey string) error
}
