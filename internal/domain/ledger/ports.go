package ledger

import (
	"context"

	"github.com/astrokernel/imperium/internal/domain/shared"
)

// TransactionRepository defines persistence operations for the credit journal
type TransactionRepository interface {
	// Record persists a new transaction
	Record(ctx context.Context, tx *Transaction) error

	// ListByEmpire retrieves an empire's transactions, newest first
	ListByEmpire(ctx context.Context, empireID shared.EmpireID, opts QueryOptions) ([]*Transaction, error)

	// CountByEmpire returns the count of transactions matching the criteria
	CountByEmpire(ctx context.Context, empireID shared.EmpireID, opts QueryOptions) (int64, error)
}

// QueryOptions defines filtering and pagination for journal queries
type QueryOptions struct {
	Category *Category
	Type     *TransactionType

	Limit  int
	Offset int
}

// DefaultQueryOptions returns the default page of the journal
func DefaultQueryOptions() QueryOptions {
	return QueryOptions{Limit: 50}
}
