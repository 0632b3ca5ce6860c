package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/astrokernel/imperium/internal/domain/shared"
)

// Transaction is one immutable credit movement in an empire's journal.
// The balance invariant BalanceAfter = BalanceBefore + Amount must hold.
type Transaction struct {
	ID        string
	EmpireID  shared.EmpireID
	Timestamp time.Time
	Type      TransactionType
	Category  Category

	// Amount is positive for income, negative for expenses.
	Amount        int64
	BalanceBefore int64
	BalanceAfter  int64

	Description string

	// EntryID links the movement to the queue entry that caused it,
	// empty for economy income.
	EntryID    string
	CatalogKey string
}

// NewTransaction creates a validated transaction. BalanceAfter is derived,
// never supplied.
func NewTransaction(
	empireID shared.EmpireID,
	timestamp time.Time,
	txType TransactionType,
	amount int64,
	balanceBefore int64,
	description string,
	entryID string,
	catalogKey string,
) (*Transaction, error) {
	if empireID.IsZero() {
		return nil, fmt.Errorf("transaction requires an empire")
	}
	if amount == 0 {
		return nil, fmt.Errorf("transaction amount cannot be zero")
	}
	category, err := txType.ToCategory()
	if err != nil {
		return nil, err
	}

	return &Transaction{
		ID:            uuid.NewString(),
		EmpireID:      empireID,
		Timestamp:     timestamp,
		Type:          txType,
		Category:      category,
		Amount:        amount,
		BalanceBefore: balanceBefore,
		BalanceAfter:  balanceBefore + amount,
		Description:   description,
		EntryID:       entryID,
		CatalogKey:    catalogKey,
	}, nil
}

// IsIncome reports whether the movement increased the balance
func (t *Transaction) IsIncome() bool {
	return t.Amount > 0
}

// IsExpense reports whether the movement decreased the balance
func (t *Transaction) IsExpense() bool {
	return t.Amount < 0
}

func (t *Transaction) String() string {
	return fmt.Sprintf("Transaction[%s, type=%s, amount=%d, balance=%d->%d]",
		t.ID, t.Type, t.Amount, t.BalanceBefore, t.BalanceAfter)
}
