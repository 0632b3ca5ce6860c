package ledger

import "fmt"

// TransactionType classifies a credit movement
type TransactionType string

const (
	// TransactionTypeConstruction is a charge when queued construction starts
	TransactionTypeConstruction TransactionType = "CONSTRUCTION"

	// TransactionTypeResearch is a charge at research admission
	TransactionTypeResearch TransactionType = "RESEARCH"

	// TransactionTypeUnitTraining is a charge at training admission
	TransactionTypeUnitTraining TransactionType = "UNIT_TRAINING"

	// TransactionTypeRefund is a credit returned on cancellation
	TransactionTypeRefund TransactionType = "REFUND"

	// TransactionTypeIncome is periodic economy income
	TransactionTypeIncome TransactionType = "INCOME"
)

// Category groups transaction types by direction
type Category string

const (
	CategoryExpense Category = "EXPENSE"
	CategoryIncome  Category = "INCOME"
)

var typeToCategory = map[TransactionType]Category{
	TransactionTypeConstruction: CategoryExpense,
	TransactionTypeResearch:     CategoryExpense,
	TransactionTypeUnitTraining: CategoryExpense,
	TransactionTypeRefund:       CategoryIncome,
	TransactionTypeIncome:       CategoryIncome,
}

// String returns the string representation of the TransactionType
func (t TransactionType) String() string {
	return string(t)
}

// IsValid checks if the transaction type is valid
func (t TransactionType) IsValid() bool {
	_, ok := typeToCategory[t]
	return ok
}

// ToCategory maps the transaction type to its category
func (t TransactionType) ToCategory() (Category, error) {
	category, ok := typeToCategory[t]
	if !ok {
		return "", fmt.Errorf("unknown transaction type: %s", t)
	}
	return category, nil
}

// ParseTransactionType parses a string into a TransactionType
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid transaction type: %s", s)
	}
	return t, nil
}
