package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/astrokernel/imperium/internal/domain/ledger"
	"github.com/astrokernel/imperium/internal/domain/shared"
)

// GormTransactionRepository implements ledger.TransactionRepository using GORM
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GORM transaction repository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// Record persists a new journal transaction
func (r *GormTransactionRepository) Record(ctx context.Context, tx *ledger.Transaction) error {
	model := &TransactionModel{
		ID:            tx.ID,
		EmpireID:      tx.EmpireID.Value(),
		Timestamp:     tx.Timestamp,
		Type:          string(tx.Type),
		Category:      string(tx.Category),
		Amount:        tx.Amount,
		BalanceBefore: tx.BalanceBefore,
		BalanceAfter:  tx.BalanceAfter,
		Description:   tx.Description,
		EntryID:       tx.EntryID,
		CatalogKey:    tx.CatalogKey,
	}
	result := r.db.WithContext(ctx).Create(model)
	if result.Error != nil {
		return fmt.Errorf("failed to record transaction: %w", result.Error)
	}
	return nil
}

// ListByEmpire retrieves an empire's transactions, newest first
func (r *GormTransactionRepository) ListByEmpire(ctx context.Context, empireID shared.EmpireID, opts ledger.QueryOptions) ([]*ledger.Transaction, error) {
	var models []TransactionModel
	result := r.query(ctx, empireID, opts).
		Order("timestamp DESC, id DESC").
		Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", result.Error)
	}

	transactions := make([]*ledger.Transaction, 0, len(models))
	for i := range models {
		tx, err := r.modelToTransaction(&models[i])
		if err != nil {
			continue // Skip invalid rows
		}
		transactions = append(transactions, tx)
	}
	return transactions, nil
}

// CountByEmpire returns the count of matching journal rows
func (r *GormTransactionRepository) CountByEmpire(ctx context.Context, empireID shared.EmpireID, opts ledger.QueryOptions) (int64, error) {
	var count int64
	opts.Limit = 0
	opts.Offset = 0
	result := r.query(ctx, empireID, opts).Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", result.Error)
	}
	return count, nil
}

func (r *GormTransactionRepository) query(ctx context.Context, empireID shared.EmpireID, opts ledger.QueryOptions) *gorm.DB {
	tx := r.db.WithContext(ctx).Model(&TransactionModel{}).
		Where("empire_id = ?", empireID.Value())
	if opts.Category != nil {
		tx = tx.Where("category = ?", string(*opts.Category))
	}
	if opts.Type != nil {
		tx = tx.Where("type = ?", string(*opts.Type))
	}
	if opts.Limit > 0 {
		tx = tx.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		tx = tx.Offset(opts.Offset)
	}
	return tx
}

func (r *GormTransactionRepository) modelToTransaction(model *TransactionModel) (*ledger.Transaction, error) {
	empireID, err := shared.NewEmpireID(model.EmpireID)
	if err != nil {
		return nil, fmt.Errorf("invalid empire ID in journal row %s: %w", model.ID, err)
	}
	return &ledger.Transaction{
		ID:            model.ID,
		EmpireID:      empireID,
		Timestamp:     model.Timestamp,
		Type:          ledger.TransactionType(model.Type),
		Category:      ledger.Category(model.Category),
		Amount:        model.Amount,
		BalanceBefore: model.BalanceBefore,
		BalanceAfter:  model.BalanceAfter,
		Description:   model.Description,
		EntryID:       model.EntryID,
		CatalogKey:    model.CatalogKey,
	}, nil
}
