package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astrokernel/imperium/internal/adapters/persistence"
	"github.com/astrokernel/imperium/internal/domain/ledger"
	"github.com/astrokernel/imperium/internal/domain/shared"
	"github.com/astrokernel/imperium/test/helpers"
)

func seedTransaction(t *testing.T, repo *persistence.GormTransactionRepository, empireID shared.EmpireID, at time.Time, txType ledger.TransactionType, amount, before int64) *ledger.Transaction {
	t.Helper()
	tx, err := ledger.NewTransaction(empireID, at, txType, amount, before, "test movement", "", "")
	require.NoError(t, err)
	require.NoError(t, repo.Record(context.Background(), tx))
	return tx
}

func TestTransactionRepository(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormTransactionRepository(db)
	ctx := context.Background()

	empireID := shared.MustNewEmpireID(1)
	otherID := shared.MustNewEmpireID(2)
	t0 := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	charge := seedTransaction(t, repo, empireID, t0, ledger.TransactionTypeResearch, -200, 1000)
	seedTransaction(t, repo, empireID, t0.Add(time.Hour), ledger.TransactionTypeIncome, 6, 800)
	seedTransaction(t, repo, otherID, t0, ledger.TransactionTypeIncome, 3, 50)

	t.Run("lists own rows newest first", func(t *testing.T) {
		rows, err := repo.ListByEmpire(ctx, empireID, ledger.DefaultQueryOptions())
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, ledger.TransactionTypeIncome, rows[0].Type)
		assert.Equal(t, ledger.TransactionTypeResearch, rows[1].Type)
		assert.Equal(t, charge.ID, rows[1].ID)
		assert.Equal(t, int64(1000), rows[1].BalanceBefore)
		assert.Equal(t, int64(800), rows[1].BalanceAfter)
	})

	t.Run("filters by category", func(t *testing.T) {
		expense := ledger.CategoryExpense
		rows, err := repo.ListByEmpire(ctx, empireID, ledger.QueryOptions{Category: &expense})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, ledger.TransactionTypeResearch, rows[0].Type)
	})

	t.Run("filters by type", func(t *testing.T) {
		income := ledger.TransactionTypeIncome
		count, err := repo.CountByEmpire(ctx, empireID, ledger.QueryOptions{Type: &income})
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("paginates", func(t *testing.T) {
		rows, err := repo.ListByEmpire(ctx, empireID, ledger.QueryOptions{Limit: 1, Offset: 1})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, charge.ID, rows[0].ID)
	})

	t.Run("count ignores pagination", func(t *testing.T) {
		count, err := repo.CountByEmpire(ctx, empireID, ledger.QueryOptions{Limit: 1})
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})
}
