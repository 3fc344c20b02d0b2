// Package storagetest holds the behaviour every storage.Store backend must
// share. Backend packages call Run from their own tests.
package storagetest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budget/internal/core"
	"budget/internal/storage"
)

// Factory returns an empty store. Cleanup should be registered on t.
type Factory func(t *testing.T) storage.Store

func newTx(owner string, kind core.Kind, category string, cents int64, date core.Date) core.Transaction {
	return core.Transaction{
		ID:        uuid.NewString(),
		OwnerID:   owner,
		Kind:      kind,
		Category:  category,
		Amount:    core.Money{Cents: cents},
		Date:      date,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

// Run exercises the store contract.
func Run(t *testing.T, factory Factory) {
	t.Run("insert then list is owner scoped", func(t *testing.T) {
		s := factory(t)
		ctx := context.Background()

		mine := newTx("alice", core.Expense, "Food & Dining", 1500, core.NewDate(2024, 1, 2))
		_, err := s.InsertTransaction(ctx, mine)
		require.NoError(t, err)
		_, err = s.InsertTransaction(ctx, newTx("bob", core.Income, "", 99900, core.NewDate(2024, 1, 3)))
		require.NoError(t, err)

		list, err := s.ListTransactions(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, mine.ID, list[0].ID)
		assert.Equal(t, int64(1500), list[0].Amount.Cents)
		assert.Equal(t, "2024-01-02", list[0].Date.String())
		assert.Equal(t, core.Expense, list[0].Kind)
		assert.Equal(t, "Food & Dining", list[0].Category)

		empty, err := s.ListTransactions(ctx, "carol")
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("list is ordered by date descending", func(t *testing.T) {
		s := factory(t)
		ctx := context.Background()
		for _, d := range []int{3, 1, 7, 5} {
			_, err := s.InsertTransaction(ctx, newTx("alice", core.Income, "", int64(d), core.NewDate(2024, 2, d)))
			require.NoError(t, err)
		}
		list, err := s.ListTransactions(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, list, 4)
		for i, want := range []int{7, 5, 3, 1} {
			assert.Equal(t, want, list[i].Date.Day())
		}
	})

	t.Run("get update delete enforce ownership", func(t *testing.T) {
		s := factory(t)
		ctx := context.Background()

		tx := newTx("alice", core.Expense, "Shopping", 4200, core.NewDate(2024, 3, 1))
		_, err := s.InsertTransaction(ctx, tx)
		require.NoError(t, err)

		_, err = s.GetTransaction(ctx, "bob", tx.ID)
		assert.ErrorIs(t, err, storage.ErrNotFound)

		upd := storage.TransactionUpdate{Kind: core.Expense, Category: "Utilities", Amount: core.Money{Cents: 1}, Date: core.NewDate(2024, 3, 2)}
		_, err = s.UpdateTransaction(ctx, "bob", tx.ID, upd)
		assert.ErrorIs(t, err, storage.ErrNotFound)

		err = s.DeleteTransaction(ctx, "bob", tx.ID)
		assert.ErrorIs(t, err, storage.ErrNotFound)

		got, err := s.GetTransaction(ctx, "alice", tx.ID)
		require.NoError(t, err)
		assert.Equal(t, "Shopping", got.Category)
		assert.Equal(t, int64(4200), got.Amount.Cents)

		updated, err := s.UpdateTransaction(ctx, "alice", tx.ID, upd)
		require.NoError(t, err)
		assert.Equal(t, "Utilities", updated.Category)
		assert.Equal(t, int64(1), updated.Amount.Cents)
		assert.Equal(t, "2024-03-02", updated.Date.String())
		assert.Equal(t, tx.ID, updated.ID)
		assert.Equal(t, "alice", updated.OwnerID)

		require.NoError(t, s.DeleteTransaction(ctx, "alice", tx.ID))
		_, err = s.GetTransaction(ctx, "alice", tx.ID)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.ErrorIs(t, s.DeleteTransaction(ctx, "alice", tx.ID), storage.ErrNotFound)
	})

	t.Run("missing ids are not found", func(t *testing.T) {
		s := factory(t)
		ctx := context.Background()
		id := uuid.NewString()
		_, err := s.GetTransaction(ctx, "alice", id)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		_, err = s.UpdateTransaction(ctx, "alice", id, storage.TransactionUpdate{Kind: core.Income, Date: core.NewDate(2024, 1, 1)})
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("budget upsert keeps one document per owner", func(t *testing.T) {
		s := factory(t)
		ctx := context.Background()

		_, err := s.GetBudget(ctx, "alice")
		assert.ErrorIs(t, err, storage.ErrNotFound)

		first, err := core.NewBudgetDoc("alice", []core.CategoryBudget{
			{CategoryID: 1, Budget: core.Money{Cents: 100000}, Selected: true},
		})
		require.NoError(t, err)
		saved, err := s.UpsertBudget(ctx, first)
		require.NoError(t, err)
		assert.False(t, saved.CreatedAt.IsZero())

		second, err := core.NewBudgetDoc("alice", []core.CategoryBudget{
			{CategoryID: 2, Budget: core.Money{Cents: 20000}, Selected: true},
			{CategoryID: 4, Budget: core.Money{Cents: 5000}, Selected: true},
		})
		require.NoError(t, err)
		_, err = s.UpsertBudget(ctx, second)
		require.NoError(t, err)

		got, err := s.GetBudget(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, got.Categories, 2)
		assert.Equal(t, 2, got.Categories[0].CategoryID)
		assert.Equal(t, int64(20000), got.Categories[0].Budget.Cents)
		assert.True(t, got.Categories[0].Selected)
		assert.Equal(t, int64(25000), got.TotalBudget.Cents)
		assert.WithinDuration(t, saved.CreatedAt, got.CreatedAt, time.Second)

		_, err = s.GetBudget(ctx, "bob")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("profile upsert", func(t *testing.T) {
		s := factory(t)
		ctx := context.Background()

		_, err := s.GetProfile(ctx, "alice")
		assert.ErrorIs(t, err, storage.ErrNotFound)

		p := core.Profile{OwnerID: "alice", FullName: "Alice", Currency: "EUR", FinancialGoal: "invest"}
		_, err = s.UpsertProfile(ctx, p)
		require.NoError(t, err)

		p.FullName = "Alice A."
		_, err = s.UpsertProfile(ctx, p)
		require.NoError(t, err)

		got, err := s.GetProfile(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, "Alice A.", got.FullName)
		assert.Equal(t, "EUR", got.Currency)
		assert.Equal(t, "invest", got.FinancialGoal)
	})

	t.Run("ping", func(t *testing.T) {
		s := factory(t)
		assert.NoError(t, s.Ping(context.Background()))
	})
}
