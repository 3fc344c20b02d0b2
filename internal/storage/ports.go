// Package storage defines the persistence ports shared by the postgres,
// sqlite and memory backends.
//
// Every read and write is scoped to an owner id. A row that exists but
// belongs to someone else is reported as ErrNotFound, the same as a row
// that does not exist.
package storage

import (
	"context"
	"errors"

	"budget/internal/core"
)

var ErrNotFound = errors.New("not found")

// TransactionUpdate carries the mutable fields of a transaction.
type TransactionUpdate struct {
	Kind     core.Kind
	Category string
	Amount   core.Money
	Date     core.Date
}

// Apply returns t with the update applied.
func (u TransactionUpdate) Apply(t core.Transaction) core.Transaction {
	t.Kind = u.Kind
	t.Category = u.Category
	t.Amount = u.Amount
	t.Date = u.Date
	return t
}

type (
	TransactionStore interface {
		// ListTransactions returns the owner's rows, newest date first.
		ListTransactions(ctx context.Context, ownerID string) ([]core.Transaction, error)
		GetTransaction(ctx context.Context, ownerID, id string) (core.Transaction, error)
		InsertTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
		UpdateTransaction(ctx context.Context, ownerID, id string, u TransactionUpdate) (core.Transaction, error)
		DeleteTransaction(ctx context.Context, ownerID, id string) error
	}

	BudgetStore interface {
		GetBudget(ctx context.Context, ownerID string) (core.BudgetDoc, error)
		// UpsertBudget creates or replaces the owner's single budget
		// document. CreatedAt of an existing document is preserved.
		UpsertBudget(ctx context.Context, doc core.BudgetDoc) (core.BudgetDoc, error)
	}

	ProfileStore interface {
		GetProfile(ctx context.Context, ownerID string) (core.Profile, error)
		UpsertProfile(ctx context.Context, p core.Profile) (core.Profile, error)
	}

	// Store is the full repository a backend provides.
	Store interface {
		TransactionStore
		BudgetStore
		ProfileStore
		Ping(ctx context.Context) error
		Close() error
	}
)
