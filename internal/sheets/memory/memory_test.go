package memory

import (
	"context"
	"testing"

	"budget/internal/core"
)

func TestExporter(t *testing.T) {
	e := New()
	ctx := context.Background()

	tx := core.Transaction{ID: "b", OwnerID: "alice", Kind: core.Expense, Category: "Shopping", Amount: core.Money{Cents: 100}}
	if err := e.Upsert(ctx, tx); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	tx.Amount.Cents = 250
	if err := e.Upsert(ctx, tx); err != nil {
		t.Fatalf("Upsert again: %v", err)
	}
	if err := e.Upsert(ctx, core.Transaction{ID: "a", OwnerID: "alice", Kind: core.Income}); err != nil {
		t.Fatalf("Upsert a: %v", err)
	}

	rows := e.Rows()
	if len(rows) != 2 || rows[0].ID != "a" || rows[1].Amount.Cents != 250 {
		t.Fatalf("unexpected rows %+v", rows)
	}

	if err := e.Remove(ctx, "b"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := e.Remove(ctx, "missing"); err != nil {
		t.Fatalf("Remove missing: %v", err)
	}
	if rows := e.Rows(); len(rows) != 1 || rows[0].ID != "a" {
		t.Fatalf("unexpected rows after remove %+v", rows)
	}
}
