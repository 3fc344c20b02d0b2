package storage

import (
	"encoding/json"
	"fmt"

	"budget/internal/core"
)

// budgetEntry is the persisted form of a core.CategoryBudget inside the
// budgets.categories JSON column.
type budgetEntry struct {
	ID          int   `json:"id"`
	BudgetCents int64 `json:"budget_cents"`
	Selected    bool  `json:"selected"`
}

// EncodeBudgetCategories serialises budget entries for a JSON column.
func EncodeBudgetCategories(entries []core.CategoryBudget) ([]byte, error) {
	out := make([]budgetEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, budgetEntry{ID: e.CategoryID, BudgetCents: e.Budget.Cents, Selected: e.Selected})
	}
	b, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encode budget categories: %w", err)
	}
	return b, nil
}

// DecodeBudgetCategories is the inverse of EncodeBudgetCategories.
func DecodeBudgetCategories(data []byte) ([]core.CategoryBudget, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var in []budgetEntry
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("decode budget categories: %w", err)
	}
	out := make([]core.CategoryBudget, 0, len(in))
	for _, e := range in {
		out = append(out, core.CategoryBudget{CategoryID: e.ID, Budget: core.Money{Cents: e.BudgetCents}, Selected: e.Selected})
	}
	return out, nil
}
