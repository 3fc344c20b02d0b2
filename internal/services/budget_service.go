package services

import (
	"context"
	"errors"
	"fmt"

	"budget/internal/core"
	"budget/internal/ledger"
	"budget/internal/storage"
)

// Overview combines the owner's budget with their spending.
type Overview struct {
	Summary ledger.Summary
	Totals  ledger.BudgetTotals
	// Categories lists all categories with the owner's selection applied,
	// for editing screens.
	Categories []CategoryChoice
	HasBudget  bool
}

// CategoryChoice is one category as presented in the budget editor.
type CategoryChoice struct {
	Category core.Category
	Budget   core.Money
	Spent    core.Money
	Selected bool
}

type BudgetService struct {
	budgets      storage.BudgetStore
	transactions storage.TransactionStore
}

func NewBudgetService(budgets storage.BudgetStore, transactions storage.TransactionStore) *BudgetService {
	return &BudgetService{budgets: budgets, transactions: transactions}
}

func (s *BudgetService) Get(ctx context.Context, ownerID string) (core.BudgetDoc, error) {
	doc, err := s.budgets.GetBudget(ctx, ownerID)
	if err != nil {
		return core.BudgetDoc{}, fmt.Errorf("get budget: %w", err)
	}
	return doc, nil
}

// Save normalises the submitted entries and replaces the owner's budget.
func (s *BudgetService) Save(ctx context.Context, ownerID string, entries []core.CategoryBudget) (core.BudgetDoc, error) {
	doc, err := core.NewBudgetDoc(ownerID, entries)
	if err != nil {
		return core.BudgetDoc{}, err
	}
	saved, err := s.budgets.UpsertBudget(ctx, doc)
	if err != nil {
		return core.BudgetDoc{}, fmt.Errorf("save budget: %w", err)
	}
	return saved, nil
}

// Overview returns totals for the owner's budget. Without a budget every
// category is reported unselected with a zero budget.
func (s *BudgetService) Overview(ctx context.Context, ownerID string) (Overview, error) {
	doc, err := s.budgets.GetBudget(ctx, ownerID)
	hasBudget := true
	if errors.Is(err, storage.ErrNotFound) {
		doc, hasBudget = core.BudgetDoc{OwnerID: ownerID}, false
	} else if err != nil {
		return Overview{}, fmt.Errorf("get budget: %w", err)
	}

	txs, err := s.transactions.ListTransactions(ctx, ownerID)
	if err != nil {
		return Overview{}, fmt.Errorf("list transactions: %w", err)
	}

	all := core.Categories()
	spent := ledger.SpentByCategory(txs, all)
	choices := make([]CategoryChoice, 0, len(all))
	for _, c := range all {
		entry, selected := doc.Lookup(c.ID)
		choices = append(choices, CategoryChoice{
			Category: c,
			Budget:   entry.Budget,
			Spent:    spent[c.ID],
			Selected: selected && entry.Selected,
		})
	}

	return Overview{
		Summary:    ledger.Summarize(txs),
		Totals:     ledger.Totals(doc, txs),
		Categories: choices,
		HasBudget:  hasBudget,
	}, nil
}
