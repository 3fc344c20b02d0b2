package core

import (
	"sort"
	"time"
)

type (
	CategoryBudget struct {
		CategoryID int
		Budget     Money
		Selected   bool
	}

	// BudgetDoc is the single budget document an owner keeps. Only
	// selected categories are stored.
	BudgetDoc struct {
		OwnerID     string
		Categories  []CategoryBudget
		TotalBudget Money
		CreatedAt   time.Time
		UpdatedAt   time.Time
	}
)

// NewBudgetDoc validates the submitted entries, drops unselected ones and
// derives the total. Entries come back ordered by category id.
func NewBudgetDoc(ownerID string, entries []CategoryBudget) (BudgetDoc, error) {
	if ownerID == "" {
		return BudgetDoc{}, ErrMissingOwner
	}

	seen := make(map[int]bool, len(entries))
	selected := make([]CategoryBudget, 0, len(entries))
	var total int64
	for _, e := range entries {
		if _, ok := CategoryByID(e.CategoryID); !ok {
			return BudgetDoc{}, ErrUnknownCategory
		}
		if seen[e.CategoryID] {
			return BudgetDoc{}, ErrDuplicateCategory
		}
		seen[e.CategoryID] = true
		if err := e.Budget.Validate(); err != nil {
			return BudgetDoc{}, err
		}
		if !e.Selected {
			continue
		}
		selected = append(selected, e)
		total += e.Budget.Cents
	}

	sort.Slice(selected, func(i, j int) bool {
		return selected[i].CategoryID < selected[j].CategoryID
	})

	return BudgetDoc{
		OwnerID:     ownerID,
		Categories:  selected,
		TotalBudget: Money{Cents: total},
	}, nil
}

// Lookup returns the stored entry for a category id.
func (b BudgetDoc) Lookup(categoryID int) (CategoryBudget, bool) {
	for _, c := range b.Categories {
		if c.CategoryID == categoryID {
			return c, true
		}
	}
	return CategoryBudget{}, false
}
