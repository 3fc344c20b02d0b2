// Package ledger derives totals and per-category figures from a set of
// transactions and a budget document.
//
// Every function here is pure: results depend only on the arguments and
// are recomputed on each read.
package ledger

import (
	"sort"

	"budget/internal/core"
)

// Summary holds the income/expense aggregate over a transaction set.
type Summary struct {
	TotalIncome   core.Money
	TotalExpenses core.Money
	NetBalance    core.Money
	Count         int
}

// Slice is one entry of a proportional expense breakdown.
type Slice struct {
	Category string
	Amount   core.Money
	Percent  float64
}

// CategoryStatus is the spent-vs-budget view of one selected category.
type CategoryStatus struct {
	Category    core.Category
	Budget      core.Money
	Spent       core.Money
	PercentUsed *float64 // nil when the budget is zero
	BarWidth    float64
	OverBudget  bool
}

// BudgetTotals aggregates a budget document against actual spending.
type BudgetTotals struct {
	TotalBudget core.Money
	TotalSpent  core.Money
	Remaining   core.Money
	PercentUsed *float64
	Categories  []CategoryStatus
}

// amountOf treats negative cents as malformed and counts them as zero.
func amountOf(t core.Transaction) int64 {
	if t.Amount.Cents < 0 {
		return 0
	}
	return t.Amount.Cents
}

// Summarize totals income and expenses. The net balance is not clamped.
// Transactions whose kind is neither income nor expense are ignored.
func Summarize(txs []core.Transaction) Summary {
	var income, expenses int64
	for _, t := range txs {
		switch t.Kind {
		case core.Income:
			income += amountOf(t)
		case core.Expense:
			expenses += amountOf(t)
		}
	}
	return Summary{
		TotalIncome:   core.Money{Cents: income},
		TotalExpenses: core.Money{Cents: expenses},
		NetBalance:    core.Money{Cents: income - expenses},
		Count:         len(txs),
	}
}

// SpentByCategory sums expenses per category id, matching transaction
// labels against category names exactly. Every requested category gets an
// entry; free-text labels outside the set are not attributed anywhere.
func SpentByCategory(txs []core.Transaction, categories []core.Category) map[int]core.Money {
	byLabel := make(map[string]int64)
	for _, t := range txs {
		if t.Kind != core.Expense {
			continue
		}
		byLabel[t.Category] += amountOf(t)
	}

	out := make(map[int]core.Money, len(categories))
	for _, c := range categories {
		out[c.ID] = core.Money{Cents: byLabel[c.Name]}
	}
	return out
}

// PercentUsed returns spent as a percentage of budget, unclamped. The
// second result is false when budget is zero and the ratio is undefined.
func PercentUsed(spent, budget core.Money) (float64, bool) {
	if budget.Cents == 0 {
		return 0, false
	}
	return float64(spent.Cents) / float64(budget.Cents) * 100, true
}

// BarWidth is PercentUsed clamped to [0, 100] for progress bars.
func BarWidth(spent, budget core.Money) float64 {
	p, ok := PercentUsed(spent, budget)
	if !ok || p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// GroupByCategory builds the expense breakdown used for pie charts,
// largest slice first.
func GroupByCategory(txs []core.Transaction) []Slice {
	totals := make(map[string]int64)
	var sum int64
	for _, t := range txs {
		if t.Kind != core.Expense {
			continue
		}
		a := amountOf(t)
		totals[t.Category] += a
		sum += a
	}

	slices := make([]Slice, 0, len(totals))
	for label, cents := range totals {
		s := Slice{Category: label, Amount: core.Money{Cents: cents}}
		if sum > 0 {
			s.Percent = float64(cents) / float64(sum) * 100
		}
		slices = append(slices, s)
	}
	sort.Slice(slices, func(i, j int) bool {
		if slices[i].Amount.Cents != slices[j].Amount.Cents {
			return slices[i].Amount.Cents > slices[j].Amount.Cents
		}
		return slices[i].Category < slices[j].Category
	})
	return slices
}

// Totals compares the selected categories of doc with spending in txs.
func Totals(doc core.BudgetDoc, txs []core.Transaction) BudgetTotals {
	selected := make([]core.Category, 0, len(doc.Categories))
	for _, cb := range doc.Categories {
		if !cb.Selected {
			continue
		}
		if c, ok := core.CategoryByID(cb.CategoryID); ok {
			selected = append(selected, c)
		}
	}
	spent := SpentByCategory(txs, selected)

	var out BudgetTotals
	var totalBudget, totalSpent int64
	for _, c := range selected {
		cb, _ := doc.Lookup(c.ID)
		s := spent[c.ID]
		status := CategoryStatus{
			Category:   c,
			Budget:     cb.Budget,
			Spent:      s,
			BarWidth:   BarWidth(s, cb.Budget),
			OverBudget: s.Cents > cb.Budget.Cents,
		}
		if p, ok := PercentUsed(s, cb.Budget); ok {
			status.PercentUsed = &p
		}
		out.Categories = append(out.Categories, status)
		totalBudget += cb.Budget.Cents
		totalSpent += s.Cents
	}

	out.TotalBudget = core.Money{Cents: totalBudget}
	out.TotalSpent = core.Money{Cents: totalSpent}
	out.Remaining = core.Money{Cents: totalBudget - totalSpent}
	if p, ok := PercentUsed(out.TotalSpent, out.TotalBudget); ok {
		out.PercentUsed = &p
	}
	return out
}
