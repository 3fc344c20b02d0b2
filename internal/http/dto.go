package http

import (
	"time"

	"budget/internal/core"
	"budget/internal/ledger"
	"budget/internal/services"
)

// Wire shapes. Transactions, budgets and profiles keep the snake_case row
// layout clients already read; computed views use camelCase.

type transactionJSON struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Type      core.Kind  `json:"type"`
	Category  string     `json:"category"`
	Amount    core.Money `json:"amount"`
	Date      core.Date  `json:"date"`
	CreatedAt time.Time  `json:"created_at"`
}

func toTransactionJSON(t core.Transaction) transactionJSON {
	return transactionJSON{
		ID:        t.ID,
		UserID:    t.OwnerID,
		Type:      t.Kind,
		Category:  t.Category,
		Amount:    t.Amount,
		Date:      t.Date,
		CreatedAt: t.CreatedAt,
	}
}

func toTransactionsJSON(txs []core.Transaction) []transactionJSON {
	out := make([]transactionJSON, 0, len(txs))
	for _, t := range txs {
		out = append(out, toTransactionJSON(t))
	}
	return out
}

type statsJSON struct {
	TotalIncome      core.Money `json:"totalIncome"`
	TotalExpenses    core.Money `json:"totalExpenses"`
	TransactionCount int        `json:"transactionCount"`
	NetBalance       core.Money `json:"netBalance"`
}

func toStatsJSON(s ledger.Summary) statsJSON {
	return statsJSON{
		TotalIncome:      s.TotalIncome,
		TotalExpenses:    s.TotalExpenses,
		TransactionCount: s.Count,
		NetBalance:       s.NetBalance,
	}
}

type sliceJSON struct {
	Category string     `json:"category"`
	Icon     string     `json:"icon"`
	Amount   core.Money `json:"amount"`
	Percent  float64    `json:"percent"`
}

type breakdownJSON struct {
	Total  core.Money  `json:"total"`
	Slices []sliceJSON `json:"slices"`
}

func toBreakdownJSON(b services.Breakdown) breakdownJSON {
	out := breakdownJSON{Total: b.Total, Slices: make([]sliceJSON, 0, len(b.Slices))}
	for _, s := range b.Slices {
		out.Slices = append(out.Slices, sliceJSON{
			Category: s.Category,
			Icon:     core.IconFor(s.Category),
			Amount:   s.Amount,
			Percent:  s.Percent,
		})
	}
	return out
}

type categoryJSON struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

func toCategoryJSON(c core.Category) categoryJSON {
	return categoryJSON{ID: c.ID, Name: c.Name, Icon: c.Icon}
}

type budgetEntryJSON struct {
	categoryJSON
	Budget   core.Money `json:"budget"`
	Selected bool       `json:"selected"`
}

type budgetJSON struct {
	UserID      string            `json:"user_id"`
	Categories  []budgetEntryJSON `json:"categories"`
	TotalBudget core.Money        `json:"total_budget"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

func toBudgetJSON(doc core.BudgetDoc) budgetJSON {
	out := budgetJSON{
		UserID:      doc.OwnerID,
		Categories:  make([]budgetEntryJSON, 0, len(doc.Categories)),
		TotalBudget: doc.TotalBudget,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}
	for _, e := range doc.Categories {
		c, ok := core.CategoryByID(e.CategoryID)
		if !ok {
			continue
		}
		out.Categories = append(out.Categories, budgetEntryJSON{
			categoryJSON: toCategoryJSON(c),
			Budget:       e.Budget,
			Selected:     e.Selected,
		})
	}
	return out
}

type categoryStatusJSON struct {
	categoryJSON
	Budget      core.Money `json:"budget"`
	Spent       core.Money `json:"spent"`
	PercentUsed *float64   `json:"percentUsed"`
	BarWidth    float64    `json:"barWidth"`
	OverBudget  bool       `json:"overBudget"`
}

type totalsJSON struct {
	TotalBudget core.Money           `json:"totalBudget"`
	TotalSpent  core.Money           `json:"totalSpent"`
	Remaining   core.Money           `json:"remaining"`
	PercentUsed *float64             `json:"percentUsed"`
	Categories  []categoryStatusJSON `json:"categories"`
}

type choiceJSON struct {
	categoryJSON
	Budget   core.Money `json:"budget"`
	Spent    core.Money `json:"spent"`
	Selected bool       `json:"selected"`
}

type overviewJSON struct {
	Summary    statsJSON    `json:"summary"`
	Totals     totalsJSON   `json:"totals"`
	Categories []choiceJSON `json:"categories"`
	HasBudget  bool         `json:"hasBudget"`
}

func toOverviewJSON(o services.Overview) overviewJSON {
	totals := totalsJSON{
		TotalBudget: o.Totals.TotalBudget,
		TotalSpent:  o.Totals.TotalSpent,
		Remaining:   o.Totals.Remaining,
		PercentUsed: o.Totals.PercentUsed,
		Categories:  make([]categoryStatusJSON, 0, len(o.Totals.Categories)),
	}
	for _, c := range o.Totals.Categories {
		totals.Categories = append(totals.Categories, categoryStatusJSON{
			categoryJSON: toCategoryJSON(c.Category),
			Budget:       c.Budget,
			Spent:        c.Spent,
			PercentUsed:  c.PercentUsed,
			BarWidth:     c.BarWidth,
			OverBudget:   c.OverBudget,
		})
	}

	choices := make([]choiceJSON, 0, len(o.Categories))
	for _, c := range o.Categories {
		choices = append(choices, choiceJSON{
			categoryJSON: toCategoryJSON(c.Category),
			Budget:       c.Budget,
			Spent:        c.Spent,
			Selected:     c.Selected,
		})
	}

	return overviewJSON{
		Summary:    toStatsJSON(o.Summary),
		Totals:     totals,
		Categories: choices,
		HasBudget:  o.HasBudget,
	}
}

type profileJSON struct {
	UserID          string    `json:"user_id"`
	FullName        string    `json:"full_name"`
	YearlyIncome    string    `json:"yearly_income"`
	MonthlyExpenses string    `json:"monthly_expenses"`
	FinancialGoal   string    `json:"financial_goal"`
	Currency        string    `json:"currency"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func toProfileJSON(p core.Profile) profileJSON {
	return profileJSON{
		UserID:          p.OwnerID,
		FullName:        p.FullName,
		YearlyIncome:    p.YearlyIncome,
		MonthlyExpenses: p.MonthlyExpenses,
		FinancialGoal:   p.FinancialGoal,
		Currency:        p.Currency,
		UpdatedAt:       p.UpdatedAt,
	}
}
