package core

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

const DefaultCurrency = "USD"

var (
	YearlyIncomeRanges   = []string{"0-20k", "20-40k", "40-60k", "60-80k", "80-100k", "100k+"}
	MonthlyExpenseRanges = []string{"0-1k", "1k-2k", "2k-3k", "3k-4k", "4k-5k", "5k+"}
	FinancialGoals       = []string{"save-emergency", "save-retirement", "pay-debt", "save-house", "save-vacation", "invest", "other"}
)

// Profile holds the onboarding answers for an owner. Range and goal fields
// are codes from the lists above; empty means "not answered".
type Profile struct {
	OwnerID         string
	FullName        string
	YearlyIncome    string
	MonthlyExpenses string
	FinancialGoal   string
	Currency        string
	UpdatedAt       time.Time
}

// Normalize trims fields and applies the default currency.
func (p *Profile) Normalize() {
	p.FullName = strings.TrimSpace(p.FullName)
	p.YearlyIncome = strings.TrimSpace(p.YearlyIncome)
	p.MonthlyExpenses = strings.TrimSpace(p.MonthlyExpenses)
	p.FinancialGoal = strings.TrimSpace(p.FinancialGoal)
	p.Currency = strings.ToUpper(strings.TrimSpace(p.Currency))
	if p.Currency == "" {
		p.Currency = DefaultCurrency
	}
}

func (p Profile) Validate() error {
	if p.OwnerID == "" {
		return ErrMissingOwner
	}
	if p.FullName == "" {
		return ErrEmptyFullName
	}
	if len(p.FullName) > 100 {
		return fmt.Errorf("%w: full_name too long (max 100 characters)", ErrInvalidProfile)
	}
	if p.YearlyIncome != "" && !slices.Contains(YearlyIncomeRanges, p.YearlyIncome) {
		return fmt.Errorf("%w: yearly_income %q", ErrInvalidProfile, p.YearlyIncome)
	}
	if p.MonthlyExpenses != "" && !slices.Contains(MonthlyExpenseRanges, p.MonthlyExpenses) {
		return fmt.Errorf("%w: monthly_expenses %q", ErrInvalidProfile, p.MonthlyExpenses)
	}
	if p.FinancialGoal != "" && !slices.Contains(FinancialGoals, p.FinancialGoal) {
		return fmt.Errorf("%w: financial_goal %q", ErrInvalidProfile, p.FinancialGoal)
	}
	if !isCurrencyCode(p.Currency) {
		return fmt.Errorf("%w: currency %q", ErrInvalidProfile, p.Currency)
	}
	return nil
}

func isCurrencyCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
