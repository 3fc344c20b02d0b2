// Package http provides the JSON REST API.
//
// This file decodes and validates request bodies into service inputs.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"budget/internal/core"
	"budget/internal/services"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

var errMalformedJSON = errors.New("malformed JSON body")

// decodeJSON reads exactly one JSON value from the request body into dst.
// Validation errors raised by field decoders (amounts, dates) are returned
// unchanged so callers can report them.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if core.IsValidation(err) {
			return err
		}
		return fmt.Errorf("%w: %v", errMalformedJSON, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: trailing data", errMalformedJSON)
	}
	return nil
}

// transactionRequest is the body of POST and PUT /api/transactions.
type transactionRequest struct {
	Type     string      `json:"type"`
	Category string      `json:"category"`
	Amount   *core.Money `json:"amount"`
	Date     *core.Date  `json:"date"`
}

func (req transactionRequest) input() (services.TransactionInput, error) {
	kind, err := core.ParseKind(req.Type)
	if err != nil {
		return services.TransactionInput{}, err
	}
	if req.Amount == nil {
		return services.TransactionInput{}, core.ErrInvalidAmount
	}
	if req.Date == nil {
		return services.TransactionInput{}, core.ErrInvalidDate
	}
	return services.TransactionInput{
		Kind:     kind,
		Category: strings.TrimSpace(req.Category),
		Amount:   *req.Amount,
		Date:     *req.Date,
	}, nil
}

// budgetRequest is the body of PUT /api/budget.
type budgetRequest struct {
	Categories []budgetEntryRequest `json:"categories"`
}

type budgetEntryRequest struct {
	ID       int        `json:"id"`
	Budget   core.Money `json:"budget"`
	Selected bool       `json:"selected"`
}

func (req budgetRequest) entries() []core.CategoryBudget {
	out := make([]core.CategoryBudget, 0, len(req.Categories))
	for _, c := range req.Categories {
		out = append(out, core.CategoryBudget{CategoryID: c.ID, Budget: c.Budget, Selected: c.Selected})
	}
	return out
}

// profileRequest is the body of PUT /api/profile.
type profileRequest struct {
	FullName        string `json:"full_name"`
	YearlyIncome    string `json:"yearly_income"`
	MonthlyExpenses string `json:"monthly_expenses"`
	FinancialGoal   string `json:"financial_goal"`
	Currency        string `json:"currency"`
}

func (req profileRequest) profile(ownerID string) core.Profile {
	return core.Profile{
		OwnerID:         ownerID,
		FullName:        req.FullName,
		YearlyIncome:    req.YearlyIncome,
		MonthlyExpenses: req.MonthlyExpenses,
		FinancialGoal:   req.FinancialGoal,
		Currency:        req.Currency,
	}
}
