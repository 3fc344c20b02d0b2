package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false},
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-01-02")
	if err != nil || d.String() != "2024-01-02" {
		t.Fatalf("ParseDate = %v, %v", d, err)
	}
	d, err = ParseDate("2024-03-04T22:10:00Z")
	if err != nil || d.String() != "2024-03-04" {
		t.Fatalf("ParseDate RFC3339 = %v, %v", d, err)
	}
	for _, bad := range []string{"", "02/01/2024", "2024-13-01"} {
		if _, err := ParseDate(bad); !errors.Is(err, ErrInvalidDate) {
			t.Errorf("ParseDate(%q) err = %v", bad, err)
		}
	}
}

func TestDateJSON(t *testing.T) {
	b, err := json.Marshal(NewDate(2024, 1, 3))
	if err != nil || string(b) != `"2024-01-03"` {
		t.Fatalf("marshal = %s, %v", b, err)
	}
	var d Date
	if err := json.Unmarshal([]byte(`"2024-02-29"`), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if d.Day() != 29 || d.Month() != time.February {
		t.Fatalf("unmarshal got %v", d)
	}
	if err := json.Unmarshal([]byte(`12`), &d); err == nil {
		t.Fatal("expected error for numeric date")
	}
}

func TestParseKind(t *testing.T) {
	for _, in := range []string{"income", "Expense", " INCOME "} {
		if _, err := ParseKind(in); err != nil {
			t.Errorf("ParseKind(%q) = %v", in, err)
		}
	}
	if _, err := ParseKind("transfer"); !errors.Is(err, ErrInvalidKind) {
		t.Errorf("expected ErrInvalidKind, got %v", err)
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		OwnerID:  "user-1",
		Kind:     Expense,
		Category: "Food & Dining",
		Amount:   Money{Cents: 1500},
		Date:     NewDate(2024, 1, 2),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	income := good
	income.Kind = Income
	income.Category = ""
	if err := income.Validate(); err != nil {
		t.Fatalf("income without category should be valid, got %v", err)
	}

	zero := good
	zero.Amount = Money{}
	if err := zero.Validate(); err != nil {
		t.Fatalf("zero amount should be valid, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Transaction)
		want   error
	}{
		{"missing owner", func(tx *Transaction) { tx.OwnerID = "" }, ErrMissingOwner},
		{"bad kind", func(tx *Transaction) { tx.Kind = "transfer" }, ErrInvalidKind},
		{"negative amount", func(tx *Transaction) { tx.Amount = Money{Cents: -1} }, ErrInvalidAmount},
		{"zero date", func(tx *Transaction) { tx.Date = Date{} }, ErrInvalidDate},
		{"expense without category", func(tx *Transaction) { tx.Category = "  " }, ErrMissingCategory},
		{"long category", func(tx *Transaction) { tx.Category = strings.Repeat("x", 101) }, ErrCategoryTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := good
			tt.mutate(&tx)
			if err := tx.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCategories(t *testing.T) {
	cats := Categories()
	if len(cats) != 12 {
		t.Fatalf("expected 12 categories, got %d", len(cats))
	}
	for i, c := range cats {
		if c.ID != i+1 {
			t.Errorf("category %d has id %d", i, c.ID)
		}
		got, ok := CategoryByID(c.ID)
		if !ok || got.Name != c.Name {
			t.Errorf("CategoryByID(%d) = %v, %v", c.ID, got, ok)
		}
	}
	if _, ok := CategoryByName("food & dining"); ok {
		t.Error("label match must be case-sensitive")
	}
	if IconFor("Food & Dining") != "🍽️" {
		t.Error("wrong icon for Food & Dining")
	}
	if IconFor("Groceries") != "📝" {
		t.Error("free-text label should use the Other icon")
	}
	if _, ok := CategoryByID(13); ok {
		t.Error("id 13 should not exist")
	}
}

func TestNewBudgetDoc(t *testing.T) {
	doc, err := NewBudgetDoc("user-1", []CategoryBudget{
		{CategoryID: 2, Budget: Money{Cents: 30000}, Selected: true},
		{CategoryID: 1, Budget: Money{Cents: 120000}, Selected: true},
		{CategoryID: 5, Budget: Money{Cents: 5000}, Selected: false},
	})
	if err != nil {
		t.Fatalf("NewBudgetDoc: %v", err)
	}
	if len(doc.Categories) != 2 {
		t.Fatalf("expected 2 selected categories, got %d", len(doc.Categories))
	}
	if doc.Categories[0].CategoryID != 1 {
		t.Errorf("categories not sorted: %+v", doc.Categories)
	}
	if doc.TotalBudget.Cents != 150000 {
		t.Errorf("TotalBudget = %d, want 150000", doc.TotalBudget.Cents)
	}
	if _, ok := doc.Lookup(5); ok {
		t.Error("unselected category should be dropped")
	}

	bad := []struct {
		name    string
		entries []CategoryBudget
		want    error
	}{
		{"unknown id", []CategoryBudget{{CategoryID: 99, Selected: true}}, ErrUnknownCategory},
		{"duplicate", []CategoryBudget{{CategoryID: 1}, {CategoryID: 1}}, ErrDuplicateCategory},
		{"negative", []CategoryBudget{{CategoryID: 1, Budget: Money{Cents: -1}}}, ErrInvalidAmount},
	}
	for _, tt := range bad {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewBudgetDoc("user-1", tt.entries); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
	if _, err := NewBudgetDoc("", nil); !errors.Is(err, ErrMissingOwner) {
		t.Errorf("missing owner err = %v", err)
	}
}

func TestProfileValidate(t *testing.T) {
	p := Profile{OwnerID: "u", FullName: " Ada ", YearlyIncome: "40-60k"}
	p.Normalize()
	if err := p.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if p.Currency != DefaultCurrency || p.FullName != "Ada" {
		t.Fatalf("Normalize did not apply: %+v", p)
	}

	bads := []Profile{
		{OwnerID: "u", FullName: "", Currency: "USD"},
		{OwnerID: "u", FullName: "A", Currency: "US"},
		{OwnerID: "u", FullName: "A", Currency: "USD", YearlyIncome: "lots"},
		{OwnerID: "u", FullName: "A", Currency: "USD", FinancialGoal: "yacht"},
		{OwnerID: "", FullName: "A", Currency: "USD"},
	}
	for i, b := range bads {
		if err := b.Validate(); err == nil {
			t.Errorf("case %d expected error", i)
		}
	}
}

func TestIsValidation(t *testing.T) {
	if !IsValidation(fmt.Errorf("create: %w", ErrInvalidAmount)) {
		t.Error("wrapped ErrInvalidAmount should be a validation error")
	}
	if !IsValidation(fmt.Errorf("%w: currency", ErrInvalidProfile)) {
		t.Error("ErrInvalidProfile should be a validation error")
	}
	if IsValidation(ErrMissingOwner) {
		t.Error("ErrMissingOwner is an internal error")
	}
	if IsValidation(errors.New("disk full")) {
		t.Error("arbitrary errors are not validation errors")
	}
}
