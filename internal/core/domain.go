package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

const maxCategoryLength = 100

type (
	// Kind is the polarity of a transaction. The sign of an amount is
	// carried here, never by the amount itself.
	Kind string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Transaction struct {
		ID        string
		OwnerID   string
		Kind      Kind
		Category  string // required for expenses, free text
		Amount    Money
		Date      Date
		CreatedAt time.Time
	}
)

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidKind       = errors.New("invalid transaction type")
	ErrInvalidDate       = errors.New("invalid date")
	ErrMissingCategory   = errors.New("category is required for expenses")
	ErrCategoryTooLong   = errors.New("category too long (max 100 characters)")
	ErrMissingOwner      = errors.New("missing owner")
	ErrUnknownCategory   = errors.New("unknown budget category")
	ErrDuplicateCategory = errors.New("duplicate budget category")
	ErrEmptyFullName     = errors.New("full name is required")
	ErrInvalidProfile    = errors.New("invalid profile field")
)

// IsValidation reports whether err is one of the input validation errors
// above, as opposed to a storage or infrastructure failure.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrInvalidAmount, ErrInvalidKind, ErrInvalidDate, ErrMissingCategory,
		ErrCategoryTooLong, ErrUnknownCategory, ErrDuplicateCategory,
		ErrEmptyFullName, ErrInvalidProfile,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// ParseKind accepts "income" or "expense" in any case.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", ErrInvalidKind
	}
	return k, nil
}

func (k Kind) Valid() bool {
	return k == Income || k == Expense
}

func (k Kind) String() string {
	return string(k)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Validate checks a transaction before it is written. Zero amounts are
// accepted; negative ones are not.
func (t Transaction) Validate() error {
	if strings.TrimSpace(t.OwnerID) == "" {
		return ErrMissingOwner
	}
	if !t.Kind.Valid() {
		return ErrInvalidKind
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	category := strings.TrimSpace(t.Category)
	if t.Kind == Expense && category == "" {
		return ErrMissingCategory
	}
	if len(category) > maxCategoryLength {
		return ErrCategoryTooLong
	}
	return nil
}
