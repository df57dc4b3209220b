package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Brand is the top-level budget owner. Its daily and monthly budgets are
// shared by all of its campaigns. A zero budget means the scope is unset
// and never limits spend.
type Brand struct {
	ID            int64
	Name          string
	DailyBudget   decimal.Decimal
	MonthlyBudget decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Validate checks the administrative invariants of a brand: a non-empty
// name and non-negative budgets with at most two fractional digits.
func (b Brand) Validate() error {
	if b.Name == "" {
		return &FieldError{Field: "name", Reason: "must not be empty"}
	}
	if !ValidMoney(b.DailyBudget) {
		return &FieldError{Field: "daily_budget", Reason: "must be a non-negative amount with two fractional digits"}
	}
	if !ValidMoney(b.MonthlyBudget) {
		return &FieldError{Field: "monthly_budget", Reason: "must be a non-negative amount with two fractional digits"}
	}
	return nil
}

// FieldError reports a single invalid entity field.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return "invalid " + e.Field + ": " + e.Reason
}

// ValidMoney reports whether d is a valid currency amount for budget and
// expense fields: non-negative and representable with two fractional digits.
func ValidMoney(d decimal.Decimal) bool {
	return !d.IsNegative() && d.Equal(d.Round(2))
}
