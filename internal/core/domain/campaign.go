package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Campaign is a budget-bounded unit of spend under a brand. Its own budgets
// are optional sub-allocations: a zero value defers to the brand cap only.
// StartDate and EndDate, when set, bound the campaign to an inclusive
// calendar-date window; a nil bound is unbounded on that side.
type Campaign struct {
	ID            int64
	BrandID       int64
	Name          string
	DailyBudget   decimal.Decimal
	MonthlyBudget decimal.Decimal
	Active        bool
	StartDate     *time.Time
	EndDate       *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Validate checks the administrative invariants of a campaign.
func (c Campaign) Validate() error {
	if c.Name == "" {
		return &FieldError{Field: "name", Reason: "must not be empty"}
	}
	if !ValidMoney(c.DailyBudget) {
		return &FieldError{Field: "daily_budget", Reason: "must be a non-negative amount with two fractional digits"}
	}
	if !ValidMoney(c.MonthlyBudget) {
		return &FieldError{Field: "monthly_budget", Reason: "must be a non-negative amount with two fractional digits"}
	}
	if c.StartDate != nil && c.EndDate != nil && dateBefore(*c.EndDate, *c.StartDate) {
		return &FieldError{Field: "end_date", Reason: "must not precede start_date"}
	}
	return nil
}

// WithinDateWindow reports whether the given day falls inside the
// campaign's start/end window. Both bounds are inclusive. Only calendar
// dates are compared: the instant's wall-clock date counts, regardless of
// the locations the bounds and the instant are expressed in.
func (c Campaign) WithinDateWindow(day time.Time) bool {
	if c.StartDate != nil && dateBefore(day, *c.StartDate) {
		return false
	}
	if c.EndDate != nil && dateBefore(*c.EndDate, day) {
		return false
	}
	return true
}

// dateBefore reports whether a's calendar date precedes b's, ignoring
// time of day and location.
func dateBefore(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	if ay != by {
		return ay < by
	}
	if am != bm {
		return am < bm
	}
	return ad < bd
}

// DateOf truncates t to its calendar date as a UTC midnight, so two values
// with equal wall-clock dates compare Equal whatever location t carried.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// MonthStart returns the first day of t's calendar month, normalized like
// DateOf. Together with DateOf(t) it bounds the month aggregation period:
// 1st of the month through the evaluation date, inclusive.
func MonthStart(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}
