package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense records money spent against a campaign on a calendar date. Rows
// are append-only: nothing in this service updates or deletes an expense
// once recorded, except the cascade when its campaign is deleted. Ref is a
// caller-supplied or generated token making recording idempotent.
type Expense struct {
	ID         int64
	CampaignID int64
	Ref        string
	Amount     decimal.Decimal
	Date       time.Time
	Notes      string
	CreatedAt  time.Time
}

// Validate checks that the expense is recordable: positive amount with two
// fractional digits and a non-zero date.
func (e Expense) Validate() error {
	if !e.Amount.IsPositive() || !e.Amount.Equal(e.Amount.Round(2)) {
		return &FieldError{Field: "amount", Reason: "must be a positive amount with two fractional digits"}
	}
	if e.Date.IsZero() {
		return &FieldError{Field: "date", Reason: "must be set"}
	}
	return nil
}
