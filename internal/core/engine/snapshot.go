// Package engine implements the budget-consumption evaluation core: given a
// materialized snapshot of a campaign, its brand, its optional schedule and
// the already-aggregated spend totals, it decides whether a proposed spend
// is allowed and how much headroom remains at each budget scope. The
// package performs no I/O and holds no state; all functions are pure and
// safe for concurrent use.
package engine

import (
	"fmt"

	"github.com/shopspring/decimal"

	"sable-ads/internal/core/domain"
)

// Snapshot carries everything the engine needs for one evaluation. The
// spend totals must already be scoped: brand totals aggregate expenses of
// all the brand's campaigns, campaign totals only the one campaign; "today"
// is the evaluation date, "month" runs from the 1st of the evaluation
// month through the evaluation date. A caller with no expense rows must
// supply explicit zeros, never leave the fields unset to some null state.
type Snapshot struct {
	Brand    domain.Brand
	Campaign domain.Campaign
	Schedule *domain.Schedule // nil means no hour restriction

	BrandSpentToday    decimal.Decimal
	BrandSpentMonth    decimal.Decimal
	CampaignSpentToday decimal.Decimal
	CampaignSpentMonth decimal.Decimal
}

// Validate checks the structural invariants of the snapshot. A failure
// here is a caller contract violation, not a spend denial.
func (s Snapshot) Validate() error {
	if s.Campaign.BrandID != s.Brand.ID {
		return &ValidationError{Field: "campaign.brand_id", Reason: "does not match brand id"}
	}
	if err := s.Brand.Validate(); err != nil {
		return &ValidationError{Field: "brand", Reason: err.Error()}
	}
	if err := s.Campaign.Validate(); err != nil {
		return &ValidationError{Field: "campaign", Reason: err.Error()}
	}
	if s.Schedule != nil {
		if err := s.Schedule.Validate(); err != nil {
			return &ValidationError{Field: "schedule", Reason: err.Error()}
		}
	}
	for _, spent := range []struct {
		name  string
		value decimal.Decimal
	}{
		{"brand_spent_today", s.BrandSpentToday},
		{"brand_spent_month", s.BrandSpentMonth},
		{"campaign_spent_today", s.CampaignSpentToday},
		{"campaign_spent_month", s.CampaignSpentMonth},
	} {
		if spent.value.IsNegative() {
			return &ValidationError{Field: spent.name, Reason: "must not be negative"}
		}
	}
	return nil
}

// ValidationError reports malformed engine input. It is always surfaced to
// the caller synchronously and never coerced into a denial decision.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
