package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

// Decision is the engine's verdict on a proposed spend. Denials are normal
// outcomes communicated as data, not errors.
type Decision string

const (
	DecisionAllowed                  Decision = "allowed"
	DecisionDeniedInactive           Decision = "denied_inactive"
	DecisionDeniedOutOfWindow        Decision = "denied_out_of_window"
	DecisionDeniedBrandDailyCap      Decision = "denied_brand_daily_cap"
	DecisionDeniedBrandMonthlyCap    Decision = "denied_brand_monthly_cap"
	DecisionDeniedCampaignDailyCap   Decision = "denied_campaign_daily_cap"
	DecisionDeniedCampaignMonthlyCap Decision = "denied_campaign_monthly_cap"
)

// Allowed reports whether the decision permits the spend.
func (d Decision) Allowed() bool {
	return d == DecisionAllowed
}

// Authorize decides whether the campaign described by snap may spend amount
// at the given instant. Checks run in a fixed order and the first failure
// wins: active flag, date/hour window, brand daily cap, brand monthly cap,
// campaign daily cap, campaign monthly cap. Brand caps dominate campaign
// caps, and day precedes month within each level. A cap is exceeded when
// already-recorded spend plus amount would go strictly above it; a zero cap
// never denies.
//
// The returned Report always carries the four-scope headroom for the
// snapshot regardless of the decision.
//
// Authorize mutates nothing and defines no transaction boundary. Two
// concurrent authorize-then-record sequences can both observe the same
// headroom; the caller must serialize recording per campaign or re-check
// within the same transaction that records the expense.
func Authorize(snap Snapshot, amount decimal.Decimal, at time.Time) (Decision, Report, error) {
	if err := snap.Validate(); err != nil {
		return "", Report{}, err
	}
	if !amount.IsPositive() {
		return "", Report{}, &ValidationError{Field: "amount", Reason: "must be positive"}
	}

	rep := NewReport(snap)

	if !snap.Campaign.Active {
		return DecisionDeniedInactive, rep, nil
	}
	if !WithinWindow(snap.Campaign, snap.Schedule, at) {
		return DecisionDeniedOutOfWindow, rep, nil
	}
	switch {
	case !rep.BrandDaily.Allows(amount):
		return DecisionDeniedBrandDailyCap, rep, nil
	case !rep.BrandMonthly.Allows(amount):
		return DecisionDeniedBrandMonthlyCap, rep, nil
	case !rep.CampaignDaily.Allows(amount):
		return DecisionDeniedCampaignDailyCap, rep, nil
	case !rep.CampaignMonthly.Allows(amount):
		return DecisionDeniedCampaignMonthlyCap, rep, nil
	}
	return DecisionAllowed, rep, nil
}
