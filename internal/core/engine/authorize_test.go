package engine

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"sable-ads/internal/core/domain"
)

// baseSnapshot returns an active campaign under a brand with every cap
// unset and nothing spent. Tests tighten individual fields from here.
func baseSnapshot() Snapshot {
	return Snapshot{
		Brand:    domain.Brand{ID: 1, Name: "acme"},
		Campaign: domain.Campaign{ID: 10, BrandID: 1, Name: "spring", Active: true},
	}
}

var noon = time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC)

func TestAuthorizeAllCapsUnset(t *testing.T) {
	// zero-valued budgets never produce a cap denial
	snap := baseSnapshot()
	snap.BrandSpentToday = dec("100000.00")
	snap.CampaignSpentMonth = dec("999999.00")

	d, _, err := Authorize(snap, dec("5000.00"), noon)
	require.NoError(t, err)
	require.Equal(t, DecisionAllowed, d)
}

func TestAuthorizeInactiveFirst(t *testing.T) {
	// inactive wins over out-of-window and over any cap
	snap := baseSnapshot()
	snap.Campaign.Active = false
	start := time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC)
	snap.Campaign.StartDate = &start
	snap.Brand.DailyBudget = dec("1.00")
	snap.BrandSpentToday = dec("100.00")

	d, _, err := Authorize(snap, dec("10.00"), noon)
	require.NoError(t, err)
	require.Equal(t, DecisionDeniedInactive, d)
}

func TestAuthorizeOutOfWindow(t *testing.T) {
	snap := baseSnapshot()
	snap.Schedule = &domain.Schedule{CampaignID: 10, StartHour: 9, EndHour: 17}

	evening := time.Date(2026, time.June, 15, 18, 0, 0, 0, time.UTC)
	d, _, err := Authorize(snap, dec("10.00"), evening)
	require.NoError(t, err)
	require.Equal(t, DecisionDeniedOutOfWindow, d)
}

func TestAuthorizeCheckOrder(t *testing.T) {
	// every cap would deny; the brand daily check must win
	snap := baseSnapshot()
	snap.Brand.DailyBudget = dec("10.00")
	snap.Brand.MonthlyBudget = dec("10.00")
	snap.Campaign.DailyBudget = dec("10.00")
	snap.Campaign.MonthlyBudget = dec("10.00")
	snap.BrandSpentToday = dec("10.00")
	snap.BrandSpentMonth = dec("10.00")
	snap.CampaignSpentToday = dec("10.00")
	snap.CampaignSpentMonth = dec("10.00")

	d, _, err := Authorize(snap, dec("1.00"), noon)
	require.NoError(t, err)
	require.Equal(t, DecisionDeniedBrandDailyCap, d)

	// lift brand daily: brand monthly is next
	snap.Brand.DailyBudget = decimal.Zero
	d, _, _ = Authorize(snap, dec("1.00"), noon)
	require.Equal(t, DecisionDeniedBrandMonthlyCap, d)

	snap.Brand.MonthlyBudget = decimal.Zero
	d, _, _ = Authorize(snap, dec("1.00"), noon)
	require.Equal(t, DecisionDeniedCampaignDailyCap, d)

	snap.Campaign.DailyBudget = decimal.Zero
	d, _, _ = Authorize(snap, dec("1.00"), noon)
	require.Equal(t, DecisionDeniedCampaignMonthlyCap, d)

	snap.Campaign.MonthlyBudget = decimal.Zero
	d, _, _ = Authorize(snap, dec("1.00"), noon)
	require.Equal(t, DecisionAllowed, d)
}

func TestAuthorizeExactFit(t *testing.T) {
	// spending exactly up to the cap is allowed; one cent more is not
	snap := baseSnapshot()
	snap.Brand.DailyBudget = dec("100.00")
	snap.BrandSpentToday = dec("50.00")

	d, _, err := Authorize(snap, dec("50.00"), noon)
	require.NoError(t, err)
	require.Equal(t, DecisionAllowed, d)

	d, _, _ = Authorize(snap, dec("50.01"), noon)
	require.Equal(t, DecisionDeniedBrandDailyCap, d)
}

func TestAuthorizeScenarioBrandDaily(t *testing.T) {
	// brand daily cap 100.00, no campaign caps, fresh day
	snap := baseSnapshot()
	snap.Brand.DailyBudget = dec("100.00")

	d, _, err := Authorize(snap, dec("50.00"), noon)
	require.NoError(t, err)
	require.Equal(t, DecisionAllowed, d)

	// after recording 50.00 the next 60.00 proposal must be denied
	snap.BrandSpentToday = dec("50.00")
	snap.BrandSpentMonth = dec("50.00")
	snap.CampaignSpentToday = dec("50.00")
	snap.CampaignSpentMonth = dec("50.00")
	d, rep, err := Authorize(snap, dec("60.00"), noon)
	require.NoError(t, err)
	require.Equal(t, DecisionDeniedBrandDailyCap, d)
	require.True(t, rep.BrandDaily.Capped.Equal(dec("50.00")))
}

func TestAuthorizeCampaignCapDespiteBrandHeadroom(t *testing.T) {
	snap := baseSnapshot()
	snap.Brand.DailyBudget = dec("1000.00")
	snap.Campaign.DailyBudget = dec("20.00")
	snap.BrandSpentToday = dec("15.00")
	snap.CampaignSpentToday = dec("15.00")

	d, _, err := Authorize(snap, dec("10.00"), noon)
	require.NoError(t, err)
	require.Equal(t, DecisionDeniedCampaignDailyCap, d)
}

func TestAuthorizeMonotonicInAmount(t *testing.T) {
	snap := baseSnapshot()
	snap.Brand.DailyBudget = dec("100.00")
	snap.Campaign.MonthlyBudget = dec("80.00")
	snap.BrandSpentToday = dec("30.00")
	snap.CampaignSpentMonth = dec("25.00")

	prevAllowed := true
	for cents := int64(1); cents <= 12000; cents += 250 {
		amount := decimal.New(cents, -2)
		d, _, err := Authorize(snap, amount, noon)
		require.NoError(t, err)
		if d.Allowed() && !prevAllowed {
			t.Fatalf("amount %s allowed after a smaller amount was denied", amount)
		}
		prevAllowed = d.Allowed()
	}
}

func TestAuthorizeValidation(t *testing.T) {
	snap := baseSnapshot()

	_, _, err := Authorize(snap, decimal.Zero, noon)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	_, _, err = Authorize(snap, dec("-5.00"), noon)
	require.ErrorAs(t, err, &verr)

	bad := baseSnapshot()
	bad.Schedule = &domain.Schedule{CampaignID: 10, StartHour: 17, EndHour: 9}
	_, _, err = Authorize(bad, dec("1.00"), noon)
	require.ErrorAs(t, err, &verr)

	mismatch := baseSnapshot()
	mismatch.Campaign.BrandID = 99
	_, _, err = Authorize(mismatch, dec("1.00"), noon)
	require.ErrorAs(t, err, &verr)

	negative := baseSnapshot()
	negative.BrandSpentToday = dec("-1.00")
	_, _, err = Authorize(negative, dec("1.00"), noon)
	require.ErrorAs(t, err, &verr)
}
