package engine

import "github.com/shopspring/decimal"

// Headroom describes the remaining budget at one scope. When Unbounded is
// true the scope has no cap configured and the remaining figures are
// zero-valued; callers must branch on Unbounded first and never read a
// zero Capped as "no budget left".
type Headroom struct {
	Cap       decimal.Decimal `json:"cap"`
	Spent     decimal.Decimal `json:"spent"`
	Unbounded bool            `json:"unbounded"`
	Raw       decimal.Decimal `json:"raw_remaining"`    // cap - spent, negative when overspent
	Capped    decimal.Decimal `json:"capped_remaining"` // max(0, raw)
}

// Remaining computes the headroom for one scope. A zero limit means the
// scope is unset and unbounded.
func Remaining(limit, spent decimal.Decimal) Headroom {
	h := Headroom{Cap: limit, Spent: spent}
	if limit.IsZero() {
		h.Unbounded = true
		return h
	}
	h.Raw = limit.Sub(spent)
	if h.Raw.IsNegative() {
		h.Capped = decimal.Zero
	} else {
		h.Capped = h.Raw
	}
	return h
}

// Allows reports whether spending amount on top of the already-recorded
// spend stays within the cap. An unbounded scope allows everything.
func (h Headroom) Allows(amount decimal.Decimal) bool {
	if h.Unbounded {
		return true
	}
	return h.Spent.Add(amount).LessThanOrEqual(h.Cap)
}

// Report collects the headroom at the four budget scopes evaluated per
// decision. Brand scopes aggregate spend across all of the brand's
// campaigns; campaign scopes cover the single campaign.
type Report struct {
	BrandDaily      Headroom `json:"brand_daily"`
	BrandMonthly    Headroom `json:"brand_monthly"`
	CampaignDaily   Headroom `json:"campaign_daily"`
	CampaignMonthly Headroom `json:"campaign_monthly"`
}

// NewReport derives the four-scope headroom report from a snapshot.
func NewReport(s Snapshot) Report {
	return Report{
		BrandDaily:      Remaining(s.Brand.DailyBudget, s.BrandSpentToday),
		BrandMonthly:    Remaining(s.Brand.MonthlyBudget, s.BrandSpentMonth),
		CampaignDaily:   Remaining(s.Campaign.DailyBudget, s.CampaignSpentToday),
		CampaignMonthly: Remaining(s.Campaign.MonthlyBudget, s.CampaignSpentMonth),
	}
}
