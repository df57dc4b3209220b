package port

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"sable-ads/internal/core/domain"
	"sable-ads/internal/core/engine"
)

// BudgetUseCase defines the business operations exposed by the service.
// This interface is the primary port into the application domain.
type BudgetUseCase interface {
	CreateBrand(ctx context.Context, b domain.Brand) (*domain.Brand, error)
	GetBrand(ctx context.Context, id int64) (*domain.Brand, error)
	ListBrands(ctx context.Context) ([]domain.Brand, error)
	UpdateBrand(ctx context.Context, b domain.Brand) (*domain.Brand, error)
	DeleteBrand(ctx context.Context, id int64) error

	CreateCampaign(ctx context.Context, c domain.Campaign) (*domain.Campaign, error)
	GetCampaign(ctx context.Context, id int64) (*domain.Campaign, error)
	ListCampaigns(ctx context.Context, brandID *int64) ([]domain.Campaign, error)
	UpdateCampaign(ctx context.Context, c domain.Campaign) (*domain.Campaign, error)
	DeleteCampaign(ctx context.Context, id int64) error

	PutSchedule(ctx context.Context, s domain.Schedule) (*domain.Schedule, error)
	DeleteSchedule(ctx context.Context, campaignID int64) error

	// Authorize is a dry run: it evaluates the proposed amount against the
	// current snapshot and returns the decision with the four-scope
	// headroom report, recording nothing.
	Authorize(ctx context.Context, campaignID int64, amount decimal.Decimal, at time.Time) (*SpendResult, error)

	// RecordSpend runs authorize-then-record serialized per campaign. The
	// expense is written only on an allowed decision; a denial comes back
	// as a normal result, not an error. Recording is idempotent by Ref.
	RecordSpend(ctx context.Context, req RecordSpendReq) (*SpendResult, error)

	// Headroom returns the four-scope headroom report for the campaign at
	// the given instant.
	Headroom(ctx context.Context, campaignID int64, at time.Time) (*engine.Report, error)

	ListExpenses(ctx context.Context, campaignID int64, from, to time.Time) ([]domain.Expense, error)
}

// RecordSpendReq describes one spend to record. Ref is an optional
// idempotency token; a new one is generated when empty. A zero At means
// "now" in the service's local time.
type RecordSpendReq struct {
	CampaignID int64
	Ref        string
	Amount     decimal.Decimal
	Notes      string
	At         time.Time
}

// SpendResult is the outcome of an authorization or recording attempt. Ref
// and ExpenseID are set only when an expense was recorded.
type SpendResult struct {
	Decision  engine.Decision `json:"decision"`
	Report    engine.Report   `json:"report"`
	Ref       string          `json:"ref,omitempty"`
	ExpenseID int64           `json:"expense_id,omitempty"`
}
