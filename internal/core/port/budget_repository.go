package port

import (
	"context"
	"errors"
	"time"

	"sable-ads/internal/core/domain"
	"sable-ads/internal/core/engine"
)

var (
	ErrBrandNotFound    = errors.New("brand not found")
	ErrCampaignNotFound = errors.New("campaign not found")
	ErrScheduleNotFound = errors.New("schedule not found")
	ErrDuplicateBrand   = errors.New("brand name already exists")
	ErrDuplicateExpense = errors.New("expense ref already recorded")
)

// BudgetRepository defines the persistence layer for brands, campaigns,
// schedules and expenses. It is an outbound port in hexagonal architecture.
// Implementations must be concurrency-safe. Deleting a brand cascades to
// its campaigns; deleting a campaign cascades to its schedule and expenses.
// Expenses are append-only and only ever removed by those cascades.
type BudgetRepository interface {
	CreateBrand(ctx context.Context, b *domain.Brand) error
	GetBrand(ctx context.Context, id int64) (*domain.Brand, error)
	ListBrands(ctx context.Context) ([]domain.Brand, error)
	UpdateBrand(ctx context.Context, b *domain.Brand) error
	DeleteBrand(ctx context.Context, id int64) error

	CreateCampaign(ctx context.Context, c *domain.Campaign) error
	GetCampaign(ctx context.Context, id int64) (*domain.Campaign, error)
	// ListCampaigns returns campaigns of one brand, or of all brands when
	// brandID is nil.
	ListCampaigns(ctx context.Context, brandID *int64) ([]domain.Campaign, error)
	UpdateCampaign(ctx context.Context, c *domain.Campaign) error
	DeleteCampaign(ctx context.Context, id int64) error

	// PutSchedule creates or replaces the campaign's single schedule.
	PutSchedule(ctx context.Context, s *domain.Schedule) error
	GetSchedule(ctx context.Context, campaignID int64) (*domain.Schedule, error)
	DeleteSchedule(ctx context.Context, campaignID int64) error

	// GetSnapshot loads the campaign, its brand, its optional schedule and
	// the spend aggregates for the day and calendar month containing at.
	// Aggregates are explicit zeros when no expense rows exist.
	GetSnapshot(ctx context.Context, campaignID int64, at time.Time) (engine.Snapshot, error)

	// RecordAuthorized inserts the expense after re-deriving the snapshot
	// and re-running authorization inside the same transaction, with the
	// campaign row locked. It returns the final decision; the expense is
	// written only when the decision allows it.
	RecordAuthorized(ctx context.Context, exp *domain.Expense, at time.Time) (engine.Decision, engine.Report, error)

	// ListExpenses returns the campaign's expenses with dates in [from, to],
	// newest first.
	ListExpenses(ctx context.Context, campaignID int64, from, to time.Time) ([]domain.Expense, error)
}
