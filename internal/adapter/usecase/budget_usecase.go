package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"sable-ads/internal/core/domain"
	"sable-ads/internal/core/engine"
	"sable-ads/internal/core/port"
)

// BudgetUseCase provides the business logic for brand and campaign
// administration, spend authorization and expense recording. It
// orchestrates the domain, the pure engine and the repository to implement
// the BudgetUseCase interface.
type BudgetUseCase struct {
	repo port.BudgetRepository

	// locks serializes the authorize+record pair per campaign. The
	// repository re-checks inside the recording transaction as well, so
	// cap overruns are prevented even across processes; the in-process
	// lock keeps denials deterministic instead of racing to the database.
	locks *keyedMutex

	// now is the clock used when a request carries no explicit instant.
	now func() time.Time
}

// NewBudgetUseCase creates a new usecase on top of the given repository.
func NewBudgetUseCase(repo port.BudgetRepository) *BudgetUseCase {
	return &BudgetUseCase{repo: repo, locks: newKeyedMutex(), now: time.Now}
}

func (u *BudgetUseCase) CreateBrand(ctx context.Context, b domain.Brand) (*domain.Brand, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if err := u.repo.CreateBrand(ctx, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (u *BudgetUseCase) GetBrand(ctx context.Context, id int64) (*domain.Brand, error) {
	return u.repo.GetBrand(ctx, id)
}

func (u *BudgetUseCase) ListBrands(ctx context.Context) ([]domain.Brand, error) {
	return u.repo.ListBrands(ctx)
}

func (u *BudgetUseCase) UpdateBrand(ctx context.Context, b domain.Brand) (*domain.Brand, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if err := u.repo.UpdateBrand(ctx, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// DeleteBrand removes the brand and, by cascade, all of its campaigns with
// their schedules and expenses.
func (u *BudgetUseCase) DeleteBrand(ctx context.Context, id int64) error {
	return u.repo.DeleteBrand(ctx, id)
}

func (u *BudgetUseCase) CreateCampaign(ctx context.Context, c domain.Campaign) (*domain.Campaign, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if _, err := u.repo.GetBrand(ctx, c.BrandID); err != nil {
		return nil, err
	}
	if err := u.repo.CreateCampaign(ctx, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (u *BudgetUseCase) GetCampaign(ctx context.Context, id int64) (*domain.Campaign, error) {
	return u.repo.GetCampaign(ctx, id)
}

func (u *BudgetUseCase) ListCampaigns(ctx context.Context, brandID *int64) ([]domain.Campaign, error) {
	return u.repo.ListCampaigns(ctx, brandID)
}

func (u *BudgetUseCase) UpdateCampaign(ctx context.Context, c domain.Campaign) (*domain.Campaign, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := u.repo.UpdateCampaign(ctx, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (u *BudgetUseCase) DeleteCampaign(ctx context.Context, id int64) error {
	return u.repo.DeleteCampaign(ctx, id)
}

func (u *BudgetUseCase) PutSchedule(ctx context.Context, s domain.Schedule) (*domain.Schedule, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if _, err := u.repo.GetCampaign(ctx, s.CampaignID); err != nil {
		return nil, err
	}
	if err := u.repo.PutSchedule(ctx, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (u *BudgetUseCase) DeleteSchedule(ctx context.Context, campaignID int64) error {
	return u.repo.DeleteSchedule(ctx, campaignID)
}

// Authorize evaluates the proposed spend against the current snapshot
// without recording anything.
func (u *BudgetUseCase) Authorize(ctx context.Context, campaignID int64, amount decimal.Decimal, at time.Time) (*port.SpendResult, error) {
	if at.IsZero() {
		at = u.now()
	}
	snap, err := u.repo.GetSnapshot(ctx, campaignID, at)
	if err != nil {
		return nil, err
	}
	dec, rep, err := engine.Authorize(snap, amount, at)
	if err != nil {
		return nil, err
	}
	return &port.SpendResult{Decision: dec, Report: rep}, nil
}

// RecordSpend authorizes the spend and, when allowed, records the expense.
// The per-campaign lock is held across the pair so two concurrent calls
// cannot both consume the same headroom. A duplicate Ref is treated as
// idempotent: the spend is acknowledged without an additional charge.
func (u *BudgetUseCase) RecordSpend(ctx context.Context, req port.RecordSpendReq) (*port.SpendResult, error) {
	at := req.At
	if at.IsZero() {
		at = u.now()
	}

	unlock := u.locks.Lock(req.CampaignID)
	defer unlock()

	snap, err := u.repo.GetSnapshot(ctx, req.CampaignID, at)
	if err != nil {
		return nil, err
	}
	dec, rep, err := engine.Authorize(snap, req.Amount, at)
	if err != nil {
		return nil, err
	}
	if !dec.Allowed() {
		return &port.SpendResult{Decision: dec, Report: rep}, nil
	}

	ref := req.Ref
	if ref == "" {
		ref = uuid.NewString()
	}
	exp := domain.Expense{
		CampaignID: req.CampaignID,
		Ref:        ref,
		Amount:     req.Amount,
		Date:       domain.DateOf(at),
		Notes:      req.Notes,
	}
	recDec, recRep, err := u.repo.RecordAuthorized(ctx, &exp, at)
	if errors.Is(err, port.ErrDuplicateExpense) {
		// Same ref seen before: acknowledge without charging again.
		return &port.SpendResult{Decision: engine.DecisionAllowed, Report: rep, Ref: ref}, nil
	}
	if err != nil {
		return nil, err
	}
	res := &port.SpendResult{Decision: recDec, Report: recRep}
	if recDec.Allowed() {
		res.Ref = ref
		res.ExpenseID = exp.ID
	}
	return res, nil
}

// Headroom returns the four-scope headroom report for the campaign.
func (u *BudgetUseCase) Headroom(ctx context.Context, campaignID int64, at time.Time) (*engine.Report, error) {
	if at.IsZero() {
		at = u.now()
	}
	snap, err := u.repo.GetSnapshot(ctx, campaignID, at)
	if err != nil {
		return nil, err
	}
	if err = snap.Validate(); err != nil {
		return nil, err
	}
	rep := engine.NewReport(snap)
	return &rep, nil
}

func (u *BudgetUseCase) ListExpenses(ctx context.Context, campaignID int64, from, to time.Time) ([]domain.Expense, error) {
	return u.repo.ListExpenses(ctx, campaignID, from, to)
}
