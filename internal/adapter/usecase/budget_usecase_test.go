package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"sable-ads/internal/core/domain"
	"sable-ads/internal/core/engine"
	"sable-ads/internal/core/port"
)

// memRepo is an in-memory BudgetRepository used to exercise the usecase
// without a database. Aggregates are recomputed from the expense slice on
// every snapshot, like the real repository recomputes them per query.
type memRepo struct {
	mu        sync.Mutex
	brands    map[int64]domain.Brand
	campaigns map[int64]domain.Campaign
	schedules map[int64]domain.Schedule
	expenses  []domain.Expense
	nextID    int64
}

func newMemRepo() *memRepo {
	return &memRepo{
		brands:    make(map[int64]domain.Brand),
		campaigns: make(map[int64]domain.Campaign),
		schedules: make(map[int64]domain.Schedule),
	}
}

func (m *memRepo) CreateBrand(_ context.Context, b *domain.Brand) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	b.ID = m.nextID
	m.brands[b.ID] = *b
	return nil
}

func (m *memRepo) GetBrand(_ context.Context, id int64) (*domain.Brand, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.brands[id]
	if !ok {
		return nil, port.ErrBrandNotFound
	}
	return &b, nil
}

func (m *memRepo) ListBrands(_ context.Context) ([]domain.Brand, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Brand, 0, len(m.brands))
	for _, b := range m.brands {
		out = append(out, b)
	}
	return out, nil
}

func (m *memRepo) UpdateBrand(_ context.Context, b *domain.Brand) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.brands[b.ID]; !ok {
		return port.ErrBrandNotFound
	}
	m.brands[b.ID] = *b
	return nil
}

func (m *memRepo) DeleteBrand(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.brands[id]; !ok {
		return port.ErrBrandNotFound
	}
	delete(m.brands, id)
	for cid, c := range m.campaigns {
		if c.BrandID == id {
			m.deleteCampaignLocked(cid)
		}
	}
	return nil
}

func (m *memRepo) CreateCampaign(_ context.Context, c *domain.Campaign) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	c.ID = m.nextID
	m.campaigns[c.ID] = *c
	return nil
}

func (m *memRepo) GetCampaign(_ context.Context, id int64) (*domain.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.campaigns[id]
	if !ok {
		return nil, port.ErrCampaignNotFound
	}
	return &c, nil
}

func (m *memRepo) ListCampaigns(_ context.Context, brandID *int64) ([]domain.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Campaign{}
	for _, c := range m.campaigns {
		if brandID == nil || c.BrandID == *brandID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memRepo) UpdateCampaign(_ context.Context, c *domain.Campaign) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	old, ok := m.campaigns[c.ID]
	if !ok {
		return port.ErrCampaignNotFound
	}
	c.BrandID = old.BrandID
	m.campaigns[c.ID] = *c
	return nil
}

func (m *memRepo) DeleteCampaign(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.campaigns[id]; !ok {
		return port.ErrCampaignNotFound
	}
	m.deleteCampaignLocked(id)
	return nil
}

// deleteCampaignLocked reproduces the schema's cascade delete.
func (m *memRepo) deleteCampaignLocked(id int64) {
	delete(m.campaigns, id)
	delete(m.schedules, id)
	kept := m.expenses[:0]
	for _, e := range m.expenses {
		if e.CampaignID != id {
			kept = append(kept, e)
		}
	}
	m.expenses = kept
}

func (m *memRepo) PutSchedule(_ context.Context, s *domain.Schedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.schedules[s.CampaignID] = *s
	return nil
}

func (m *memRepo) GetSchedule(_ context.Context, campaignID int64) (*domain.Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.schedules[campaignID]
	if !ok {
		return nil, port.ErrScheduleNotFound
	}
	return &s, nil
}

func (m *memRepo) DeleteSchedule(_ context.Context, campaignID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.schedules[campaignID]; !ok {
		return port.ErrScheduleNotFound
	}
	delete(m.schedules, campaignID)
	return nil
}

func (m *memRepo) GetSnapshot(_ context.Context, campaignID int64, at time.Time) (engine.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked(campaignID, at)
}

func (m *memRepo) snapshotLocked(campaignID int64, at time.Time) (engine.Snapshot, error) {
	var snap engine.Snapshot
	c, ok := m.campaigns[campaignID]
	if !ok {
		return snap, port.ErrCampaignNotFound
	}
	snap.Campaign = c
	snap.Brand = m.brands[c.BrandID]
	if s, ok := m.schedules[campaignID]; ok {
		snap.Schedule = &s
	}

	day := domain.DateOf(at)
	monthStart := domain.MonthStart(at)
	zero := decimal.Zero
	snap.BrandSpentToday, snap.BrandSpentMonth = zero, zero
	snap.CampaignSpentToday, snap.CampaignSpentMonth = zero, zero
	for _, e := range m.expenses {
		ec, ok := m.campaigns[e.CampaignID]
		if !ok || ec.BrandID != c.BrandID {
			continue
		}
		inDay := e.Date.Equal(day)
		inMonth := !e.Date.Before(monthStart) && !e.Date.After(day)
		if inDay {
			snap.BrandSpentToday = snap.BrandSpentToday.Add(e.Amount)
		}
		if inMonth {
			snap.BrandSpentMonth = snap.BrandSpentMonth.Add(e.Amount)
		}
		if e.CampaignID == campaignID {
			if inDay {
				snap.CampaignSpentToday = snap.CampaignSpentToday.Add(e.Amount)
			}
			if inMonth {
				snap.CampaignSpentMonth = snap.CampaignSpentMonth.Add(e.Amount)
			}
		}
	}
	return snap, nil
}

func (m *memRepo) RecordAuthorized(_ context.Context, exp *domain.Expense, at time.Time) (engine.Decision, engine.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, err := m.snapshotLocked(exp.CampaignID, at)
	if err != nil {
		return "", engine.Report{}, err
	}
	dec, rep, err := engine.Authorize(snap, exp.Amount, at)
	if err != nil {
		return "", engine.Report{}, err
	}
	if !dec.Allowed() {
		return dec, rep, nil
	}
	for _, e := range m.expenses {
		if e.Ref == exp.Ref {
			return "", rep, port.ErrDuplicateExpense
		}
	}
	m.nextID++
	exp.ID = m.nextID
	m.expenses = append(m.expenses, *exp)
	return dec, rep, nil
}

func (m *memRepo) ListExpenses(_ context.Context, campaignID int64, from, to time.Time) ([]domain.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Expense{}
	for _, e := range m.expenses {
		if e.CampaignID == campaignID && !e.Date.Before(from) && !e.Date.After(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

var testClock = func() time.Time {
	return time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC)
}

func newTestUseCase(t *testing.T) (*BudgetUseCase, *memRepo) {
	t.Helper()
	repo := newMemRepo()
	svc := NewBudgetUseCase(repo)
	svc.now = testClock
	return svc, repo
}

func mustDec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func setup(t *testing.T, svc *BudgetUseCase, brand domain.Brand, campaign domain.Campaign) *domain.Campaign {
	t.Helper()
	ctx := context.Background()
	b, err := svc.CreateBrand(ctx, brand)
	require.NoError(t, err)
	campaign.BrandID = b.ID
	c, err := svc.CreateCampaign(ctx, campaign)
	require.NoError(t, err)
	return c
}

func TestRecordSpendBrandDailyCap(t *testing.T) {
	svc, repo := newTestUseCase(t)
	c := setup(t, svc,
		domain.Brand{Name: "acme", DailyBudget: mustDec("100.00")},
		domain.Campaign{Name: "spring", Active: true})
	ctx := context.Background()

	res, err := svc.RecordSpend(ctx, port.RecordSpendReq{CampaignID: c.ID, Amount: mustDec("50.00")})
	require.NoError(t, err)
	require.Equal(t, engine.DecisionAllowed, res.Decision)
	require.NotZero(t, res.ExpenseID)
	require.NotEmpty(t, res.Ref)

	// headroom is now 50.00, so 60.00 must be denied and not recorded
	res, err = svc.RecordSpend(ctx, port.RecordSpendReq{CampaignID: c.ID, Amount: mustDec("60.00")})
	require.NoError(t, err)
	require.Equal(t, engine.DecisionDeniedBrandDailyCap, res.Decision)
	require.Zero(t, res.ExpenseID)
	require.Len(t, repo.expenses, 1)
}

func TestRecordSpendInactiveCampaign(t *testing.T) {
	svc, repo := newTestUseCase(t)
	c := setup(t, svc,
		domain.Brand{Name: "acme"},
		domain.Campaign{Name: "paused", Active: false})

	res, err := svc.RecordSpend(context.Background(), port.RecordSpendReq{CampaignID: c.ID, Amount: mustDec("1.00")})
	require.NoError(t, err)
	require.Equal(t, engine.DecisionDeniedInactive, res.Decision)
	require.Empty(t, repo.expenses)
}

func TestRecordSpendCampaignCapBeforeBrandHeadroom(t *testing.T) {
	svc, _ := newTestUseCase(t)
	c := setup(t, svc,
		domain.Brand{Name: "acme", DailyBudget: mustDec("1000.00")},
		domain.Campaign{Name: "capped", Active: true, DailyBudget: mustDec("20.00")})
	ctx := context.Background()

	res, err := svc.RecordSpend(ctx, port.RecordSpendReq{CampaignID: c.ID, Amount: mustDec("15.00")})
	require.NoError(t, err)
	require.Equal(t, engine.DecisionAllowed, res.Decision)

	res, err = svc.RecordSpend(ctx, port.RecordSpendReq{CampaignID: c.ID, Amount: mustDec("10.00")})
	require.NoError(t, err)
	require.Equal(t, engine.DecisionDeniedCampaignDailyCap, res.Decision)
}

func TestRecordSpendOutsideSchedule(t *testing.T) {
	svc, repo := newTestUseCase(t)
	c := setup(t, svc,
		domain.Brand{Name: "acme"},
		domain.Campaign{Name: "daytime", Active: true})
	ctx := context.Background()
	_, err := svc.PutSchedule(ctx, domain.Schedule{CampaignID: c.ID, StartHour: 9, EndHour: 17})
	require.NoError(t, err)

	evening := time.Date(2026, time.June, 15, 19, 0, 0, 0, time.UTC)
	res, err := svc.RecordSpend(ctx, port.RecordSpendReq{CampaignID: c.ID, Amount: mustDec("1.00"), At: evening})
	require.NoError(t, err)
	require.Equal(t, engine.DecisionDeniedOutOfWindow, res.Decision)
	require.Empty(t, repo.expenses)
}

func TestRecordSpendIdempotentRef(t *testing.T) {
	svc, repo := newTestUseCase(t)
	c := setup(t, svc,
		domain.Brand{Name: "acme", DailyBudget: mustDec("100.00")},
		domain.Campaign{Name: "spring", Active: true})
	ctx := context.Background()

	req := port.RecordSpendReq{CampaignID: c.ID, Ref: "job-42", Amount: mustDec("30.00")}
	res, err := svc.RecordSpend(ctx, req)
	require.NoError(t, err)
	require.Equal(t, engine.DecisionAllowed, res.Decision)

	// same ref again: acknowledged, not charged twice
	res, err = svc.RecordSpend(ctx, req)
	require.NoError(t, err)
	require.Equal(t, engine.DecisionAllowed, res.Decision)
	require.Len(t, repo.expenses, 1)
}

func TestRecordSpendValidation(t *testing.T) {
	svc, _ := newTestUseCase(t)
	c := setup(t, svc,
		domain.Brand{Name: "acme"},
		domain.Campaign{Name: "spring", Active: true})

	_, err := svc.RecordSpend(context.Background(), port.RecordSpendReq{CampaignID: c.ID, Amount: decimal.Zero})
	var verr *engine.ValidationError
	require.ErrorAs(t, err, &verr)
}

// TestConcurrentRecording ensures concurrent recordings against one brand
// cap never overrun it: with 100.00 of daily headroom, ten concurrent
// 20.00 spends must produce exactly five expenses.
func TestConcurrentRecording(t *testing.T) {
	svc, repo := newTestUseCase(t)
	c := setup(t, svc,
		domain.Brand{Name: "acme", DailyBudget: mustDec("100.00")},
		domain.Campaign{Name: "spring", Active: true})
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	count := 10
	wg.Add(count)
	for i := 0; i < count; i++ {
		go func() {
			defer wg.Done()
			res, err := svc.RecordSpend(ctx, port.RecordSpendReq{CampaignID: c.ID, Amount: mustDec("20.00")})
			if err != nil {
				t.Errorf("RecordSpend error: %v", err)
				return
			}
			if res.Decision.Allowed() {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowed != 5 {
		t.Fatalf("allowed %d spends, want 5", allowed)
	}
	total := decimal.Zero
	for _, e := range repo.expenses {
		total = total.Add(e.Amount)
	}
	if !total.Equal(mustDec("100.00")) {
		t.Fatalf("recorded total %s, want 100.00", total)
	}
}
