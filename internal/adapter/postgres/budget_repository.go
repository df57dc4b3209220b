package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"sable-ads/internal/core/domain"
	"sable-ads/internal/core/engine"
	"sable-ads/internal/core/port"
)

// BudgetRepository implements port.BudgetRepository using pgxpool for
// PostgreSQL. Cascade deletes are enforced by the schema's foreign keys.
type BudgetRepository struct {
	pool *pgxpool.Pool
}

// NewBudgetRepository returns a new repository instance.
func NewBudgetRepository(pool *pgxpool.Pool) *BudgetRepository {
	return &BudgetRepository{pool: pool}
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx so the snapshot
// queries can run inside the recording transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const (
	uniqueViolation      = "23505"
	serializationFailure = "40001"
)

func pgErrCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

func isUniqueViolation(err error) bool {
	return pgErrCode(err, uniqueViolation)
}

func isSerializationFailure(err error) bool {
	return pgErrCode(err, serializationFailure)
}

func (r *BudgetRepository) CreateBrand(ctx context.Context, b *domain.Brand) error {
	err := r.pool.QueryRow(ctx, `INSERT INTO brands (name, daily_budget, monthly_budget, created_at, updated_at)
VALUES ($1, $2, $3, now(), now()) RETURNING id, created_at, updated_at`,
		b.Name, b.DailyBudget, b.MonthlyBudget).
		Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if isUniqueViolation(err) {
		return port.ErrDuplicateBrand
	}
	return err
}

func (r *BudgetRepository) GetBrand(ctx context.Context, id int64) (*domain.Brand, error) {
	var b domain.Brand
	err := r.pool.QueryRow(ctx, `SELECT id, name, daily_budget, monthly_budget, created_at, updated_at
FROM brands WHERE id = $1`, id).
		Scan(&b.ID, &b.Name, &b.DailyBudget, &b.MonthlyBudget, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, port.ErrBrandNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BudgetRepository) ListBrands(ctx context.Context) ([]domain.Brand, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, daily_budget, monthly_budget, created_at, updated_at
FROM brands ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Brand, error) {
		var b domain.Brand
		err := row.Scan(&b.ID, &b.Name, &b.DailyBudget, &b.MonthlyBudget, &b.CreatedAt, &b.UpdatedAt)
		return b, err
	})
}

func (r *BudgetRepository) UpdateBrand(ctx context.Context, b *domain.Brand) error {
	err := r.pool.QueryRow(ctx, `UPDATE brands SET name = $2, daily_budget = $3, monthly_budget = $4, updated_at = now()
WHERE id = $1 RETURNING created_at, updated_at`,
		b.ID, b.Name, b.DailyBudget, b.MonthlyBudget).
		Scan(&b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return port.ErrBrandNotFound
	}
	if isUniqueViolation(err) {
		return port.ErrDuplicateBrand
	}
	return err
}

func (r *BudgetRepository) DeleteBrand(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM brands WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return port.ErrBrandNotFound
	}
	return nil
}

func (r *BudgetRepository) CreateCampaign(ctx context.Context, c *domain.Campaign) error {
	err := r.pool.QueryRow(ctx, `INSERT INTO campaigns
    (brand_id, name, daily_budget, monthly_budget, active, start_date, end_date, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now()) RETURNING id, created_at, updated_at`,
		c.BrandID, c.Name, c.DailyBudget, c.MonthlyBudget, c.Active, c.StartDate, c.EndDate).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	return err
}

const campaignColumns = `id, brand_id, name, daily_budget, monthly_budget, active, start_date, end_date, created_at, updated_at`

func scanCampaign(row pgx.Row, c *domain.Campaign) error {
	return row.Scan(&c.ID, &c.BrandID, &c.Name, &c.DailyBudget, &c.MonthlyBudget,
		&c.Active, &c.StartDate, &c.EndDate, &c.CreatedAt, &c.UpdatedAt)
}

func (r *BudgetRepository) GetCampaign(ctx context.Context, id int64) (*domain.Campaign, error) {
	return getCampaign(ctx, r.pool, id)
}

func getCampaign(ctx context.Context, q querier, id int64) (*domain.Campaign, error) {
	var c domain.Campaign
	err := scanCampaign(q.QueryRow(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE id = $1`, id), &c)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, port.ErrCampaignNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *BudgetRepository) ListCampaigns(ctx context.Context, brandID *int64) ([]domain.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns`
	args := []any{}
	if brandID != nil {
		query += ` WHERE brand_id = $1`
		args = append(args, *brandID)
	}
	query += ` ORDER BY id`
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Campaign, error) {
		var c domain.Campaign
		err := scanCampaign(row, &c)
		return c, err
	})
}

func (r *BudgetRepository) UpdateCampaign(ctx context.Context, c *domain.Campaign) error {
	err := r.pool.QueryRow(ctx, `UPDATE campaigns SET name = $2, daily_budget = $3, monthly_budget = $4,
    active = $5, start_date = $6, end_date = $7, updated_at = now()
WHERE id = $1 RETURNING brand_id, created_at, updated_at`,
		c.ID, c.Name, c.DailyBudget, c.MonthlyBudget, c.Active, c.StartDate, c.EndDate).
		Scan(&c.BrandID, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return port.ErrCampaignNotFound
	}
	return err
}

func (r *BudgetRepository) DeleteCampaign(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM campaigns WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return port.ErrCampaignNotFound
	}
	return nil
}

func (r *BudgetRepository) PutSchedule(ctx context.Context, s *domain.Schedule) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO schedules (campaign_id, start_hour, end_hour)
VALUES ($1, $2, $3)
ON CONFLICT (campaign_id) DO UPDATE SET start_hour = EXCLUDED.start_hour, end_hour = EXCLUDED.end_hour`,
		s.CampaignID, s.StartHour, s.EndHour)
	return err
}

func (r *BudgetRepository) GetSchedule(ctx context.Context, campaignID int64) (*domain.Schedule, error) {
	s, err := getSchedule(ctx, r.pool, campaignID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, port.ErrScheduleNotFound
	}
	return s, nil
}

// getSchedule returns nil without error when the campaign has no schedule.
func getSchedule(ctx context.Context, q querier, campaignID int64) (*domain.Schedule, error) {
	var s domain.Schedule
	err := q.QueryRow(ctx, `SELECT campaign_id, start_hour, end_hour FROM schedules WHERE campaign_id = $1`, campaignID).
		Scan(&s.CampaignID, &s.StartHour, &s.EndHour)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *BudgetRepository) DeleteSchedule(ctx context.Context, campaignID int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM schedules WHERE campaign_id = $1`, campaignID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return port.ErrScheduleNotFound
	}
	return nil
}

// GetSnapshot loads everything the engine needs for one evaluation.
func (r *BudgetRepository) GetSnapshot(ctx context.Context, campaignID int64, at time.Time) (engine.Snapshot, error) {
	return getSnapshot(ctx, r.pool, campaignID, at)
}

func getSnapshot(ctx context.Context, q querier, campaignID int64, at time.Time) (engine.Snapshot, error) {
	var snap engine.Snapshot

	c, err := getCampaign(ctx, q, campaignID)
	if err != nil {
		return snap, err
	}
	snap.Campaign = *c

	err = q.QueryRow(ctx, `SELECT id, name, daily_budget, monthly_budget, created_at, updated_at
FROM brands WHERE id = $1`, c.BrandID).
		Scan(&snap.Brand.ID, &snap.Brand.Name, &snap.Brand.DailyBudget, &snap.Brand.MonthlyBudget,
			&snap.Brand.CreatedAt, &snap.Brand.UpdatedAt)
	if err != nil {
		return snap, err
	}

	snap.Schedule, err = getSchedule(ctx, q, campaignID)
	if err != nil {
		return snap, err
	}

	day := domain.DateOf(at)
	monthStart := domain.MonthStart(at)

	// Aggregation must yield explicit zeros when no expense rows exist.
	err = q.QueryRow(ctx, `SELECT
    COALESCE(SUM(e.amount) FILTER (WHERE e.date = $2), 0),
    COALESCE(SUM(e.amount) FILTER (WHERE e.date >= $3 AND e.date <= $2), 0)
FROM expenses e
JOIN campaigns c ON e.campaign_id = c.id
WHERE c.brand_id = $1`, c.BrandID, day, monthStart).
		Scan(&snap.BrandSpentToday, &snap.BrandSpentMonth)
	if err != nil {
		return snap, err
	}

	err = q.QueryRow(ctx, `SELECT
    COALESCE(SUM(amount) FILTER (WHERE date = $2), 0),
    COALESCE(SUM(amount) FILTER (WHERE date >= $3 AND date <= $2), 0)
FROM expenses WHERE campaign_id = $1`, campaignID, day, monthStart).
		Scan(&snap.CampaignSpentToday, &snap.CampaignSpentMonth)
	if err != nil {
		return snap, err
	}

	return snap, nil
}

// recordRetries bounds re-runs of the recording transaction after a
// serialization failure. Concurrent recordings against sibling campaigns
// of one brand can conflict under SSI; the retried attempt then sees the
// committed aggregates and resolves to a denial or a successful insert.
const recordRetries = 2

// RecordAuthorized re-runs authorization inside a serializable transaction
// with the campaign row locked, and inserts the expense only on an allowed
// decision. This is the compensating re-check required of any recorder that
// is not already serialized with the authorization it follows.
func (r *BudgetRepository) RecordAuthorized(ctx context.Context, exp *domain.Expense, at time.Time) (engine.Decision, engine.Report, error) {
	for attempt := 0; ; attempt++ {
		dec, rep, err := r.recordAuthorizedOnce(ctx, exp, at)
		if isSerializationFailure(err) && attempt < recordRetries {
			continue
		}
		return dec, rep, err
	}
}

func (r *BudgetRepository) recordAuthorizedOnce(ctx context.Context, exp *domain.Expense, at time.Time) (engine.Decision, engine.Report, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return "", engine.Report{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			_ = tx.Commit(ctx)
		}
	}()

	// lock campaign
	var lockedID int64
	err = tx.QueryRow(ctx, `SELECT id FROM campaigns WHERE id = $1 FOR UPDATE`, exp.CampaignID).Scan(&lockedID)
	if errors.Is(err, pgx.ErrNoRows) {
		err = port.ErrCampaignNotFound
		return "", engine.Report{}, err
	}
	if err != nil {
		return "", engine.Report{}, err
	}

	snap, err := getSnapshot(ctx, tx, exp.CampaignID, at)
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

	exp.CreatedAt = time.Now().UTC()
	err = tx.QueryRow(ctx, `INSERT INTO expenses (campaign_id, ref, amount, date, notes, created_at)
VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		exp.CampaignID, exp.Ref, exp.Amount, exp.Date, exp.Notes, exp.CreatedAt).
		Scan(&exp.ID)
	if isUniqueViolation(err) {
		err = port.ErrDuplicateExpense
		return "", rep, err
	}
	if err != nil {
		return "", engine.Report{}, err
	}
	return dec, rep, nil
}

func (r *BudgetRepository) ListExpenses(ctx context.Context, campaignID int64, from, to time.Time) ([]domain.Expense, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, campaign_id, ref, amount, date, COALESCE(notes, ''), created_at
FROM expenses WHERE campaign_id = $1 AND date >= $2 AND date <= $3 ORDER BY date DESC, id DESC`,
		campaignID, domain.DateOf(from), domain.DateOf(to))
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Expense, error) {
		var e domain.Expense
		err := row.Scan(&e.ID, &e.CampaignID, &e.Ref, &e.Amount, &e.Date, &e.Notes, &e.CreatedAt)
		return e, err
	})
}
