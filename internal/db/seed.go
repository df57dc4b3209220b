package db

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Seed inserts demo data: a few brands, campaigns under them with date
// windows and dayparting schedules, and a spread of expenses over the last
// two weeks. Inserts are idempotent via ON CONFLICT DO NOTHING.
func Seed(ctx context.Context, db *pgxpool.Pool) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	for i := 1; i <= 3; i++ {
		name := fmt.Sprintf("Brand %d", i)
		daily := decimal.NewFromInt(1000) // 1000.00 per day across all campaigns
		monthly := decimal.NewFromInt(20000)
		_, err := db.Exec(ctx, `INSERT INTO brands (id, name, daily_budget, monthly_budget, created_at, updated_at)
VALUES ($1, $2, $3, $4, now(), now()) ON CONFLICT DO NOTHING`,
			i, name, daily, monthly)
		if err != nil {
			return err
		}

		// two campaigns per brand, the second with its own sub-budget and
		// a business-hours schedule
		for j := 1; j <= 2; j++ {
			campaignID := (i-1)*2 + j
			start := time.Now().AddDate(0, 0, -14)
			end := time.Now().AddDate(0, 1, 0)
			var campDaily, campMonthly decimal.Decimal
			if j == 2 {
				campDaily = decimal.NewFromInt(200)
				campMonthly = decimal.NewFromInt(3000)
			}
			_, err = db.Exec(ctx, `INSERT INTO campaigns
    (id, brand_id, name, daily_budget, monthly_budget, active, start_date, end_date, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, TRUE, $6, $7, now(), now()) ON CONFLICT DO NOTHING`,
				campaignID, i, fmt.Sprintf("Campaign %d-%d", i, j), campDaily, campMonthly, start, end)
			if err != nil {
				return err
			}
			if j == 2 {
				_, err = db.Exec(ctx, `INSERT INTO schedules (campaign_id, start_hour, end_hour)
VALUES ($1, 9, 17) ON CONFLICT DO NOTHING`, campaignID)
				if err != nil {
					return err
				}
			}

			// expenses spread over the last two weeks
			for d := 0; d < 14; d++ {
				date := time.Now().AddDate(0, 0, -d)
				cents := int64(500 + r.Intn(4000)) // 5.00 .. 44.99
				amount := decimal.New(cents, -2)
				_, err = db.Exec(ctx, `INSERT INTO expenses (campaign_id, ref, amount, date, notes, created_at)
VALUES ($1, $2, $3, $4, $5, now()) ON CONFLICT DO NOTHING`,
					campaignID, uuid.NewString(), amount, date, "seed")
				if err != nil {
					return err
				}
			}
		}
	}

	// bump sequences past the fixed ids used above
	for _, stmt := range []string{
		`SELECT setval('brands_id_seq', (SELECT MAX(id) FROM brands))`,
		`SELECT setval('campaigns_id_seq', (SELECT MAX(id) FROM campaigns))`,
	} {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
