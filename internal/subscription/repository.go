package subscription

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aushadhi-pos/aushadhi-pos/internal/platform/httpx"
)

type repo struct {
	pool *pgxpool.Pool
}

// NewRepository creates a PostgreSQL backed subscription repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repo{pool: pool}
}

func (r *repo) GetByAccount(ctx context.Context, accountID uuid.UUID) (*Subscription, error) {
	const query = `SELECT account_id, plan_type, status, current_period_start, current_period_end,
		COALESCE(razorpay_order_id, ''), COALESCE(razorpay_payment_id, '')
		FROM subscriptions WHERE account_id = $1`

	var s Subscription
	err := r.pool.QueryRow(ctx, query, accountID).Scan(&s.AccountID, &s.PlanType, &s.Status,
		&s.CurrentPeriodStart, &s.CurrentPeriodEnd, &s.RazorpayOrderID, &s.RazorpayPaymentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *repo) Upsert(ctx context.Context, sub Subscription) error {
	const query = `INSERT INTO subscriptions (account_id, plan_type, status, current_period_start,
		current_period_end, razorpay_order_id, razorpay_payment_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (account_id) DO UPDATE SET
			plan_type = EXCLUDED.plan_type,
			status = EXCLUDED.status,
			current_period_start = EXCLUDED.current_period_start,
			current_period_end = EXCLUDED.current_period_end,
			razorpay_order_id = EXCLUDED.razorpay_order_id,
			razorpay_payment_id = EXCLUDED.razorpay_payment_id`

	_, err := r.pool.Exec(ctx, query, sub.AccountID, sub.PlanType, sub.Status,
		sub.CurrentPeriodStart, sub.CurrentPeriodEnd, sub.RazorpayOrderID, sub.RazorpayPaymentID)
	return err
}
