package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aushadhi-pos/aushadhi-pos/internal/catalog"
	jobmetrics "github.com/aushadhi-pos/aushadhi-pos/internal/jobs"
)

// LowStockScanJob logs products at or below their reorder threshold and the
// ones expiring within the next month, per account.
type LowStockScanJob struct {
	Pool    *pgxpool.Pool
	Catalog catalog.Repository
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewLowStockScanJob initialises the low stock scan handler.
func NewLowStockScanJob(pool *pgxpool.Pool, repo catalog.Repository, logger *slog.Logger, metrics *jobmetrics.Metrics) *LowStockScanJob {
	return &LowStockScanJob{Pool: pool, Catalog: repo, Logger: logger, Metrics: metrics}
}

const expiryHorizon = 30 * 24 * time.Hour

// Handle executes the low stock scan.
func (j *LowStockScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Catalog == nil {
		return errors.New("low stock scan: handler not configured")
	}
	var payload ScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.Metrics.Track(TaskLowStockScan)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	accounts, err := j.accounts(ctx, payload)
	if err != nil {
		resultErr = err
		return err
	}

	for _, accountID := range accounts {
		low, err := j.Catalog.ListLowStock(ctx, accountID)
		if err != nil {
			j.Logger.Error("low stock scan failed for account",
				slog.String("account_id", accountID.String()),
				slog.Any("error", err))
			resultErr = err
			continue
		}
		for _, p := range low {
			j.Logger.Warn("low stock",
				slog.String("account_id", accountID.String()),
				slog.String("product", p.Name),
				slog.Int("quantity", p.Quantity),
				slog.Int("threshold", p.LowStockThreshold))
		}

		expiring, err := j.Catalog.ListExpiring(ctx, accountID, expiryHorizon)
		if err != nil {
			resultErr = err
			continue
		}
		for _, p := range expiring {
			j.Logger.Warn("expiring stock",
				slog.String("account_id", accountID.String()),
				slog.String("product", p.Name),
				slog.Time("expiry", *p.ExpiryDate))
		}
	}
	return resultErr
}

func (j *LowStockScanJob) accounts(ctx context.Context, payload ScanPayload) ([]uuid.UUID, error) {
	if payload.AccountID != uuid.Nil {
		return []uuid.UUID{payload.AccountID}, nil
	}
	rows, err := j.Pool.Query(ctx, `SELECT id FROM accounts`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
