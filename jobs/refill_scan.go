package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aushadhi-pos/aushadhi-pos/internal/crm"
	jobmetrics "github.com/aushadhi-pos/aushadhi-pos/internal/jobs"
)

// RefillScanJob walks every account's customer summaries and logs the
// customers whose refill window has opened. The log line is the operational
// feed a pharmacist follows up on; actual message delivery stays manual.
type RefillScanJob struct {
	Pool    *pgxpool.Pool
	CRM     *crm.Service
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewRefillScanJob initialises the refill scan handler.
func NewRefillScanJob(pool *pgxpool.Pool, crmService *crm.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *RefillScanJob {
	return &RefillScanJob{Pool: pool, CRM: crmService, Logger: logger, Metrics: metrics}
}

// Handle executes the refill scan.
func (j *RefillScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.CRM == nil {
		return errors.New("refill scan: handler not configured")
	}
	var payload ScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.Metrics.Track(TaskRefillScan)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	accounts, err := j.accounts(ctx, payload)
	if err != nil {
		resultErr = err
		return err
	}

	total := 0
	for _, accountID := range accounts {
		due, err := j.CRM.DueCustomers(ctx, accountID)
		if err != nil {
			j.Logger.Error("refill scan failed for account",
				slog.String("account_id", accountID.String()),
				slog.Any("error", err))
			resultErr = err
			continue
		}
		for _, c := range due {
			j.Logger.Info("refill due",
				slog.String("account_id", accountID.String()),
				slog.String("customer", c.Name),
				slog.String("phone", crm.NormalizePhone(c.Phone)),
				slog.Time("next_due", *c.NextDue))
		}
		total += len(due)
	}
	j.Metrics.AddReminders(total)
	j.Logger.Info("refill scan complete",
		slog.Int("accounts", len(accounts)),
		slog.Int("due_customers", total))
	return resultErr
}

func (j *RefillScanJob) accounts(ctx context.Context, payload ScanPayload) ([]uuid.UUID, error) {
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
