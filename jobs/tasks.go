package jobs

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskRefillScan walks customer prescriptions and flags due refills.
	TaskRefillScan = "crm:refill_scan"
	// TaskLowStockScan flags products at or below their threshold.
	TaskLowStockScan = "inventory:low_stock_scan"
)

// ScanPayload scopes a scan to one account, or to every account when empty.
type ScanPayload struct {
	AccountID uuid.UUID `json:"account_id,omitempty"`
}

// NewRefillScanTask constructs a refill scan task.
func NewRefillScanTask(payload ScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRefillScan, data), nil
}

// NewLowStockScanTask constructs a low stock scan task.
func NewLowStockScanTask(payload ScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLowStockScan, data), nil
}
