// Package sales records checkouts and returns as immutable sale line rows.
package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SaleLine is one persisted row. A checkout inserts one line per cart item,
// all sharing a bill ID; a return inserts a new line with negated quantity,
// total and tax. Rows are never updated after insert.
type SaleLine struct {
	ID                 uuid.UUID  `json:"id"`
	AccountID          uuid.UUID  `json:"account_id"`
	BillID             *uuid.UUID `json:"bill_id,omitempty"`
	ProductID          uuid.UUID  `json:"product_id"`
	ProductName        string     `json:"product_name,omitempty"`
	Quantity           int        `json:"quantity"`
	UnitPrice          float64    `json:"unit_price"`
	TotalPrice         float64    `json:"total_price"`
	TaxAmount          float64    `json:"gst_amount"`
	DiscountPercentage float64    `json:"discount_percentage"`
	PaymentMode        string     `json:"payment_mode"`
	CustomerName       string     `json:"customer_name"`
	CustomerPhone      string     `json:"customer_phone"`
	CustomerAddress    string     `json:"customer_address"`
	PrescriptionMonths *int       `json:"prescription_months,omitempty"`
	MonthsTaken        *int       `json:"months_taken,omitempty"`
	PrescriptionNotes  string     `json:"prescription_notes"`
	UserID             uuid.UUID  `json:"user_id"`
	CreatedAt          time.Time  `json:"created_at"`
}

// IsReturn reports whether the line is a posted return.
func (l SaleLine) IsReturn() bool {
	return l.Quantity < 0
}

// ListFilter narrows sale listings.
type ListFilter struct {
	Search  string
	Returns bool
	Page    int
	PerPage int
}

// Repository persists sale lines.
type Repository interface {
	InsertLines(ctx context.Context, lines []SaleLine) error
	List(ctx context.Context, accountID uuid.UUID, filter ListFilter) ([]SaleLine, int, error)
	ListByBill(ctx context.Context, accountID, billID uuid.UUID) ([]SaleLine, error)
	Get(ctx context.Context, accountID, id uuid.UUID) (*SaleLine, error)
	ListWithCustomerPhone(ctx context.Context, accountID uuid.UUID) ([]SaleLine, error)
	TotalsSince(ctx context.Context, accountID uuid.UUID, since time.Time) (total float64, count int, err error)
}

// InsufficientStockError rejects a cart mutation that would exceed the
// quantity on hand. The cart stays unmodified and the caller surfaces the
// available quantity to the user.
type InsufficientStockError struct {
	ProductID   uuid.UUID
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d",
		e.ProductName, e.Requested, e.Available)
}
