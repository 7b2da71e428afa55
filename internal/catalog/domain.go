// Package catalog manages the product inventory of a pharmacy account.
package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Product is one stocked item. Quantity never goes negative in steady state;
// the guard lives in the stock mutation queries, not in a database constraint.
type Product struct {
	ID                uuid.UUID  `json:"id"`
	AccountID         uuid.UUID  `json:"account_id"`
	Name              string     `json:"name"`
	HSNCode           string     `json:"hsn_code"`
	Category          string     `json:"category"`
	BatchNumber       string     `json:"batch_number"`
	Manufacturer      string     `json:"manufacturer"`
	ExpiryDate        *time.Time `json:"expiry_date,omitempty"`
	Quantity          int        `json:"quantity"`
	PurchasePrice     float64    `json:"purchase_price"`
	SellingPrice      float64    `json:"selling_price"`
	TaxRate           float64    `json:"gst"`
	Supplier          string     `json:"supplier"`
	LowStockThreshold int        `json:"low_stock_threshold"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// LowStock reports whether the product is at or below its threshold.
func (p Product) LowStock() bool {
	return p.Quantity <= p.LowStockThreshold
}

// Expired reports whether the product is past its expiry date.
func (p Product) Expired(now time.Time) bool {
	return p.ExpiryDate != nil && p.ExpiryDate.Before(now)
}

// ListFilter narrows product listings.
type ListFilter struct {
	Search   string
	Category string
	InStock  bool
	Page     int
	PerPage  int
}

// Repository persists products.
type Repository interface {
	List(ctx context.Context, accountID uuid.UUID, filter ListFilter) ([]Product, int, error)
	Get(ctx context.Context, accountID, id uuid.UUID) (*Product, error)
	Create(ctx context.Context, p Product) (*Product, error)
	CreateBatch(ctx context.Context, products []Product) (int, error)
	Update(ctx context.Context, p Product) error
	Delete(ctx context.Context, accountID, id uuid.UUID) error
	ListLowStock(ctx context.Context, accountID uuid.UUID) ([]Product, error)
	ListExpiring(ctx context.Context, accountID uuid.UUID, within time.Duration) ([]Product, error)
	DecrementStock(ctx context.Context, accountID, id uuid.UUID, qty int) error
	IncrementStock(ctx context.Context, accountID, id uuid.UUID, qty int) error
}
