// Package billing reconstructs printable bills from persisted sale lines.
//
// Only unit price, quantity, tax amount and line total survive checkout; the
// tax rate and the inclusive/exclusive flag do not. The renderer back-derives
// an effective rate from the stored amounts and recomputes the discount from
// the stored percentage, so the formulas here must stay compatible with the
// ones used at checkout.
package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aushadhi-pos/aushadhi-pos/internal/pricing"
	"github.com/aushadhi-pos/aushadhi-pos/internal/sales"
	"github.com/aushadhi-pos/aushadhi-pos/internal/settings"
)

// BillLine is one reconstructed receipt row.
type BillLine struct {
	ProductName        string  `json:"product_name"`
	Quantity           int     `json:"quantity"`
	UnitPrice          float64 `json:"unit_price"`
	DiscountPercentage float64 `json:"discount_percentage"`
	DiscountAmount     float64 `json:"discount_amount"`
	TaxRate            float64 `json:"gst_rate"`
	TaxAmount          float64 `json:"gst_amount"`
	LineTotal          float64 `json:"line_total"`
}

// Bill is a fully reconstructed printable document.
type Bill struct {
	BillID            uuid.UUID             `json:"bill_id"`
	Date              time.Time             `json:"date"`
	Store             settings.StoreProfile `json:"store"`
	Currency          string                `json:"currency"`
	CustomerName      string                `json:"customer_name"`
	CustomerPhone     string                `json:"customer_phone"`
	CustomerAddress   string                `json:"customer_address"`
	PrescriptionNotes string                `json:"prescription_notes"`
	PaymentMode       string                `json:"payment_mode"`
	Lines             []BillLine            `json:"lines"`
	Subtotal          float64               `json:"subtotal"`
	TotalDiscount     float64               `json:"total_discount"`
	TotalTax          float64               `json:"total_gst"`
	GrandTotal        float64               `json:"grand_total"`
}

// BillSource loads the persisted lines of one bill.
type BillSource interface {
	Bill(ctx context.Context, accountID, billID uuid.UUID) ([]sales.SaleLine, error)
}

// ProfileSource loads the account's store identity and currency.
type ProfileSource interface {
	Get(ctx context.Context, accountID uuid.UUID) (*settings.Settings, error)
	GetProfile(ctx context.Context, accountID uuid.UUID) (*settings.StoreProfile, error)
}

// Service reconstructs bills.
type Service struct {
	bills    BillSource
	profiles ProfileSource
}

// NewService constructs a billing service.
func NewService(bills BillSource, profiles ProfileSource) *Service {
	return &Service{bills: bills, profiles: profiles}
}

// Reconstruct rebuilds a bill from its stored lines.
func (s *Service) Reconstruct(ctx context.Context, accountID, billID uuid.UUID) (*Bill, error) {
	lines, err := s.bills.Bill(ctx, accountID, billID)
	if err != nil {
		return nil, err
	}
	profile, err := s.profiles.GetProfile(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("load store profile: %w", err)
	}
	current, err := s.profiles.Get(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	first := lines[0]
	bill := &Bill{
		BillID:            billID,
		Date:              first.CreatedAt,
		Store:             *profile,
		Currency:          current.Currency,
		CustomerName:      first.CustomerName,
		CustomerPhone:     first.CustomerPhone,
		CustomerAddress:   first.CustomerAddress,
		PrescriptionNotes: first.PrescriptionNotes,
		PaymentMode:       first.PaymentMode,
	}

	for _, l := range lines {
		var discountAmount float64
		if l.DiscountPercentage > 0 {
			discountAmount = l.UnitPrice * float64(l.Quantity) * l.DiscountPercentage / 100
		}
		bill.Lines = append(bill.Lines, BillLine{
			ProductName:        l.ProductName,
			Quantity:           l.Quantity,
			UnitPrice:          l.UnitPrice,
			DiscountPercentage: l.DiscountPercentage,
			DiscountAmount:     discountAmount,
			TaxRate:            pricing.DeriveTaxRate(l.TaxAmount, l.TotalPrice),
			TaxAmount:          l.TaxAmount,
			LineTotal:          l.TotalPrice,
		})

		bill.Subtotal += l.TotalPrice - l.TaxAmount
		bill.TotalTax += l.TaxAmount
		bill.TotalDiscount += discountAmount
		bill.GrandTotal += l.TotalPrice
	}
	return bill, nil
}
