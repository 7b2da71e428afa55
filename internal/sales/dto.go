package sales

import (
	"github.com/google/uuid"
)

// CheckoutItem is one requested cart entry.
type CheckoutItem struct {
	ProductID       uuid.UUID `json:"product_id" validate:"required"`
	Quantity        int       `json:"quantity" validate:"required,gt=0"`
	PriceOverride   *float64  `json:"price_override,omitempty" validate:"omitempty,gte=0"`
	TaxRateOverride *float64  `json:"gst_override,omitempty" validate:"omitempty,gte=0,lte=100"`
}

// CheckoutRequest carries a full checkout submission.
type CheckoutRequest struct {
	Items              []CheckoutItem `json:"items" validate:"required,min=1,dive"`
	DiscountPercentage float64        `json:"discount_percentage"`
	PaymentMode        string         `json:"payment_mode" validate:"required,oneof=cash card upi credit"`
	CustomerName       string         `json:"customer_name" validate:"max=200"`
	CustomerPhone      string         `json:"customer_phone" validate:"max=20"`
	CustomerAddress    string         `json:"customer_address" validate:"max=500"`
	PrescriptionMonths *int           `json:"prescription_months,omitempty" validate:"omitempty,gte=0,lte=120"`
	MonthsTaken        *int           `json:"months_taken,omitempty" validate:"omitempty,gte=0,lte=120"`
	PrescriptionNotes  string         `json:"prescription_notes" validate:"max=1000"`
}

// CheckoutResult reports the persisted bill and its totals.
type CheckoutResult struct {
	BillID        uuid.UUID  `json:"bill_id"`
	Lines         []SaleLine `json:"lines"`
	Subtotal      float64    `json:"subtotal"`
	TotalDiscount float64    `json:"total_discount"`
	TotalTax      float64    `json:"total_tax"`
	GrandTotal    float64    `json:"grand_total"`
	Warnings      []string   `json:"warnings,omitempty"`
}

// ReturnRequest posts a partial or full return against a sold line.
type ReturnRequest struct {
	SaleLineID uuid.UUID `json:"sale_line_id" validate:"required"`
	Quantity   int       `json:"quantity" validate:"required,gt=0"`
}

// ReturnResult reports the posted return line and the refund amount.
type ReturnResult struct {
	Line         SaleLine `json:"line"`
	RefundAmount float64  `json:"refund_amount"`
}
