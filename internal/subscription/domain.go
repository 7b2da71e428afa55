// Package subscription gates the POS behind an active paid plan and creates
// payment orders with the upstream provider.
package subscription

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Plan constants. One paid plan exists; the amount is in paise.
const (
	PlanProfessional        = "Professional"
	PlanTypeProfessional    = "professional_monthly"
	ProfessionalAmountPaise = 34900
	periodLength            = 30 * 24 * time.Hour
)

// Subscription is the per-account plan row.
type Subscription struct {
	AccountID          uuid.UUID `json:"account_id"`
	PlanType           string    `json:"plan_type"`
	Status             string    `json:"status"`
	CurrentPeriodStart time.Time `json:"current_period_start"`
	CurrentPeriodEnd   time.Time `json:"current_period_end"`
	RazorpayOrderID    string    `json:"razorpay_order_id"`
	RazorpayPaymentID  string    `json:"razorpay_payment_id"`
}

// Active reports whether the subscription currently grants access.
func (s Subscription) Active(now time.Time) bool {
	return s.Status == "active" && now.Before(s.CurrentPeriodEnd)
}

// Repository persists subscriptions.
type Repository interface {
	GetByAccount(ctx context.Context, accountID uuid.UUID) (*Subscription, error)
	Upsert(ctx context.Context, sub Subscription) error
}

// Order is the provider-side payment order handed to the client checkout.
type Order struct {
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	KeyID    string `json:"key_id"`
}

// Provider abstracts the upstream payment gateway.
type Provider interface {
	CreateOrder(ctx context.Context, amountPaise int64, receipt string) (*Order, error)
}
