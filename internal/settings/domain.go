// Package settings manages per-account POS configuration and the store
// profile printed on bills.
package settings

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/aushadhi-pos/aushadhi-pos/internal/pricing"
)

// Settings is the per-account tax and display configuration. Exactly one row
// exists per account; checkout reads it fresh so that mid-day changes apply
// to the next bill.
type Settings struct {
	AccountID      uuid.UUID       `json:"account_id"`
	Currency       string          `json:"currency"`
	TaxEnabled     bool            `json:"gst_enabled"`
	TaxMode        pricing.TaxMode `json:"gst_type"`
	DefaultTaxRate float64         `json:"default_gst_rate"`
	ReminderNote   string          `json:"whatsapp_custom_note"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Pricing converts the stored row into the engine's settings value.
func (s Settings) Pricing() pricing.Settings {
	return pricing.Settings{
		TaxEnabled:  s.TaxEnabled,
		TaxMode:     s.TaxMode,
		DefaultRate: s.DefaultTaxRate,
		Currency:    s.Currency,
	}
}

// Defaults returns the settings used before an account saves its own.
func Defaults(accountID uuid.UUID) Settings {
	return Settings{
		AccountID:      accountID,
		Currency:       "₹",
		TaxEnabled:     true,
		TaxMode:        pricing.TaxInclusive,
		DefaultTaxRate: 12,
	}
}

// StoreProfile is the account's display identity on printed bills.
type StoreProfile struct {
	AccountID uuid.UUID `json:"account_id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`
	GSTIN     string    `json:"gstin"`
}

// Repository persists settings and store profiles. Upsert and update report
// whether the write degraded to a reduced column set on an older schema.
type Repository interface {
	GetSettings(ctx context.Context, accountID uuid.UUID) (*Settings, error)
	UpsertSettings(ctx context.Context, s Settings) (degraded bool, err error)
	GetProfile(ctx context.Context, accountID uuid.UUID) (*StoreProfile, error)
	UpdateProfile(ctx context.Context, p StoreProfile) (degraded bool, err error)
}
