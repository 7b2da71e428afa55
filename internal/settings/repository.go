package settings

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aushadhi-pos/aushadhi-pos/internal/platform/httpx"
)

type repo struct {
	pool *pgxpool.Pool
}

// NewRepository creates a PostgreSQL backed settings repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repo{pool: pool}
}

func (r *repo) GetSettings(ctx context.Context, accountID uuid.UUID) (*Settings, error) {
	const query = `SELECT account_id, currency, gst_enabled, default_gst_rate,
		COALESCE(gst_type, 'inclusive'), COALESCE(whatsapp_custom_note, ''), updated_at
		FROM settings WHERE account_id = $1`

	var s Settings
	err := r.pool.QueryRow(ctx, query, accountID).Scan(&s.AccountID, &s.Currency,
		&s.TaxEnabled, &s.DefaultTaxRate, &s.TaxMode, &s.ReminderNote, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			def := Defaults(accountID)
			return &def, nil
		}
		return nil, err
	}
	return &s, nil
}

// UpsertSettings writes the full column set and retries without the columns
// older deployments lack. The caller surfaces the degraded flag as a warning.
func (r *repo) UpsertSettings(ctx context.Context, s Settings) (bool, error) {
	const full = `INSERT INTO settings (account_id, currency, gst_enabled, default_gst_rate, gst_type, whatsapp_custom_note, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (account_id) DO UPDATE SET
			currency = EXCLUDED.currency,
			gst_enabled = EXCLUDED.gst_enabled,
			default_gst_rate = EXCLUDED.default_gst_rate,
			gst_type = EXCLUDED.gst_type,
			whatsapp_custom_note = EXCLUDED.whatsapp_custom_note,
			updated_at = now()`

	_, err := r.pool.Exec(ctx, full, s.AccountID, s.Currency, s.TaxEnabled,
		s.DefaultTaxRate, string(s.TaxMode), s.ReminderNote)
	if err == nil {
		return false, nil
	}
	if !isUndefinedColumn(err) {
		return false, err
	}

	const base = `INSERT INTO settings (account_id, currency, gst_enabled, default_gst_rate, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (account_id) DO UPDATE SET
			currency = EXCLUDED.currency,
			gst_enabled = EXCLUDED.gst_enabled,
			default_gst_rate = EXCLUDED.default_gst_rate,
			updated_at = now()`

	if _, err := r.pool.Exec(ctx, base, s.AccountID, s.Currency, s.TaxEnabled, s.DefaultTaxRate); err != nil {
		return false, err
	}
	return true, nil
}

func (r *repo) GetProfile(ctx context.Context, accountID uuid.UUID) (*StoreProfile, error) {
	const query = `SELECT id, name, COALESCE(address, ''), COALESCE(phone, ''), COALESCE(gstin, '')
		FROM accounts WHERE id = $1`

	var p StoreProfile
	err := r.pool.QueryRow(ctx, query, accountID).Scan(&p.AccountID, &p.Name, &p.Address, &p.Phone, &p.GSTIN)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *repo) UpdateProfile(ctx context.Context, p StoreProfile) (bool, error) {
	const full = `UPDATE accounts SET name = $2, address = $3, phone = $4, gstin = $5 WHERE id = $1`
	_, err := r.pool.Exec(ctx, full, p.AccountID, p.Name, p.Address, p.Phone, p.GSTIN)
	if err == nil {
		return false, nil
	}
	if !isUndefinedColumn(err) {
		return false, err
	}

	if _, err := r.pool.Exec(ctx, `UPDATE accounts SET name = $2 WHERE id = $1`, p.AccountID, p.Name); err != nil {
		return false, err
	}
	return true, nil
}

// 42703 is PostgreSQL's undefined_column code.
func isUndefinedColumn(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "42703"
}
