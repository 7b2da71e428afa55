package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aushadhi-pos/aushadhi-pos/internal/platform/db"
	"github.com/aushadhi-pos/aushadhi-pos/internal/platform/httpx"
)

const saleColumns = `s.id, s.account_id, s.bill_id, s.product_id, COALESCE(p.name, ''), s.quantity,
	s.unit_price, s.total_price, COALESCE(s.gst_amount, 0), COALESCE(s.discount_percentage, 0),
	COALESCE(s.payment_mode, ''), COALESCE(s.customer_name, ''), COALESCE(s.customer_phone, ''),
	COALESCE(s.customer_address, ''), s.prescription_months, s.months_taken,
	COALESCE(s.prescription_notes, ''), s.user_id, s.created_at`

const saleFrom = ` FROM sales s LEFT JOIN products p ON p.id = s.product_id`

type repo struct {
	pool *pgxpool.Pool
}

// NewRepository creates a PostgreSQL backed sale line repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repo{pool: pool}
}

func scanLine(row pgx.Row) (*SaleLine, error) {
	var l SaleLine
	err := row.Scan(&l.ID, &l.AccountID, &l.BillID, &l.ProductID, &l.ProductName, &l.Quantity,
		&l.UnitPrice, &l.TotalPrice, &l.TaxAmount, &l.DiscountPercentage, &l.PaymentMode,
		&l.CustomerName, &l.CustomerPhone, &l.CustomerAddress, &l.PrescriptionMonths,
		&l.MonthsTaken, &l.PrescriptionNotes, &l.UserID, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &l, nil
}

// InsertLines writes all lines in one transaction so a bill is never half
// persisted. Stock decrements happen separately, after this commits.
func (r *repo) InsertLines(ctx context.Context, lines []SaleLine) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		const query = `INSERT INTO sales (id, account_id, bill_id, product_id, quantity, unit_price,
			total_price, gst_amount, discount_percentage, payment_mode, customer_name,
			customer_phone, customer_address, prescription_months, months_taken,
			prescription_notes, user_id, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`

		for _, l := range lines {
			if l.ID == uuid.Nil {
				l.ID = uuid.New()
			}
			if l.CreatedAt.IsZero() {
				l.CreatedAt = time.Now()
			}
			_, err := tx.Exec(ctx, query, l.ID, l.AccountID, l.BillID, l.ProductID, l.Quantity,
				l.UnitPrice, l.TotalPrice, l.TaxAmount, l.DiscountPercentage, l.PaymentMode,
				l.CustomerName, l.CustomerPhone, l.CustomerAddress, l.PrescriptionMonths,
				l.MonthsTaken, l.PrescriptionNotes, l.UserID, l.CreatedAt)
			if err != nil {
				return fmt.Errorf("insert sale line: %w", err)
			}
		}
		return nil
	})
}

func (r *repo) List(ctx context.Context, accountID uuid.UUID, filter ListFilter) ([]SaleLine, int, error) {
	query := `SELECT ` + saleColumns + saleFrom + ` WHERE s.account_id = $1`
	countQuery := `SELECT count(*)` + saleFrom + ` WHERE s.account_id = $1`
	args := []interface{}{accountID}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		cond := fmt.Sprintf(" AND (p.name ILIKE $%d OR s.customer_name ILIKE $%d OR s.customer_phone ILIKE $%d)",
			len(args), len(args), len(args))
		query += cond
		countQuery += cond
	}
	if filter.Returns {
		query += " AND s.quantity < 0"
		countQuery += " AND s.quantity < 0"
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = 50
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	args = append(args, perPage, (page-1)*perPage)
	query += fmt.Sprintf(" ORDER BY s.created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	lines, err := r.queryLines(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return lines, total, nil
}

func (r *repo) ListByBill(ctx context.Context, accountID, billID uuid.UUID) ([]SaleLine, error) {
	query := `SELECT ` + saleColumns + saleFrom +
		` WHERE s.account_id = $1 AND s.bill_id = $2 ORDER BY s.created_at`
	return r.queryLines(ctx, query, accountID, billID)
}

func (r *repo) Get(ctx context.Context, accountID, id uuid.UUID) (*SaleLine, error) {
	query := `SELECT ` + saleColumns + saleFrom + ` WHERE s.account_id = $1 AND s.id = $2`
	return scanLine(r.pool.QueryRow(ctx, query, accountID, id))
}

func (r *repo) ListWithCustomerPhone(ctx context.Context, accountID uuid.UUID) ([]SaleLine, error) {
	query := `SELECT ` + saleColumns + saleFrom +
		` WHERE s.account_id = $1 AND s.customer_phone IS NOT NULL AND s.customer_phone <> ''
		ORDER BY s.created_at DESC`
	return r.queryLines(ctx, query, accountID)
}

func (r *repo) TotalsSince(ctx context.Context, accountID uuid.UUID, since time.Time) (float64, int, error) {
	const query = `SELECT COALESCE(sum(total_price), 0), count(*)
		FROM sales WHERE account_id = $1 AND created_at >= $2`

	var total float64
	var count int
	if err := r.pool.QueryRow(ctx, query, accountID, since).Scan(&total, &count); err != nil {
		return 0, 0, err
	}
	return total, count, nil
}

func (r *repo) queryLines(ctx context.Context, query string, args ...interface{}) ([]SaleLine, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []SaleLine
	for rows.Next() {
		line, err := scanLine(rows)
		if err != nil {
			return nil, err
		}
		lines = append(lines, *line)
	}
	return lines, rows.Err()
}
