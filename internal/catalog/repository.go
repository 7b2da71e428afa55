package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aushadhi-pos/aushadhi-pos/internal/platform/db"
	"github.com/aushadhi-pos/aushadhi-pos/internal/platform/httpx"
)

// ErrStockExhausted indicates a decrement would push quantity below zero.
var ErrStockExhausted = errors.New("stock exhausted")

const productColumns = `id, account_id, name, hsn_code, category, batch_number, manufacturer,
	expiry_date, quantity, purchase_price, selling_price, gst, supplier, low_stock_threshold,
	created_at, updated_at`

type repo struct {
	pool *pgxpool.Pool
}

// NewRepository creates a PostgreSQL backed product repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repo{pool: pool}
}

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.AccountID, &p.Name, &p.HSNCode, &p.Category, &p.BatchNumber,
		&p.Manufacturer, &p.ExpiryDate, &p.Quantity, &p.PurchasePrice, &p.SellingPrice,
		&p.TaxRate, &p.Supplier, &p.LowStockThreshold, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *repo) List(ctx context.Context, accountID uuid.UUID, filter ListFilter) ([]Product, int, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE account_id = $1`
	countQuery := `SELECT count(*) FROM products WHERE account_id = $1`
	args := []interface{}{accountID}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		cond := fmt.Sprintf(" AND name ILIKE $%d", len(args))
		query += cond
		countQuery += cond
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		cond := fmt.Sprintf(" AND category = $%d", len(args))
		query += cond
		countQuery += cond
	}
	if filter.InStock {
		query += " AND quantity > 0"
		countQuery += " AND quantity > 0"
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
	query += fmt.Sprintf(" ORDER BY name LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, *p)
	}
	return products, total, rows.Err()
}

func (r *repo) Get(ctx context.Context, accountID, id uuid.UUID) (*Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE account_id = $1 AND id = $2`
	return scanProduct(r.pool.QueryRow(ctx, query, accountID, id))
}

func (r *repo) Create(ctx context.Context, p Product) (*Product, error) {
	query := `INSERT INTO products (id, account_id, name, hsn_code, category, batch_number,
	            manufacturer, expiry_date, quantity, purchase_price, selling_price, gst,
	            supplier, low_stock_threshold, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $15)
	          RETURNING created_at, updated_at`
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := time.Now()
	err := r.pool.QueryRow(ctx, query, p.ID, p.AccountID, p.Name, p.HSNCode, p.Category,
		p.BatchNumber, p.Manufacturer, p.ExpiryDate, p.Quantity, p.PurchasePrice,
		p.SellingPrice, p.TaxRate, p.Supplier, p.LowStockThreshold, now).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, httpx.ErrDuplicate
		}
		return nil, err
	}
	return &p, nil
}

// CreateBatch inserts products from a CSV import inside one transaction.
func (r *repo) CreateBatch(ctx context.Context, products []Product) (int, error) {
	inserted := 0
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		query := `INSERT INTO products (id, account_id, name, hsn_code, category, batch_number,
		            manufacturer, expiry_date, quantity, purchase_price, selling_price, gst,
		            supplier, low_stock_threshold, created_at, updated_at)
		          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $15)`
		now := time.Now()
		for _, p := range products {
			if p.ID == uuid.Nil {
				p.ID = uuid.New()
			}
			if _, err := tx.Exec(ctx, query, p.ID, p.AccountID, p.Name, p.HSNCode, p.Category,
				p.BatchNumber, p.Manufacturer, p.ExpiryDate, p.Quantity, p.PurchasePrice,
				p.SellingPrice, p.TaxRate, p.Supplier, p.LowStockThreshold, now); err != nil {
				return fmt.Errorf("insert product %q: %w", p.Name, err)
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

func (r *repo) Update(ctx context.Context, p Product) error {
	query := `UPDATE products SET name = $1, hsn_code = $2, category = $3, batch_number = $4,
	            manufacturer = $5, expiry_date = $6, quantity = $7, purchase_price = $8,
	            selling_price = $9, gst = $10, supplier = $11, low_stock_threshold = $12,
	            updated_at = $13
	          WHERE account_id = $14 AND id = $15`
	tag, err := r.pool.Exec(ctx, query, p.Name, p.HSNCode, p.Category, p.BatchNumber,
		p.Manufacturer, p.ExpiryDate, p.Quantity, p.PurchasePrice, p.SellingPrice,
		p.TaxRate, p.Supplier, p.LowStockThreshold, time.Now(), p.AccountID, p.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repo) Delete(ctx context.Context, accountID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE account_id = $1 AND id = $2`, accountID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repo) ListLowStock(ctx context.Context, accountID uuid.UUID) ([]Product, error) {
	query := `SELECT ` + productColumns + ` FROM products
	          WHERE account_id = $1 AND quantity <= low_stock_threshold ORDER BY quantity`
	return r.queryProducts(ctx, query, accountID)
}

func (r *repo) ListExpiring(ctx context.Context, accountID uuid.UUID, within time.Duration) ([]Product, error) {
	query := `SELECT ` + productColumns + ` FROM products
	          WHERE account_id = $1 AND expiry_date IS NOT NULL AND expiry_date <= $2
	          ORDER BY expiry_date`
	return r.queryProducts(ctx, query, accountID, time.Now().Add(within))
}

// DecrementStock subtracts qty guarded against going negative; the caller
// treats a zero-row update as exhausted stock.
func (r *repo) DecrementStock(ctx context.Context, accountID, id uuid.UUID, qty int) error {
	query := `UPDATE products SET quantity = quantity - $1, updated_at = now()
	          WHERE account_id = $2 AND id = $3 AND quantity >= $1`
	tag, err := r.pool.Exec(ctx, query, qty, accountID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrStockExhausted
	}
	return nil
}

func (r *repo) IncrementStock(ctx context.Context, accountID, id uuid.UUID, qty int) error {
	query := `UPDATE products SET quantity = quantity + $1, updated_at = now()
	          WHERE account_id = $2 AND id = $3`
	tag, err := r.pool.Exec(ctx, query, qty, accountID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repo) queryProducts(ctx context.Context, query string, args ...interface{}) ([]Product, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}
