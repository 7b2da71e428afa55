package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aushadhi-pos/aushadhi-pos/internal/platform/httpx"
)

type repo struct {
	db *pgxpool.Pool
}

// NewRepository creates a PostgreSQL backed user repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repo{db: db}
}

func (r *repo) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT id, account_id, email, password_hash, role, created_at
	          FROM users WHERE lower(email) = lower($1)`
	var u User
	err := r.db.QueryRow(ctx, query, email).Scan(&u.ID, &u.AccountID, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
