package guestuser

import (
	"context"
	"errors"

	"storefront-engine/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const guestColumns = `id::text, name, email, phone, convert_token, token_expiry, account_created, created_at`

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func scanGuest(row pgx.Row) (*domain.GuestUser, error) {
	var g domain.GuestUser
	err := row.Scan(&g.ID, &g.Name, &g.Email, &g.Phone, &g.ConvertToken, &g.TokenExpiry, &g.AccountCreated, &g.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *postgresRepo) FindUnconverted(ctx context.Context, email, phone string) (*domain.GuestUser, error) {
	const q = `
SELECT ` + guestColumns + `
FROM guest_users
WHERE NOT account_created
  AND (($1 <> '' AND email = $1) OR ($2 <> '' AND phone = $2))
ORDER BY created_at ASC
LIMIT 1
`
	g, err := scanGuest(r.pool.QueryRow(ctx, q, email, phone))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return g, nil
}

func (r *postgresRepo) GetByEmail(ctx context.Context, email string) (*domain.GuestUser, error) {
	const q = `
SELECT ` + guestColumns + `
FROM guest_users
WHERE email = $1
`
	g, err := scanGuest(r.pool.QueryRow(ctx, q, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return g, nil
}

// MarkConverted flips account_created exactly once.
func (r *postgresRepo) MarkConverted(ctx context.Context, id string) error {
	const q = `
UPDATE guest_users
SET account_created = TRUE
WHERE id = $1 AND NOT account_created
`
	cmd, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
