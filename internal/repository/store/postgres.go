package store

import (
	"context"
	"errors"

	"storefront-engine/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const storeColumns = `id::text, owner_user_id, name, slug, email, is_active, created_at`

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func scanStore(row pgx.Row) (*domain.Store, error) {
	var s domain.Store
	err := row.Scan(&s.ID, &s.OwnerUserID, &s.Name, &s.Slug, &s.Email, &s.IsActive, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Store, error) {
	const q = `
SELECT ` + storeColumns + `
FROM stores
WHERE id = $1
`
	s, err := scanStore(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *postgresRepo) GetActiveByOwner(ctx context.Context, ownerUserID string) (*domain.Store, error) {
	const q = `
SELECT ` + storeColumns + `
FROM stores
WHERE owner_user_id = $1 AND is_active
ORDER BY created_at ASC
LIMIT 1
`
	s, err := scanStore(r.pool.QueryRow(ctx, q, ownerUserID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return s, nil
}
