package user

import (
	"context"
	"errors"

	"storefront-engine/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const q = `
SELECT id, name, email, image, created_at
FROM users
WHERE id = $1
`
	var u domain.User
	err := r.pool.QueryRow(ctx, q, id).Scan(&u.ID, &u.Name, &u.Email, &u.Image, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *postgresRepo) GetAddress(ctx context.Context, addressID string) (*domain.Address, error) {
	const q = `
SELECT id::text, user_id, name, email, phone, street, city, state, zip, country, created_at
FROM addresses
WHERE id = $1
`
	var a domain.Address
	err := r.pool.QueryRow(ctx, q, addressID).Scan(
		&a.ID, &a.UserID, &a.Name, &a.Email, &a.Phone, &a.Street, &a.City, &a.State, &a.Zip, &a.Country, &a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}
