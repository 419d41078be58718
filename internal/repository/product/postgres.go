package product

import (
	"context"
	"errors"
	"io"
	"log"

	"storefront-engine/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const productColumns = `id::text, store_id::text, slug, name, COALESCE(description, ''), price_cents, mrp_cents, currency, in_stock, created_at`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	const q = `
SELECT ` + productColumns + `
FROM products
WHERE id = $1
`
	var p domain.Product
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&p.ID, &p.StoreID, &p.Slug, &p.Name, &p.Description,
		&p.PriceCents, &p.MRPCents, &p.Currency, &p.InStock, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("product repo: get id=%s error=%v", id, err)
		return nil, err
	}
	return &p, nil
}

// GetByIDs returns the products found, keyed by id. Missing ids are simply
// absent from the map; callers decide whether that is fatal.
func (r *postgresRepo) GetByIDs(ctx context.Context, ids []string) (map[string]domain.Product, error) {
	if len(ids) == 0 {
		return map[string]domain.Product{}, nil
	}
	const q = `
SELECT ` + productColumns + `
FROM products
WHERE id = ANY($1)
`
	rows, err := r.pool.Query(ctx, q, ids)
	if err != nil {
		r.logger.Printf("product repo: batch get count=%d error=%v", len(ids), err)
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]domain.Product, len(ids))
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(
			&p.ID, &p.StoreID, &p.Slug, &p.Name, &p.Description,
			&p.PriceCents, &p.MRPCents, &p.Currency, &p.InStock, &p.CreatedAt,
		); err != nil {
			return nil, err
		}
		result[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) ListByStore(ctx context.Context, storeID string) ([]domain.Product, error) {
	const q = `
SELECT ` + productColumns + `
FROM products
WHERE store_id = $1
ORDER BY created_at DESC
`
	rows, err := r.pool.Query(ctx, q, storeID)
	if err != nil {
		r.logger.Printf("product repo: list store_id=%s error=%v", storeID, err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(
			&p.ID, &p.StoreID, &p.Slug, &p.Name, &p.Description,
			&p.PriceCents, &p.MRPCents, &p.Currency, &p.InStock, &p.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, p domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (store_id, slug, name, description, price_cents, mrp_cents, currency, in_stock)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (slug) DO UPDATE
SET name = EXCLUDED.name,
    description = EXCLUDED.description,
    price_cents = EXCLUDED.price_cents,
    mrp_cents = EXCLUDED.mrp_cents,
    currency = EXCLUDED.currency,
    in_stock = EXCLUDED.in_stock
RETURNING ` + productColumns + `
`
	var out domain.Product
	err := r.pool.QueryRow(ctx, q, p.StoreID, p.Slug, p.Name, p.Description, p.PriceCents, p.MRPCents, p.Currency, p.InStock).Scan(
		&out.ID, &out.StoreID, &out.Slug, &out.Name, &out.Description,
		&out.PriceCents, &out.MRPCents, &out.Currency, &out.InStock, &out.CreatedAt,
	)
	if err != nil {
		r.logger.Printf("product repo: upsert slug=%s error=%v", p.Slug, err)
		return nil, err
	}
	return &out, nil
}
