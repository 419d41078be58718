package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type productSeed struct {
	Slug       string
	Name       string
	PriceCents int64
	MRPCents   int64
}

// Apply inserts basic seed data for manual testing. It is idempotent via ON CONFLICT.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	if err := ensureUser(ctx, pool, "demo-seller", "Demo Seller", "seller@example.com"); err != nil {
		return fmt.Errorf("ensure seller: %w", err)
	}
	if err := ensureUser(ctx, pool, "demo-buyer", "Demo Buyer", "buyer@example.com"); err != nil {
		return fmt.Errorf("ensure buyer: %w", err)
	}

	storeID, err := ensureStore(ctx, pool, "demo-seller", "demo-store", "Demo Store")
	if err != nil {
		return fmt.Errorf("ensure store: %w", err)
	}

	products := []productSeed{
		{Slug: "demo-shirt", Name: "Demo T-Shirt", PriceCents: 1999, MRPCents: 2499},
		{Slug: "demo-mug", Name: "Demo Mug", PriceCents: 1299, MRPCents: 1499},
		{Slug: "demo-poster", Name: "Demo Poster", PriceCents: 899, MRPCents: 999},
	}
	for _, p := range products {
		if err := upsertProduct(ctx, pool, storeID, p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.Slug, err)
		}
	}

	if err := upsertCoupon(ctx, pool); err != nil {
		return fmt.Errorf("upsert coupon: %w", err)
	}
	if err := upsertShipping(ctx, pool); err != nil {
		return fmt.Errorf("upsert shipping: %w", err)
	}
	return nil
}

func ensureUser(ctx context.Context, pool *pgxpool.Pool, id, name, email string) error {
	const q = `
INSERT INTO users (id, name, email)
VALUES ($1, $2, $3)
ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, email = EXCLUDED.email
`
	_, err := pool.Exec(ctx, q, id, name, email)
	return err
}

func ensureStore(ctx context.Context, pool *pgxpool.Pool, ownerID, slug, name string) (string, error) {
	const q = `
INSERT INTO stores (owner_user_id, slug, name, email, is_active)
VALUES ($1, $2, $3, $4, TRUE)
ON CONFLICT (slug) DO UPDATE SET name = EXCLUDED.name
RETURNING id::text
`
	var id string
	if err := pool.QueryRow(ctx, q, ownerID, slug, name, "store@example.com").Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func upsertProduct(ctx context.Context, pool *pgxpool.Pool, storeID string, p productSeed) error {
	const q = `
INSERT INTO products (store_id, slug, name, price_cents, mrp_cents, currency, in_stock)
VALUES ($1, $2, $3, $4, $5, 'aed', TRUE)
ON CONFLICT (slug) DO UPDATE
SET name = EXCLUDED.name,
    price_cents = EXCLUDED.price_cents,
    mrp_cents = EXCLUDED.mrp_cents
`
	_, err := pool.Exec(ctx, q, storeID, p.Slug, p.Name, p.PriceCents, p.MRPCents)
	return err
}

func upsertCoupon(ctx context.Context, pool *pgxpool.Pool) error {
	const q = `
INSERT INTO coupons (code, description, discount_type, discount, expires_at, is_active, min_price_cents)
VALUES ('SAVE10', '10 percent off sitewide', 'PERCENTAGE', 10, $1, TRUE, 0)
ON CONFLICT (code) DO UPDATE SET expires_at = EXCLUDED.expires_at
`
	_, err := pool.Exec(ctx, q, time.Now().AddDate(1, 0, 0))
	return err
}

func upsertShipping(ctx context.Context, pool *pgxpool.Pool) error {
	const q = `
INSERT INTO shipping_settings (id)
VALUES ('default')
ON CONFLICT (id) DO NOTHING
`
	_, err := pool.Exec(ctx, q)
	return err
}
