package coupon

import (
	"context"
	"errors"
	"io"
	"log"
	"time"

	"storefront-engine/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const couponColumns = `code, description, discount_type, discount, expires_at, is_active,
usage_limit, used_count, for_new_user, for_member, first_order_only, one_time_per_user,
min_price_cents, min_product_count, specific_products, store_id::text, created_at`

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

func scanCoupon(row pgx.Row) (*domain.Coupon, error) {
	var c domain.Coupon
	err := row.Scan(
		&c.Code, &c.Description, &c.DiscountType, &c.Discount, &c.ExpiresAt, &c.IsActive,
		&c.UsageLimit, &c.UsedCount, &c.ForNewUser, &c.ForMember, &c.FirstOrderOnly, &c.OneTimePerUser,
		&c.MinPriceCents, &c.MinProductCount, &c.SpecificProducts, &c.StoreID, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *postgresRepo) GetActive(ctx context.Context, code string, now time.Time) (*domain.Coupon, error) {
	const q = `
SELECT ` + couponColumns + `
FROM coupons
WHERE code = $1 AND is_active AND expires_at > $2
`
	c, err := scanCoupon(r.pool.QueryRow(ctx, q, code, now))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("coupon repo: get code=%s error=%v", code, err)
		return nil, err
	}
	return c, nil
}

func (r *postgresRepo) Create(ctx context.Context, c domain.Coupon) (*domain.Coupon, error) {
	const q = `
INSERT INTO coupons (code, description, discount_type, discount, expires_at, is_active,
	usage_limit, for_new_user, for_member, first_order_only, one_time_per_user,
	min_price_cents, min_product_count, specific_products, store_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
RETURNING ` + couponColumns + `
`
	out, err := scanCoupon(r.pool.QueryRow(ctx, q,
		c.Code, c.Description, c.DiscountType, c.Discount, c.ExpiresAt, c.IsActive,
		c.UsageLimit, c.ForNewUser, c.ForMember, c.FirstOrderOnly, c.OneTimePerUser,
		c.MinPriceCents, c.MinProductCount, c.SpecificProducts, c.StoreID,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Printf("coupon repo: create code=%s error=%v", c.Code, err)
		return nil, err
	}
	return out, nil
}

func (r *postgresRepo) ListByStore(ctx context.Context, storeID string) ([]domain.Coupon, error) {
	const q = `
SELECT ` + couponColumns + `
FROM coupons
WHERE store_id = $1 OR store_id IS NULL
ORDER BY created_at DESC
`
	rows, err := r.pool.Query(ctx, q, storeID)
	if err != nil {
		r.logger.Printf("coupon repo: list store_id=%s error=%v", storeID, err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.Coupon
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Delete removes a coupon owned by the store. Global coupons cannot be
// deleted through the store surface.
func (r *postgresRepo) Delete(ctx context.Context, code, storeID string) error {
	const q = `
DELETE FROM coupons
WHERE code = $1 AND store_id = $2
`
	cmd, err := r.pool.Exec(ctx, q, code, storeID)
	if err != nil {
		r.logger.Printf("coupon repo: delete code=%s error=%v", code, err)
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
