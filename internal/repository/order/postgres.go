package order

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"

	"storefront-engine/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const orderColumns = `id::text, store_id::text, user_id, address_id::text, is_guest,
guest_name, guest_email, guest_phone, total_cents, payment_method, is_paid,
is_coupon_used, coupon, status, tracking_id, courier, tracking_url, created_at, updated_at`

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

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	var couponJSON []byte
	err := row.Scan(
		&o.ID, &o.StoreID, &o.UserID, &o.AddressID, &o.IsGuest,
		&o.GuestName, &o.GuestEmail, &o.GuestPhone, &o.TotalCents, &o.PaymentMethod, &o.IsPaid,
		&o.IsCouponUsed, &couponJSON, &o.Status, &o.TrackingID, &o.Courier, &o.TrackingURL,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(couponJSON) > 0 {
		var snap domain.Coupon
		if err := json.Unmarshal(couponJSON, &snap); err == nil && snap.Code != "" {
			o.Coupon = &snap
		}
	}
	return &o, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	const q = `
SELECT ` + orderColumns + `
FROM orders
WHERE id = $1
`
	o, err := scanOrder(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("order repo: get id=%s error=%v", id, err)
		return nil, err
	}
	if err := r.attachItems(ctx, []*domain.Order{o}); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *postgresRepo) ListForUser(ctx context.Context, userID string) ([]domain.Order, error) {
	const q = `
SELECT ` + orderColumns + `
FROM orders
WHERE user_id = $1
  AND (payment_method = 'COD' OR (payment_method = 'STRIPE' AND is_paid))
ORDER BY created_at DESC
`
	return r.list(ctx, q, userID)
}

func (r *postgresRepo) ListForStore(ctx context.Context, storeID string) ([]domain.Order, error) {
	const q = `
SELECT ` + orderColumns + `
FROM orders
WHERE store_id = $1
ORDER BY created_at DESC
`
	return r.list(ctx, q, storeID)
}

func (r *postgresRepo) list(ctx context.Context, q string, arg any) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, q, arg)
	if err != nil {
		r.logger.Printf("order repo: list error=%v", err)
		return nil, err
	}
	defer rows.Close()

	var ptrs []*domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		ptrs = append(ptrs, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachItems(ctx, ptrs); err != nil {
		return nil, err
	}
	result := make([]domain.Order, 0, len(ptrs))
	for _, o := range ptrs {
		result = append(result, *o)
	}
	return result, nil
}

func (r *postgresRepo) attachItems(ctx context.Context, orders []*domain.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, 0, len(orders))
	byID := make(map[string]*domain.Order, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
		byID[o.ID] = o
	}
	const q = `
SELECT oi.id::text, oi.order_id::text, oi.product_id::text, p.name, oi.quantity, oi.price_cents
FROM order_items oi
JOIN products p ON p.id = oi.product_id
WHERE oi.order_id = ANY($1)
ORDER BY oi.id
`
	rows, err := r.pool.Query(ctx, q, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.Quantity, &it.PriceCents); err != nil {
			return err
		}
		if o, ok := byID[it.OrderID]; ok {
			o.Items = append(o.Items, it)
		}
	}
	return rows.Err()
}

func (r *postgresRepo) CountByUser(ctx context.Context, userID string) (int, error) {
	const q = `SELECT COUNT(*) FROM orders WHERE user_id = $1`
	var n int
	if err := r.pool.QueryRow(ctx, q, userID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *postgresRepo) CountByUserAndStore(ctx context.Context, userID, storeID string) (int, error) {
	const q = `SELECT COUNT(*) FROM orders WHERE user_id = $1 AND store_id = $2`
	var n int
	if err := r.pool.QueryRow(ctx, q, userID, storeID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// CountCouponUses matches against the frozen snapshot code, so coupon edits
// after the fact cannot change historical usage.
func (r *postgresRepo) CountCouponUses(ctx context.Context, userID, code string) (int, error) {
	const q = `
SELECT COUNT(*)
FROM orders
WHERE user_id = $1 AND is_coupon_used AND coupon->>'code' = $2
`
	var n int
	if err := r.pool.QueryRow(ctx, q, userID, code).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *postgresRepo) SetStatus(ctx context.Context, id, storeID string, upd StatusUpdate) (*domain.Order, error) {
	const q = `
UPDATE orders
SET status = $1,
    tracking_id = COALESCE(NULLIF($2, ''), tracking_id),
    courier = COALESCE(NULLIF($3, ''), courier),
    tracking_url = COALESCE(NULLIF($4, ''), tracking_url),
    updated_at = now()
WHERE id = $5 AND store_id = $6
RETURNING ` + orderColumns + `
`
	o, err := scanOrder(r.pool.QueryRow(ctx, q, upd.Status, upd.TrackingID, upd.Courier, upd.TrackingURL, id, storeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("order repo: set status id=%s error=%v", id, err)
		return nil, err
	}
	if err := r.attachItems(ctx, []*domain.Order{o}); err != nil {
		return nil, err
	}
	return o, nil
}

// ReassignGuestOrders links the whole batch in one transaction. The target
// account may have never checked out, so its users row is created here if
// missing; orders.user_id references users(id).
func (r *postgresRepo) ReassignGuestOrders(ctx context.Context, email, phone, userID string) ([]string, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const ensure = `
INSERT INTO users (id, name, email)
VALUES ($1, '', $2)
ON CONFLICT (id) DO NOTHING
`
	if _, err := tx.Exec(ctx, ensure, userID, email); err != nil {
		r.logger.Printf("order repo: ensure user user_id=%s error=%v", userID, err)
		return nil, err
	}

	const q = `
UPDATE orders
SET user_id = $1,
    is_guest = FALSE,
    updated_at = now()
WHERE is_guest
  AND (($2 <> '' AND guest_email = $2) OR ($3 <> '' AND guest_phone = $3))
RETURNING id::text
`
	rows, err := tx.Query(ctx, q, userID, email, phone)
	if err != nil {
		r.logger.Printf("order repo: reassign guest orders user_id=%s error=%v", userID, err)
		return nil, err
	}

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return ids, nil
}
