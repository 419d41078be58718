package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"

	"storefront-engine/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// guestPlaceholderID is the fixed users row guest orders hang addresses off.
const guestPlaceholderID = "guest"

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

func (r *postgresRepo) Commit(ctx context.Context, in CommitInput) ([]string, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	userID := in.UserID
	addressID := in.AddressID

	if in.Guest != nil {
		guestID := guestPlaceholderID
		userID = &guestID
		addressID, err = r.prepareGuest(ctx, tx, *in.Guest)
		if err != nil {
			return nil, err
		}
	} else if userID != nil {
		if err := ensureUser(ctx, tx, *userID); err != nil {
			return nil, err
		}
		// Drop a dangling or foreign address reference instead of failing the
		// order; the linkage is optional.
		addressID = verifyAddress(ctx, tx, addressID, *userID)
	}

	var couponJSON []byte
	if in.CouponSnapshot != nil {
		couponJSON, err = json.Marshal(in.CouponSnapshot)
		if err != nil {
			return nil, fmt.Errorf("marshal coupon snapshot: %w", err)
		}
	}

	guestName, guestEmail, guestPhone := "", "", ""
	if in.Guest != nil {
		guestName, guestEmail, guestPhone = in.Guest.Name, in.Guest.Email, in.Guest.Phone
	}

	orderIDs := make([]string, 0, len(in.Orders))
	for _, o := range in.Orders {
		const insertOrder = `
INSERT INTO orders (store_id, user_id, address_id, is_guest, guest_name, guest_email, guest_phone,
	total_cents, payment_method, is_coupon_used, coupon, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
RETURNING id::text
`
		var orderID string
		err := tx.QueryRow(ctx, insertOrder,
			o.StoreID, userID, addressID, in.Guest != nil, guestName, guestEmail, guestPhone,
			o.TotalCents, in.PaymentMethod, in.CouponSnapshot != nil, couponJSON, domain.OrderCreated,
		).Scan(&orderID)
		if err != nil {
			r.logger.Printf("checkout repo: insert order store_id=%s error=%v", o.StoreID, err)
			return nil, err
		}

		for _, it := range o.Items {
			const insertItem = `
INSERT INTO order_items (order_id, product_id, quantity, price_cents)
VALUES ($1, $2, $3, $4)
`
			if _, err := tx.Exec(ctx, insertItem, orderID, it.ProductID, it.Quantity, it.PriceCents); err != nil {
				r.logger.Printf("checkout repo: insert item order_id=%s product_id=%s error=%v", orderID, it.ProductID, err)
				return nil, err
			}
		}
		orderIDs = append(orderIDs, orderID)
	}

	if in.CouponSnapshot != nil {
		// Atomic conditional increment: the limit re-check and the increment
		// are one statement, so racing checkouts cannot overshoot.
		const consume = `
UPDATE coupons
SET used_count = used_count + 1
WHERE code = $1 AND (usage_limit IS NULL OR used_count < usage_limit)
`
		cmd, err := tx.Exec(ctx, consume, in.CouponSnapshot.Code)
		if err != nil {
			return nil, err
		}
		if cmd.RowsAffected() == 0 {
			return nil, ErrCouponExhausted
		}
	}

	if in.ClearCart && in.UserID != nil {
		if _, err := tx.Exec(ctx, `UPDATE users SET cart = '{}'::jsonb WHERE id = $1`, *in.UserID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return orderIDs, nil
}

// prepareGuest upserts the placeholder identity, the guest contact record
// with a fresh conversion token, and the shipping address, all inside the
// checkout transaction.
func (r *postgresRepo) prepareGuest(ctx context.Context, tx pgx.Tx, g GuestInput) (*string, error) {
	const upsertPlaceholder = `
INSERT INTO users (id, name, email)
VALUES ($1, 'Guest User', 'guest@system.local')
ON CONFLICT (id) DO NOTHING
`
	if _, err := tx.Exec(ctx, upsertPlaceholder, guestPlaceholderID); err != nil {
		return nil, err
	}

	const upsertGuest = `
INSERT INTO guest_users (name, email, phone, convert_token, token_expiry)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (email) DO UPDATE
SET name = EXCLUDED.name,
    phone = EXCLUDED.phone,
    convert_token = EXCLUDED.convert_token,
    token_expiry = EXCLUDED.token_expiry
`
	if _, err := tx.Exec(ctx, upsertGuest, g.Name, g.Email, g.Phone, g.ConvertToken, g.TokenExpiry); err != nil {
		return nil, err
	}

	const insertAddress = `
INSERT INTO addresses (user_id, name, email, phone, street, city, state, zip, country)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id::text
`
	var addressID string
	zip := g.Zip
	if zip == "" {
		zip = "000000"
	}
	err := tx.QueryRow(ctx, insertAddress, guestPlaceholderID, g.Name, g.Email, g.Phone, g.Street, g.City, g.State, zip, g.Country).Scan(&addressID)
	if err != nil {
		return nil, err
	}
	return &addressID, nil
}

func ensureUser(ctx context.Context, tx pgx.Tx, userID string) error {
	// Create-if-missing with empty profile fields; the identity subsystem
	// reconciles the row later.
	const q = `
INSERT INTO users (id, name, email)
VALUES ($1, '', '')
ON CONFLICT (id) DO NOTHING
`
	_, err := tx.Exec(ctx, q, userID)
	return err
}

func verifyAddress(ctx context.Context, tx pgx.Tx, addressID *string, userID string) *string {
	if addressID == nil || *addressID == "" {
		return nil
	}
	const q = `SELECT 1 FROM addresses WHERE id = $1 AND user_id = $2`
	var one int
	if err := tx.QueryRow(ctx, q, *addressID, userID).Scan(&one); err != nil {
		// Missing or foreign address: keep the order alive without the linkage.
		return nil
	}
	return addressID
}
