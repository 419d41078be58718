package order

import (
	"context"

	"storefront-engine/internal/domain"
)

// StatusUpdate mutates an order's status and optional tracking fields.
// Financial fields are immutable after creation.
type StatusUpdate struct {
	Status      domain.OrderStatus
	TrackingID  string
	Courier     string
	TrackingURL string
}

type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	// ListForUser returns the user's visible orders, newest first: COD orders
	// plus Stripe orders that have been paid.
	ListForUser(ctx context.Context, userID string) ([]domain.Order, error)
	ListForStore(ctx context.Context, storeID string) ([]domain.Order, error)
	CountByUser(ctx context.Context, userID string) (int, error)
	CountByUserAndStore(ctx context.Context, userID, storeID string) (int, error)
	// CountCouponUses counts the user's orders whose frozen coupon snapshot
	// carries the given code.
	CountCouponUses(ctx context.Context, userID, code string) (int, error)
	SetStatus(ctx context.Context, id, storeID string, upd StatusUpdate) (*domain.Order, error)
	// ReassignGuestOrders links guest orders matching the contact to userID in
	// one batch. Returns the reassigned order ids.
	ReassignGuestOrders(ctx context.Context, email, phone, userID string) ([]string, error)
}
