package checkout

import (
	"context"
	"errors"
	"time"

	"storefront-engine/internal/domain"
)

// ErrCouponExhausted is returned when the conditional usage increment finds
// the coupon already at its limit. The whole commit rolls back.
var ErrCouponExhausted = errors.New("coupon usage limit reached")

type ItemInput struct {
	ProductID  string
	Quantity   int
	PriceCents int64
}

// OrderInput is one store partition's order, fully priced by the service
// layer before commit.
type OrderInput struct {
	StoreID    string
	TotalCents int64
	Items      []ItemInput
}

type GuestInput struct {
	Name         string
	Email        string
	Phone        string
	Street       string
	City         string
	State        string
	Zip          string
	Country      string
	ConvertToken string
	TokenExpiry  time.Time
}

type CommitInput struct {
	UserID        *string
	AddressID     *string
	Guest         *GuestInput
	PaymentMethod domain.PaymentMethod
	// CouponSnapshot, when set, is frozen into every order row and the
	// coupon's used_count is incremented once for the whole checkout.
	CouponSnapshot *domain.Coupon
	ClearCart      bool
	Orders         []OrderInput
}

type Repository interface {
	// Commit persists every store partition's order in a single transaction
	// and returns the created order ids in partition order.
	Commit(ctx context.Context, in CommitInput) ([]string, error)
}
