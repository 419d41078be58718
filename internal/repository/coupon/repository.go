package coupon

import (
	"context"
	"time"

	"storefront-engine/internal/domain"
)

type Repository interface {
	// GetActive returns the coupon only when it is active and unexpired at
	// the given instant. It does not evaluate eligibility rules.
	GetActive(ctx context.Context, code string, now time.Time) (*domain.Coupon, error)
	Create(ctx context.Context, c domain.Coupon) (*domain.Coupon, error)
	ListByStore(ctx context.Context, storeID string) ([]domain.Coupon, error)
	Delete(ctx context.Context, code, storeID string) error
}
