package shipping

import (
	"context"

	"storefront-engine/internal/domain"
)

type Repository interface {
	// Get returns the singleton settings row, or domain.ErrNotFound when no
	// seller has saved one yet.
	Get(ctx context.Context) (*domain.ShippingSetting, error)
	Upsert(ctx context.Context, s domain.ShippingSetting) (*domain.ShippingSetting, error)
}
