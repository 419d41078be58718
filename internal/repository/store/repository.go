package store

import (
	"context"

	"storefront-engine/internal/domain"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Store, error)
	// GetActiveByOwner resolves a verified user id to their active store, the
	// seller-authorization primitive for mutating routes.
	GetActiveByOwner(ctx context.Context, ownerUserID string) (*domain.Store, error)
}
