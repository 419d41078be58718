package user

import (
	"context"

	"storefront-engine/internal/domain"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetAddress(ctx context.Context, addressID string) (*domain.Address, error)
}
