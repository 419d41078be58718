package guestuser

import (
	"context"

	"storefront-engine/internal/domain"
)

type Repository interface {
	// FindUnconverted returns the guest record matching email or phone that
	// has not yet been linked to a real account.
	FindUnconverted(ctx context.Context, email, phone string) (*domain.GuestUser, error)
	GetByEmail(ctx context.Context, email string) (*domain.GuestUser, error)
	MarkConverted(ctx context.Context, id string) error
}
