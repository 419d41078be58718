package product

import (
	"context"

	"storefront-engine/internal/domain"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]domain.Product, error)
	ListByStore(ctx context.Context, storeID string) ([]domain.Product, error)
	Upsert(ctx context.Context, p domain.Product) (*domain.Product, error)
}
