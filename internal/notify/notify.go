package notify

import (
	"context"

	"storefront-engine/internal/domain"
)

// OrderEvent is the payload handed to the notification sink.
type OrderEvent struct {
	OrderID      string
	Email        string
	CustomerName string
	Status       domain.OrderStatus
	Items        []domain.OrderItem
	TotalCents   int64
	TrackingID   string
	Courier      string
	TrackingURL  string
	// ConvertToken is set for guest orders so the message can carry an
	// account-conversion link.
	ConvertToken string
}

// Notifier delivers best-effort order messages. Failures are logged by the
// caller and never abort or roll back an order.
type Notifier interface {
	OrderStatus(ctx context.Context, ev OrderEvent) error
}
