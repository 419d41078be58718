package order

import (
	"context"
	"io"
	"log"

	"storefront-engine/internal/domain"
	"storefront-engine/internal/notify"
	orderrepo "storefront-engine/internal/repository/order"
)

type orderRepo interface {
	ListForUser(ctx context.Context, userID string) ([]domain.Order, error)
	ListForStore(ctx context.Context, storeID string) ([]domain.Order, error)
	SetStatus(ctx context.Context, id, storeID string, upd orderrepo.StatusUpdate) (*domain.Order, error)
}

type userReader interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// Service covers the read and status-transition surface of orders. Creation
// belongs to the checkout service; financial fields never change here.
type Service struct {
	repo     orderRepo
	users    userReader
	notifier notify.Notifier
	logger   *log.Logger
}

func New(repo orderrepo.Repository, users userReader, notifier notify.Notifier, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{repo: repo, users: users, notifier: notifier, logger: logger}
}

func (s *Service) ListForUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.repo.ListForUser(ctx, userID)
}

func (s *Service) ListForStore(ctx context.Context, storeID string) ([]domain.Order, error) {
	return s.repo.ListForStore(ctx, storeID)
}

// StatusInput is the seller's status-transition request.
type StatusInput struct {
	Status      domain.OrderStatus `json:"status"`
	TrackingID  string             `json:"trackingId"`
	Courier     string             `json:"courier"`
	TrackingURL string             `json:"trackingUrl"`
}

// UpdateStatus moves an order along its lifecycle and emits a best-effort
// status notification.
func (s *Service) UpdateStatus(ctx context.Context, storeID, orderID string, in StatusInput) (*domain.Order, error) {
	if !in.Status.Valid() {
		return nil, domain.Invalid("unknown order status")
	}

	o, err := s.repo.SetStatus(ctx, orderID, storeID, orderrepo.StatusUpdate{
		Status:      in.Status,
		TrackingID:  in.TrackingID,
		Courier:     in.Courier,
		TrackingURL: in.TrackingURL,
	})
	if err != nil {
		return nil, err
	}

	s.notifyStatus(ctx, o)
	return o, nil
}

func (s *Service) notifyStatus(ctx context.Context, o *domain.Order) {
	if s.notifier == nil {
		return
	}
	email, name := o.GuestEmail, o.GuestName
	if !o.IsGuest && o.UserID != nil && s.users != nil {
		if u, err := s.users.GetByID(ctx, *o.UserID); err == nil {
			email, name = u.Email, u.Name
		}
	}
	if email == "" {
		return
	}
	ev := notify.OrderEvent{
		OrderID:      o.ID,
		Email:        email,
		CustomerName: name,
		Status:       o.Status,
		Items:        o.Items,
		TotalCents:   o.TotalCents,
		TrackingID:   o.TrackingID,
		Courier:      o.Courier,
		TrackingURL:  o.TrackingURL,
	}
	if err := s.notifier.OrderStatus(ctx, ev); err != nil {
		s.logger.Printf("order: status notification failed order_id=%s error=%v", o.ID, err)
	}
}
