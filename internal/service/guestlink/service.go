package guestlink

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"

	"storefront-engine/internal/domain"
	guestrepo "storefront-engine/internal/repository/guestuser"
	orderrepo "storefront-engine/internal/repository/order"
)

type guestUsers interface {
	FindUnconverted(ctx context.Context, email, phone string) (*domain.GuestUser, error)
	MarkConverted(ctx context.Context, id string) error
}

type guestOrders interface {
	ReassignGuestOrders(ctx context.Context, email, phone, userID string) ([]string, error)
}

// Service reassigns guest orders to a newly authenticated account by
// contact matching. Linking is idempotent: once a guest record is converted
// it never matches again.
type Service struct {
	guests guestUsers
	orders guestOrders
	logger *log.Logger
}

func New(guests guestrepo.Repository, orders orderrepo.Repository, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{guests: guests, orders: orders, logger: logger}
}

type Result struct {
	Linked bool `json:"linked"`
	Count  int  `json:"count"`
}

// Link finds the unconverted guest record for the contact, batch-reassigns
// the matching guest orders to userID, and marks the record converted.
func (s *Service) Link(ctx context.Context, userID, email, phone string) (*Result, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	phone = strings.TrimSpace(phone)
	if email == "" && phone == "" {
		return nil, domain.Invalid("email or phone required")
	}

	guest, err := s.guests.FindUnconverted(ctx, email, phone)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &Result{Linked: false}, nil
		}
		return nil, err
	}

	ids, err := s.orders.ReassignGuestOrders(ctx, email, phone, userID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return &Result{Linked: false}, nil
	}

	if err := s.guests.MarkConverted(ctx, guest.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		// Orders are already linked; a conversion-flag failure only risks a
		// redundant no-op on the next call.
		s.logger.Printf("guestlink: mark converted guest_id=%s error=%v", guest.ID, err)
	}

	s.logger.Printf("guestlink: linked %d orders to user_id=%s", len(ids), userID)
	return &Result{Linked: true, Count: len(ids)}, nil
}
