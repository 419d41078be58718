package payments

import (
	"context"
	"errors"
)

// SessionRequest asks the provider for a hosted payment session covering the
// sum of all store totals from one checkout.
type SessionRequest struct {
	AmountCents int64
	Currency    string
	SuccessURL  string
	CancelURL   string
	Metadata    map[string]string
}

// Session is the redirect handle returned to the caller.
type Session struct {
	ID  string
	URL string
}

// Provider creates external payment sessions. Checkout must not finalize a
// pay-online order until a session is obtained.
type Provider interface {
	CreateSession(ctx context.Context, req SessionRequest) (Session, error)
}

// Disabled is the Provider used when no payment credentials are configured.
// Every session request fails, so only cash-on-delivery checkouts succeed.
type Disabled struct{}

func (Disabled) CreateSession(ctx context.Context, req SessionRequest) (Session, error) {
	return Session{}, errors.New("payments: no provider configured")
}
