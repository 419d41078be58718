package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"
)

type stripeSessionAPI interface {
	New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

// StripeProvider implements Provider with Stripe Checkout sessions.
type StripeProvider struct {
	sessions stripeSessionAPI
	clock    func() time.Time
}

// NewStripeProvider constructs a provider from an API key. The sessions
// client is injectable for tests via newStripeProviderWithClient.
func NewStripeProvider(apiKey string) (*StripeProvider, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("stripe: api key is required")
	}
	sc := client.New(apiKey, nil)
	return newStripeProviderWithClient(sc.CheckoutSessions, time.Now), nil
}

func newStripeProviderWithClient(sessions stripeSessionAPI, clock func() time.Time) *StripeProvider {
	return &StripeProvider{sessions: sessions, clock: clock}
}

// CreateSession opens a single-line-item checkout session for the full
// checkout amount, expiring after 30 minutes.
func (p *StripeProvider) CreateSession(ctx context.Context, req SessionRequest) (Session, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
		ExpiresAt:  stripe.Int64(p.clock().Add(30 * time.Minute).Unix()),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			Quantity: stripe.Int64(1),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(strings.ToLower(req.Currency)),
				UnitAmount: stripe.Int64(req.AmountCents),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String("Order"),
				},
			},
		}},
	}
	params.Context = ctx
	if len(req.Metadata) > 0 {
		params.Metadata = make(map[string]string, len(req.Metadata))
		for k, v := range req.Metadata {
			params.Metadata[k] = v
		}
	}

	session, err := p.sessions.New(params)
	if err != nil {
		return Session{}, fmt.Errorf("stripe: create checkout session: %w", err)
	}
	return Session{ID: session.ID, URL: session.URL}, nil
}
