package checkout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"storefront-engine/internal/domain"
	"storefront-engine/internal/notify"
	"storefront-engine/internal/payments"
	checkoutrepo "storefront-engine/internal/repository/checkout"
	couponsvc "storefront-engine/internal/service/coupon"
)

type stubProducts struct {
	products map[string]domain.Product
	err      error
}

func (s *stubProducts) GetByIDs(_ context.Context, ids []string) (map[string]domain.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make(map[string]domain.Product, len(ids))
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

type stubCoupons struct {
	coupon *domain.Coupon
	err    error
	lastIn couponsvc.EvaluateInput
	calls  int
}

func (s *stubCoupons) Evaluate(_ context.Context, in couponsvc.EvaluateInput) (*domain.Coupon, error) {
	s.calls++
	s.lastIn = in
	return s.coupon, s.err
}

type stubShipping struct {
	setting domain.ShippingSetting
}

func (s *stubShipping) Settings(_ context.Context) (*domain.ShippingSetting, error) {
	setting := s.setting
	return &setting, nil
}

type stubCommitter struct {
	ids    []string
	err    error
	lastIn checkoutrepo.CommitInput
}

func (s *stubCommitter) Commit(_ context.Context, in checkoutrepo.CommitInput) ([]string, error) {
	s.lastIn = in
	if s.err != nil {
		return nil, s.err
	}
	return s.ids, nil
}

type stubUsers struct {
	user *domain.User
}

func (s *stubUsers) GetByID(_ context.Context, _ string) (*domain.User, error) {
	if s.user == nil {
		return nil, domain.ErrNotFound
	}
	return s.user, nil
}

type stubPayments struct {
	session payments.Session
	err     error
	lastReq payments.SessionRequest
	calls   int
}

func (s *stubPayments) CreateSession(_ context.Context, req payments.SessionRequest) (payments.Session, error) {
	s.calls++
	s.lastReq = req
	return s.session, s.err
}

type stubNotifier struct {
	events []notify.OrderEvent
	err    error
}

func (s *stubNotifier) OrderStatus(_ context.Context, ev notify.OrderEvent) error {
	s.events = append(s.events, ev)
	return s.err
}

func freeShipping() domain.ShippingSetting {
	s := domain.DefaultShippingSetting()
	s.ShippingType = domain.ShippingFree
	return s
}

type testEnv struct {
	svc      *Service
	coupons  *stubCoupons
	commits  *stubCommitter
	payments *stubPayments
	notifier *stubNotifier
}

func newTestEnv(products map[string]domain.Product, setting domain.ShippingSetting) *testEnv {
	env := &testEnv{
		coupons:  &stubCoupons{},
		commits:  &stubCommitter{ids: []string{"ord-1"}},
		payments: &stubPayments{session: payments.Session{ID: "cs_1", URL: "https://pay.example/cs_1"}},
		notifier: &stubNotifier{},
	}
	env.svc = New(Deps{
		Products: &stubProducts{products: products},
		Coupons:  env.coupons,
		Shipping: &stubShipping{setting: setting},
		Commits:  env.commits,
		Users:    &stubUsers{user: &domain.User{ID: "u1", Email: "u1@example.com", Name: "U One"}},
		Payments: env.payments,
		Notifier: env.notifier,
		Origin:   "https://shop.example",
		Currency: "aed",
		Logger:   log.New(io.Discard, "", 0),
	})
	env.svc.newToken = func() (string, error) { return "tok123", nil }
	env.svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return env
}

func twoStoreProducts() map[string]domain.Product {
	return map[string]domain.Product{
		"p1": {ID: "p1", StoreID: "store-a", Name: "Shirt", PriceCents: 2500},
		"p2": {ID: "p2", StoreID: "store-b", Name: "Mug", PriceCents: 4000},
	}
}

func TestCreate_SplitsCartIntoOneOrderPerStore(t *testing.T) {
	env := newTestEnv(twoStoreProducts(), freeShipping())
	env.commits.ids = []string{"ord-a", "ord-b"}

	res, err := env.svc.Create(context.Background(), CreateInput{
		UserID:        "u1",
		Items:         []LineItem{{ProductID: "p1", Quantity: 2}, {ProductID: "p2", Quantity: 2}},
		PaymentMethod: domain.PaymentCOD,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.OrderIDs) != 2 {
		t.Fatalf("orderIds = %v, want 2 ids", res.OrderIDs)
	}

	orders := env.commits.lastIn.Orders
	if len(orders) != 2 {
		t.Fatalf("committed orders = %d, want 2", len(orders))
	}
	if orders[0].StoreID != "store-a" || orders[0].TotalCents != 5000 {
		t.Fatalf("first order = %s/%d, want store-a/5000", orders[0].StoreID, orders[0].TotalCents)
	}
	if orders[1].StoreID != "store-b" || orders[1].TotalCents != 8000 {
		t.Fatalf("second order = %s/%d, want store-b/8000", orders[1].StoreID, orders[1].TotalCents)
	}
	if res.TotalCents != 13000 {
		t.Fatalf("grand total = %d, want 13000", res.TotalCents)
	}
	// Item prices are frozen from the resolved products.
	if orders[0].Items[0].PriceCents != 2500 {
		t.Fatalf("frozen price = %d, want 2500", orders[0].Items[0].PriceCents)
	}
}

func TestCreate_CouponEvaluatedOnceAppliedPerPartition(t *testing.T) {
	env := newTestEnv(twoStoreProducts(), freeShipping())
	env.commits.ids = []string{"ord-a", "ord-b"}
	storeA := "store-a"
	env.coupons.coupon = &domain.Coupon{
		Code:         "A10",
		DiscountType: domain.DiscountPercentage,
		Discount:     10,
		StoreID:      &storeA,
	}

	res, err := env.svc.Create(context.Background(), CreateInput{
		UserID:        "u1",
		Items:         []LineItem{{ProductID: "p1", Quantity: 2}, {ProductID: "p2", Quantity: 2}},
		CouponCode:    "A10",
		PaymentMethod: domain.PaymentCOD,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env.coupons.calls != 1 {
		t.Fatalf("coupon evaluated %d times, want 1", env.coupons.calls)
	}
	// Eligibility sees the whole cart.
	if env.coupons.lastIn.CartTotalCents != 13000 {
		t.Fatalf("evaluated cart total = %d, want 13000", env.coupons.lastIn.CartTotalCents)
	}

	orders := env.commits.lastIn.Orders
	// Discount lands only on the coupon's own store partition.
	if orders[0].TotalCents != 4500 {
		t.Fatalf("store-a total = %d, want 4500 after 10%%", orders[0].TotalCents)
	}
	if orders[1].TotalCents != 8000 {
		t.Fatalf("store-b total = %d, want undiscounted 8000", orders[1].TotalCents)
	}
	if res.TotalCents != 12500 {
		t.Fatalf("grand total = %d, want 12500", res.TotalCents)
	}
	if env.commits.lastIn.CouponSnapshot == nil || env.commits.lastIn.CouponSnapshot.Code != "A10" {
		t.Fatalf("coupon snapshot = %+v, want code A10", env.commits.lastIn.CouponSnapshot)
	}
}

func TestCreate_StoreScopedCouponWithoutMatchingStoreNotConsumed(t *testing.T) {
	env := newTestEnv(twoStoreProducts(), freeShipping())
	env.commits.ids = []string{"ord-a", "ord-b"}
	storeC := "store-c"
	env.coupons.coupon = &domain.Coupon{
		Code:         "C10",
		DiscountType: domain.DiscountPercentage,
		Discount:     10,
		StoreID:      &storeC,
	}

	res, err := env.svc.Create(context.Background(), CreateInput{
		UserID:        "u1",
		Items:         []LineItem{{ProductID: "p1", Quantity: 2}, {ProductID: "p2", Quantity: 2}},
		CouponCode:    "C10",
		PaymentMethod: domain.PaymentCOD,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	orders := env.commits.lastIn.Orders
	if orders[0].TotalCents != 5000 || orders[1].TotalCents != 8000 {
		t.Fatalf("totals = %d/%d, want undiscounted 5000/8000", orders[0].TotalCents, orders[1].TotalCents)
	}
	if res.TotalCents != 13000 {
		t.Fatalf("grand total = %d, want 13000", res.TotalCents)
	}
	// No partition was discounted, so the coupon must not burn a use.
	if env.commits.lastIn.CouponSnapshot != nil {
		t.Fatalf("coupon snapshot = %+v, want none when nothing was discounted", env.commits.lastIn.CouponSnapshot)
	}
}

func TestCreate_ShippingFeePerPartition(t *testing.T) {
	setting := domain.DefaultShippingSetting()
	setting.ShippingType = domain.ShippingFlatRate
	setting.FlatRateCents = 500
	setting.FreeShippingMinCents = 0
	env := newTestEnv(twoStoreProducts(), setting)
	env.commits.ids = []string{"ord-a", "ord-b"}

	res, err := env.svc.Create(context.Background(), CreateInput{
		UserID:        "u1",
		Items:         []LineItem{{ProductID: "p1", Quantity: 1}, {ProductID: "p2", Quantity: 1}},
		PaymentMethod: domain.PaymentCOD,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Each store partition carries its own flat rate.
	orders := env.commits.lastIn.Orders
	if orders[0].TotalCents != 3000 || orders[1].TotalCents != 4500 {
		t.Fatalf("totals = %d/%d, want 3000/4500", orders[0].TotalCents, orders[1].TotalCents)
	}
	if res.TotalCents != 7500 {
		t.Fatalf("grand total = %d, want 7500", res.TotalCents)
	}
}

func TestCreate_RejectsUnknownProduct(t *testing.T) {
	env := newTestEnv(twoStoreProducts(), freeShipping())

	_, err := env.svc.Create(context.Background(), CreateInput{
		UserID:        "u1",
		Items:         []LineItem{{ProductID: "ghost", Quantity: 1}},
		PaymentMethod: domain.PaymentCOD,
	})
	if err == nil {
		t.Fatal("expected error for unknown product")
	}
	if domain.KindOf(err) != domain.KindNotFound {
		t.Fatalf("error kind = %s, want not_found", domain.KindOf(err))
	}
	if env.commits.lastIn.Orders != nil {
		t.Fatal("nothing must be committed when a product is missing")
	}
}

func TestCreate_GuestRequiresContactFields(t *testing.T) {
	env := newTestEnv(twoStoreProducts(), freeShipping())

	_, err := env.svc.Create(context.Background(), CreateInput{
		Items:         []LineItem{{ProductID: "p1", Quantity: 1}},
		PaymentMethod: domain.PaymentCOD,
		Guest:         &GuestInfo{Name: "G", Email: "g@example.com"},
	})
	if err == nil {
		t.Fatal("expected validation error")
	}
	var de *domain.Error
	if !errors.As(err, &de) {
		t.Fatalf("err = %T, want *domain.Error", err)
	}
	want := []string{"phone", "address", "city", "state", "country"}
	if len(de.Fields) != len(want) {
		t.Fatalf("missing fields = %v, want %v", de.Fields, want)
	}
	for i, f := range want {
		if de.Fields[i] != f {
			t.Fatalf("missing fields = %v, want %v", de.Fields, want)
		}
	}
}

func TestCreate_GuestGetsConvertToken(t *testing.T) {
	env := newTestEnv(twoStoreProducts(), freeShipping())

	_, err := env.svc.Create(context.Background(), CreateInput{
		Items:         []LineItem{{ProductID: "p1", Quantity: 1}},
		PaymentMethod: domain.PaymentCOD,
		Guest: &GuestInfo{
			Name: "G", Email: "G@Example.com ", Phone: "555",
			Street: "1 Main St", City: "Dubai", State: "DXB", Country: "AE",
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	g := env.commits.lastIn.Guest
	if g == nil {
		t.Fatal("expected guest commit input")
	}
	if g.Email != "g@example.com" {
		t.Fatalf("guest email = %q, want normalized g@example.com", g.Email)
	}
	if g.ConvertToken != "tok123" {
		t.Fatalf("convert token = %q, want tok123", g.ConvertToken)
	}
	wantExpiry := time.Date(2026, 3, 8, 12, 0, 0, 0, time.UTC)
	if !g.TokenExpiry.Equal(wantExpiry) {
		t.Fatalf("token expiry = %v, want %v", g.TokenExpiry, wantExpiry)
	}
	if env.commits.lastIn.ClearCart {
		t.Fatal("guest checkout must not clear a cart")
	}
}

func TestCreate_AnonymousNonGuestRejected(t *testing.T) {
	env := newTestEnv(twoStoreProducts(), freeShipping())

	_, err := env.svc.Create(context.Background(), CreateInput{
		Items:         []LineItem{{ProductID: "p1", Quantity: 1}},
		PaymentMethod: domain.PaymentCOD,
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if domain.KindOf(err) != domain.KindUnauthorized {
		t.Fatalf("error kind = %s, want unauthorized", domain.KindOf(err))
	}
}

func TestCreate_CODClearsCartForUsers(t *testing.T) {
	env := newTestEnv(twoStoreProducts(), freeShipping())

	_, err := env.svc.Create(context.Background(), CreateInput{
		UserID:        "u1",
		Items:         []LineItem{{ProductID: "p1", Quantity: 1}},
		PaymentMethod: domain.PaymentCOD,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !env.commits.lastIn.ClearCart {
		t.Fatal("COD checkout should clear the cart")
	}
}

func TestCreate_StripeReturnsRedirect(t *testing.T) {
	env := newTestEnv(twoStoreProducts(), freeShipping())
	env.commits.ids = []string{"ord-a", "ord-b"}

	res, err := env.svc.Create(context.Background(), CreateInput{
		UserID:        "u1",
		Items:         []LineItem{{ProductID: "p1", Quantity: 1}, {ProductID: "p2", Quantity: 1}},
		PaymentMethod: domain.PaymentStripe,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.RedirectURL != "https://pay.example/cs_1" {
		t.Fatalf("redirect = %q, want session url", res.RedirectURL)
	}
	req := env.payments.lastReq
	if req.AmountCents != 6500 {
		t.Fatalf("session amount = %d, want 6500", req.AmountCents)
	}
	if req.SuccessURL != "https://shop.example/loading?nextUrl=orders" {
		t.Fatalf("success url = %q", req.SuccessURL)
	}
	if req.Metadata["orderIds"] != "ord-a,ord-b" {
		t.Fatalf("metadata orderIds = %q, want ord-a,ord-b", req.Metadata["orderIds"])
	}
	// Stripe checkouts keep the cart until payment confirmation.
	if env.commits.lastIn.ClearCart {
		t.Fatal("stripe checkout must not clear the cart")
	}
}

func TestCreate_StripeSessionFailure(t *testing.T) {
	env := newTestEnv(twoStoreProducts(), freeShipping())
	env.payments.err = errors.New("stripe down")

	_, err := env.svc.Create(context.Background(), CreateInput{
		UserID:        "u1",
		Items:         []LineItem{{ProductID: "p1", Quantity: 1}},
		PaymentMethod: domain.PaymentStripe,
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if domain.KindOf(err) != domain.KindExternalFailure {
		t.Fatalf("error kind = %s, want external_failure", domain.KindOf(err))
	}
}

func TestCreate_CouponExhaustedAtCommit(t *testing.T) {
	env := newTestEnv(twoStoreProducts(), freeShipping())
	env.coupons.coupon = &domain.Coupon{Code: "LAST1", DiscountType: domain.DiscountFixed, Discount: 100}
	env.commits.err = checkoutrepo.ErrCouponExhausted

	_, err := env.svc.Create(context.Background(), CreateInput{
		UserID:        "u1",
		Items:         []LineItem{{ProductID: "p1", Quantity: 1}},
		CouponCode:    "LAST1",
		PaymentMethod: domain.PaymentCOD,
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if domain.KindOf(err) != domain.KindEligibility {
		t.Fatalf("error kind = %s, want eligibility", domain.KindOf(err))
	}
}

// fixedCoupons has no recording state, so concurrent evaluations are safe.
type fixedCoupons struct {
	coupon *domain.Coupon
}

func (s *fixedCoupons) Evaluate(_ context.Context, _ couponsvc.EvaluateInput) (*domain.Coupon, error) {
	return s.coupon, nil
}

// limitedCommitter mirrors the conditional used_count increment: a commit
// carrying a coupon snapshot succeeds only while uses remain.
type limitedCommitter struct {
	mu      sync.Mutex
	limit   int
	used    int
	commits int
}

func (c *limitedCommitter) Commit(_ context.Context, in checkoutrepo.CommitInput) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if in.CouponSnapshot != nil {
		if c.used >= c.limit {
			return nil, checkoutrepo.ErrCouponExhausted
		}
		c.used++
	}
	c.commits++
	return []string{fmt.Sprintf("ord-%d", c.commits)}, nil
}

func TestCreate_ConcurrentCheckoutsRespectCouponLimit(t *testing.T) {
	const limit, workers = 3, 10
	usageLimit := limit
	committer := &limitedCommitter{limit: limit}
	svc := New(Deps{
		Products: &stubProducts{products: twoStoreProducts()},
		Coupons: &fixedCoupons{coupon: &domain.Coupon{
			Code:         "LIM3",
			DiscountType: domain.DiscountFixed,
			Discount:     100,
			UsageLimit:   &usageLimit,
		}},
		Shipping: &stubShipping{setting: freeShipping()},
		Commits:  committer,
		Users:    &stubUsers{},
		Logger:   log.New(io.Discard, "", 0),
	})

	var wg sync.WaitGroup
	var mu sync.Mutex
	var succeeded, exhausted int
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Create(context.Background(), CreateInput{
				UserID:        "u1",
				Items:         []LineItem{{ProductID: "p1", Quantity: 1}},
				CouponCode:    "LIM3",
				PaymentMethod: domain.PaymentCOD,
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case domain.KindOf(err) == domain.KindEligibility:
				exhausted++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if succeeded != limit {
		t.Fatalf("successful checkouts = %d, want exactly %d", succeeded, limit)
	}
	if exhausted != workers-limit {
		t.Fatalf("exhausted checkouts = %d, want %d", exhausted, workers-limit)
	}
	if committer.used != limit {
		t.Fatalf("coupon uses = %d, must never exceed the limit %d", committer.used, limit)
	}
}

func TestCreate_NotificationFailureDoesNotFailCheckout(t *testing.T) {
	env := newTestEnv(twoStoreProducts(), freeShipping())
	env.notifier.err = errors.New("smtp down")

	res, err := env.svc.Create(context.Background(), CreateInput{
		UserID:        "u1",
		Items:         []LineItem{{ProductID: "p1", Quantity: 1}},
		PaymentMethod: domain.PaymentCOD,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.OrderIDs) != 1 {
		t.Fatalf("orderIds = %v, want 1 id", res.OrderIDs)
	}
	if len(env.notifier.events) != 1 {
		t.Fatalf("notifications = %d, want 1 attempted", len(env.notifier.events))
	}
}

func TestCreate_NotifiesEachOrder(t *testing.T) {
	env := newTestEnv(twoStoreProducts(), freeShipping())
	env.commits.ids = []string{"ord-a", "ord-b"}

	_, err := env.svc.Create(context.Background(), CreateInput{
		UserID:        "u1",
		Items:         []LineItem{{ProductID: "p1", Quantity: 1}, {ProductID: "p2", Quantity: 1}},
		PaymentMethod: domain.PaymentCOD,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(env.notifier.events) != 2 {
		t.Fatalf("notifications = %d, want one per order", len(env.notifier.events))
	}
	if env.notifier.events[0].OrderID != "ord-a" || env.notifier.events[1].OrderID != "ord-b" {
		t.Fatalf("notified order ids = %s,%s", env.notifier.events[0].OrderID, env.notifier.events[1].OrderID)
	}
	if env.notifier.events[0].Email != "u1@example.com" {
		t.Fatalf("notify email = %q, want the account email", env.notifier.events[0].Email)
	}
}
