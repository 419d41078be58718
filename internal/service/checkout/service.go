package checkout

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"storefront-engine/internal/domain"
	"storefront-engine/internal/notify"
	"storefront-engine/internal/payments"
	checkoutrepo "storefront-engine/internal/repository/checkout"
	couponsvc "storefront-engine/internal/service/coupon"
	shippingsvc "storefront-engine/internal/service/shipping"
)

// convertTokenTTL is how long a guest's account-conversion token stays valid.
const convertTokenTTL = 7 * 24 * time.Hour

type productResolver interface {
	GetByIDs(ctx context.Context, ids []string) (map[string]domain.Product, error)
}

type couponEvaluator interface {
	Evaluate(ctx context.Context, in couponsvc.EvaluateInput) (*domain.Coupon, error)
}

type shippingQuoter interface {
	Settings(ctx context.Context) (*domain.ShippingSetting, error)
}

type committer interface {
	Commit(ctx context.Context, in checkoutrepo.CommitInput) ([]string, error)
}

type userReader interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// Service assembles orders: it partitions the cart by store, prices each
// partition, and commits every resulting order in one transaction.
type Service struct {
	products productResolver
	coupons  couponEvaluator
	shipping shippingQuoter
	commits  committer
	users    userReader
	payments payments.Provider
	notifier notify.Notifier
	origin   string
	currency string
	logger   *log.Logger
	newToken func() (string, error)
	now      func() time.Time
}

type Deps struct {
	Products productResolver
	Coupons  couponEvaluator
	Shipping shippingQuoter
	Commits  committer
	Users    userReader
	Payments payments.Provider
	Notifier notify.Notifier
	Origin   string
	Currency string
	Logger   *log.Logger
}

func New(d Deps) *Service {
	logger := d.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		products: d.Products,
		coupons:  d.Coupons,
		shipping: d.Shipping,
		commits:  d.Commits,
		users:    d.Users,
		payments: d.Payments,
		notifier: d.Notifier,
		origin:   d.Origin,
		currency: d.Currency,
		logger:   logger,
		newToken: randomToken,
		now:      time.Now,
	}
}

// GuestInfo carries the contact fields required for guest checkout.
type GuestInfo struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Street  string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

type CreateInput struct {
	// UserID is the verified identity for non-guest checkout; empty for
	// guests.
	UserID        string
	IsPlusMember  bool
	AddressID     string
	Items         []LineItem
	CouponCode    string
	PaymentMethod domain.PaymentMethod
	Guest         *GuestInfo
	Express       bool
}

type CreateResult struct {
	OrderIDs    []string `json:"orderIds"`
	RedirectURL string   `json:"redirectUrl,omitempty"`
	TotalCents  int64    `json:"totalCents"`
}

// Create runs the commit algorithm once per checkout request.
func (s *Service) Create(ctx context.Context, in CreateInput) (*CreateResult, error) {
	if err := validate(in); err != nil {
		return nil, err
	}

	products, err := s.resolveProducts(ctx, in.Items)
	if err != nil {
		return nil, err
	}

	// Coupon eligibility is evaluated once against the full cart, while the
	// discount amount below is applied per store partition. The asymmetry is
	// deliberate, matching observed storefront behavior.
	coupon, err := s.evaluateCoupon(ctx, in, products)
	if err != nil {
		return nil, err
	}

	parts, err := partitionByStore(in.Items, products)
	if err != nil {
		return nil, err
	}

	setting, err := s.shipping.Settings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load shipping settings: %w", err)
	}

	orders := make([]checkoutrepo.OrderInput, 0, len(parts))
	var grandTotal int64
	var couponApplied bool
	for _, part := range parts {
		total := part.SubtotalCents()
		if coupon != nil && (coupon.StoreID == nil || *coupon.StoreID == part.StoreID) {
			total -= coupon.DiscountCents(total)
			couponApplied = true
		}

		fee, err := s.partitionFee(part, *setting, in)
		if err != nil {
			return nil, err
		}
		total += fee

		items := make([]checkoutrepo.ItemInput, 0, len(part.Lines))
		for _, l := range part.Lines {
			items = append(items, checkoutrepo.ItemInput{
				ProductID:  l.Product.ID,
				Quantity:   l.Quantity,
				PriceCents: l.Product.PriceCents,
			})
		}
		orders = append(orders, checkoutrepo.OrderInput{
			StoreID:    part.StoreID,
			TotalCents: total,
			Items:      items,
		})
		grandTotal += total
	}

	// A store-scoped coupon can pass eligibility yet discount no partition
	// when nothing in the cart belongs to its store. Only a coupon that
	// discounted at least one order consumes a use.
	snapshot := coupon
	if !couponApplied {
		snapshot = nil
	}
	commit := checkoutrepo.CommitInput{
		PaymentMethod:  in.PaymentMethod,
		CouponSnapshot: snapshot,
		Orders:         orders,
	}
	var convertToken string
	if in.Guest != nil {
		convertToken, err = s.newToken()
		if err != nil {
			return nil, fmt.Errorf("generate convert token: %w", err)
		}
		commit.Guest = &checkoutrepo.GuestInput{
			Name:         in.Guest.Name,
			Email:        strings.ToLower(strings.TrimSpace(in.Guest.Email)),
			Phone:        in.Guest.Phone,
			Street:       in.Guest.Street,
			City:         in.Guest.City,
			State:        in.Guest.State,
			Zip:          in.Guest.Zip,
			Country:      in.Guest.Country,
			ConvertToken: convertToken,
			TokenExpiry:  s.now().Add(convertTokenTTL),
		}
	} else {
		commit.UserID = &in.UserID
		if in.AddressID != "" {
			commit.AddressID = &in.AddressID
		}
		commit.ClearCart = in.PaymentMethod == domain.PaymentCOD
	}

	orderIDs, err := s.commits.Commit(ctx, commit)
	if err != nil {
		if errors.Is(err, checkoutrepo.ErrCouponExhausted) {
			return nil, domain.Eligibility("Coupon usage limit reached")
		}
		return nil, fmt.Errorf("commit checkout: %w", err)
	}

	result := &CreateResult{OrderIDs: orderIDs, TotalCents: grandTotal}

	if in.PaymentMethod == domain.PaymentStripe {
		session, err := s.payments.CreateSession(ctx, payments.SessionRequest{
			AmountCents: grandTotal,
			Currency:    s.currency,
			SuccessURL:  s.origin + "/loading?nextUrl=orders",
			CancelURL:   s.origin + "/cart",
			Metadata: map[string]string{
				"orderIds": strings.Join(orderIDs, ","),
				"userId":   in.UserID,
			},
		})
		if err != nil {
			s.logger.Printf("checkout: payment session failed orders=%v error=%v", orderIDs, err)
			return nil, domain.External("payment session could not be created")
		}
		result.RedirectURL = session.URL
	}

	s.notifyPlaced(ctx, in, parts, orderIDs, orders, convertToken)
	return result, nil
}

func validate(in CreateInput) error {
	if !in.PaymentMethod.Valid() {
		return domain.Invalid("unknown payment method")
	}
	if len(in.Items) == 0 {
		return domain.Invalid("order items required")
	}
	for _, item := range in.Items {
		if item.ProductID == "" || item.Quantity < 1 {
			return domain.Invalid("every item needs a productId and a quantity of at least 1")
		}
	}
	if in.Guest != nil {
		var missing []string
		for _, f := range []struct{ name, value string }{
			{"name", in.Guest.Name},
			{"email", in.Guest.Email},
			{"phone", in.Guest.Phone},
			{"address", in.Guest.Street},
			{"city", in.Guest.City},
			{"state", in.Guest.State},
			{"country", in.Guest.Country},
		} {
			if strings.TrimSpace(f.value) == "" {
				missing = append(missing, f.name)
			}
		}
		if len(missing) > 0 {
			return domain.Invalid("missing guest information", missing...)
		}
		return nil
	}
	if in.UserID == "" {
		return &domain.Error{Kind: domain.KindUnauthorized, Message: "not authorized"}
	}
	return nil
}

func (s *Service) resolveProducts(ctx context.Context, items []LineItem) (map[string]domain.Product, error) {
	ids := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if _, ok := seen[it.ProductID]; ok {
			continue
		}
		seen[it.ProductID] = struct{}{}
		ids = append(ids, it.ProductID)
	}
	products, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve products: %w", err)
	}
	for _, id := range ids {
		if _, ok := products[id]; !ok {
			return nil, domain.NotFoundErr(fmt.Sprintf("Product not found: %s", id))
		}
	}
	return products, nil
}

func (s *Service) evaluateCoupon(ctx context.Context, in CreateInput, products map[string]domain.Product) (*domain.Coupon, error) {
	if strings.TrimSpace(in.CouponCode) == "" {
		return nil, nil
	}
	var cartTotal int64
	productIDs := make([]string, 0, len(in.Items))
	for _, item := range in.Items {
		p := products[item.ProductID]
		cartTotal += p.PriceCents * int64(item.Quantity)
		productIDs = append(productIDs, item.ProductID)
	}
	return s.coupons.Evaluate(ctx, couponsvc.EvaluateInput{
		Code:           in.CouponCode,
		CartTotalCents: cartTotal,
		ProductIDs:     productIDs,
		UserID:         in.UserID,
		IsPlusMember:   in.IsPlusMember,
	})
}

func (s *Service) partitionFee(part Partition, setting domain.ShippingSetting, in CreateInput) (int64, error) {
	lines := make([]shippingsvc.FeeLine, 0, len(part.Lines))
	for _, l := range part.Lines {
		lines = append(lines, shippingsvc.FeeLine{
			PriceCents:  l.Product.PriceCents,
			Quantity:    l.Quantity,
			WeightGrams: l.WeightGrams,
		})
	}
	return shippingsvc.Fee(lines, setting, shippingsvc.Options{
		Express: in.Express,
		COD:     in.PaymentMethod == domain.PaymentCOD,
	})
}

// notifyPlaced emits one order-placed message per created order. Failures are
// logged and never fail the checkout.
func (s *Service) notifyPlaced(ctx context.Context, in CreateInput, parts []Partition, orderIDs []string, orders []checkoutrepo.OrderInput, convertToken string) {
	if s.notifier == nil {
		return
	}

	email, name := "", ""
	if in.Guest != nil {
		email, name = in.Guest.Email, in.Guest.Name
	} else if s.users != nil {
		if u, err := s.users.GetByID(ctx, in.UserID); err == nil {
			email, name = u.Email, u.Name
		}
	}
	if email == "" {
		return
	}

	for i, id := range orderIDs {
		if i >= len(parts) {
			break
		}
		items := make([]domain.OrderItem, 0, len(parts[i].Lines))
		for _, l := range parts[i].Lines {
			items = append(items, domain.OrderItem{
				ProductID:   l.Product.ID,
				ProductName: l.Product.Name,
				Quantity:    l.Quantity,
				PriceCents:  l.Product.PriceCents,
			})
		}
		ev := notify.OrderEvent{
			OrderID:      id,
			Email:        email,
			CustomerName: name,
			Status:       domain.OrderCreated,
			Items:        items,
			TotalCents:   orders[i].TotalCents,
			ConvertToken: convertToken,
		}
		if err := s.notifier.OrderStatus(ctx, ev); err != nil {
			s.logger.Printf("checkout: order notification failed order_id=%s error=%v", id, err)
		}
	}
}

func randomToken() (string, error) {
	var buf [32]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf[:]), nil
}
