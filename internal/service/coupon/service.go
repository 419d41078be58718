package coupon

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront-engine/internal/domain"
	couponrepo "storefront-engine/internal/repository/coupon"
)

type couponRepo interface {
	GetActive(ctx context.Context, code string, now time.Time) (*domain.Coupon, error)
	Create(ctx context.Context, c domain.Coupon) (*domain.Coupon, error)
	ListByStore(ctx context.Context, storeID string) ([]domain.Coupon, error)
	Delete(ctx context.Context, code, storeID string) error
}

// orderHistory is the order-history query capability eligibility rules need.
type orderHistory interface {
	CountByUser(ctx context.Context, userID string) (int, error)
	CountByUserAndStore(ctx context.Context, userID, storeID string) (int, error)
	CountCouponUses(ctx context.Context, userID, code string) (int, error)
}

// Service evaluates coupons against a cart context and manages the seller
// coupon surface. Evaluation is side-effect-free; used_count accounting
// happens at order-commit time.
type Service struct {
	repo   couponRepo
	orders orderHistory
	now    func() time.Time
	rules  []rule
}

func New(repo couponrepo.Repository, orders orderHistory) *Service {
	s := &Service{
		repo:   repo,
		orders: orders,
		now:    time.Now,
	}
	s.rules = defaultRules()
	return s
}

// EvaluateInput is the cart context a coupon is checked against.
type EvaluateInput struct {
	Code           string
	CartTotalCents int64
	ProductIDs     []string
	StoreID        string
	UserID         string
	IsPlusMember   bool
}

// Evaluate normalizes the code, loads the active coupon, and runs the
// eligibility chain in order, short-circuiting on the first failure.
func (s *Service) Evaluate(ctx context.Context, in EvaluateInput) (*domain.Coupon, error) {
	code := strings.ToUpper(strings.TrimSpace(in.Code))
	if code == "" {
		return nil, domain.Invalid("coupon code required")
	}

	c, err := s.repo.GetActive(ctx, code, s.now())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFoundErr("Coupon not found or expired")
		}
		return nil, err
	}

	for _, r := range s.rules {
		if err := r(ctx, s.orders, c, in); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// CreateInput captures the seller-facing coupon form.
type CreateInput struct {
	Code             string              `json:"code"`
	Description      string              `json:"description"`
	DiscountType     domain.DiscountType `json:"discountType"`
	Discount         int64               `json:"discount"`
	ExpiresAt        time.Time           `json:"expiresAt"`
	UsageLimit       *int                `json:"usageLimit"`
	ForNewUser       bool                `json:"forNewUser"`
	ForMember        bool                `json:"forMember"`
	FirstOrderOnly   bool                `json:"firstOrderOnly"`
	OneTimePerUser   bool                `json:"oneTimePerUser"`
	MinPriceCents    int64               `json:"minPriceCents"`
	MinProductCount  *int                `json:"minProductCount"`
	SpecificProducts []string            `json:"specificProducts"`
}

// Create registers a store-scoped coupon with a canonical uppercase code.
func (s *Service) Create(ctx context.Context, storeID string, in CreateInput) (*domain.Coupon, error) {
	code := strings.ToUpper(strings.TrimSpace(in.Code))
	if code == "" {
		return nil, domain.Invalid("coupon code required")
	}
	if in.DiscountType != domain.DiscountPercentage && in.DiscountType != domain.DiscountFixed {
		return nil, domain.Invalid("discountType must be PERCENTAGE or FIXED")
	}
	if in.Discount <= 0 {
		return nil, domain.Invalid("discount must be positive")
	}
	if in.DiscountType == domain.DiscountPercentage && in.Discount > 100 {
		return nil, domain.Invalid("percentage discount cannot exceed 100")
	}
	if !in.ExpiresAt.After(s.now()) {
		return nil, domain.Invalid("expiresAt must be in the future")
	}

	specific := in.SpecificProducts
	if specific == nil {
		specific = []string{}
	}
	c, err := s.repo.Create(ctx, domain.Coupon{
		Code:             code,
		Description:      strings.TrimSpace(in.Description),
		DiscountType:     in.DiscountType,
		Discount:         in.Discount,
		ExpiresAt:        in.ExpiresAt,
		IsActive:         true,
		UsageLimit:       in.UsageLimit,
		ForNewUser:       in.ForNewUser,
		ForMember:        in.ForMember,
		FirstOrderOnly:   in.FirstOrderOnly,
		OneTimePerUser:   in.OneTimePerUser,
		MinPriceCents:    in.MinPriceCents,
		MinProductCount:  in.MinProductCount,
		SpecificProducts: specific,
		StoreID:          &storeID,
	})
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, &domain.Error{Kind: domain.KindConflict, Message: fmt.Sprintf("coupon %s already exists", code)}
		}
		return nil, err
	}
	return c, nil
}

func (s *Service) ListForStore(ctx context.Context, storeID string) ([]domain.Coupon, error) {
	return s.repo.ListByStore(ctx, storeID)
}

func (s *Service) Delete(ctx context.Context, storeID, code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return domain.Invalid("coupon code required")
	}
	err := s.repo.Delete(ctx, code, storeID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NotFoundErr("Coupon not found")
	}
	return err
}
