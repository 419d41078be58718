package coupon

import (
	"context"
	"fmt"

	"storefront-engine/internal/domain"
)

// rule checks one eligibility constraint. Rules run in a fixed order and the
// chain stops at the first failure, which determines the user-facing reason.
type rule func(ctx context.Context, orders orderHistory, c *domain.Coupon, in EvaluateInput) error

func defaultRules() []rule {
	return []rule{
		storeScopeRule,
		usageLimitRule,
		newUserRule,
		firstOrderRule,
		oneTimePerUserRule,
		memberRule,
		minPriceRule,
		minProductCountRule,
		specificProductsRule,
	}
}

func storeScopeRule(_ context.Context, _ orderHistory, c *domain.Coupon, in EvaluateInput) error {
	if c.StoreID != nil && in.StoreID != "" && *c.StoreID != in.StoreID {
		return domain.Eligibility("This coupon is not valid for this store")
	}
	return nil
}

func usageLimitRule(_ context.Context, _ orderHistory, c *domain.Coupon, _ EvaluateInput) error {
	if c.UsageLimit != nil && c.UsedCount >= *c.UsageLimit {
		return domain.Eligibility("Coupon usage limit reached")
	}
	return nil
}

func newUserRule(ctx context.Context, orders orderHistory, c *domain.Coupon, in EvaluateInput) error {
	if !c.ForNewUser {
		return nil
	}
	n, err := orders.CountByUser(ctx, in.UserID)
	if err != nil {
		return err
	}
	if n > 0 {
		return domain.Eligibility("Coupon valid for new users only")
	}
	return nil
}

// firstOrderRule scopes the prior-order check to the coupon's store when the
// coupon is store-scoped, otherwise globally.
func firstOrderRule(ctx context.Context, orders orderHistory, c *domain.Coupon, in EvaluateInput) error {
	if !c.FirstOrderOnly {
		return nil
	}
	var n int
	var err error
	if c.StoreID != nil {
		n, err = orders.CountByUserAndStore(ctx, in.UserID, *c.StoreID)
	} else {
		n, err = orders.CountByUser(ctx, in.UserID)
	}
	if err != nil {
		return err
	}
	if n > 0 {
		return domain.Eligibility("Coupon valid for first order only")
	}
	return nil
}

// oneTimePerUserRule checks against the frozen snapshot code on past orders.
func oneTimePerUserRule(ctx context.Context, orders orderHistory, c *domain.Coupon, in EvaluateInput) error {
	if !c.OneTimePerUser {
		return nil
	}
	n, err := orders.CountCouponUses(ctx, in.UserID, c.Code)
	if err != nil {
		return err
	}
	if n > 0 {
		return domain.Eligibility("You have already used this coupon")
	}
	return nil
}

func memberRule(_ context.Context, _ orderHistory, c *domain.Coupon, in EvaluateInput) error {
	if c.ForMember && !in.IsPlusMember {
		return domain.Eligibility("Coupon valid for members only")
	}
	return nil
}

func minPriceRule(_ context.Context, _ orderHistory, c *domain.Coupon, in EvaluateInput) error {
	if c.MinPriceCents > 0 && in.CartTotalCents < c.MinPriceCents {
		return domain.Eligibility(fmt.Sprintf("Minimum cart value of %d.%02d required", c.MinPriceCents/100, c.MinPriceCents%100))
	}
	return nil
}

func minProductCountRule(_ context.Context, _ orderHistory, c *domain.Coupon, in EvaluateInput) error {
	if c.MinProductCount == nil {
		return nil
	}
	distinct := make(map[string]struct{}, len(in.ProductIDs))
	for _, id := range in.ProductIDs {
		distinct[id] = struct{}{}
	}
	if len(distinct) < *c.MinProductCount {
		return domain.Eligibility(fmt.Sprintf("Minimum %d products required", *c.MinProductCount))
	}
	return nil
}

func specificProductsRule(_ context.Context, _ orderHistory, c *domain.Coupon, in EvaluateInput) error {
	if len(c.SpecificProducts) == 0 {
		return nil
	}
	eligible := make(map[string]struct{}, len(c.SpecificProducts))
	for _, id := range c.SpecificProducts {
		eligible[id] = struct{}{}
	}
	for _, id := range in.ProductIDs {
		if _, ok := eligible[id]; ok {
			return nil
		}
	}
	return domain.Eligibility("This coupon is not valid for the products in your cart")
}
