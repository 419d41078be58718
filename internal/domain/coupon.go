package domain

import "time"

// DiscountType is the closed set of discount shapes a coupon can carry.
type DiscountType string

const (
	DiscountPercentage DiscountType = "PERCENTAGE"
	DiscountFixed      DiscountType = "FIXED"
)

type Coupon struct {
	Code             string       `json:"code"`
	Description      string       `json:"description,omitempty"`
	DiscountType     DiscountType `json:"discountType"`
	Discount         int64        `json:"discount"` // percent for PERCENTAGE, cents for FIXED
	ExpiresAt        time.Time    `json:"expiresAt"`
	IsActive         bool         `json:"isActive"`
	UsageLimit       *int         `json:"usageLimit,omitempty"`
	UsedCount        int          `json:"usedCount"`
	ForNewUser       bool         `json:"forNewUser"`
	ForMember        bool         `json:"forMember"`
	FirstOrderOnly   bool         `json:"firstOrderOnly"`
	OneTimePerUser   bool         `json:"oneTimePerUser"`
	MinPriceCents    int64        `json:"minPriceCents"`
	MinProductCount  *int         `json:"minProductCount,omitempty"`
	SpecificProducts []string     `json:"specificProducts,omitempty"`
	StoreID          *string      `json:"storeId,omitempty"`
	CreatedAt        time.Time    `json:"createdAt"`
}

// DiscountCents returns the discount for a partition subtotal, clamped so the
// result never exceeds the subtotal. Percentage values are whole percents and
// round half up to the nearest cent.
func (c Coupon) DiscountCents(subtotalCents int64) int64 {
	if subtotalCents <= 0 {
		return 0
	}
	switch c.DiscountType {
	case DiscountPercentage:
		d := (subtotalCents*c.Discount + 50) / 100
		if d > subtotalCents {
			return subtotalCents
		}
		return d
	case DiscountFixed:
		if c.Discount > subtotalCents {
			return subtotalCents
		}
		return c.Discount
	}
	return 0
}
