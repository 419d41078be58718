package domain

import "testing"

func TestCouponDiscountCents_Percentage(t *testing.T) {
	c := Coupon{DiscountType: DiscountPercentage, Discount: 10}

	if got := c.DiscountCents(5000); got != 500 {
		t.Fatalf("10%% of 5000 = %d, want 500", got)
	}
	// 10% of 1005 is 100.5, rounds half up.
	if got := c.DiscountCents(1005); got != 101 {
		t.Fatalf("10%% of 1005 = %d, want 101", got)
	}
	if got := c.DiscountCents(0); got != 0 {
		t.Fatalf("discount on empty subtotal = %d, want 0", got)
	}
}

func TestCouponDiscountCents_Fixed(t *testing.T) {
	c := Coupon{DiscountType: DiscountFixed, Discount: 700}

	if got := c.DiscountCents(5000); got != 700 {
		t.Fatalf("fixed discount = %d, want 700", got)
	}
	// Never exceeds the subtotal.
	if got := c.DiscountCents(300); got != 300 {
		t.Fatalf("clamped discount = %d, want 300", got)
	}
}

func TestCouponDiscountCents_UnknownType(t *testing.T) {
	c := Coupon{DiscountType: "BOGOF", Discount: 50}
	if got := c.DiscountCents(1000); got != 0 {
		t.Fatalf("unknown type discount = %d, want 0", got)
	}
}
