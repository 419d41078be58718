package shipping

import (
	"testing"

	"storefront-engine/internal/domain"
)

func flatSetting() domain.ShippingSetting {
	s := domain.DefaultShippingSetting()
	s.FreeShippingMinCents = 49900
	return s
}

func TestFee_DisabledIsFree(t *testing.T) {
	s := flatSetting()
	s.Enabled = false
	got, err := Fee([]FeeLine{{PriceCents: 1000, Quantity: 1}}, s, Options{COD: true, Express: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0 {
		t.Fatalf("fee = %d, want 0 when shipping disabled", got)
	}
}

func TestFee_FlatRate(t *testing.T) {
	s := flatSetting()

	got, err := Fee([]FeeLine{{PriceCents: 2500, Quantity: 1}}, s, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 500 {
		t.Fatalf("fee = %d, want 500 under the free-shipping minimum", got)
	}

	got, err = Fee([]FeeLine{{PriceCents: 49900, Quantity: 1}}, s, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0 {
		t.Fatalf("fee = %d, want 0 at the free-shipping minimum", got)
	}
}

func TestFee_PerItemWithCap(t *testing.T) {
	s := flatSetting()
	s.ShippingType = domain.ShippingPerItem
	s.PerItemFeeCents = 200
	maxFee := int64(500)
	s.MaxItemFeeCents = &maxFee

	got, err := Fee([]FeeLine{{PriceCents: 1000, Quantity: 2}}, s, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 400 {
		t.Fatalf("fee for 2 items = %d, want 400", got)
	}

	got, err = Fee([]FeeLine{{PriceCents: 1000, Quantity: 7}}, s, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 500 {
		t.Fatalf("fee for 7 items = %d, want capped 500", got)
	}
}

func TestFee_WeightBased(t *testing.T) {
	s := flatSetting()
	s.ShippingType = domain.ShippingWeightBased
	s.WeightUnit = "kg"
	s.BaseWeightGrams = 1000
	s.BaseWeightFeeCents = 500
	s.AdditionalWeightFeeCents = 200

	// 2.4kg total: base 1000g + 1400g extra = 2 started kg over.
	got, err := Fee([]FeeLine{{PriceCents: 1000, Quantity: 2, WeightGrams: 1200}}, s, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 900 {
		t.Fatalf("fee = %d, want 900", got)
	}

	// Within base weight only the base fee applies.
	got, err = Fee([]FeeLine{{PriceCents: 1000, Quantity: 1, WeightGrams: 800}}, s, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 500 {
		t.Fatalf("fee = %d, want base 500", got)
	}
}

func TestFee_WeightBasedRequiresWeights(t *testing.T) {
	s := flatSetting()
	s.ShippingType = domain.ShippingWeightBased

	_, err := Fee([]FeeLine{{PriceCents: 1000, Quantity: 1}}, s, Options{})
	if err == nil {
		t.Fatal("expected error for missing line weight")
	}
	if domain.KindOf(err) != domain.KindInvalidRequest {
		t.Fatalf("error kind = %s, want invalid_request", domain.KindOf(err))
	}
}

func TestFee_ExpressAndCOD(t *testing.T) {
	s := flatSetting()
	s.EnableExpressShipping = true
	s.ExpressShippingFeeCents = 2000
	s.CODFeeCents = 300

	got, err := Fee([]FeeLine{{PriceCents: 1000, Quantity: 1}}, s, Options{Express: true, COD: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 2300 {
		t.Fatalf("fee = %d, want express 2000 + cod 300", got)
	}
}

func TestFee_ExpressDisabled(t *testing.T) {
	s := flatSetting()
	s.EnableExpressShipping = false

	_, err := Fee([]FeeLine{{PriceCents: 1000, Quantity: 1}}, s, Options{Express: true})
	if err == nil {
		t.Fatal("expected error when express shipping is disabled")
	}
}

func TestFee_CODDisabled(t *testing.T) {
	s := flatSetting()
	s.EnableCOD = false

	_, err := Fee([]FeeLine{{PriceCents: 1000, Quantity: 1}}, s, Options{COD: true})
	if err == nil {
		t.Fatal("expected error when cash on delivery is disabled")
	}
}
