package domain

import "time"

type ShippingType string

const (
	ShippingFlatRate    ShippingType = "FLAT_RATE"
	ShippingPerItem     ShippingType = "PER_ITEM"
	ShippingWeightBased ShippingType = "WEIGHT_BASED"
	ShippingFree        ShippingType = "FREE"
)

func (t ShippingType) Valid() bool {
	switch t {
	case ShippingFlatRate, ShippingPerItem, ShippingWeightBased, ShippingFree:
		return true
	}
	return false
}

// ShippingSetting is a singleton row keyed by "default". Sellers mutate it,
// every order computation reads it.
type ShippingSetting struct {
	ID                       string       `json:"id"`
	Enabled                  bool         `json:"enabled"`
	ShippingType             ShippingType `json:"shippingType"`
	FlatRateCents            int64        `json:"flatRateCents"`
	PerItemFeeCents          int64        `json:"perItemFeeCents"`
	MaxItemFeeCents          *int64       `json:"maxItemFeeCents,omitempty"`
	WeightUnit               string       `json:"weightUnit"`
	BaseWeightGrams          int64        `json:"baseWeightGrams"`
	BaseWeightFeeCents       int64        `json:"baseWeightFeeCents"`
	AdditionalWeightFeeCents int64        `json:"additionalWeightFeeCents"`
	FreeShippingMinCents     int64        `json:"freeShippingMinCents"`
	EstimatedDays            string       `json:"estimatedDays"`
	EnableCOD                bool         `json:"enableCOD"`
	CODFeeCents              int64        `json:"codFeeCents"`
	EnableExpressShipping    bool         `json:"enableExpressShipping"`
	ExpressShippingFeeCents  int64        `json:"expressShippingFeeCents"`
	ExpressEstimatedDays     string       `json:"expressEstimatedDays"`
	UpdatedAt                time.Time    `json:"updatedAt"`
}

// ShippingSettingID is the fixed key of the singleton settings row.
const ShippingSettingID = "default"

// DefaultShippingSetting mirrors the values served when no row exists yet.
func DefaultShippingSetting() ShippingSetting {
	return ShippingSetting{
		ID:                       ShippingSettingID,
		Enabled:                  true,
		ShippingType:             ShippingFlatRate,
		FlatRateCents:            500,
		PerItemFeeCents:          200,
		WeightUnit:               "kg",
		BaseWeightGrams:          1000,
		BaseWeightFeeCents:       500,
		AdditionalWeightFeeCents: 200,
		FreeShippingMinCents:     49900,
		EstimatedDays:            "3-5",
		EnableCOD:                true,
		CODFeeCents:              0,
		EnableExpressShipping:    false,
		ExpressShippingFeeCents:  2000,
		ExpressEstimatedDays:     "1-2",
	}
}
