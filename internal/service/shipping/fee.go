package shipping

import "storefront-engine/internal/domain"

// FeeLine is one priced cart line as seen by the fee calculation.
type FeeLine struct {
	PriceCents  int64
	Quantity    int
	WeightGrams int64 // 0 means unknown
}

// Options adjust the computed fee for checkout-level choices.
type Options struct {
	Express bool
	COD     bool
}

// Fee derives the shipping fee for one store partition from the passed
// setting alone. The client-displayed value is never trusted; this runs
// server-side with current settings at order time.
func Fee(lines []FeeLine, s domain.ShippingSetting, opt Options) (int64, error) {
	if !s.Enabled {
		return 0, nil
	}

	var fee int64
	if opt.Express {
		if !s.EnableExpressShipping {
			return 0, domain.Invalid("express shipping is not available")
		}
		fee = s.ExpressShippingFeeCents
	} else {
		var err error
		fee, err = baseFee(lines, s)
		if err != nil {
			return 0, err
		}
	}

	if opt.COD {
		if !s.EnableCOD {
			return 0, domain.Invalid("cash on delivery is not available")
		}
		fee += s.CODFeeCents
	}
	return fee, nil
}

func baseFee(lines []FeeLine, s domain.ShippingSetting) (int64, error) {
	switch s.ShippingType {
	case domain.ShippingFree:
		return 0, nil

	case domain.ShippingFlatRate:
		var subtotal int64
		for _, l := range lines {
			subtotal += l.PriceCents * int64(l.Quantity)
		}
		if s.FreeShippingMinCents > 0 && subtotal >= s.FreeShippingMinCents {
			return 0, nil
		}
		return s.FlatRateCents, nil

	case domain.ShippingPerItem:
		var count int64
		for _, l := range lines {
			count += int64(l.Quantity)
		}
		fee := s.PerItemFeeCents * count
		if s.MaxItemFeeCents != nil && fee > *s.MaxItemFeeCents {
			fee = *s.MaxItemFeeCents
		}
		return fee, nil

	case domain.ShippingWeightBased:
		// Weight must come from the caller; a missing line weight is an
		// error, never a guess.
		var total int64
		for _, l := range lines {
			if l.WeightGrams <= 0 {
				return 0, domain.Invalid("weight-based shipping requires a weight on every item")
			}
			total += l.WeightGrams * int64(l.Quantity)
		}
		fee := s.BaseWeightFeeCents
		if extra := total - s.BaseWeightGrams; extra > 0 {
			unit := unitGrams(s.WeightUnit)
			// Additional fee charged per started weight unit over the base.
			fee += s.AdditionalWeightFeeCents * ((extra + unit - 1) / unit)
		}
		return fee, nil
	}
	return 0, domain.Invalid("unknown shipping type")
}

func unitGrams(unit string) int64 {
	switch unit {
	case "g":
		return 1
	case "lb":
		return 454
	default: // kg
		return 1000
	}
}
