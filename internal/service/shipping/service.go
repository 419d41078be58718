package shipping

import (
	"context"
	"errors"

	"storefront-engine/internal/domain"
	shippingrepo "storefront-engine/internal/repository/shipping"
)

type settingsRepo interface {
	Get(ctx context.Context) (*domain.ShippingSetting, error)
	Upsert(ctx context.Context, s domain.ShippingSetting) (*domain.ShippingSetting, error)
}

// Service exposes the singleton shipping settings and the fee calculation.
type Service struct {
	repo settingsRepo
}

func New(repo shippingrepo.Repository) *Service {
	return &Service{repo: repo}
}

// Settings returns the stored singleton, falling back to defaults when no
// seller has saved one yet.
func (s *Service) Settings(ctx context.Context) (*domain.ShippingSetting, error) {
	setting, err := s.repo.Get(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			def := domain.DefaultShippingSetting()
			return &def, nil
		}
		return nil, err
	}
	return setting, nil
}

// UpdateInput mirrors the seller settings form.
type UpdateInput struct {
	Enabled                  bool                `json:"enabled"`
	ShippingType             domain.ShippingType `json:"shippingType"`
	FlatRateCents            int64               `json:"flatRateCents"`
	PerItemFeeCents          int64               `json:"perItemFeeCents"`
	MaxItemFeeCents          *int64              `json:"maxItemFeeCents"`
	WeightUnit               string              `json:"weightUnit"`
	BaseWeightGrams          int64               `json:"baseWeightGrams"`
	BaseWeightFeeCents       int64               `json:"baseWeightFeeCents"`
	AdditionalWeightFeeCents int64               `json:"additionalWeightFeeCents"`
	FreeShippingMinCents     int64               `json:"freeShippingMinCents"`
	EstimatedDays            string              `json:"estimatedDays"`
	EnableCOD                bool                `json:"enableCOD"`
	CODFeeCents              int64               `json:"codFeeCents"`
	EnableExpressShipping    bool                `json:"enableExpressShipping"`
	ExpressShippingFeeCents  int64               `json:"expressShippingFeeCents"`
	ExpressEstimatedDays     string              `json:"expressEstimatedDays"`
}

// Update upserts the singleton row, filling unset enum-ish fields with the
// served defaults.
func (s *Service) Update(ctx context.Context, in UpdateInput) (*domain.ShippingSetting, error) {
	def := domain.DefaultShippingSetting()
	if in.ShippingType == "" {
		in.ShippingType = def.ShippingType
	}
	if !in.ShippingType.Valid() {
		return nil, domain.Invalid("unknown shippingType")
	}
	if in.FlatRateCents < 0 || in.PerItemFeeCents < 0 || in.FreeShippingMinCents < 0 ||
		in.BaseWeightFeeCents < 0 || in.AdditionalWeightFeeCents < 0 ||
		in.CODFeeCents < 0 || in.ExpressShippingFeeCents < 0 {
		return nil, domain.Invalid("fees cannot be negative")
	}
	if in.WeightUnit == "" {
		in.WeightUnit = def.WeightUnit
	}
	if in.EstimatedDays == "" {
		in.EstimatedDays = def.EstimatedDays
	}
	if in.ExpressEstimatedDays == "" {
		in.ExpressEstimatedDays = def.ExpressEstimatedDays
	}

	return s.repo.Upsert(ctx, domain.ShippingSetting{
		ID:                       domain.ShippingSettingID,
		Enabled:                  in.Enabled,
		ShippingType:             in.ShippingType,
		FlatRateCents:            in.FlatRateCents,
		PerItemFeeCents:          in.PerItemFeeCents,
		MaxItemFeeCents:          in.MaxItemFeeCents,
		WeightUnit:               in.WeightUnit,
		BaseWeightGrams:          in.BaseWeightGrams,
		BaseWeightFeeCents:       in.BaseWeightFeeCents,
		AdditionalWeightFeeCents: in.AdditionalWeightFeeCents,
		FreeShippingMinCents:     in.FreeShippingMinCents,
		EstimatedDays:            in.EstimatedDays,
		EnableCOD:                in.EnableCOD,
		CODFeeCents:              in.CODFeeCents,
		EnableExpressShipping:    in.EnableExpressShipping,
		ExpressShippingFeeCents:  in.ExpressShippingFeeCents,
		ExpressEstimatedDays:     in.ExpressEstimatedDays,
	})
}
