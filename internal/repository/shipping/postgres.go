package shipping

import (
	"context"
	"errors"

	"storefront-engine/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const settingColumns = `id, enabled, shipping_type, flat_rate_cents, per_item_fee_cents,
max_item_fee_cents, weight_unit, base_weight_grams, base_weight_fee_cents,
additional_weight_fee_cents, free_shipping_min_cents, estimated_days,
enable_cod, cod_fee_cents, enable_express_shipping, express_shipping_fee_cents,
express_estimated_days, updated_at`

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func scanSetting(row pgx.Row) (*domain.ShippingSetting, error) {
	var s domain.ShippingSetting
	err := row.Scan(
		&s.ID, &s.Enabled, &s.ShippingType, &s.FlatRateCents, &s.PerItemFeeCents,
		&s.MaxItemFeeCents, &s.WeightUnit, &s.BaseWeightGrams, &s.BaseWeightFeeCents,
		&s.AdditionalWeightFeeCents, &s.FreeShippingMinCents, &s.EstimatedDays,
		&s.EnableCOD, &s.CODFeeCents, &s.EnableExpressShipping, &s.ExpressShippingFeeCents,
		&s.ExpressEstimatedDays, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *postgresRepo) Get(ctx context.Context) (*domain.ShippingSetting, error) {
	const q = `
SELECT ` + settingColumns + `
FROM shipping_settings
WHERE id = $1
`
	s, err := scanSetting(r.pool.QueryRow(ctx, q, domain.ShippingSettingID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, s domain.ShippingSetting) (*domain.ShippingSetting, error) {
	const q = `
INSERT INTO shipping_settings (id, enabled, shipping_type, flat_rate_cents, per_item_fee_cents,
	max_item_fee_cents, weight_unit, base_weight_grams, base_weight_fee_cents,
	additional_weight_fee_cents, free_shipping_min_cents, estimated_days,
	enable_cod, cod_fee_cents, enable_express_shipping, express_shipping_fee_cents,
	express_estimated_days)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
ON CONFLICT (id) DO UPDATE
SET enabled = EXCLUDED.enabled,
    shipping_type = EXCLUDED.shipping_type,
    flat_rate_cents = EXCLUDED.flat_rate_cents,
    per_item_fee_cents = EXCLUDED.per_item_fee_cents,
    max_item_fee_cents = EXCLUDED.max_item_fee_cents,
    weight_unit = EXCLUDED.weight_unit,
    base_weight_grams = EXCLUDED.base_weight_grams,
    base_weight_fee_cents = EXCLUDED.base_weight_fee_cents,
    additional_weight_fee_cents = EXCLUDED.additional_weight_fee_cents,
    free_shipping_min_cents = EXCLUDED.free_shipping_min_cents,
    estimated_days = EXCLUDED.estimated_days,
    enable_cod = EXCLUDED.enable_cod,
    cod_fee_cents = EXCLUDED.cod_fee_cents,
    enable_express_shipping = EXCLUDED.enable_express_shipping,
    express_shipping_fee_cents = EXCLUDED.express_shipping_fee_cents,
    express_estimated_days = EXCLUDED.express_estimated_days,
    updated_at = now()
RETURNING ` + settingColumns + `
`
	return scanSetting(r.pool.QueryRow(ctx, q,
		domain.ShippingSettingID, s.Enabled, s.ShippingType, s.FlatRateCents, s.PerItemFeeCents,
		s.MaxItemFeeCents, s.WeightUnit, s.BaseWeightGrams, s.BaseWeightFeeCents,
		s.AdditionalWeightFeeCents, s.FreeShippingMinCents, s.EstimatedDays,
		s.EnableCOD, s.CODFeeCents, s.EnableExpressShipping, s.ExpressShippingFeeCents,
		s.ExpressEstimatedDays,
	))
}
