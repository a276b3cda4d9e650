package policies

import (
	"context"

	"github.com/shopspring/decimal"

	"rentdesk/internal/domain/shared/money"
)

// RateSource provides the current ARS per USD rate. ok is false when no rate
// is known, which callers treat as "no live rate" rather than an error.
type RateSource interface {
	CurrentRate(ctx context.Context) (rate decimal.Decimal, ok bool, err error)
}

// ResolveRate picks the explicit rate when given and falls back to src.
// The result is validated so downstream math never sees a non-positive rate.
func ResolveRate(ctx context.Context, src RateSource, explicit decimal.NullDecimal) (decimal.NullDecimal, error) {
	if explicit.Valid {
		if err := money.CheckRate(explicit); err != nil {
			return money.NoRate, err
		}
		return explicit, nil
	}
	if src == nil {
		return money.NoRate, nil
	}
	rate, ok, err := src.CurrentRate(ctx)
	if err != nil {
		return money.NoRate, err
	}
	if !ok {
		return money.NoRate, nil
	}
	resolved := money.Rate(rate)
	if err := money.CheckRate(resolved); err != nil {
		return money.NoRate, err
	}
	return resolved, nil
}
