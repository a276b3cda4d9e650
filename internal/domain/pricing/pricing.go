package pricing

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"rentdesk/internal/domain/property"
	"rentdesk/internal/domain/shared/daterange"
)

var (
	ErrNoPricingRules       = errors.New("pricing: no pricing rules for property")
	ErrMinimumStayNotMet    = errors.New("pricing: minimum stay not met")
	ErrNegativeBase         = errors.New("pricing: base rate cannot be negative")
	ErrConfigNotFound       = errors.New("pricing: config not found")
	ErrInvalidDiscountTiers = errors.New("pricing: discount percentage must be within 0..100")
)

// SeasonalRate overrides the base nightly rate for nights inside Period.
type SeasonalRate struct {
	daterange.Period
	Rate decimal.Decimal
}

// MinStayRule overrides the minimum nights for stays starting inside Period.
type MinStayRule struct {
	daterange.Period
	MinNights int
}

type DiscountTier struct {
	MinNights  int
	Percentage decimal.Decimal
}

// Config is the per-property pricing configuration. All rates are USD per night.
type Config struct {
	PropertyID       property.ID
	Base             decimal.Decimal
	SeasonalRates    []SeasonalRate
	MinStayRules     []MinStayRule
	DefaultMinNights int
	DiscountTiers    []DiscountTier
	UpdatedAt        time.Time
	Version          int64
}

// Validate guards writes. Quote itself tolerates bad entries and skips them.
func (c Config) Validate() error {
	if err := c.PropertyID.Validate(); err != nil {
		return err
	}
	if c.Base.IsNegative() {
		return ErrNegativeBase
	}
	for _, t := range c.DiscountTiers {
		if t.Percentage.IsNegative() || t.Percentage.GreaterThan(hundred) {
			return ErrInvalidDiscountTiers
		}
	}
	return nil
}

type Repository interface {
	ByProperty(ctx context.Context, id property.ID) (*Config, error)
	Save(ctx context.Context, cfg *Config) error
}

type ConfigSaved struct {
	PropertyID property.ID
	Base       decimal.Decimal
	At         time.Time
}

func (e ConfigSaved) EventName() string     { return "pricing.config_saved" }
func (e ConfigSaved) AggregateID() string   { return string(e.PropertyID) }
func (e ConfigSaved) OccurredAt() time.Time { return e.At }
