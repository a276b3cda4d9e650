package pricing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"rentdesk/internal/domain/property"
	"rentdesk/internal/domain/shared/daterange"
	"rentdesk/internal/domain/shared/money"
)

var hundred = decimal.NewFromInt(100)

// MinStayError is returned as a result field: too-short stays are an
// expected outcome while the user is picking dates.
type MinStayError struct {
	Required int
	Nights   int
}

func (e *MinStayError) Error() string {
	return fmt.Sprintf("pricing: minimum stay is %d nights, got %d", e.Required, e.Nights)
}

func (e *MinStayError) Is(target error) bool { return target == ErrMinimumStayNotMet }

type AppliedDiscount struct {
	Percentage decimal.Decimal
	MinNights  int
}

type NightPrice struct {
	Date     time.Time
	Price    decimal.Decimal
	Seasonal bool
}

// DataWarning describes a configuration entry skipped during a quote.
type DataWarning struct {
	Field  string
	Index  int
	Reason string
}

type Breakdown struct {
	PropertyID        property.ID
	RawPrice          decimal.Decimal
	Discount          *AppliedDiscount
	MinNightsRequired int
	Nightly           []NightPrice
	Warnings          []DataWarning
}

type Result struct {
	TotalPrice     decimal.Decimal
	Nights         int
	Currency       money.Currency
	MinNightsError *MinStayError
	MissingConfig  bool
	Breakdown      Breakdown
}

// Err folds the soft outcomes into an error for callers that want one.
func (r Result) Err() error {
	if r.MissingConfig {
		return ErrNoPricingRules
	}
	if r.MinNightsError != nil {
		return r.MinNightsError
	}
	return nil
}

// Quote prices a stay against cfg.
//
// Minimum stay is resolved from the last rule containing the check-in day
// while nightly rates take the first seasonal range containing the night.
// The two tie-breaks differ on purpose and must stay that way. The discount
// is the eligible tier with the highest percentage, not the longest minimum.
func Quote(cfg *Config, stay daterange.DateRange) (Result, error) {
	if err := stay.Validate(); err != nil {
		return Result{}, err
	}
	nights := stay.Nights()
	if nights <= 0 {
		return Result{}, daterange.ErrInvalidRange
	}
	res := Result{Nights: nights, Currency: money.USD, TotalPrice: decimal.Zero}
	res.Breakdown.RawPrice = decimal.Zero
	if cfg == nil {
		res.MissingConfig = true
		return res, nil
	}
	res.Breakdown.PropertyID = cfg.PropertyID

	required, warnings := resolveMinNights(cfg, stay.CheckIn)
	res.Breakdown.MinNightsRequired = required
	res.Breakdown.Warnings = warnings
	if nights < required {
		res.MinNightsError = &MinStayError{Required: required, Nights: nights}
		return res, nil
	}

	seasons, seasonWarnings := usableSeasons(cfg.SeasonalRates)
	res.Breakdown.Warnings = append(res.Breakdown.Warnings, seasonWarnings...)

	raw := decimal.Zero
	res.Breakdown.Nightly = make([]NightPrice, 0, nights)
	for i := 0; i < nights; i++ {
		date := stay.Night(i)
		price, seasonal := nightlyRate(cfg.Base, seasons, date)
		raw = raw.Add(price)
		res.Breakdown.Nightly = append(res.Breakdown.Nightly, NightPrice{Date: date, Price: price, Seasonal: seasonal})
	}
	res.Breakdown.RawPrice = raw

	tier, tierWarnings := bestDiscount(cfg.DiscountTiers, nights)
	res.Breakdown.Warnings = append(res.Breakdown.Warnings, tierWarnings...)
	res.TotalPrice = raw
	if tier != nil {
		res.Breakdown.Discount = &AppliedDiscount{Percentage: tier.Percentage, MinNights: tier.MinNights}
		res.TotalPrice = raw.Mul(hundred.Sub(tier.Percentage)).Div(hundred)
	}
	return res, nil
}

func resolveMinNights(cfg *Config, checkIn time.Time) (int, []DataWarning) {
	required := cfg.DefaultMinNights
	if required <= 0 {
		required = 1
	}
	var warnings []DataWarning
	for i, rule := range cfg.MinStayRules {
		if err := rule.Period.Validate(); err != nil {
			warnings = append(warnings, DataWarning{Field: "min_stay_rules", Index: i, Reason: err.Error()})
			continue
		}
		if rule.MinNights <= 0 {
			warnings = append(warnings, DataWarning{Field: "min_stay_rules", Index: i, Reason: "min nights must be positive"})
			continue
		}
		if rule.Contains(checkIn) {
			required = rule.MinNights
		}
	}
	return required, warnings
}

func usableSeasons(rates []SeasonalRate) ([]SeasonalRate, []DataWarning) {
	var warnings []DataWarning
	out := make([]SeasonalRate, 0, len(rates))
	for i, r := range rates {
		if err := r.Period.Validate(); err != nil {
			warnings = append(warnings, DataWarning{Field: "seasonal_rates", Index: i, Reason: err.Error()})
			continue
		}
		if r.Rate.IsNegative() {
			warnings = append(warnings, DataWarning{Field: "seasonal_rates", Index: i, Reason: "rate cannot be negative"})
			continue
		}
		out = append(out, r)
	}
	return out, warnings
}

func nightlyRate(base decimal.Decimal, seasons []SeasonalRate, date time.Time) (decimal.Decimal, bool) {
	for _, s := range seasons {
		if s.Contains(date) {
			return s.Rate, true
		}
	}
	return base, false
}

func bestDiscount(tiers []DiscountTier, nights int) (*DiscountTier, []DataWarning) {
	var (
		best     *DiscountTier
		warnings []DataWarning
	)
	for i := range tiers {
		t := tiers[i]
		if t.Percentage.IsNegative() || t.Percentage.GreaterThan(hundred) {
			warnings = append(warnings, DataWarning{Field: "discount_tiers", Index: i, Reason: ErrInvalidDiscountTiers.Error()})
			continue
		}
		if nights < t.MinNights {
			continue
		}
		if best == nil || t.Percentage.GreaterThan(best.Percentage) {
			best = &t
		}
	}
	return best, warnings
}
