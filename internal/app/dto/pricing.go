package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"rentdesk/internal/domain/pricing"
)

type Period struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

type SeasonalRate struct {
	Period
	Rate decimal.Decimal `json:"rate"`
}

type MinStayRule struct {
	Period
	MinNights int `json:"min_nights"`
}

type DiscountTier struct {
	MinNights  int             `json:"min_nights"`
	Percentage decimal.Decimal `json:"percentage"`
}

type PriceConfig struct {
	PropertyID       string          `json:"property_id"`
	Base             decimal.Decimal `json:"base"`
	SeasonalRates    []SeasonalRate  `json:"seasonal_rates"`
	MinStayRules     []MinStayRule   `json:"min_stay_rules"`
	DefaultMinNights int             `json:"default_min_nights"`
	DiscountTiers    []DiscountTier  `json:"discount_tiers"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

type NightPrice struct {
	Date     time.Time       `json:"date"`
	Price    decimal.Decimal `json:"price"`
	Seasonal bool            `json:"seasonal"`
}

type AppliedDiscount struct {
	Percentage decimal.Decimal `json:"percentage"`
	MinNights  int             `json:"min_nights"`
}

type MinStayViolation struct {
	Required int    `json:"required"`
	Nights   int    `json:"nights"`
	Message  string `json:"message"`
}

type Warning struct {
	Field  string `json:"field"`
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

type Quote struct {
	PropertyID        string            `json:"property_id"`
	CheckIn           time.Time         `json:"check_in"`
	CheckOut          time.Time         `json:"check_out"`
	Nights            int               `json:"nights"`
	Currency          string            `json:"currency"`
	TotalPrice        decimal.Decimal   `json:"total_price"`
	RawPrice          decimal.Decimal   `json:"raw_price"`
	Discount          *AppliedDiscount  `json:"discount,omitempty"`
	MinNightsRequired int               `json:"min_nights_required"`
	MinNightsError    *MinStayViolation `json:"min_nights_error,omitempty"`
	MissingConfig     bool              `json:"missing_config"`
	Nightly           []NightPrice      `json:"nightly"`
	Warnings          []Warning         `json:"warnings,omitempty"`
}

func MapPriceConfig(cfg *pricing.Config) PriceConfig {
	out := PriceConfig{
		PropertyID:       string(cfg.PropertyID),
		Base:             cfg.Base,
		DefaultMinNights: cfg.DefaultMinNights,
		UpdatedAt:        cfg.UpdatedAt,
		SeasonalRates:    make([]SeasonalRate, 0, len(cfg.SeasonalRates)),
		MinStayRules:     make([]MinStayRule, 0, len(cfg.MinStayRules)),
		DiscountTiers:    make([]DiscountTier, 0, len(cfg.DiscountTiers)),
	}
	for _, s := range cfg.SeasonalRates {
		out.SeasonalRates = append(out.SeasonalRates, SeasonalRate{Period: Period{From: s.From, To: s.To}, Rate: s.Rate})
	}
	for _, m := range cfg.MinStayRules {
		out.MinStayRules = append(out.MinStayRules, MinStayRule{Period: Period{From: m.From, To: m.To}, MinNights: m.MinNights})
	}
	for _, t := range cfg.DiscountTiers {
		out.DiscountTiers = append(out.DiscountTiers, DiscountTier{MinNights: t.MinNights, Percentage: t.Percentage})
	}
	return out
}

func MapQuote(propertyID string, checkIn, checkOut time.Time, res pricing.Result) Quote {
	out := Quote{
		PropertyID:        propertyID,
		CheckIn:           checkIn,
		CheckOut:          checkOut,
		Nights:            res.Nights,
		Currency:          string(res.Currency),
		TotalPrice:        Round(res.TotalPrice),
		RawPrice:          Round(res.Breakdown.RawPrice),
		MinNightsRequired: res.Breakdown.MinNightsRequired,
		MissingConfig:     res.MissingConfig,
		Nightly:           make([]NightPrice, 0, len(res.Breakdown.Nightly)),
	}
	if d := res.Breakdown.Discount; d != nil {
		out.Discount = &AppliedDiscount{Percentage: d.Percentage, MinNights: d.MinNights}
	}
	if e := res.MinNightsError; e != nil {
		out.MinNightsError = &MinStayViolation{Required: e.Required, Nights: e.Nights, Message: e.Error()}
	}
	for _, n := range res.Breakdown.Nightly {
		out.Nightly = append(out.Nightly, NightPrice{Date: n.Date, Price: Round(n.Price), Seasonal: n.Seasonal})
	}
	for _, w := range res.Breakdown.Warnings {
		out.Warnings = append(out.Warnings, Warning{Field: w.Field, Index: w.Index, Reason: w.Reason})
	}
	return out
}
