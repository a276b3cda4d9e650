package pricingapp

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"rentdesk/internal/app/commands"
	"rentdesk/internal/app/dto"
	"rentdesk/internal/app/handlers/support"
	"rentdesk/internal/app/outbox"
	"rentdesk/internal/app/uow"
	"rentdesk/internal/domain/pricing"
	"rentdesk/internal/domain/property"
	"rentdesk/internal/domain/shared/daterange"
	"rentdesk/internal/domain/shared/events"
)

const saveConfigKey = "pricing.config.save"

type SaveConfigCommand struct {
	PropertyID       string
	Base             decimal.Decimal
	SeasonalRates    []dto.SeasonalRate
	MinStayRules     []dto.MinStayRule
	DefaultMinNights int
	DiscountTiers    []dto.DiscountTier
}

func (c SaveConfigCommand) Key() string { return saveConfigKey }

func (c SaveConfigCommand) Validate() error {
	return property.ID(c.PropertyID).Validate()
}

// config builds the domain value. Periods are stored as calendar days; a
// malformed range is kept as entered and skipped at quote time.
func (c SaveConfigCommand) config(now time.Time) *pricing.Config {
	cfg := &pricing.Config{
		PropertyID:       property.ID(c.PropertyID),
		Base:             c.Base,
		DefaultMinNights: c.DefaultMinNights,
		UpdatedAt:        now,
	}
	for _, s := range c.SeasonalRates {
		cfg.SeasonalRates = append(cfg.SeasonalRates, pricing.SeasonalRate{Period: period(s.Period), Rate: s.Rate})
	}
	for _, m := range c.MinStayRules {
		cfg.MinStayRules = append(cfg.MinStayRules, pricing.MinStayRule{Period: period(m.Period), MinNights: m.MinNights})
	}
	for _, t := range c.DiscountTiers {
		cfg.DiscountTiers = append(cfg.DiscountTiers, pricing.DiscountTier{MinNights: t.MinNights, Percentage: t.Percentage})
	}
	return cfg
}

func period(p dto.Period) daterange.Period {
	return daterange.Period{From: daterange.Day(p.From), To: daterange.Day(p.To)}
}

type SaveConfigHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Clock      support.Clock
}

func (h *SaveConfigHandler) Handle(ctx context.Context, cmd SaveConfigCommand) (*dto.PriceConfig, error) {
	now := h.Clock.Now()
	cfg := cmd.config(now)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	err := support.RunInUnit(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		if err := unit.PriceConfigs().Save(ctx, cfg); err != nil {
			return err
		}
		ev := pricing.ConfigSaved{PropertyID: cfg.PropertyID, Base: cfg.Base, At: now}
		return outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, []events.DomainEvent{ev})
	})
	if err != nil {
		return nil, err
	}
	out := dto.MapPriceConfig(cfg)
	return &out, nil
}

var _ commands.Handler[SaveConfigCommand, *dto.PriceConfig] = (*SaveConfigHandler)(nil)
