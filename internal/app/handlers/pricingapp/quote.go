package pricingapp

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"rentdesk/internal/app/dto"
	"rentdesk/internal/app/handlers/support"
	"rentdesk/internal/app/queries"
	"rentdesk/internal/app/uow"
	"rentdesk/internal/domain/pricing"
	"rentdesk/internal/domain/property"
	"rentdesk/internal/domain/shared/daterange"
)

const quoteKey = "pricing.quote"

type QuoteQuery struct {
	PropertyID string
	CheckIn    time.Time
	CheckOut   time.Time
}

func (q QuoteQuery) Key() string { return quoteKey }

func (q QuoteQuery) Validate() error {
	return property.ID(q.PropertyID).Validate()
}

// QuoteHandler prices a stay. A property without a saved configuration is
// not an error: the result carries MissingConfig instead.
type QuoteHandler struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
}

func (h *QuoteHandler) Handle(ctx context.Context, q QuoteQuery) (*dto.Quote, error) {
	stay, err := daterange.New(q.CheckIn, q.CheckOut)
	if err != nil {
		return nil, err
	}
	unit, execCtx, release, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer release()

	cfg, err := unit.PriceConfigs().ByProperty(execCtx, property.ID(q.PropertyID))
	if err != nil && !errors.Is(err, pricing.ErrConfigNotFound) {
		return nil, err
	}
	res, err := pricing.Quote(cfg, stay)
	if err != nil {
		return nil, err
	}
	logger := h.Logger
	if logger == nil {
		logger = slog.Default()
	}
	for _, w := range res.Breakdown.Warnings {
		logger.WarnContext(ctx, "pricing config entry skipped",
			"property_id", q.PropertyID, "field", w.Field, "index", w.Index, "reason", w.Reason)
	}
	out := dto.MapQuote(q.PropertyID, stay.CheckIn, stay.CheckOut, res)
	return &out, nil
}

var _ queries.Handler[QuoteQuery, *dto.Quote] = (*QuoteHandler)(nil)
