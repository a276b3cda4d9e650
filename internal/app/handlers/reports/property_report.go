package reports

import (
	"context"

	"github.com/shopspring/decimal"

	"rentdesk/internal/app/dto"
	"rentdesk/internal/app/handlers/support"
	"rentdesk/internal/app/policies"
	"rentdesk/internal/app/queries"
	"rentdesk/internal/app/uow"
	domainbooking "rentdesk/internal/domain/booking"
	"rentdesk/internal/domain/ledger"
	"rentdesk/internal/domain/property"
	"rentdesk/internal/domain/shared/money"
)

const propertyReportKey = "report.property"

type PropertyReportQuery struct {
	PropertyID string
	Rate       decimal.NullDecimal
}

func (q PropertyReportQuery) Key() string { return propertyReportKey }

func (q PropertyReportQuery) Validate() error {
	if err := property.ID(q.PropertyID).Validate(); err != nil {
		return err
	}
	return money.CheckRate(q.Rate)
}

type PropertyReportHandler struct {
	UoWFactory uow.UoWFactory
	Rates      policies.RateSource
}

func (h *PropertyReportHandler) Handle(ctx context.Context, q PropertyReportQuery) (*dto.PropertyReport, error) {
	rate, err := policies.ResolveRate(ctx, h.Rates, q.Rate)
	if err != nil {
		return nil, err
	}
	unit, execCtx, release, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer release()

	report, err := buildReport(execCtx, unit, property.ID(q.PropertyID), rate)
	if err != nil {
		return nil, err
	}
	out := dto.MapPropertyReport(report, rate)
	return &out, nil
}

func buildReport(ctx context.Context, unit uow.UnitOfWork, propertyID property.ID, rate decimal.NullDecimal) (ledger.PropertyReport, error) {
	bookings, err := unit.Bookings().ListByProperty(ctx, propertyID)
	if err != nil {
		return ledger.PropertyReport{}, err
	}
	ids := make([]domainbooking.BookingID, 0, len(bookings))
	for _, b := range bookings {
		if b != nil {
			ids = append(ids, b.ID)
		}
	}
	payments, err := unit.Payments().ListByBookings(ctx, ids)
	if err != nil {
		return ledger.PropertyReport{}, err
	}
	expenses, err := unit.Expenses().ListByProperty(ctx, propertyID)
	if err != nil {
		return ledger.PropertyReport{}, err
	}
	return ledger.BuildPropertyReport(propertyID, bookings, payments, expenses, rate)
}

var _ queries.Handler[PropertyReportQuery, *dto.PropertyReport] = (*PropertyReportHandler)(nil)
