package ledgerapp

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
	"rentdesk/internal/domain/shared/money"
)

const bookingLedgerKey = "ledger.booking"

// BookingLedgerQuery asks for the balance of one booking. Rate overrides
// the cached rate for this read only.
type BookingLedgerQuery struct {
	BookingID string
	Rate      decimal.NullDecimal
}

func (q BookingLedgerQuery) Key() string { return bookingLedgerKey }

func (q BookingLedgerQuery) Validate() error {
	if q.BookingID == "" {
		return domainbooking.ErrBookingIDMissing
	}
	return money.CheckRate(q.Rate)
}

type BookingLedgerHandler struct {
	UoWFactory uow.UoWFactory
	Rates      policies.RateSource
}

func (h *BookingLedgerHandler) Handle(ctx context.Context, q BookingLedgerQuery) (*dto.BookingLedger, error) {
	rate, err := policies.ResolveRate(ctx, h.Rates, q.Rate)
	if err != nil {
		return nil, err
	}
	unit, execCtx, release, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer release()

	b, err := unit.Bookings().ByID(execCtx, domainbooking.BookingID(q.BookingID))
	if err != nil {
		return nil, err
	}
	payments, err := unit.Payments().ListByBooking(execCtx, b.ID)
	if err != nil {
		return nil, err
	}
	summary, err := ledger.Compute(*b, payments, rate)
	if err != nil {
		return nil, err
	}
	out := dto.MapBookingLedger(summary, payments, rate)
	return &out, nil
}

var _ queries.Handler[BookingLedgerQuery, *dto.BookingLedger] = (*BookingLedgerHandler)(nil)
