package ledgerapp

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"rentdesk/internal/app/commands"
	"rentdesk/internal/app/dto"
	"rentdesk/internal/app/handlers/support"
	"rentdesk/internal/app/middleware"
	"rentdesk/internal/app/outbox"
	"rentdesk/internal/app/policies"
	"rentdesk/internal/app/uow"
	domainbooking "rentdesk/internal/domain/booking"
	"rentdesk/internal/domain/ledger"
	"rentdesk/internal/domain/shared/events"
	"rentdesk/internal/domain/shared/money"
)

const (
	recordPaymentKey = "ledger.payment.record"
	deletePaymentKey = "ledger.payment.delete"
)

// RecordPaymentCommand registers money received for a booking. Rate is the
// ARS per USD rate of the day; when absent the cached rate is used.
type RecordPaymentCommand struct {
	PaymentID       string
	BookingID       string
	Amount          decimal.Decimal
	Currency        string
	Rate            decimal.NullDecimal
	Date            time.Time
	Method          string
	IdempotencyKeyV string
}

func (c RecordPaymentCommand) Key() string { return recordPaymentKey }

func (c RecordPaymentCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c RecordPaymentCommand) ResultPrototype() any { return &dto.Payment{} }

func (c RecordPaymentCommand) Validate() error {
	if c.BookingID == "" {
		return domainbooking.ErrBookingIDMissing
	}
	if !c.Amount.IsPositive() {
		return ledger.ErrInvalidAmount
	}
	return money.CheckRate(c.Rate)
}

type RecordPaymentHandler struct {
	UoWFactory uow.UoWFactory
	Rates      policies.RateSource
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Clock      support.Clock
}

func (h *RecordPaymentHandler) Handle(ctx context.Context, cmd RecordPaymentCommand) (*dto.Payment, error) {
	currency, err := money.ParseCurrency(cmd.Currency)
	if err != nil {
		return nil, err
	}
	rate := cmd.Rate
	if currency == money.ARS {
		if rate, err = policies.ResolveRate(ctx, h.Rates, cmd.Rate); err != nil {
			return nil, err
		}
	}
	id := cmd.PaymentID
	if id == "" {
		id = uuid.NewString()
	}
	now := h.Clock.Now()
	date := cmd.Date
	if date.IsZero() {
		date = now
	}

	var out dto.Payment
	err = support.RunInUnit(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		b, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(cmd.BookingID))
		if err != nil {
			return err
		}
		p, err := ledger.NormalizePayment(ledger.PaymentInput{
			ID:        ledger.PaymentID(id),
			BookingID: b.ID,
			Amount:    cmd.Amount,
			Currency:  currency,
			Rate:      rate,
			Date:      date,
			Method:    cmd.Method,
			Now:       now,
		})
		if err != nil {
			return err
		}
		if err := unit.Payments().Save(ctx, &p); err != nil {
			return err
		}
		ev := ledger.PaymentRecorded{PaymentID: p.ID, BookingID: p.BookingID, PropertyID: b.PropertyID, AmountUSD: p.Amount, At: now}
		if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, []events.DomainEvent{ev}); err != nil {
			return err
		}
		out = dto.MapPayment(p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

type DeletePaymentCommand struct {
	PaymentID string
}

func (c DeletePaymentCommand) Key() string { return deletePaymentKey }

func (c DeletePaymentCommand) Validate() error {
	if c.PaymentID == "" {
		return ledger.ErrPaymentNotFound
	}
	return nil
}

type DeletePaymentResult struct {
	PaymentID string `json:"payment_id"`
	BookingID string `json:"booking_id"`
}

type DeletePaymentHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Clock      support.Clock
}

func (h *DeletePaymentHandler) Handle(ctx context.Context, cmd DeletePaymentCommand) (*DeletePaymentResult, error) {
	var out *DeletePaymentResult
	err := support.RunInUnit(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		p, err := unit.Payments().ByID(ctx, ledger.PaymentID(cmd.PaymentID))
		if err != nil {
			return err
		}
		if err := unit.Payments().Delete(ctx, p.ID); err != nil {
			return err
		}
		ev := ledger.PaymentDeleted{PaymentID: p.ID, BookingID: p.BookingID, At: h.Clock.Now()}
		if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, []events.DomainEvent{ev}); err != nil {
			return err
		}
		out = &DeletePaymentResult{PaymentID: string(p.ID), BookingID: string(p.BookingID)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

var (
	_ commands.Handler[RecordPaymentCommand, *dto.Payment]         = (*RecordPaymentHandler)(nil)
	_ commands.Handler[DeletePaymentCommand, *DeletePaymentResult] = (*DeletePaymentHandler)(nil)
	_ middleware.IdempotentCommand                                 = RecordPaymentCommand{}
)
