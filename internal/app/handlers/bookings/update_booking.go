package bookings

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"rentdesk/internal/app/commands"
	"rentdesk/internal/app/dto"
	"rentdesk/internal/app/handlers/support"
	"rentdesk/internal/app/outbox"
	"rentdesk/internal/app/uow"
	domainbooking "rentdesk/internal/domain/booking"
	"rentdesk/internal/domain/shared/daterange"
	"rentdesk/internal/domain/shared/money"
)

const updateBookingKey = "booking.update"

// UpdateBookingCommand is a partial edit; nil fields stay as they are.
// CheckIn and CheckOut must be sent together.
type UpdateBookingCommand struct {
	BookingID      string
	TenantName     *string
	CheckIn        *time.Time
	CheckOut       *time.Time
	Amount         *decimal.Decimal
	Currency       *string
	Guarantee      *decimal.Decimal
	ContractStatus *string
	Status         *string
	Notes          *string
}

func (c UpdateBookingCommand) Key() string { return updateBookingKey }

func (c UpdateBookingCommand) Validate() error {
	if c.BookingID == "" {
		return domainbooking.ErrBookingIDMissing
	}
	if (c.CheckIn == nil) != (c.CheckOut == nil) {
		return daterange.ErrInvalidRange
	}
	return nil
}

func (c UpdateBookingCommand) changes() (domainbooking.Changes, error) {
	ch := domainbooking.Changes{
		TenantName: c.TenantName,
		Amount:     c.Amount,
		Guarantee:  c.Guarantee,
		Notes:      c.Notes,
	}
	if c.CheckIn != nil && c.CheckOut != nil {
		stay, err := daterange.New(*c.CheckIn, *c.CheckOut)
		if err != nil {
			return ch, err
		}
		ch.Range = &stay
	}
	if c.Currency != nil {
		cur, err := money.ParseCurrency(*c.Currency)
		if err != nil {
			return ch, err
		}
		ch.Currency = &cur
	}
	if c.ContractStatus != nil {
		cs, err := domainbooking.ParseContractStatus(*c.ContractStatus)
		if err != nil {
			return ch, err
		}
		ch.ContractStatus = &cs
	}
	if c.Status != nil {
		st, err := domainbooking.ParseStatus(*c.Status)
		if err != nil {
			return ch, err
		}
		ch.Status = &st
	}
	return ch, nil
}

type UpdateBookingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Clock      support.Clock
}

func (h *UpdateBookingHandler) Handle(ctx context.Context, cmd UpdateBookingCommand) (*BookingResult, error) {
	ch, err := cmd.changes()
	if err != nil {
		return nil, err
	}
	var result *BookingResult
	err = support.RunInUnit(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		b, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(cmd.BookingID))
		if err != nil {
			return err
		}
		if err := b.Update(ch, h.Clock.Now()); err != nil {
			return err
		}
		var conflict domainbooking.Conflict
		if b.Status.IsActive() {
			conflict, err = ensureFree(ctx, unit.Bookings(), b.PropertyID, b.Range, b.ID)
			if err != nil {
				return err
			}
		}
		if err := unit.Bookings().Save(ctx, b); err != nil {
			return err
		}
		if err := outbox.Publish(ctx, h.Outbox, h.Encoder, b); err != nil {
			return err
		}
		result = &BookingResult{Booking: dto.MapBooking(b), SameDayTurnover: dto.MapTurnover(conflict.SameDayTurnover)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

var _ commands.Handler[UpdateBookingCommand, *BookingResult] = (*UpdateBookingHandler)(nil)
