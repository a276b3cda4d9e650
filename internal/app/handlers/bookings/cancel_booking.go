package bookings

import (
	"context"

	"rentdesk/internal/app/commands"
	"rentdesk/internal/app/dto"
	"rentdesk/internal/app/handlers/support"
	"rentdesk/internal/app/outbox"
	"rentdesk/internal/app/uow"
	domainbooking "rentdesk/internal/domain/booking"
)

const cancelBookingKey = "booking.cancel"

type CancelBookingCommand struct {
	BookingID string
	Reason    string
}

func (c CancelBookingCommand) Key() string { return cancelBookingKey }

func (c CancelBookingCommand) Validate() error {
	if c.BookingID == "" {
		return domainbooking.ErrBookingIDMissing
	}
	return nil
}

// CancelBookingHandler frees the dates of a booking. Payments stay on
// record and the ledger of the booking remains readable.
type CancelBookingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Clock      support.Clock
}

func (h *CancelBookingHandler) Handle(ctx context.Context, cmd CancelBookingCommand) (*dto.Booking, error) {
	var out dto.Booking
	err := support.RunInUnit(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		b, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(cmd.BookingID))
		if err != nil {
			return err
		}
		if err := b.Cancel(cmd.Reason, h.Clock.Now()); err != nil {
			return err
		}
		if err := unit.Bookings().Save(ctx, b); err != nil {
			return err
		}
		if err := outbox.Publish(ctx, h.Outbox, h.Encoder, b); err != nil {
			return err
		}
		out = dto.MapBooking(b)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

var _ commands.Handler[CancelBookingCommand, *dto.Booking] = (*CancelBookingHandler)(nil)
