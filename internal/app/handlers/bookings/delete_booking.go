package bookings

import (
	"context"

	"rentdesk/internal/app/commands"
	"rentdesk/internal/app/handlers/support"
	"rentdesk/internal/app/outbox"
	"rentdesk/internal/app/uow"
	domainbooking "rentdesk/internal/domain/booking"
)

const deleteBookingKey = "booking.delete"

type DeleteBookingCommand struct {
	BookingID string
}

func (c DeleteBookingCommand) Key() string { return deleteBookingKey }

func (c DeleteBookingCommand) Validate() error {
	if c.BookingID == "" {
		return domainbooking.ErrBookingIDMissing
	}
	return nil
}

type DeleteBookingResult struct {
	BookingID       string `json:"booking_id"`
	PaymentsRemoved int    `json:"payments_removed"`
	ExpensesRemoved int    `json:"expenses_removed"`
}

// DeleteBookingHandler removes a booking together with its payments and
// booking-scoped expenses.
type DeleteBookingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Clock      support.Clock
}

func (h *DeleteBookingHandler) Handle(ctx context.Context, cmd DeleteBookingCommand) (*DeleteBookingResult, error) {
	id := domainbooking.BookingID(cmd.BookingID)
	out := &DeleteBookingResult{BookingID: cmd.BookingID}
	err := support.RunInUnit(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		b, err := unit.Bookings().ByID(ctx, id)
		if err != nil {
			return err
		}
		if out.PaymentsRemoved, err = unit.Payments().DeleteByBooking(ctx, id); err != nil {
			return err
		}
		if out.ExpensesRemoved, err = unit.Expenses().DeleteByBooking(ctx, id); err != nil {
			return err
		}
		if err := unit.Bookings().Delete(ctx, id); err != nil {
			return err
		}
		b.MarkDeleted(h.Clock.Now())
		return outbox.Publish(ctx, h.Outbox, h.Encoder, b)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

var _ commands.Handler[DeleteBookingCommand, *DeleteBookingResult] = (*DeleteBookingHandler)(nil)
