package bookings

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"rentdesk/internal/app/commands"
	"rentdesk/internal/app/dto"
	"rentdesk/internal/app/handlers/support"
	"rentdesk/internal/app/middleware"
	"rentdesk/internal/app/outbox"
	"rentdesk/internal/app/uow"
	domainbooking "rentdesk/internal/domain/booking"
	"rentdesk/internal/domain/property"
	"rentdesk/internal/domain/shared/daterange"
	"rentdesk/internal/domain/shared/money"
)

const createBookingKey = "booking.create"

type CreateBookingCommand struct {
	BookingID       string
	PropertyID      string
	TenantName      string
	CheckIn         time.Time
	CheckOut        time.Time
	Amount          decimal.Decimal
	Currency        string
	Guarantee       decimal.Decimal
	ContractStatus  string
	Status          string
	Notes           string
	IdempotencyKeyV string
}

func (c CreateBookingCommand) Key() string { return createBookingKey }

func (c CreateBookingCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c CreateBookingCommand) ResultPrototype() any { return &BookingResult{} }

func (c CreateBookingCommand) Validate() error {
	if err := property.ID(c.PropertyID).Validate(); err != nil {
		return err
	}
	if c.CheckIn.IsZero() || c.CheckOut.IsZero() {
		return daterange.ErrInvalidRange
	}
	return nil
}

// BookingResult is returned by create and update. SameDayTurnover is set
// when another booking checks out on the new check-in day.
type BookingResult struct {
	Booking         dto.Booking   `json:"booking"`
	SameDayTurnover *dto.Turnover `json:"same_day_turnover,omitempty"`
}

type CreateBookingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
	Clock      support.Clock
}

func (h *CreateBookingHandler) Handle(ctx context.Context, cmd CreateBookingCommand) (*BookingResult, error) {
	stay, err := daterange.New(cmd.CheckIn, cmd.CheckOut)
	if err != nil {
		return nil, err
	}
	currency, err := money.ParseCurrency(cmd.Currency)
	if err != nil {
		return nil, err
	}
	status, err := domainbooking.ParseStatus(cmd.Status)
	if err != nil {
		return nil, err
	}
	contract, err := domainbooking.ParseContractStatus(cmd.ContractStatus)
	if err != nil {
		return nil, err
	}
	id := cmd.BookingID
	if id == "" {
		id = uuid.NewString()
	}

	var result *BookingResult
	err = support.RunInUnit(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		b, err := domainbooking.NewBooking(domainbooking.CreateParams{
			ID:             domainbooking.BookingID(id),
			PropertyID:     property.ID(cmd.PropertyID),
			TenantName:     cmd.TenantName,
			Range:          stay,
			Amount:         cmd.Amount,
			Currency:       currency,
			Guarantee:      cmd.Guarantee,
			ContractStatus: contract,
			Status:         status,
			Notes:          cmd.Notes,
			CreatedAt:      h.Clock.Now(),
		})
		if err != nil {
			return err
		}
		var conflict domainbooking.Conflict
		if b.Status.IsActive() {
			conflict, err = ensureFree(ctx, unit.Bookings(), b.PropertyID, stay, "")
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
	if result.SameDayTurnover != nil {
		h.logger().InfoContext(ctx, "same-day turnover",
			"booking_id", result.Booking.ID, "previous_booking_id", result.SameDayTurnover.BookingID)
	}
	return result, nil
}

func (h *CreateBookingHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

var _ commands.Handler[CreateBookingCommand, *BookingResult] = (*CreateBookingHandler)(nil)
var _ middleware.IdempotentCommand = CreateBookingCommand{}
