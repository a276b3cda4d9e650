package ledgerapp

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"rentdesk/internal/app/commands"
	"rentdesk/internal/app/dto"
	"rentdesk/internal/app/handlers/support"
	"rentdesk/internal/app/outbox"
	"rentdesk/internal/app/policies"
	"rentdesk/internal/app/uow"
	domainbooking "rentdesk/internal/domain/booking"
	"rentdesk/internal/domain/ledger"
	"rentdesk/internal/domain/property"
	"rentdesk/internal/domain/shared/events"
	"rentdesk/internal/domain/shared/money"
)

const recordExpenseKey = "ledger.expense.record"

// RecordExpenseCommand registers a cost. Booking-scoped expenses may omit
// PropertyID; it is taken from the booking.
type RecordExpenseCommand struct {
	ExpenseID   string
	Scope       string
	PropertyID  string
	BookingID   string
	Amount      decimal.Decimal
	Currency    string
	Rate        decimal.NullDecimal
	Date        time.Time
	CategoryID  string
	Description string
}

func (c RecordExpenseCommand) Key() string { return recordExpenseKey }

func (c RecordExpenseCommand) Validate() error {
	if c.PropertyID == "" && c.BookingID == "" {
		return property.ErrPropertyRequired
	}
	if !c.Amount.IsPositive() {
		return ledger.ErrInvalidAmount
	}
	return money.CheckRate(c.Rate)
}

type RecordExpenseHandler struct {
	UoWFactory uow.UoWFactory
	Rates      policies.RateSource
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Clock      support.Clock
}

func (h *RecordExpenseHandler) Handle(ctx context.Context, cmd RecordExpenseCommand) (*dto.Expense, error) {
	scope, err := ledger.ParseScope(cmd.Scope)
	if err != nil {
		return nil, err
	}
	if cmd.Scope == "" && cmd.BookingID != "" {
		scope = ledger.ScopeBooking
	}
	currency, err := money.ParseCurrency(cmd.Currency)
	if err != nil {
		return nil, err
	}
	rate := cmd.Rate
	if currency == money.USD {
		if rate, err = policies.ResolveRate(ctx, h.Rates, cmd.Rate); err != nil {
			return nil, err
		}
	}
	id := cmd.ExpenseID
	if id == "" {
		id = uuid.NewString()
	}
	now := h.Clock.Now()
	date := cmd.Date
	if date.IsZero() {
		date = now
	}

	var out dto.Expense
	err = support.RunInUnit(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		propertyID := property.ID(cmd.PropertyID)
		if scope == ledger.ScopeBooking {
			b, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(cmd.BookingID))
			if err != nil {
				return err
			}
			if propertyID == "" {
				propertyID = b.PropertyID
			}
			if propertyID != b.PropertyID {
				return ErrPropertyMismatch
			}
		}
		e, err := ledger.NormalizeExpense(ledger.ExpenseInput{
			ID:          ledger.ExpenseID(id),
			Scope:       scope,
			PropertyID:  propertyID,
			BookingID:   domainbooking.BookingID(cmd.BookingID),
			Amount:      cmd.Amount,
			Currency:    currency,
			Rate:        rate,
			Date:        date,
			CategoryID:  cmd.CategoryID,
			Description: cmd.Description,
			Now:         now,
		})
		if err != nil {
			return err
		}
		if e.Scope == ledger.ScopeProperty {
			e.BookingID = ""
		}
		if err := unit.Expenses().Save(ctx, &e); err != nil {
			return err
		}
		ev := ledger.ExpenseRecorded{ExpenseID: e.ID, Scope: e.Scope, PropertyID: e.PropertyID, BookingID: e.BookingID, AmountARS: e.Amount, At: now}
		if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, []events.DomainEvent{ev}); err != nil {
			return err
		}
		out = dto.MapExpense(e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

var _ commands.Handler[RecordExpenseCommand, *dto.Expense] = (*RecordExpenseHandler)(nil)
