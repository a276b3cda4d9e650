package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"rentdesk/internal/domain/booking"
	"rentdesk/internal/domain/property"
)

type PaymentRecorded struct {
	PaymentID  PaymentID
	BookingID  booking.BookingID
	PropertyID property.ID
	AmountUSD  decimal.Decimal
	At         time.Time
}

func (e PaymentRecorded) EventName() string     { return "ledger.payment_recorded" }
func (e PaymentRecorded) AggregateID() string   { return string(e.BookingID) }
func (e PaymentRecorded) OccurredAt() time.Time { return e.At }

type PaymentDeleted struct {
	PaymentID PaymentID
	BookingID booking.BookingID
	At        time.Time
}

func (e PaymentDeleted) EventName() string     { return "ledger.payment_deleted" }
func (e PaymentDeleted) AggregateID() string   { return string(e.BookingID) }
func (e PaymentDeleted) OccurredAt() time.Time { return e.At }

type ExpenseRecorded struct {
	ExpenseID  ExpenseID
	Scope      Scope
	PropertyID property.ID
	BookingID  booking.BookingID
	AmountARS  decimal.Decimal
	At         time.Time
}

func (e ExpenseRecorded) EventName() string     { return "ledger.expense_recorded" }
func (e ExpenseRecorded) AggregateID() string   { return string(e.PropertyID) }
func (e ExpenseRecorded) OccurredAt() time.Time { return e.At }
