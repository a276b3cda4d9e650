package ledger

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"rentdesk/internal/domain/booking"
	"rentdesk/internal/domain/property"
	"rentdesk/internal/domain/shared/money"
)

var (
	ErrInvalidAmount    = errors.New("ledger: amount must be positive")
	ErrDateRequired     = errors.New("ledger: date required")
	ErrRateRequired     = errors.New("ledger: exchange rate required for ARS conversion")
	ErrPaymentNotFound  = errors.New("ledger: payment not found")
	ErrExpenseNotFound  = errors.New("ledger: expense not found")
	ErrInvalidScope     = errors.New("ledger: unknown expense scope")
	ErrBookingIDMissing = errors.New("ledger: booking id required for booking expense")
)

type PaymentID string

// Payment is stored normalized to USD at entry time. EnteredAmount,
// EnteredCurrency and RateAtEntry keep what the user typed for display.
type Payment struct {
	ID              PaymentID
	BookingID       booking.BookingID
	Amount          decimal.Decimal
	EnteredAmount   decimal.Decimal
	EnteredCurrency money.Currency
	RateAtEntry     decimal.NullDecimal
	Date            time.Time
	Method          string
	CreatedAt       time.Time
}

type ExpenseID string

type Scope string

const (
	ScopeProperty Scope = "property"
	ScopeBooking  Scope = "booking"
)

func ParseScope(raw string) (Scope, error) {
	switch s := Scope(strings.ToLower(strings.TrimSpace(raw))); s {
	case "", ScopeProperty:
		return ScopeProperty, nil
	case ScopeBooking:
		return s, nil
	default:
		return "", ErrInvalidScope
	}
}

// Expense is stored normalized to ARS, the opposite of payments.
type Expense struct {
	ID                ExpenseID
	Scope             Scope
	PropertyID        property.ID
	BookingID         booking.BookingID
	Amount            decimal.Decimal
	OriginalUSDAmount decimal.NullDecimal
	RateAtEntry       decimal.NullDecimal
	Date              time.Time
	CategoryID        string
	Description       string
	CreatedAt         time.Time
}

// OwnerID is the booking for booking-scoped expenses and the property otherwise.
func (e Expense) OwnerID() string {
	if e.Scope == ScopeBooking {
		return string(e.BookingID)
	}
	return string(e.PropertyID)
}

type PaymentRepository interface {
	ByID(ctx context.Context, id PaymentID) (*Payment, error)
	ListByBooking(ctx context.Context, bookingID booking.BookingID) ([]Payment, error)
	ListByBookings(ctx context.Context, ids []booking.BookingID) ([]Payment, error)
	Save(ctx context.Context, payment *Payment) error
	Delete(ctx context.Context, id PaymentID) error
	DeleteByBooking(ctx context.Context, bookingID booking.BookingID) (int, error)
}

type ExpenseRepository interface {
	ListByProperty(ctx context.Context, propertyID property.ID) ([]Expense, error)
	Save(ctx context.Context, expense *Expense) error
	DeleteByBooking(ctx context.Context, bookingID booking.BookingID) (int, error)
}

type PaymentInput struct {
	ID        PaymentID
	BookingID booking.BookingID
	Amount    decimal.Decimal
	Currency  money.Currency
	Rate      decimal.NullDecimal
	Date      time.Time
	Method    string
	Now       time.Time
}

// NormalizePayment converts an entered payment to its canonical USD form,
// snapshotting the rate used for ARS entries.
func NormalizePayment(in PaymentInput) (Payment, error) {
	if !in.Amount.IsPositive() {
		return Payment{}, ErrInvalidAmount
	}
	if in.Date.IsZero() {
		return Payment{}, ErrDateRequired
	}
	if err := money.CheckRate(in.Rate); err != nil {
		return Payment{}, err
	}
	if in.Currency == money.ARS && !in.Rate.Valid {
		return Payment{}, ErrRateRequired
	}
	usd, err := money.Convert(money.Money{Amount: in.Amount, Currency: in.Currency}, money.USD, in.Rate.Decimal)
	if err != nil {
		return Payment{}, err
	}
	return Payment{
		ID:              in.ID,
		BookingID:       in.BookingID,
		Amount:          usd.Amount,
		EnteredAmount:   in.Amount,
		EnteredCurrency: in.Currency,
		RateAtEntry:     in.Rate,
		Date:            in.Date.UTC(),
		Method:          strings.TrimSpace(in.Method),
		CreatedAt:       in.Now.UTC(),
	}, nil
}

type ExpenseInput struct {
	ID          ExpenseID
	Scope       Scope
	PropertyID  property.ID
	BookingID   booking.BookingID
	Amount      decimal.Decimal
	Currency    money.Currency
	Rate        decimal.NullDecimal
	Date        time.Time
	CategoryID  string
	Description string
	Now         time.Time
}

// NormalizeExpense converts an entered expense to its canonical ARS form.
// USD entries keep the original amount alongside the converted one.
func NormalizeExpense(in ExpenseInput) (Expense, error) {
	if err := in.PropertyID.Validate(); err != nil {
		return Expense{}, err
	}
	if in.Scope == ScopeBooking && in.BookingID == "" {
		return Expense{}, ErrBookingIDMissing
	}
	if !in.Amount.IsPositive() {
		return Expense{}, ErrInvalidAmount
	}
	if in.Date.IsZero() {
		return Expense{}, ErrDateRequired
	}
	if err := money.CheckRate(in.Rate); err != nil {
		return Expense{}, err
	}
	if in.Currency == money.USD && !in.Rate.Valid {
		return Expense{}, ErrRateRequired
	}
	ars, err := money.Convert(money.Money{Amount: in.Amount, Currency: in.Currency}, money.ARS, in.Rate.Decimal)
	if err != nil {
		return Expense{}, err
	}
	exp := Expense{
		ID:          in.ID,
		Scope:       in.Scope,
		PropertyID:  in.PropertyID,
		BookingID:   in.BookingID,
		Amount:      ars.Amount,
		Date:        in.Date.UTC(),
		CategoryID:  in.CategoryID,
		Description: in.Description,
		CreatedAt:   in.Now.UTC(),
	}
	if exp.Scope == "" {
		exp.Scope = ScopeProperty
	}
	if in.Currency == money.USD {
		exp.OriginalUSDAmount = decimal.NewNullDecimal(in.Amount)
		exp.RateAtEntry = in.Rate
	}
	return exp, nil
}
