package money

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidCurrency  = errors.New("money: invalid currency code")
	ErrCurrencyMismatch = errors.New("money: currency mismatch")
	ErrInvalidRate      = errors.New("money: exchange rate must be positive")
)

// Currency is one of the two currencies the back-office books in.
type Currency string

const (
	USD Currency = "USD"
	ARS Currency = "ARS"
)

// ParseCurrency normalizes a currency code, rejecting anything but USD and ARS.
func ParseCurrency(raw string) (Currency, error) {
	switch c := Currency(strings.ToUpper(strings.TrimSpace(raw))); c {
	case USD, ARS:
		return c, nil
	default:
		return "", ErrInvalidCurrency
	}
}

func (c Currency) Valid() bool {
	return c == USD || c == ARS
}

// Money pairs a decimal amount with its currency.
type Money struct {
	Amount   decimal.Decimal
	Currency Currency
}

// New constructs Money validating the currency.
func New(amount decimal.Decimal, currency Currency) (Money, error) {
	if !currency.Valid() {
		return Money{}, ErrInvalidCurrency
	}
	return Money{Amount: amount, Currency: currency}, nil
}

// Must creates Money and panics if validation fails; useful in tests and fixtures.
func Must(amount string, currency Currency) Money {
	m, err := New(decimal.RequireFromString(amount), currency)
	if err != nil {
		panic(err)
	}
	return m
}

// Add adds two money values ensuring currencies match.
func (m Money) Add(other Money) (Money, error) {
	if err := m.ensureSameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{Amount: m.Amount.Add(other.Amount), Currency: m.Currency}, nil
}

// Sub subtracts other from the receiver.
func (m Money) Sub(other Money) (Money, error) {
	if err := m.ensureSameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{Amount: m.Amount.Sub(other.Amount), Currency: m.Currency}, nil
}

func (m Money) IsZero() bool {
	return m.Amount.IsZero()
}

func (m Money) ensureSameCurrency(other Money) error {
	if m.Currency == "" || other.Currency == "" {
		return ErrInvalidCurrency
	}
	if m.Currency != other.Currency {
		return ErrCurrencyMismatch
	}
	return nil
}

// Rate wraps an ARS-per-USD rate; an invalid NullDecimal means "no rate".
func Rate(arsPerUSD decimal.Decimal) decimal.NullDecimal {
	return decimal.NewNullDecimal(arsPerUSD)
}

// NoRate is the absent rate.
var NoRate = decimal.NullDecimal{}

// CheckRate rejects a supplied rate that is zero or negative. An absent rate is fine.
func CheckRate(rate decimal.NullDecimal) error {
	if rate.Valid && !rate.Decimal.IsPositive() {
		return ErrInvalidRate
	}
	return nil
}

// Convert moves m into the target currency using an ARS-per-USD rate.
func Convert(m Money, to Currency, arsPerUSD decimal.Decimal) (Money, error) {
	if !m.Currency.Valid() || !to.Valid() {
		return Money{}, ErrInvalidCurrency
	}
	if m.Currency == to {
		return m, nil
	}
	if !arsPerUSD.IsPositive() {
		return Money{}, ErrInvalidRate
	}
	if to == ARS {
		return Money{Amount: m.Amount.Mul(arsPerUSD), Currency: ARS}, nil
	}
	return Money{Amount: m.Amount.Div(arsPerUSD), Currency: USD}, nil
}
