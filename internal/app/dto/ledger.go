package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"rentdesk/internal/domain/ledger"
)

type Payment struct {
	ID              string              `json:"id"`
	BookingID       string              `json:"booking_id"`
	AmountUSD       decimal.Decimal     `json:"amount_usd"`
	EnteredAmount   decimal.Decimal     `json:"entered_amount"`
	EnteredCurrency string              `json:"entered_currency"`
	RateAtEntry     decimal.NullDecimal `json:"rate_at_entry"`
	Date            time.Time           `json:"date"`
	Method          string              `json:"method,omitempty"`
}

type Expense struct {
	ID                string              `json:"id"`
	Scope             string              `json:"scope"`
	PropertyID        string              `json:"property_id"`
	BookingID         string              `json:"booking_id,omitempty"`
	AmountARS         decimal.Decimal     `json:"amount_ars"`
	OriginalUSDAmount decimal.NullDecimal `json:"original_usd_amount"`
	RateAtEntry       decimal.NullDecimal `json:"rate_at_entry"`
	Date              time.Time           `json:"date"`
	CategoryID        string              `json:"category_id,omitempty"`
	Description       string              `json:"description,omitempty"`
}

type LedgerSummary struct {
	BookingID  string              `json:"booking_id"`
	Currency   string              `json:"currency"`
	Amount     decimal.Decimal     `json:"amount"`
	TotalPaid  decimal.Decimal     `json:"total_paid_usd"`
	Payments   int                 `json:"payments"`
	Balance    decimal.Decimal     `json:"balance"`
	BalanceUSD decimal.NullDecimal `json:"balance_usd"`
	BalanceARS decimal.NullDecimal `json:"balance_ars"`
}

type BookingLedger struct {
	Summary  LedgerSummary       `json:"summary"`
	Rate     decimal.NullDecimal `json:"rate"`
	Payments []Payment           `json:"payments"`
}

func MapPayment(p ledger.Payment) Payment {
	return Payment{
		ID:              string(p.ID),
		BookingID:       string(p.BookingID),
		AmountUSD:       Round(p.Amount),
		EnteredAmount:   p.EnteredAmount,
		EnteredCurrency: string(p.EnteredCurrency),
		RateAtEntry:     p.RateAtEntry,
		Date:            p.Date,
		Method:          p.Method,
	}
}

func MapExpense(e ledger.Expense) Expense {
	return Expense{
		ID:                string(e.ID),
		Scope:             string(e.Scope),
		PropertyID:        string(e.PropertyID),
		BookingID:         string(e.BookingID),
		AmountARS:         Round(e.Amount),
		OriginalUSDAmount: e.OriginalUSDAmount,
		RateAtEntry:       e.RateAtEntry,
		Date:              e.Date,
		CategoryID:        e.CategoryID,
		Description:       e.Description,
	}
}

func MapSummary(s ledger.Summary) LedgerSummary {
	return LedgerSummary{
		BookingID:  string(s.BookingID),
		Currency:   string(s.Currency),
		Amount:     Round(s.Amount),
		TotalPaid:  Round(s.TotalPaid),
		Payments:   s.Payments,
		Balance:    Round(s.Balance),
		BalanceUSD: RoundNull(s.BalanceUSD),
		BalanceARS: RoundNull(s.BalanceARS),
	}
}

func MapBookingLedger(s ledger.Summary, payments []ledger.Payment, rate decimal.NullDecimal) BookingLedger {
	out := BookingLedger{Summary: MapSummary(s), Rate: rate, Payments: make([]Payment, 0, len(payments))}
	for _, p := range payments {
		out.Payments = append(out.Payments, MapPayment(p))
	}
	return out
}
