package ledger

import (
	"errors"

	"github.com/shopspring/decimal"

	"rentdesk/internal/domain/booking"
	"rentdesk/internal/domain/property"
	"rentdesk/internal/domain/shared/money"
)

// Summary is the financial state of one booking. Balance is expressed in the
// booking's own currency; the dual views exist only when a rate was supplied.
type Summary struct {
	BookingID  booking.BookingID
	Currency   money.Currency
	Amount     decimal.Decimal
	TotalPaid  decimal.Decimal
	Payments   int
	Balance    decimal.Decimal
	BalanceUSD decimal.NullDecimal
	BalanceARS decimal.NullDecimal
}

// Compute derives the ledger of a booking from its payments.
//
// TotalPaid trusts each payment's stored USD amount and never re-derives it
// from RateAtEntry. An ARS booking converts TotalPaid with the live rate, not
// the historical ones. Overpayment yields a negative balance.
func Compute(b booking.Booking, payments []Payment, rate decimal.NullDecimal) (Summary, error) {
	if err := money.CheckRate(rate); err != nil {
		return Summary{}, err
	}
	if !b.Currency.Valid() {
		return Summary{}, money.ErrInvalidCurrency
	}

	totalPaid := decimal.Zero
	for _, p := range payments {
		totalPaid = totalPaid.Add(p.Amount)
	}

	out := Summary{
		BookingID: b.ID,
		Currency:  b.Currency,
		Amount:    b.Amount,
		TotalPaid: totalPaid,
		Payments:  len(payments),
	}

	switch b.Currency {
	case money.USD:
		out.Balance = b.Amount.Sub(totalPaid)
	case money.ARS:
		if totalPaid.IsZero() {
			out.Balance = b.Amount
			break
		}
		if !rate.Valid {
			return Summary{}, ErrRateRequired
		}
		out.Balance = b.Amount.Sub(totalPaid.Mul(rate.Decimal))
	}

	if rate.Valid {
		native := money.Money{Amount: out.Balance, Currency: b.Currency}
		usd, err := money.Convert(native, money.USD, rate.Decimal)
		if err != nil {
			return Summary{}, err
		}
		ars, err := money.Convert(native, money.ARS, rate.Decimal)
		if err != nil {
			return Summary{}, err
		}
		out.BalanceUSD = decimal.NewNullDecimal(usd.Amount)
		out.BalanceARS = decimal.NewNullDecimal(ars.Amount)
	}
	return out, nil
}

// SumExpenses totals ARS-normalized expenses per owner (property or booking).
func SumExpenses(expenses []Expense) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, e := range expenses {
		key := e.OwnerID()
		out[key] = out[key].Add(e.Amount)
	}
	return out
}

// PropertyReport aggregates bookings, payments and expenses of one property.
// Expenses lower the net result but never a tenant's balance.
type PropertyReport struct {
	PropertyID  property.ID
	Bookings    []Summary
	Unresolved  []booking.BookingID
	IncomeUSD   decimal.Decimal
	IncomeARS   decimal.NullDecimal
	ExpensesARS decimal.Decimal
	ExpensesUSD decimal.NullDecimal
	NetARS      decimal.NullDecimal
	NetUSD      decimal.NullDecimal
	ByOwner     map[string]decimal.Decimal
}

// BuildPropertyReport only counts active bookings. ARS bookings whose balance
// cannot be expressed without a rate are listed in Unresolved.
func BuildPropertyReport(propertyID property.ID, bookings []*booking.Booking, payments []Payment, expenses []Expense, rate decimal.NullDecimal) (PropertyReport, error) {
	if err := money.CheckRate(rate); err != nil {
		return PropertyReport{}, err
	}
	byBooking := make(map[booking.BookingID][]Payment)
	for _, p := range payments {
		byBooking[p.BookingID] = append(byBooking[p.BookingID], p)
	}

	report := PropertyReport{
		PropertyID: propertyID,
		IncomeUSD:  decimal.Zero,
	}
	for _, b := range bookings {
		if b == nil || !b.Status.IsActive() {
			continue
		}
		paid := byBooking[b.ID]
		for _, p := range paid {
			report.IncomeUSD = report.IncomeUSD.Add(p.Amount)
		}
		summary, err := Compute(*b, paid, rate)
		if err != nil {
			if errors.Is(err, ErrRateRequired) {
				report.Unresolved = append(report.Unresolved, b.ID)
				continue
			}
			return PropertyReport{}, err
		}
		report.Bookings = append(report.Bookings, summary)
	}

	report.ByOwner = SumExpenses(expenses)
	report.ExpensesARS = decimal.Zero
	for _, e := range expenses {
		report.ExpensesARS = report.ExpensesARS.Add(e.Amount)
	}

	if rate.Valid {
		incomeARS := report.IncomeUSD.Mul(rate.Decimal)
		expensesUSD := report.ExpensesARS.Div(rate.Decimal)
		report.IncomeARS = decimal.NewNullDecimal(incomeARS)
		report.ExpensesUSD = decimal.NewNullDecimal(expensesUSD)
		report.NetARS = decimal.NewNullDecimal(incomeARS.Sub(report.ExpensesARS))
		report.NetUSD = decimal.NewNullDecimal(report.IncomeUSD.Sub(expensesUSD))
	}
	return report, nil
}
