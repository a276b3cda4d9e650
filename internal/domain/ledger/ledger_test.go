package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentdesk/internal/domain/booking"
	"rentdesk/internal/domain/shared/daterange"
	"rentdesk/internal/domain/shared/money"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func requireDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

func testBooking(id string, amount string, currency money.Currency) booking.Booking {
	return booking.Booking{
		ID:         booking.BookingID(id),
		PropertyID: "prop-1",
		Range: daterange.DateRange{
			CheckIn:  time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
			CheckOut: time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		},
		Amount:   dec(amount),
		Currency: currency,
	}
}

func usdPayment(bookingID, amount string) Payment {
	return Payment{BookingID: booking.BookingID(bookingID), Amount: dec(amount), EnteredAmount: dec(amount), EnteredCurrency: money.USD}
}

func TestComputeUSDBooking(t *testing.T) {
	b := testBooking("bk-1", "1000", money.USD)
	s, err := Compute(b, []Payment{usdPayment("bk-1", "300"), usdPayment("bk-1", "200")}, money.NoRate)
	require.NoError(t, err)
	requireDecimal(t, "500", s.TotalPaid)
	requireDecimal(t, "500", s.Balance)
	assert.Equal(t, 2, s.Payments)
	assert.False(t, s.BalanceUSD.Valid)
	assert.False(t, s.BalanceARS.Valid)
}

func TestComputeARSBookingUsesLiveRate(t *testing.T) {
	b := testBooking("bk-1", "100000", money.ARS)
	// The stored payment was entered at 800 ARS/USD; the live rate wins.
	p := Payment{BookingID: "bk-1", Amount: dec("50"), EnteredAmount: dec("40000"), EnteredCurrency: money.ARS, RateAtEntry: money.Rate(dec("800"))}
	s, err := Compute(b, []Payment{p}, money.Rate(dec("1000")))
	require.NoError(t, err)
	requireDecimal(t, "50", s.TotalPaid)
	requireDecimal(t, "50000", s.Balance)
	require.True(t, s.BalanceARS.Valid)
	requireDecimal(t, "50000", s.BalanceARS.Decimal)
	require.True(t, s.BalanceUSD.Valid)
	requireDecimal(t, "50", s.BalanceUSD.Decimal)
}

func TestComputeDualViewsForUSDBooking(t *testing.T) {
	b := testBooking("bk-1", "700", money.USD)
	s, err := Compute(b, []Payment{usdPayment("bk-1", "200")}, money.Rate(dec("1000")))
	require.NoError(t, err)
	requireDecimal(t, "500", s.Balance)
	requireDecimal(t, "500", s.BalanceUSD.Decimal)
	requireDecimal(t, "500000", s.BalanceARS.Decimal)
}

func TestComputeNegativeBalanceIsNotClamped(t *testing.T) {
	b := testBooking("bk-1", "400", money.USD)
	s, err := Compute(b, []Payment{usdPayment("bk-1", "450")}, money.NoRate)
	require.NoError(t, err)
	requireDecimal(t, "-50", s.Balance)
	assert.True(t, s.Balance.IsNegative())
}

func TestComputeMissingAmountIsZero(t *testing.T) {
	b := testBooking("bk-1", "0", money.USD)
	b.Amount = decimal.Decimal{}
	s, err := Compute(b, []Payment{usdPayment("bk-1", "25")}, money.NoRate)
	require.NoError(t, err)
	requireDecimal(t, "-25", s.Balance)
}

func TestComputeRejectsNonPositiveRate(t *testing.T) {
	b := testBooking("bk-1", "1000", money.USD)
	for _, r := range []string{"0", "-5"} {
		_, err := Compute(b, nil, money.Rate(dec(r)))
		require.ErrorIs(t, err, money.ErrInvalidRate, "rate %s", r)
	}
}

func TestComputeARSWithoutRate(t *testing.T) {
	b := testBooking("bk-1", "1000", money.ARS)

	s, err := Compute(b, nil, money.NoRate)
	require.NoError(t, err)
	requireDecimal(t, "1000", s.Balance)

	_, err = Compute(b, []Payment{usdPayment("bk-1", "1")}, money.NoRate)
	require.ErrorIs(t, err, ErrRateRequired)
}

func TestComputeIsIdempotent(t *testing.T) {
	b := testBooking("bk-1", "100000", money.ARS)
	payments := []Payment{usdPayment("bk-1", "12.5"), usdPayment("bk-1", "7.25")}
	rate := money.Rate(dec("1234.5"))
	first, err := Compute(b, payments, rate)
	require.NoError(t, err)
	second, err := Compute(b, payments, rate)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestNormalizePayment(t *testing.T) {
	now := time.Date(2025, 1, 3, 12, 0, 0, 0, time.UTC)

	p, err := NormalizePayment(PaymentInput{ID: "p1", BookingID: "bk-1", Amount: dec("150000"), Currency: money.ARS, Rate: money.Rate(dec("1000")), Date: now, Now: now})
	require.NoError(t, err)
	requireDecimal(t, "150", p.Amount)
	requireDecimal(t, "150000", p.EnteredAmount)
	assert.Equal(t, money.ARS, p.EnteredCurrency)
	requireDecimal(t, "1000", p.RateAtEntry.Decimal)

	p, err = NormalizePayment(PaymentInput{ID: "p2", BookingID: "bk-1", Amount: dec("80"), Currency: money.USD, Date: now, Now: now})
	require.NoError(t, err)
	requireDecimal(t, "80", p.Amount)
	assert.False(t, p.RateAtEntry.Valid)

	tests := []struct {
		name    string
		in      PaymentInput
		wantErr error
	}{
		{name: "ars without rate", in: PaymentInput{Amount: dec("10"), Currency: money.ARS, Date: now}, wantErr: ErrRateRequired},
		{name: "zero rate", in: PaymentInput{Amount: dec("10"), Currency: money.ARS, Rate: money.Rate(decimal.Zero), Date: now}, wantErr: money.ErrInvalidRate},
		{name: "zero amount", in: PaymentInput{Amount: decimal.Zero, Currency: money.USD, Date: now}, wantErr: ErrInvalidAmount},
		{name: "missing date", in: PaymentInput{Amount: dec("10"), Currency: money.USD}, wantErr: ErrDateRequired},
		{name: "unknown currency", in: PaymentInput{Amount: dec("10"), Currency: "EUR", Date: now}, wantErr: money.ErrInvalidCurrency},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NormalizePayment(tt.in)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNormalizeExpense(t *testing.T) {
	now := time.Date(2025, 1, 3, 12, 0, 0, 0, time.UTC)

	e, err := NormalizeExpense(ExpenseInput{ID: "e1", PropertyID: "prop-1", Amount: dec("20"), Currency: money.USD, Rate: money.Rate(dec("1000")), Date: now})
	require.NoError(t, err)
	requireDecimal(t, "20000", e.Amount)
	require.True(t, e.OriginalUSDAmount.Valid)
	requireDecimal(t, "20", e.OriginalUSDAmount.Decimal)
	assert.Equal(t, ScopeProperty, e.Scope)
	assert.Equal(t, "prop-1", e.OwnerID())

	e, err = NormalizeExpense(ExpenseInput{ID: "e2", Scope: ScopeBooking, PropertyID: "prop-1", BookingID: "bk-9", Amount: dec("3500"), Currency: money.ARS, Date: now})
	require.NoError(t, err)
	requireDecimal(t, "3500", e.Amount)
	assert.False(t, e.OriginalUSDAmount.Valid)
	assert.Equal(t, "bk-9", e.OwnerID())

	_, err = NormalizeExpense(ExpenseInput{PropertyID: "prop-1", Amount: dec("20"), Currency: money.USD, Date: now})
	require.ErrorIs(t, err, ErrRateRequired)

	_, err = NormalizeExpense(ExpenseInput{Scope: ScopeBooking, PropertyID: "prop-1", Amount: dec("20"), Currency: money.ARS, Date: now})
	require.ErrorIs(t, err, ErrBookingIDMissing)
}

func TestBuildPropertyReportKeepsExpensesOutOfBalances(t *testing.T) {
	active := testBooking("bk-1", "1000", money.USD)
	cancelled := testBooking("bk-2", "900", money.USD)
	cancelled.Status = booking.StatusCancelled
	ars := testBooking("bk-3", "200000", money.ARS)

	payments := []Payment{usdPayment("bk-1", "600"), usdPayment("bk-2", "900"), usdPayment("bk-3", "100")}
	expenses := []Expense{
		{Scope: ScopeProperty, PropertyID: "prop-1", Amount: dec("50000")},
		{Scope: ScopeBooking, PropertyID: "prop-1", BookingID: "bk-1", Amount: dec("10000")},
	}

	report, err := BuildPropertyReport("prop-1", []*booking.Booking{&active, &cancelled, &ars}, payments, expenses, money.Rate(dec("1000")))
	require.NoError(t, err)
	require.Len(t, report.Bookings, 2)
	requireDecimal(t, "400", report.Bookings[0].Balance)
	requireDecimal(t, "100000", report.Bookings[1].Balance)
	requireDecimal(t, "700", report.IncomeUSD)
	requireDecimal(t, "60000", report.ExpensesARS)
	requireDecimal(t, "700000", report.IncomeARS.Decimal)
	requireDecimal(t, "640000", report.NetARS.Decimal)
	requireDecimal(t, "640", report.NetUSD.Decimal)
	requireDecimal(t, "10000", report.ByOwner["bk-1"])
	requireDecimal(t, "50000", report.ByOwner["prop-1"])
}

func TestBuildPropertyReportWithoutRate(t *testing.T) {
	usd := testBooking("bk-1", "1000", money.USD)
	ars := testBooking("bk-3", "200000", money.ARS)
	payments := []Payment{usdPayment("bk-1", "600"), usdPayment("bk-3", "100")}

	report, err := BuildPropertyReport("prop-1", []*booking.Booking{&usd, &ars}, payments, nil, money.NoRate)
	require.NoError(t, err)
	require.Len(t, report.Bookings, 1)
	assert.Equal(t, []booking.BookingID{"bk-3"}, report.Unresolved)
	requireDecimal(t, "700", report.IncomeUSD)
	assert.False(t, report.NetARS.Valid)
}
