package booking

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentdesk/internal/domain/shared/money"
)

func newTestBooking(t *testing.T) *Booking {
	t.Helper()
	b, err := NewBooking(CreateParams{
		ID:         "bk-1",
		PropertyID: "prop-1",
		TenantName: " Ana ",
		Range:      stay(3, 8),
		Amount:     decimal.NewFromInt(750),
		Currency:   money.USD,
		CreatedAt:  day(1),
	})
	require.NoError(t, err)
	return b
}

func TestNewBookingDefaults(t *testing.T) {
	b := newTestBooking(t)
	assert.Equal(t, StatusActive, b.Status)
	assert.Equal(t, ContractNone, b.ContractStatus)
	assert.Equal(t, "Ana", b.TenantName)

	evs := b.Drain()
	require.Len(t, evs, 1)
	assert.Equal(t, "booking.created", evs[0].EventName())
	assert.Empty(t, b.PendingEvents())
}

func TestNewBookingValidation(t *testing.T) {
	base := CreateParams{
		ID:         "bk-1",
		PropertyID: "prop-1",
		TenantName: "Ana",
		Range:      stay(3, 8),
		Currency:   money.ARS,
	}
	tests := []struct {
		name    string
		mutate  func(p *CreateParams)
		wantErr error
	}{
		{name: "missing id", mutate: func(p *CreateParams) { p.ID = "" }, wantErr: ErrBookingIDMissing},
		{name: "missing tenant", mutate: func(p *CreateParams) { p.TenantName = "  " }, wantErr: ErrTenantRequired},
		{name: "bad currency", mutate: func(p *CreateParams) { p.Currency = "EUR" }, wantErr: money.ErrInvalidCurrency},
		{name: "negative amount", mutate: func(p *CreateParams) { p.Amount = decimal.NewFromInt(-1) }, wantErr: ErrNegativeAmount},
		{name: "inverted range", mutate: func(p *CreateParams) { p.Range = stay(8, 3) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := base
			tt.mutate(&p)
			_, err := NewBooking(p)
			require.Error(t, err)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestUpdateIsAllOrNothing(t *testing.T) {
	b := newTestBooking(t)
	b.ClearEvents()
	amount := decimal.NewFromInt(900)
	bad := money.Currency("EUR")
	err := b.Update(Changes{Amount: &amount, Currency: &bad}, day(2))
	require.ErrorIs(t, err, money.ErrInvalidCurrency)
	assert.True(t, b.Amount.Equal(decimal.NewFromInt(750)))
	assert.Empty(t, b.PendingEvents())

	signed := ContractSigned
	guarantee := decimal.NewFromInt(200)
	require.NoError(t, b.Update(Changes{Amount: &amount, ContractStatus: &signed, Guarantee: &guarantee}, day(2)))
	assert.True(t, b.Amount.Equal(amount))
	assert.Equal(t, ContractSigned, b.ContractStatus)
	assert.Equal(t, day(2), b.UpdatedAt)
	assert.Len(t, b.PendingEvents(), 1)
}

func TestCancelTwiceFails(t *testing.T) {
	b := newTestBooking(t)
	require.NoError(t, b.Cancel("tenant left", time.Now()))
	assert.False(t, b.Status.IsActive())
	require.ErrorIs(t, b.Cancel("again", time.Now()), ErrInvalidState)
	require.ErrorIs(t, b.Update(Changes{}, time.Now()), ErrInvalidState)
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("")
	require.NoError(t, err)
	assert.Equal(t, StatusActive, s)

	s, err = ParseStatus(" Cancelled ")
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, s)

	_, err = ParseStatus("archived")
	require.ErrorIs(t, err, ErrInvalidStatus)
}
