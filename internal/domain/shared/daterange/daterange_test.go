package daterange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewRejectsMalformedRanges(t *testing.T) {
	tests := []struct {
		name     string
		checkIn  time.Time
		checkOut time.Time
	}{
		{name: "zero check-in", checkOut: date(2025, 1, 2)},
		{name: "zero check-out", checkIn: date(2025, 1, 2)},
		{name: "inverted", checkIn: date(2025, 1, 5), checkOut: date(2025, 1, 2)},
		{name: "same day", checkIn: date(2025, 1, 5), checkOut: date(2025, 1, 5)},
		{name: "same day different hours", checkIn: time.Date(2025, 1, 5, 9, 0, 0, 0, time.UTC), checkOut: time.Date(2025, 1, 5, 18, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.checkIn, tt.checkOut)
			require.ErrorIs(t, err, ErrInvalidRange)
		})
	}
}

func TestNightsCountsCalendarDays(t *testing.T) {
	dr, err := New(time.Date(2025, 3, 1, 15, 0, 0, 0, time.UTC), time.Date(2025, 3, 8, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 7, dr.Nights())
	assert.Equal(t, date(2025, 3, 1), dr.CheckIn)
	assert.Equal(t, date(2025, 3, 7), dr.Night(6))
}

func TestNightsAcrossDaylightSavingLocation(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	dr, err := New(time.Date(2025, 3, 8, 12, 0, 0, 0, loc), time.Date(2025, 3, 10, 12, 0, 0, 0, loc))
	require.NoError(t, err)
	assert.Equal(t, 2, dr.Nights())
}

func TestOverlapsIsHalfOpen(t *testing.T) {
	base := DateRange{CheckIn: date(2025, 1, 10), CheckOut: date(2025, 1, 15)}
	tests := []struct {
		name  string
		other DateRange
		want  bool
	}{
		{name: "ends on check-in", other: DateRange{CheckIn: date(2025, 1, 7), CheckOut: date(2025, 1, 10)}, want: false},
		{name: "starts on check-out", other: DateRange{CheckIn: date(2025, 1, 15), CheckOut: date(2025, 1, 18)}, want: false},
		{name: "inside", other: DateRange{CheckIn: date(2025, 1, 11), CheckOut: date(2025, 1, 12)}, want: true},
		{name: "covers", other: DateRange{CheckIn: date(2025, 1, 1), CheckOut: date(2025, 1, 31)}, want: true},
		{name: "tail overlap", other: DateRange{CheckIn: date(2025, 1, 14), CheckOut: date(2025, 1, 16)}, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, base.Overlaps(tt.other))
			assert.Equal(t, tt.want, tt.other.Overlaps(base), "overlap must be symmetric")
		})
	}
}

func TestStartsOnCheckoutOf(t *testing.T) {
	prev := DateRange{CheckIn: date(2025, 1, 7), CheckOut: date(2025, 1, 10)}
	next := DateRange{CheckIn: time.Date(2025, 1, 10, 14, 0, 0, 0, time.UTC), CheckOut: date(2025, 1, 15)}
	assert.True(t, next.StartsOnCheckoutOf(prev))
	assert.False(t, prev.StartsOnCheckoutOf(next))
}

func TestPeriodContainsIsInclusive(t *testing.T) {
	p := Period{From: date(2025, 12, 20), To: date(2026, 1, 5)}
	require.NoError(t, p.Validate())
	assert.True(t, p.Contains(date(2025, 12, 20)))
	assert.True(t, p.Contains(time.Date(2026, 1, 5, 23, 0, 0, 0, time.UTC)))
	assert.False(t, p.Contains(date(2026, 1, 6)))
	assert.False(t, p.Contains(date(2025, 12, 19)))

	require.ErrorIs(t, Period{From: date(2025, 2, 1), To: date(2025, 1, 1)}.Validate(), ErrInvalidRange)
	require.ErrorIs(t, Period{To: date(2025, 1, 1)}.Validate(), ErrInvalidRange)
}
