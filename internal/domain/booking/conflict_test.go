package booking

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentdesk/internal/domain/shared/daterange"
	"rentdesk/internal/domain/shared/money"
)

func day(d int) time.Time {
	return time.Date(2025, time.February, d, 0, 0, 0, 0, time.UTC)
}

func stay(from, to int) daterange.DateRange {
	return daterange.DateRange{CheckIn: day(from), CheckOut: day(to)}
}

func existing(id string, from, to int, status Status) *Booking {
	return &Booking{
		ID:         BookingID(id),
		PropertyID: "prop-1",
		Range:      stay(from, to),
		Amount:     decimal.NewFromInt(500),
		Currency:   money.USD,
		Status:     status,
	}
}

func TestFindConflictReturnsFirstOverlapInInputOrder(t *testing.T) {
	bookings := []*Booking{
		existing("a", 1, 3, StatusActive),
		existing("b", 10, 14, StatusActive),
		existing("c", 8, 12, StatusActive),
	}
	got, err := FindConflict(stay(11, 13), bookings, "")
	require.NoError(t, err)
	require.True(t, got.Blocked())
	assert.Equal(t, BookingID("b"), got.Booking.ID)
}

func TestFindConflictIgnoresInactiveAndExcluded(t *testing.T) {
	bookings := []*Booking{
		existing("cancelled", 10, 14, StatusCancelled),
		existing("pending", 10, 14, StatusPending),
		existing("self", 10, 14, StatusActive),
		nil,
	}
	got, err := FindConflict(stay(11, 13), bookings, "self")
	require.NoError(t, err)
	assert.False(t, got.Blocked())
	assert.False(t, got.Advisory())
}

func TestFindConflictTreatsUnsetStatusAsActive(t *testing.T) {
	got, err := FindConflict(stay(11, 13), []*Booking{existing("legacy", 10, 14, "")}, "")
	require.NoError(t, err)
	require.True(t, got.Blocked())
	assert.Equal(t, BookingID("legacy"), got.Booking.ID)
}

func TestFindConflictSameDayTurnoverIsAdvisoryOnly(t *testing.T) {
	// Candidate [D, D+5) against existing [D-3, D).
	prev := existing("prev", 7, 10, StatusActive)
	got, err := FindConflict(stay(10, 15), []*Booking{prev}, "")
	require.NoError(t, err)
	assert.False(t, got.Blocked())
	require.True(t, got.Advisory())
	assert.Equal(t, BookingID("prev"), got.SameDayTurnover.ID)
}

func TestFindConflictCheckoutOnExistingCheckInIsNotAdvisory(t *testing.T) {
	next := existing("next", 15, 18, StatusActive)
	got, err := FindConflict(stay(10, 15), []*Booking{next}, "")
	require.NoError(t, err)
	assert.False(t, got.Blocked())
	assert.False(t, got.Advisory())
}

func TestFindConflictIsSymmetric(t *testing.T) {
	ranges := []daterange.DateRange{stay(1, 5), stay(4, 8), stay(5, 9), stay(2, 3), stay(8, 12), stay(1, 20)}
	for i, a := range ranges {
		for j, b := range ranges {
			ab, err := FindConflict(a, []*Booking{{ID: "b", Range: b, Currency: money.USD}}, "")
			require.NoError(t, err)
			ba, err := FindConflict(b, []*Booking{{ID: "a", Range: a, Currency: money.USD}}, "")
			require.NoError(t, err)
			assert.Equal(t, ab.Blocked(), ba.Blocked(), "ranges %d and %d", i, j)
		}
	}
}

func TestFindConflictRejectsMalformedInput(t *testing.T) {
	_, err := FindConflict(daterange.DateRange{CheckIn: day(5)}, nil, "")
	require.ErrorIs(t, err, daterange.ErrInvalidRange)

	_, err = FindConflict(stay(5, 3), nil, "")
	require.ErrorIs(t, err, daterange.ErrInvalidRange)

	broken := &Booking{ID: "broken", Range: daterange.DateRange{CheckIn: day(3)}}
	_, err = FindConflict(stay(5, 8), []*Booking{broken}, "")
	require.ErrorIs(t, err, daterange.ErrInvalidRange)
	assert.Contains(t, err.Error(), "broken")
}

func TestFindConflictIsPure(t *testing.T) {
	bookings := []*Booking{existing("a", 10, 14, StatusActive)}
	first, err := FindConflict(stay(12, 16), bookings, "")
	require.NoError(t, err)
	second, err := FindConflict(stay(12, 16), bookings, "")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Empty(t, bookings[0].PendingEvents())
}
