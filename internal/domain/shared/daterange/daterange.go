package daterange

import (
	"errors"
	"time"
)

var (
	ErrInvalidRange = errors.New("daterange: checkout must be after checkin")
)

const day = 24 * time.Hour

// DateRange represents a half-open interval of calendar days [checkIn, checkOut).
// The checkout day itself is not occupied.
type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// New builds a validated range, truncating both bounds to their calendar day.
func New(checkIn, checkOut time.Time) (DateRange, error) {
	dr := DateRange{CheckIn: Day(checkIn), CheckOut: Day(checkOut)}
	if err := dr.Validate(); err != nil {
		return DateRange{}, err
	}
	return dr, nil
}

// Day returns midnight UTC of the calendar day t falls on in its own location.
func Day(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	if a.IsZero() || b.IsZero() {
		return false
	}
	return Day(a).Equal(Day(b))
}

func (dr DateRange) Validate() error {
	if dr.CheckOut.IsZero() || dr.CheckIn.IsZero() {
		return ErrInvalidRange
	}
	if !Day(dr.CheckOut).After(Day(dr.CheckIn)) {
		return ErrInvalidRange
	}
	return nil
}

// Nights counts whole calendar days between check-in and check-out.
func (dr DateRange) Nights() int {
	if dr.CheckIn.IsZero() || dr.CheckOut.IsZero() {
		return 0
	}
	return int(Day(dr.CheckOut).Sub(Day(dr.CheckIn)) / day)
}

// Night returns the calendar day of the i-th night of the stay.
func (dr DateRange) Night(i int) time.Time {
	return Day(dr.CheckIn).AddDate(0, 0, i)
}

// Overlaps is the only conflict test: s1 < e2 && e1 > s2.
func (dr DateRange) Overlaps(other DateRange) bool {
	return Day(dr.CheckIn).Before(Day(other.CheckOut)) && Day(dr.CheckOut).After(Day(other.CheckIn))
}

// StartsOnCheckoutOf reports a same-day turnover: the receiver checks in on
// the day other checks out.
func (dr DateRange) StartsOnCheckoutOf(other DateRange) bool {
	return SameDay(dr.CheckIn, other.CheckOut)
}

// Period is an inclusive interval [From, To] of calendar days, used by
// configuration entries such as seasonal rates.
type Period struct {
	From time.Time
	To   time.Time
}

func (p Period) Validate() error {
	if p.From.IsZero() || p.To.IsZero() {
		return ErrInvalidRange
	}
	if Day(p.To).Before(Day(p.From)) {
		return ErrInvalidRange
	}
	return nil
}

// Contains reports whether t's calendar day lies within the period, both ends included.
func (p Period) Contains(t time.Time) bool {
	d := Day(t)
	return !d.Before(Day(p.From)) && !d.After(Day(p.To))
}
