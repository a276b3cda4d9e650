package booking

import (
	"fmt"

	"rentdesk/internal/domain/shared/daterange"
)

// Conflict is the outcome of a conflict check. Booking is the hard conflict
// that blocks the candidate; SameDayTurnover is an advisory: a booking that
// checks out on the candidate's check-in day.
type Conflict struct {
	Booking         *Booking
	SameDayTurnover *Booking
}

func (c Conflict) Blocked() bool { return c.Booking != nil }

func (c Conflict) Advisory() bool { return c.SameDayTurnover != nil }

// FindConflict returns the first active booking (in input order) whose range
// overlaps the candidate, ignoring excludeID so an edited booking does not
// collide with itself. Cancelled and pending bookings never participate.
func FindConflict(candidate daterange.DateRange, existing []*Booking, excludeID BookingID) (Conflict, error) {
	if err := candidate.Validate(); err != nil {
		return Conflict{}, err
	}
	var out Conflict
	for _, b := range existing {
		if b == nil || !b.Status.IsActive() {
			continue
		}
		if excludeID != "" && b.ID == excludeID {
			continue
		}
		if err := b.Range.Validate(); err != nil {
			return Conflict{}, fmt.Errorf("booking %s: %w", b.ID, err)
		}
		if out.Booking == nil && candidate.Overlaps(b.Range) {
			out.Booking = b
		}
		if out.SameDayTurnover == nil && candidate.StartsOnCheckoutOf(b.Range) {
			out.SameDayTurnover = b
		}
	}
	return out, nil
}
