package bookings

import (
	"context"
	"fmt"

	domainbooking "rentdesk/internal/domain/booking"
	"rentdesk/internal/domain/property"
	"rentdesk/internal/domain/shared/daterange"
)

// ConflictError names the booking that blocks a candidate range.
type ConflictError struct {
	BookingID domainbooking.BookingID
	Range     daterange.DateRange
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %s (%s to %s)", domainbooking.ErrBookingConflict, e.BookingID,
		e.Range.CheckIn.Format("2006-01-02"), e.Range.CheckOut.Format("2006-01-02"))
}

func (e *ConflictError) Unwrap() error { return domainbooking.ErrBookingConflict }

func detectConflict(ctx context.Context, repo domainbooking.Repository, propertyID property.ID, candidate daterange.DateRange, exclude domainbooking.BookingID) (domainbooking.Conflict, error) {
	existing, err := repo.ListByProperty(ctx, propertyID)
	if err != nil {
		return domainbooking.Conflict{}, err
	}
	return domainbooking.FindConflict(candidate, existing, exclude)
}

// ensureFree fails with *ConflictError when candidate overlaps an active booking.
func ensureFree(ctx context.Context, repo domainbooking.Repository, propertyID property.ID, candidate daterange.DateRange, exclude domainbooking.BookingID) (domainbooking.Conflict, error) {
	conflict, err := detectConflict(ctx, repo, propertyID, candidate, exclude)
	if err != nil {
		return conflict, err
	}
	if conflict.Blocked() {
		return conflict, &ConflictError{BookingID: conflict.Booking.ID, Range: conflict.Booking.Range}
	}
	return conflict, nil
}
