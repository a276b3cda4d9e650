package bookings

import (
	"context"
	"time"

	"rentdesk/internal/app/dto"
	"rentdesk/internal/app/handlers/support"
	"rentdesk/internal/app/queries"
	"rentdesk/internal/app/uow"
	domainbooking "rentdesk/internal/domain/booking"
	"rentdesk/internal/domain/property"
	"rentdesk/internal/domain/shared/daterange"
)

const (
	checkAvailabilityKey = "booking.availability"
	listBookingsKey      = "booking.list"
)

// CheckAvailabilityQuery runs the conflict check without writing anything.
// ExcludeBookingID lets an edit form check its own booking's new dates.
type CheckAvailabilityQuery struct {
	PropertyID       string
	CheckIn          time.Time
	CheckOut         time.Time
	ExcludeBookingID string
}

func (q CheckAvailabilityQuery) Key() string { return checkAvailabilityKey }

func (q CheckAvailabilityQuery) Validate() error {
	return property.ID(q.PropertyID).Validate()
}

type CheckAvailabilityHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *CheckAvailabilityHandler) Handle(ctx context.Context, q CheckAvailabilityQuery) (*dto.Availability, error) {
	stay, err := daterange.New(q.CheckIn, q.CheckOut)
	if err != nil {
		return nil, err
	}
	unit, execCtx, release, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer release()

	conflict, err := detectConflict(execCtx, unit.Bookings(), property.ID(q.PropertyID), stay, domainbooking.BookingID(q.ExcludeBookingID))
	if err != nil {
		return nil, err
	}
	out := &dto.Availability{
		PropertyID:      q.PropertyID,
		CheckIn:         stay.CheckIn,
		CheckOut:        stay.CheckOut,
		Available:       !conflict.Blocked(),
		SameDayTurnover: dto.MapTurnover(conflict.SameDayTurnover),
	}
	if conflict.Blocked() {
		b := dto.MapBooking(conflict.Booking)
		out.ConflictsWith = &b
	}
	return out, nil
}

type ListBookingsQuery struct {
	PropertyID string
	Status     string
}

func (q ListBookingsQuery) Key() string { return listBookingsKey }

func (q ListBookingsQuery) Validate() error {
	return property.ID(q.PropertyID).Validate()
}

type ListBookingsHandler struct {
	UoWFactory uow.UoWFactory
}

// Handle returns the bookings of a property ordered by check-in, optionally
// filtered by status.
func (h *ListBookingsHandler) Handle(ctx context.Context, q ListBookingsQuery) (*dto.BookingCollection, error) {
	var filter domainbooking.Status
	if q.Status != "" {
		st, err := domainbooking.ParseStatus(q.Status)
		if err != nil {
			return nil, err
		}
		filter = st
	}
	unit, execCtx, release, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer release()

	items, err := unit.Bookings().ListByProperty(execCtx, property.ID(q.PropertyID))
	if err != nil {
		return nil, err
	}
	if filter != "" {
		kept := items[:0]
		for _, b := range items {
			if b != nil && b.Status.Normalize() == filter {
				kept = append(kept, b)
			}
		}
		items = kept
	}
	out := dto.MapBookings(items)
	return &out, nil
}

var (
	_ queries.Handler[CheckAvailabilityQuery, *dto.Availability] = (*CheckAvailabilityHandler)(nil)
	_ queries.Handler[ListBookingsQuery, *dto.BookingCollection] = (*ListBookingsHandler)(nil)
)
