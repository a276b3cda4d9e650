package memory

import (
	"context"
	"sort"
	"sync"

	domainbooking "rentdesk/internal/domain/booking"
	"rentdesk/internal/domain/property"
)

// BookingRepository keeps bookings in a map. Callers always receive
// copies, so an aggregate mutated in a failed command never leaks in.
type BookingRepository struct {
	mu    sync.RWMutex
	items map[domainbooking.BookingID]*domainbooking.Booking
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{items: make(map[domainbooking.BookingID]*domainbooking.Booking)}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.items[id]
	if !ok {
		return nil, domainbooking.ErrBookingNotFound
	}
	return cloneBooking(b), nil
}

// ListByProperty returns bookings ordered by check-in, then id.
func (r *BookingRepository) ListByProperty(ctx context.Context, propertyID property.ID) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainbooking.Booking, 0)
	for _, b := range r.items {
		if b.PropertyID == propertyID {
			out = append(out, cloneBooking(b))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Range.CheckIn.Equal(out[j].Range.CheckIn) {
			return out[i].Range.CheckIn.Before(out[j].Range.CheckIn)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Save inserts or replaces a booking. The caller's Version must match the
// stored one; it is bumped on success.
func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.items[b.ID]; ok && current.Version != b.Version {
		return domainbooking.ErrStaleBooking
	}
	b.Version++
	r.items[b.ID] = cloneBooking(b)
	return nil
}

func (r *BookingRepository) Delete(ctx context.Context, id domainbooking.BookingID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domainbooking.ErrBookingNotFound
	}
	delete(r.items, id)
	return nil
}

func cloneBooking(b *domainbooking.Booking) *domainbooking.Booking {
	c := *b
	c.ClearEvents()
	return &c
}

var _ domainbooking.Repository = (*BookingRepository)(nil)
