package memory

import (
	"context"
	"sort"
	"sync"

	domainbooking "rentdesk/internal/domain/booking"
	"rentdesk/internal/domain/ledger"
	"rentdesk/internal/domain/property"
)

type PaymentRepository struct {
	mu    sync.RWMutex
	items map[ledger.PaymentID]ledger.Payment
}

func NewPaymentRepository() *PaymentRepository {
	return &PaymentRepository{items: make(map[ledger.PaymentID]ledger.Payment)}
}

func (r *PaymentRepository) ByID(ctx context.Context, id ledger.PaymentID) (*ledger.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.items[id]
	if !ok {
		return nil, ledger.ErrPaymentNotFound
	}
	return &p, nil
}

func (r *PaymentRepository) ListByBooking(ctx context.Context, bookingID domainbooking.BookingID) ([]ledger.Payment, error) {
	return r.ListByBookings(ctx, []domainbooking.BookingID{bookingID})
}

// ListByBookings returns payments ordered by date, then creation time.
func (r *PaymentRepository) ListByBookings(ctx context.Context, ids []domainbooking.BookingID) ([]ledger.Payment, error) {
	want := make(map[domainbooking.BookingID]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ledger.Payment, 0)
	for _, p := range r.items {
		if _, ok := want[p.BookingID]; ok {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *PaymentRepository) Save(ctx context.Context, p *ledger.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[p.ID] = *p
	return nil
}

func (r *PaymentRepository) Delete(ctx context.Context, id ledger.PaymentID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return ledger.ErrPaymentNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *PaymentRepository) DeleteByBooking(ctx context.Context, bookingID domainbooking.BookingID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, p := range r.items {
		if p.BookingID == bookingID {
			delete(r.items, id)
			n++
		}
	}
	return n, nil
}

type ExpenseRepository struct {
	mu    sync.RWMutex
	items map[ledger.ExpenseID]ledger.Expense
}

func NewExpenseRepository() *ExpenseRepository {
	return &ExpenseRepository{items: make(map[ledger.ExpenseID]ledger.Expense)}
}

func (r *ExpenseRepository) ListByProperty(ctx context.Context, propertyID property.ID) ([]ledger.Expense, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ledger.Expense, 0)
	for _, e := range r.items {
		if e.PropertyID == propertyID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *ExpenseRepository) Save(ctx context.Context, e *ledger.Expense) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[e.ID] = *e
	return nil
}

// DeleteByBooking removes booking-scoped expenses only.
func (r *ExpenseRepository) DeleteByBooking(ctx context.Context, bookingID domainbooking.BookingID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, e := range r.items {
		if e.Scope == ledger.ScopeBooking && e.BookingID == bookingID {
			delete(r.items, id)
			n++
		}
	}
	return n, nil
}

var (
	_ ledger.PaymentRepository = (*PaymentRepository)(nil)
	_ ledger.ExpenseRepository = (*ExpenseRepository)(nil)
)
