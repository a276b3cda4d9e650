package memory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentdesk/internal/app/middleware"
	appoutbox "rentdesk/internal/app/outbox"
	"rentdesk/internal/app/uow"
	domainbooking "rentdesk/internal/domain/booking"
	"rentdesk/internal/domain/shared/daterange"
	"rentdesk/internal/domain/shared/money"
)

func newBooking(t *testing.T, id string, day int) *domainbooking.Booking {
	t.Helper()
	stay, err := daterange.New(time.Date(2025, 7, day, 0, 0, 0, 0, time.UTC), time.Date(2025, 7, day+2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	b, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:         domainbooking.BookingID(id),
		PropertyID: "casa-1",
		TenantName: "Ana",
		Range:      stay,
		Amount:     decimal.NewFromInt(300),
		Currency:   money.USD,
		CreatedAt:  time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return b
}

func TestBookingSaveRejectsStaleCopy(t *testing.T) {
	ctx := context.Background()
	repo := NewBookingRepository()
	require.NoError(t, repo.Save(ctx, newBooking(t, "bk-1", 1)))

	a, err := repo.ByID(ctx, "bk-1")
	require.NoError(t, err)
	b, err := repo.ByID(ctx, "bk-1")
	require.NoError(t, err)

	a.Notes = "first writer"
	require.NoError(t, repo.Save(ctx, a))
	b.Notes = "second writer"
	require.ErrorIs(t, repo.Save(ctx, b), domainbooking.ErrStaleBooking)

	stored, err := repo.ByID(ctx, "bk-1")
	require.NoError(t, err)
	assert.Equal(t, "first writer", stored.Notes)
}

func TestBookingListOrderedByCheckIn(t *testing.T) {
	ctx := context.Background()
	repo := NewBookingRepository()
	require.NoError(t, repo.Save(ctx, newBooking(t, "bk-b", 5)))
	require.NoError(t, repo.Save(ctx, newBooking(t, "bk-c", 1)))
	require.NoError(t, repo.Save(ctx, newBooking(t, "bk-a", 5)))

	list, err := repo.ListByProperty(ctx, "casa-1")
	require.NoError(t, err)
	ids := make([]domainbooking.BookingID, 0, len(list))
	for _, b := range list {
		ids = append(ids, b.ID)
	}
	assert.Equal(t, []domainbooking.BookingID{"bk-c", "bk-a", "bk-b"}, ids)

	list[0].Notes = "mutated"
	again, err := repo.ByID(ctx, "bk-c")
	require.NoError(t, err)
	assert.Empty(t, again.Notes)
}

func TestReadOnlyUnitsDoNotTakeWriteLock(t *testing.T) {
	ctx := context.Background()
	f := NewFactory()
	w, err := f.Begin(ctx, uow.TxOptions{})
	require.NoError(t, err)

	r, err := f.Begin(ctx, uow.TxOptions{ReadOnly: true})
	require.NoError(t, err)
	require.NoError(t, r.Rollback(ctx))

	require.NoError(t, w.Commit(ctx))
	require.NoError(t, w.Rollback(ctx))

	next, err := f.Begin(ctx, uow.TxOptions{})
	require.NoError(t, err)
	require.NoError(t, next.Commit(ctx))
}

func TestOutboxDiscardDropsPending(t *testing.T) {
	ctx := context.Background()
	var sunk int
	box := NewOutbox(func(_ context.Context, recs []appoutbox.EventRecord) error {
		sunk += len(recs)
		return nil
	})
	require.NoError(t, box.Add(ctx, appoutbox.EventRecord{Name: "booking.created"}))
	require.NoError(t, box.Discard(ctx))
	require.NoError(t, box.Flush(ctx))
	assert.Empty(t, box.Published())

	require.NoError(t, box.Add(ctx, appoutbox.EventRecord{Name: "booking.cancelled"}))
	require.NoError(t, box.Flush(ctx))
	require.Len(t, box.Published(), 1)
	assert.Equal(t, 1, sunk)
}

func TestIdempotencyStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewIdempotencyStore(time.Minute)
	_, found, err := store.Get(ctx, "k-1")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Save(ctx, middleware.IdempotencyRecord{Key: "k-1", Command: "booking.create", Payload: []byte(`{}`)}))
	rec, found, err := store.Get(ctx, "k-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "booking.create", rec.Command)
}
