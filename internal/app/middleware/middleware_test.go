package middleware

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentdesk/internal/app/commands"
	"rentdesk/internal/app/outbox"
	"rentdesk/internal/app/queries"
	"rentdesk/internal/app/uow"
	"rentdesk/internal/domain/booking"
	"rentdesk/internal/domain/ledger"
	"rentdesk/internal/domain/pricing"
)

type result struct {
	ID string `json:"id"`
}

type keyedCmd struct {
	name string
	key  string
	fail bool
}

func (c keyedCmd) Key() string            { return c.name }
func (c keyedCmd) IdempotencyKey() string { return c.key }
func (c keyedCmd) ResultPrototype() any   { return &result{} }

func (c keyedCmd) Validate() error {
	if c.name == "" {
		return errors.New("name required")
	}
	return nil
}

type mapStore struct {
	items map[string]IdempotencyRecord
}

func (s *mapStore) Get(_ context.Context, key string) (IdempotencyRecord, bool, error) {
	rec, ok := s.items[key]
	return rec, ok, nil
}

func (s *mapStore) Save(_ context.Context, rec IdempotencyRecord) error {
	if s.items == nil {
		s.items = make(map[string]IdempotencyRecord)
	}
	s.items[rec.Key] = rec
	return nil
}

type countingBus struct {
	calls int
	err   error
}

func (b *countingBus) Dispatch(ctx context.Context, cmd commands.Command) (any, error) {
	b.calls++
	if b.err != nil {
		return nil, b.err
	}
	if c, ok := cmd.(keyedCmd); ok && c.fail {
		return nil, errors.New("handler failed")
	}
	return &result{ID: "r-1"}, nil
}

func TestIdempotencyReplaysStoredResult(t *testing.T) {
	base := &countingBus{}
	bus := ChainCommands(base, Idempotency(&mapStore{}, nil))
	cmd := keyedCmd{name: "booking.create", key: "k-1"}

	first, err := bus.Dispatch(context.Background(), cmd)
	require.NoError(t, err)
	second, err := bus.Dispatch(context.Background(), cmd)
	require.NoError(t, err)

	assert.Equal(t, 1, base.calls)
	assert.Equal(t, first, second)
	assert.Equal(t, "r-1", second.(*result).ID)
}

func TestIdempotencyReplaysStoredFailure(t *testing.T) {
	base := &countingBus{}
	bus := ChainCommands(base, Idempotency(&mapStore{}, nil))
	cmd := keyedCmd{name: "booking.create", key: "k-1", fail: true}

	_, err := bus.Dispatch(context.Background(), cmd)
	require.EqualError(t, err, "handler failed")
	_, err = bus.Dispatch(context.Background(), keyedCmd{name: "booking.create", key: "k-1"})
	require.EqualError(t, err, "handler failed")
	assert.Equal(t, 1, base.calls)
}

func TestIdempotencyRejectsKeyReuse(t *testing.T) {
	bus := ChainCommands(&countingBus{}, Idempotency(&mapStore{}, nil))
	_, err := bus.Dispatch(context.Background(), keyedCmd{name: "booking.create", key: "k-1"})
	require.NoError(t, err)

	_, err = bus.Dispatch(context.Background(), keyedCmd{name: "booking.cancel", key: "k-1"})
	require.ErrorIs(t, err, ErrKeyReused)
}

func TestIdempotencySkipsCommandsWithoutKey(t *testing.T) {
	base := &countingBus{}
	bus := ChainCommands(base, Idempotency(&mapStore{}, nil))
	for i := 0; i < 2; i++ {
		_, err := bus.Dispatch(context.Background(), keyedCmd{name: "booking.create"})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, base.calls)
}

type fakeUnit struct {
	committed  bool
	rolledBack bool
}

func (u *fakeUnit) Bookings() booking.Repository       { return nil }
func (u *fakeUnit) Payments() ledger.PaymentRepository { return nil }
func (u *fakeUnit) Expenses() ledger.ExpenseRepository { return nil }
func (u *fakeUnit) PriceConfigs() pricing.Repository   { return nil }

func (u *fakeUnit) Commit(context.Context) error {
	u.committed = true
	return nil
}

func (u *fakeUnit) Rollback(context.Context) error {
	u.rolledBack = true
	return nil
}

type fakeFactory struct {
	units []*fakeUnit
	opts  []uow.TxOptions
}

func (f *fakeFactory) Begin(_ context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	u := &fakeUnit{}
	f.units = append(f.units, u)
	f.opts = append(f.opts, opts)
	return u, nil
}

func TestTransactionCommitsOnSuccess(t *testing.T) {
	factory := &fakeFactory{}
	var bound bool
	base := commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
		_, bound = uow.FromContext(ctx)
		return nil, nil
	})
	readOnly := func(commands.Command) uow.TxOptions { return uow.TxOptions{ReadOnly: true} }

	_, err := ChainCommands(base, Transaction(factory, readOnly)).Dispatch(context.Background(), keyedCmd{name: "x"})
	require.NoError(t, err)
	require.Len(t, factory.units, 1)
	assert.True(t, bound)
	assert.True(t, factory.units[0].committed)
	assert.False(t, factory.units[0].rolledBack)
	assert.True(t, factory.opts[0].ReadOnly)
}

func TestTransactionRollsBackOnError(t *testing.T) {
	factory := &fakeFactory{}
	base := &countingBus{err: errors.New("conflict")}

	_, err := ChainCommands(base, Transaction(factory, nil)).Dispatch(context.Background(), keyedCmd{name: "x"})
	require.EqualError(t, err, "conflict")
	assert.False(t, factory.units[0].committed)
	assert.True(t, factory.units[0].rolledBack)
}

type fakeBox struct {
	added     int
	flushed   int
	discarded int
}

func (b *fakeBox) Add(context.Context, outbox.EventRecord) error {
	b.added++
	return nil
}

func (b *fakeBox) Flush(context.Context) error {
	b.flushed++
	return nil
}

func (b *fakeBox) Discard(context.Context) error {
	b.discarded++
	return nil
}

func TestOutboxFlushOnSuccessDiscardOnFailure(t *testing.T) {
	box := &fakeBox{}
	ok := ChainCommands(&countingBus{}, OutboxFlush(box))
	_, err := ok.Dispatch(context.Background(), keyedCmd{name: "x"})
	require.NoError(t, err)
	assert.Equal(t, 1, box.flushed)

	boom := errors.New("boom")
	failing := ChainCommands(&countingBus{err: boom}, OutboxFlush(box))
	_, err = failing.Dispatch(context.Background(), keyedCmd{name: "x"})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, box.flushed)
	assert.Equal(t, 1, box.discarded)
}

func TestValidationStopsBeforeHandler(t *testing.T) {
	base := &countingBus{}
	bus := ChainCommands(base, Validation(SelfValidator{}))
	_, err := bus.Dispatch(context.Background(), keyedCmd{})
	require.EqualError(t, err, "name required")
	assert.Zero(t, base.calls)
}

func TestChainRunsFirstMiddlewareOutermost(t *testing.T) {
	var order []string
	mark := func(name string) CommandMiddleware {
		return func(next commands.Bus) commands.Bus {
			return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
				order = append(order, name)
				return next.Dispatch(ctx, cmd)
			})
		}
	}
	bus := ChainCommands(&countingBus{}, mark("outer"), nil, mark("inner"))
	_, err := bus.Dispatch(context.Background(), keyedCmd{name: "x"})
	require.NoError(t, err)
	assert.Equal(t, []string{"outer", "inner"}, order)
}

type echoQuery struct{ id string }

func (q echoQuery) Key() string { return "echo" }

func (q echoQuery) Validate() error {
	if q.id == "" {
		return errors.New("id required")
	}
	return nil
}

func TestQueryChainLogsAndValidates(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	base := queryFunc(func(ctx context.Context, q queries.Query) (any, error) {
		return q.(echoQuery).id, nil
	})
	bus := ChainQueries(base, QueryLogging(logger), QueryValidation(SelfValidator{}))

	res, err := bus.Ask(context.Background(), echoQuery{id: "a"})
	require.NoError(t, err)
	assert.Equal(t, "a", res)

	_, err = bus.Ask(context.Background(), echoQuery{})
	require.Error(t, err)
	assert.Contains(t, logs.String(), "echo")
}
