package memory

import (
	"context"
	"sync"

	appoutbox "rentdesk/internal/app/outbox"
)

// Sink receives flushed events, typically a logger in memory mode.
type Sink func(ctx context.Context, records []appoutbox.EventRecord) error

// Outbox buffers events until the command commits. Discard drops the
// buffer of a failed command.
type Outbox struct {
	mu        sync.Mutex
	pending   []appoutbox.EventRecord
	published []appoutbox.EventRecord
	sink      Sink
}

func NewOutbox(sink Sink) *Outbox {
	return &Outbox{sink: sink}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pending = append(o.pending, record)
	return nil
}

func (o *Outbox) Flush(ctx context.Context) error {
	o.mu.Lock()
	batch := o.pending
	o.pending = nil
	o.published = append(o.published, batch...)
	o.mu.Unlock()
	if o.sink == nil || len(batch) == 0 {
		return nil
	}
	return o.sink(ctx, batch)
}

func (o *Outbox) Discard(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pending = nil
	return nil
}

// Published returns every record flushed so far.
func (o *Outbox) Published() []appoutbox.EventRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]appoutbox.EventRecord(nil), o.published...)
}

var _ appoutbox.Outbox = (*Outbox)(nil)
