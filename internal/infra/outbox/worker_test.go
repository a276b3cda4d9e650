package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	queue  []*EventDocument
	sent   []string
	failed map[string]time.Time
}

func (s *fakeStore) Claim(context.Context, string) (*EventDocument, error) {
	if len(s.queue) == 0 {
		return nil, nil
	}
	doc := s.queue[0]
	s.queue = s.queue[1:]
	return doc, nil
}

func (s *fakeStore) MarkSent(_ context.Context, id string) error {
	s.sent = append(s.sent, id)
	return nil
}

func (s *fakeStore) MarkFailed(_ context.Context, id string, next time.Time, _ string) error {
	if s.failed == nil {
		s.failed = map[string]time.Time{}
	}
	s.failed[id] = next
	return nil
}

type published struct {
	topic   string
	key     string
	payload []byte
	headers map[string]string
}

type fakeProducer struct {
	out  []published
	fail bool
}

func (p *fakeProducer) Publish(_ context.Context, topic, key string, payload []byte, headers map[string]string) error {
	if p.fail {
		return errors.New("broker down")
	}
	p.out = append(p.out, published{topic: topic, key: key, payload: payload, headers: headers})
	return nil
}

func doc(id, name string) *EventDocument {
	return &EventDocument{
		ID:         id,
		Name:       name,
		Payload:    []byte(`{"amount":"10"}`),
		Aggregate:  "bk-1",
		OccurredAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		Headers:    map[string]string{"traceparent": "00-abc"},
	}
}

func TestWorkerDrainPublishesCloudEvents(t *testing.T) {
	store := &fakeStore{queue: []*EventDocument{doc("e1", "booking.created"), doc("e2", "ledger.payment_recorded")}}
	prod := &fakeProducer{}
	w := &Worker{Store: store, Producer: prod, TopicPrefix: "dev."}

	n, err := w.Drain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"e1", "e2"}, store.sent)
	require.Len(t, prod.out, 2)
	assert.Equal(t, "dev.booking.events.v1", prod.out[0].topic)
	assert.Equal(t, "dev.ledger.events.v1", prod.out[1].topic)
	assert.Equal(t, "bk-1", prod.out[0].key)
	assert.Equal(t, "application/cloudevents+json", prod.out[0].headers["content-type"])

	var evt map[string]any
	require.NoError(t, json.Unmarshal(prod.out[0].payload, &evt))
	assert.Equal(t, "1.0", evt["specversion"])
	assert.Equal(t, "booking.created.v1", evt["type"])
	assert.Equal(t, "app://rentdesk", evt["source"])
	assert.Equal(t, "00-abc", evt["traceparent"])
	assert.Equal(t, map[string]any{"amount": "10"}, evt["data"])
}

func TestWorkerSchedulesRetryOnPublishFailure(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	failing := doc("e1", "pricing.config_saved")
	failing.Attempts = 1
	store := &fakeStore{queue: []*EventDocument{failing}}
	w := &Worker{
		Store:    store,
		Producer: &fakeProducer{fail: true},
		Backoff:  []time.Duration{time.Second, 5 * time.Second},
		Now:      func() time.Time { return now },
	}

	n, err := w.Drain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Empty(t, store.sent)
	assert.Equal(t, now.Add(5*time.Second), store.failed["e1"])
}

func TestWorkerBackoffCapsAtLastStep(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	w := &Worker{Backoff: []time.Duration{time.Second, time.Minute}, Now: func() time.Time { return now }}
	assert.Equal(t, now.Add(time.Minute), w.nextRetry(9))

	w.Backoff = nil
	assert.Equal(t, now.Add(5*time.Second), w.nextRetry(0))
}

func TestWorkerRunRequiresDependencies(t *testing.T) {
	err := (&Worker{}).Run(context.Background())
	require.ErrorIs(t, err, ErrWorkerNotConfigured)
}
