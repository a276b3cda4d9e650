package memory

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"rentdesk/internal/app/middleware"
)

// IdempotencyStore keeps command outcomes in an expiring cache.
type IdempotencyStore struct {
	items *gocache.Cache
}

func NewIdempotencyStore(ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	return &IdempotencyStore{items: gocache.New(ttl, time.Hour)}
}

func (s *IdempotencyStore) Get(ctx context.Context, key string) (middleware.IdempotencyRecord, bool, error) {
	v, ok := s.items.Get(key)
	if !ok {
		return middleware.IdempotencyRecord{}, false, nil
	}
	rec, ok := v.(middleware.IdempotencyRecord)
	return rec, ok, nil
}

func (s *IdempotencyStore) Save(ctx context.Context, rec middleware.IdempotencyRecord) error {
	s.items.SetDefault(rec.Key, rec)
	return nil
}

var _ middleware.IdempotencyStore = (*IdempotencyStore)(nil)
