package rates

import (
	"context"
	"errors"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"

	"rentdesk/internal/app/policies"
)

const arsPerUSDKey = "ars_per_usd"

var ErrInvalidRate = errors.New("rates: rate must be positive")

// Quote is the last known ARS per USD rate.
type Quote struct {
	Rate      decimal.Decimal `json:"rate"`
	Source    string          `json:"source"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Cache keeps the current exchange rate in memory. Entries expire after
// ttl so a stale rate is reported as missing instead of being used forever.
// A non-positive ttl keeps entries until replaced.
type Cache struct {
	store *gocache.Cache
	now   func() time.Time
}

func NewCache(ttl time.Duration) *Cache {
	exp := ttl
	if exp <= 0 {
		exp = gocache.NoExpiration
	}
	return &Cache{store: gocache.New(exp, 10*time.Minute), now: time.Now}
}

func (c *Cache) Set(rate decimal.Decimal, source string) (Quote, error) {
	if !rate.IsPositive() {
		return Quote{}, ErrInvalidRate
	}
	q := Quote{Rate: rate, Source: source, UpdatedAt: c.now().UTC()}
	c.store.Set(arsPerUSDKey, q, gocache.DefaultExpiration)
	return q, nil
}

func (c *Cache) Get() (Quote, bool) {
	v, ok := c.store.Get(arsPerUSDKey)
	if !ok {
		return Quote{}, false
	}
	q, ok := v.(Quote)
	return q, ok
}

func (c *Cache) Clear() {
	c.store.Delete(arsPerUSDKey)
}

// CurrentRate implements policies.RateSource.
func (c *Cache) CurrentRate(context.Context) (decimal.Decimal, bool, error) {
	q, ok := c.Get()
	if !ok {
		return decimal.Zero, false, nil
	}
	return q.Rate, true, nil
}

var _ policies.RateSource = (*Cache)(nil)
