package memory

import (
	"context"
	"sync"

	"rentdesk/internal/domain/pricing"
	"rentdesk/internal/domain/property"
)

// PriceConfigRepository stores one pricing configuration per property.
type PriceConfigRepository struct {
	mu    sync.RWMutex
	items map[property.ID]pricing.Config
}

func NewPriceConfigRepository() *PriceConfigRepository {
	return &PriceConfigRepository{items: make(map[property.ID]pricing.Config)}
}

func (r *PriceConfigRepository) ByProperty(ctx context.Context, id property.ID) (*pricing.Config, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.items[id]
	if !ok {
		return nil, pricing.ErrConfigNotFound
	}
	return cloneConfig(cfg), nil
}

func (r *PriceConfigRepository) Save(ctx context.Context, cfg *pricing.Config) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.items[cfg.PropertyID]; ok {
		cfg.Version = current.Version + 1
	} else {
		cfg.Version = 1
	}
	r.items[cfg.PropertyID] = *cloneConfig(*cfg)
	return nil
}

func cloneConfig(cfg pricing.Config) *pricing.Config {
	c := cfg
	c.SeasonalRates = append([]pricing.SeasonalRate(nil), cfg.SeasonalRates...)
	c.MinStayRules = append([]pricing.MinStayRule(nil), cfg.MinStayRules...)
	c.DiscountTiers = append([]pricing.DiscountTier(nil), cfg.DiscountTiers...)
	return &c
}

var _ pricing.Repository = (*PriceConfigRepository)(nil)
