package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/kardex-api/internal/domain/inventory"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

var _ repository.ValuationCache = (*ValuationCache)(nil)

type cachedValuation struct {
	v         inventory.Valuation
	expiresAt time.Time
}

// ValuationCache caché en proceso, usada cuando no hay Redis configurado.
type ValuationCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[int64]cachedValuation
	gens    map[int64]int64
	now     func() time.Time
}

// NewValuationCache crea la caché; ttl <= 0 significa sin vencimiento.
func NewValuationCache(ttl time.Duration) *ValuationCache {
	return &ValuationCache{
		ttl:     ttl,
		entries: make(map[int64]cachedValuation),
		gens:    make(map[int64]int64),
		now:     time.Now,
	}
}

func (c *ValuationCache) Get(_ context.Context, articleID int64) (inventory.Valuation, int64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	gen := c.gens[articleID]
	e, ok := c.entries[articleID]
	if !ok || (!e.expiresAt.IsZero() && c.now().After(e.expiresAt)) {
		return inventory.Valuation{}, gen, false, nil
	}
	return e.v, gen, true, nil
}

func (c *ValuationCache) Set(_ context.Context, articleID int64, gen int64, v inventory.Valuation) error {
	e := cachedValuation{v: v}
	if c.ttl > 0 {
		e.expiresAt = c.now().Add(c.ttl)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[articleID] != gen {
		return nil
	}
	c.entries[articleID] = e
	return nil
}

func (c *ValuationCache) Invalidate(_ context.Context, articleIDs ...int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range articleIDs {
		c.gens[id]++
		delete(c.entries, id)
	}
	return nil
}
