package security

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/singleflight"
)

var (
	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "verdict_cache_hits_total",
		Help: "Verdict cache lookups served from a fresh entry",
	})
	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "verdict_cache_misses_total",
		Help: "Verdict cache lookups that required computation",
	})
	cacheShared = promauto.NewCounter(prometheus.CounterOpts{
		Name: "verdict_cache_shared_total",
		Help: "Verdict computations shared between concurrent callers",
	})
)

// Cache is a TTL-bounded verdict store with single-flight computation:
// concurrent Verify calls for the same uncached domain collapse into one
// provider round, so each domain has at most one outstanding external call
// set at any time.
type Cache struct {
	engine *Engine
	ttl    time.Duration
	now    func() time.Time

	mu      sync.RWMutex
	entries map[string]*Verdict

	group singleflight.Group
}

func NewCache(engine *Engine, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = time.Hour
	}

	return &Cache{
		engine:  engine,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]*Verdict),
	}
}

func (c *Cache) lookup(domain string) *Verdict {
	c.mu.RLock()
	defer c.mu.RUnlock()

	v, ok := c.entries[domain]
	if !ok {
		return nil
	}
	if c.now().Sub(v.ComputedAt) >= c.ttl {
		return nil
	}
	return v
}

// Verify returns the cached verdict when fresh, otherwise computes one.
// Computation runs on a context detached from the caller so a dropped
// connection still populates the cache for subsequent requests.
func (c *Cache) Verify(ctx context.Context, domain string) *Verdict {
	if v := c.lookup(domain); v != nil {
		cacheHits.Inc()
		return v
	}
	cacheMisses.Inc()

	result, _, shared := c.group.Do(domain, func() (any, error) {
		// A concurrent flight may have stored an entry between our
		// lookup and joining the group.
		if v := c.lookup(domain); v != nil {
			return v, nil
		}

		verdict := c.engine.Verify(context.WithoutCancel(ctx), domain)

		c.mu.Lock()
		c.entries[domain] = verdict
		c.mu.Unlock()

		return verdict, nil
	})
	if shared {
		cacheShared.Inc()
	}

	return result.(*Verdict)
}

// Invalidate drops the cached verdict for a domain, forcing the next Verify
// to recompute. Called by the registry when a destination edit changes its
// domain.
func (c *Cache) Invalidate(domain string) {
	if domain == "" {
		return
	}

	c.mu.Lock()
	delete(c.entries, domain)
	c.mu.Unlock()
}
