// Package cache bounds outbound request volume by serving recent snapshots
// from memory.
package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"stockwatch/internal/quote"
)

// DefaultTTL is how long a snapshot stays fresh when no TTL is configured.
const DefaultTTL = 300 * time.Second

// Cache wraps a Source and serves cached snapshots per instrument code while
// they are fresh. A failed refresh surfaces the error to the caller but never
// evicts a previously cached snapshot: stale-but-present beats absent.
type Cache struct {
	src quote.Source
	ttl time.Duration

	// now is replaceable in tests.
	now func() time.Time

	// sf coalesces concurrent refreshes for the same code.
	sf singleflight.Group

	mu      sync.RWMutex
	entries map[string]quote.Snapshot
}

func New(src quote.Source, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		src:     src,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]quote.Snapshot),
	}
}

func (c *Cache) Name() string { return c.src.Name() }

// Fetch returns the cached snapshot for code while it is fresh, otherwise
// delegates to the wrapped source and stores the replacement wholesale.
func (c *Cache) Fetch(ctx context.Context, code string) (quote.Snapshot, error) {
	c.mu.RLock()
	snap, ok := c.entries[code]
	c.mu.RUnlock()
	if ok && c.now().Sub(snap.FetchedAt) < c.ttl {
		return snap, nil
	}

	v, err, _ := c.sf.Do(code, func() (any, error) {
		// Re-check under the flight: a concurrent caller may have stored
		// a fresh entry while this one waited.
		c.mu.RLock()
		cur, ok := c.entries[code]
		c.mu.RUnlock()
		if ok && c.now().Sub(cur.FetchedAt) < c.ttl {
			return cur, nil
		}

		fresh, err := c.src.Fetch(ctx, code)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[code] = fresh
		c.mu.Unlock()
		return fresh, nil
	})
	if err != nil {
		return quote.Snapshot{}, err
	}
	return v.(quote.Snapshot), nil
}

// Cached returns the stored snapshot for code regardless of freshness.
// Callers wanting graceful degradation after a failed Fetch can fall back
// to it explicitly.
func (c *Cache) Cached(code string) (quote.Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snap, ok := c.entries[code]
	return snap, ok
}
