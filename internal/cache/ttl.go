// Package cache provides a keyed in-process cache whose entries expire after a
// fixed time-to-live.
package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type entry[V any] struct {
	value      V
	capturedAt time.Time
}

// TTL is safe for concurrent use by multiple goroutines.
type TTL[V any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]entry[V]
	group   singleflight.Group
	// gen is bumped by invalidation so a load that started before it is not stored.
	gen map[string]uint64
}

// New returns a cache whose entries are valid for ttl after capture.
// A nil now uses time.Now.
func New[V any](ttl time.Duration, now func() time.Time) *TTL[V] {
	if now == nil {
		now = time.Now
	}
	return &TTL[V]{
		ttl:     ttl,
		now:     now,
		entries: make(map[string]entry[V]),
		gen:     make(map[string]uint64),
	}
}

// Get returns the value for key when present and not expired.
func (c *TTL[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if c.now().Sub(e.capturedAt) >= c.ttl {
		delete(c.entries, key)
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value for key with a fresh timestamp.
func (c *TTL[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry[V]{value: value, capturedAt: c.now()}
}

// Invalidate drops the entry for key.
func (c *TTL[V]) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	c.gen[key]++
}

// InvalidateAll drops every entry.
func (c *TTL[V]) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		c.gen[k]++
	}
	c.entries = make(map[string]entry[V])
}

// Len returns the number of stored entries, expired or not.
func (c *TTL[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// GetOrLoad returns the cached value for key or calls load once for all
// concurrent callers missing the same key. hit reports whether the cache served it.
//
// The shared load runs detached from any single caller's cancellation; each caller
// stops waiting when its own ctx is done.
func (c *TTL[V]) GetOrLoad(ctx context.Context, key string, load func(ctx context.Context) (V, error)) (value V, hit bool, err error) {
	if v, ok := c.Get(key); ok {
		return v, true, nil
	}
	loadCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		if v, ok := c.Get(key); ok {
			return v, nil
		}
		c.mu.Lock()
		gen := c.gen[key]
		c.mu.Unlock()

		v, err := load(loadCtx)
		if err != nil {
			return v, err
		}

		c.mu.Lock()
		if c.gen[key] == gen {
			c.entries[key] = entry[V]{value: v, capturedAt: c.now()}
		}
		c.mu.Unlock()
		return v, nil
	})

	var zero V
	select {
	case <-ctx.Done():
		return zero, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, false, res.Err
		}
		return res.Val.(V), false, nil
	}
}
