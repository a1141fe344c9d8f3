package resolver

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
)

// Cache memoizes successful resolutions. It is unbounded, has no TTL and never evicts or overwrites an
// entry, so it is only suitable for short-lived, caller-scoped use such as a single benchmark suite run.
// Forward and reverse queries use separate key spaces.
type Cache struct {
	mu      sync.RWMutex
	lookup  map[string][]string
	reverse map[string][]string

	hits   atomic.Int64
	misses atomic.Int64
}

// CacheStats represents hit and miss counters of Cache.
type CacheStats struct {
	Hits   int64
	Misses int64
}

// NewCache creates an empty Cache.
func NewCache() *Cache {
	return &Cache{
		lookup:  make(map[string][]string),
		reverse: make(map[string][]string),
	}
}

// Len returns number of stored entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.lookup) + len(c.reverse)
}

// Stats returns hit and miss counters.
func (c *Cache) Stats() CacheStats {
	return CacheStats{Hits: c.hits.Load(), Misses: c.misses.Load()}
}

func (c *Cache) space(op string) map[string][]string {
	if op == OpReverse {
		return c.reverse
	}
	return c.lookup
}

func (c *Cache) get(op, key string) ([]string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.space(op)[key]
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return slices.Clone(v), true
}

// set stores a copy of the value unless the key is already present and returns a copy of the value retained
// for the key.
func (c *Cache) set(op, key string, value []string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	space := c.space(op)
	if v, ok := space[key]; ok {
		return slices.Clone(v)
	}
	space[key] = slices.Clone(value)
	return value
}

// Cached decorates a Resolver with a Cache. Errors are never cached and concurrent misses for the same
// key are not deduplicated, each of them reaches the underlying resolver.
type Cached struct {
	next  Resolver
	cache *Cache
}

var _ Resolver = &Cached{}

// NewCached wraps next with a fresh Cache.
func NewCached(next Resolver) *Cached {
	return NewCachedWith(next, NewCache())
}

// NewCachedWith wraps next with the given Cache, which may be shared by multiple wrappers.
func NewCachedWith(next Resolver, cache *Cache) *Cached {
	return &Cached{next: next, cache: cache}
}

// Cache returns the Cache used by the wrapper.
func (c *Cached) Cache() *Cache {
	return c.cache
}

// Lookup implements Resolver.Lookup.
func (c *Cached) Lookup(ctx context.Context, host string) ([]string, error) {
	return c.resolve(ctx, OpLookup, host, c.next.Lookup)
}

// Reverse implements Resolver.Reverse.
func (c *Cached) Reverse(ctx context.Context, addr string) ([]string, error) {
	return c.resolve(ctx, OpReverse, addr, c.next.Reverse)
}

func (c *Cached) resolve(ctx context.Context, op, key string,
	fn func(context.Context, string) ([]string, error)) ([]string, error) {
	if v, ok := c.cache.get(op, key); ok {
		return v, nil
	}
	v, err := fn(ctx, key)
	if err != nil {
		return nil, err
	}
	return c.cache.set(op, key, v), nil
}
