// Package cache holds the client-side query cache. It is an explicit object
// owned by whoever composes the views, never a package-level singleton, and
// it only ever holds copies: a fresh server query always wins over a cached
// entry.
package cache

import "sync"

// StatusSuccess marks an entry as settled data. It is the only status a
// cache entry can carry; loading and error are client states, not cache
// states.
const StatusSuccess = "success"

// Entry is one cached query result. The shape matches the hydration payload
// so a server snapshot can be seeded directly.
type Entry struct {
	Data   any    `json:"data"`
	Status string `json:"status"`
}

// QueryCache maps structural query keys to settled results.
//
// Single-writer-per-key discipline: a key is written either by the query
// that owns it (on settle) or removed by the mutation reconciler (on
// invalidation). Nothing else touches it.
type QueryCache struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func New() *QueryCache {
	return &QueryCache{
		entries: make(map[string]Entry),
	}
}

// Get returns the entry for a key and whether it was present.
func (c *QueryCache) Get(key string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	return entry, ok
}

// Set stores a settled result for a key, superseding any previous entry.
func (c *QueryCache) Set(key string, data any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = Entry{Data: data, Status: StatusSuccess}
}

// Invalidate discards the entry for a key, forcing the next read to refetch
// from source.
func (c *QueryCache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
}

// Seed loads a server-side snapshot into the cache so the first render finds
// its queries already fresh. Existing entries for the same keys are
// superseded.
func (c *QueryCache) Seed(snapshot map[string]Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, entry := range snapshot {
		c.entries[key] = entry
	}
}

// Len returns the number of cached entries.
func (c *QueryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}
