// Package cache provides an in-process TTL cache with tag-based
// invalidation.
//
// The cache is an explicitly constructed handle: build one at process start
// and pass it to the components that need it. Entries are associated with
// tags at write time and invalidated by tag, which replaces fragile
// pattern-matching over key strings.
package cache

import (
	"sync"
	"time"
)

type entry struct {
	value     any
	tags      []string
	expiresAt time.Time
}

// Cache is a TTL map with tag-based invalidation. Safe for concurrent use.
type Cache struct {
	mu         sync.RWMutex
	entries    map[string]*entry
	defaultTTL time.Duration
}

// New creates a cache whose entries expire after the given default TTL.
func New(defaultTTL time.Duration) *Cache {
	return &Cache{
		entries:    make(map[string]*entry),
		defaultTTL: defaultTTL,
	}
}

// Get returns the value for key if present and not expired.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || time.Now().After(e.expiresAt) {
		return nil, false
	}
	return e.value, true
}

// Set stores a value under key with the default TTL, associated with the
// given tags.
func (c *Cache) Set(key string, value any, tags ...string) {
	c.SetWithTTL(key, value, c.defaultTTL, tags...)
}

// SetWithTTL stores a value under key with an explicit TTL.
func (c *Cache) SetWithTTL(key string, value any, ttl time.Duration, tags ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = &entry{
		value:     value,
		tags:      tags,
		expiresAt: time.Now().Add(ttl),
	}
}

// Delete removes a single key.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// InvalidateTag removes every entry that was written with the given tag and
// returns how many entries were dropped.
func (c *Cache) InvalidateTag(tag string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	dropped := 0
	for key, e := range c.entries {
		for _, t := range e.tags {
			if t == tag {
				delete(c.entries, key)
				dropped++
				break
			}
		}
	}
	return dropped
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry)
}

// CleanExpired removes expired entries. Call periodically from a background
// loop when the cache is long-lived.
func (c *Cache) CleanExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}

// Len returns the number of stored entries, including not-yet-cleaned
// expired ones.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
