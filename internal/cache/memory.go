package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time // zero means no expiration
}

// In memory cache with expiring entries
// Used in tests and meant for single process runs, not a redis replacement
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	sets    map[string]map[string]struct{}

	// Time source, replaceable in tests
	now func() time.Time
}

func NewMemory() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		sets:    make(map[string]map[string]struct{}),
		now:     time.Now,
	}
}

// SetNow replaces the cache time source. Meant for tests only.
func (c *MemoryCache) SetNow(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = now
}

func (c *MemoryCache) get(key string) (string, bool) {
	entry, ok := c.entries[key]
	if !ok {
		return "", false
	}

	if !entry.expiresAt.IsZero() && !c.now().Before(entry.expiresAt) {
		delete(c.entries, key)
		return "", false
	}

	return entry.value, true
}

func (c *MemoryCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	value, ok := c.get(key)
	if !ok {
		return "", ErrKeyNotFound
	}
	return value, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = c.now().Add(ttl)
	}
	c.entries[key] = entry
	return nil
}

func (c *MemoryCache) Del(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
	return nil
}

func (c *MemoryCache) Exists(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.get(key)
	return ok, nil
}

func (c *MemoryCache) SAdd(_ context.Context, set string, member string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	members, ok := c.sets[set]
	if !ok {
		members = make(map[string]struct{})
		c.sets[set] = members
	}
	members[member] = struct{}{}
	return nil
}

func (c *MemoryCache) SIsMember(_ context.Context, set string, member string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.sets[set][member]
	return ok, nil
}
