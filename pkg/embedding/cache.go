package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// Cache is a bounded, process-local cache of text embeddings in front of a
// Provider. Entries are evicted in insertion order (FIFO, not LRU): slots
// form a fixed arena and a ring cursor always points at the oldest insert,
// which keeps eviction O(1) and deterministic.
//
// Concurrent writers may race on insertion; that is tolerated. A lost cache
// write only costs a recomputation, never a wrong vector.
type Cache struct {
	mu       sync.Mutex
	provider Provider
	capacity int

	slots  [][]float32    // arena, len == capacity
	keys   []string       // slot -> key, for index cleanup on overwrite
	index  map[string]int // key -> slot
	cursor int            // next slot to fill (oldest once full)
	size   int
}

const DefaultCacheCapacity = 1000

func NewCache(provider Provider, capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	return &Cache{
		provider: provider,
		capacity: capacity,
		slots:    make([][]float32, capacity),
		keys:     make([]string, capacity),
		index:    make(map[string]int, capacity),
	}
}

// cacheKey hashes scope and text together so the same text can be cached
// distinctly per session when a scope is supplied.
func cacheKey(scope, text string) string {
	h := sha256.New()
	h.Write([]byte(scope))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// GetOrCompute returns the cached embedding for (scope, text), computing and
// inserting it on a miss.
func (c *Cache) GetOrCompute(ctx context.Context, scope, text string) ([]float32, error) {
	key := cacheKey(scope, text)

	c.mu.Lock()
	if slot, ok := c.index[key]; ok {
		vec := c.slots[slot]
		c.mu.Unlock()
		return vec, nil
	}
	c.mu.Unlock()

	// Compute outside the lock; embedding calls are slow.
	vec, err := c.provider.Generate(ctx, text)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// A concurrent caller may have filled the slot meanwhile; last write wins.
	if old, ok := c.index[key]; ok {
		c.slots[old] = vec
		return vec, nil
	}

	if c.size == c.capacity {
		// Cursor points at the oldest-inserted slot.
		delete(c.index, c.keys[c.cursor])
	} else {
		c.size++
	}
	c.slots[c.cursor] = vec
	c.keys[c.cursor] = key
	c.index[key] = c.cursor
	c.cursor = (c.cursor + 1) % c.capacity

	return vec, nil
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// Clear drops every cached entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.slots = make([][]float32, c.capacity)
	c.keys = make([]string, c.capacity)
	c.index = make(map[string]int, c.capacity)
	c.cursor = 0
	c.size = 0
}
