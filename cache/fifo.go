// Package cache provides small in-process caches for transformation results.
package cache

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

// DefaultCapacity is used when a non-positive capacity is requested.
const DefaultCapacity = 200

// FIFO is a bounded map which evicts the oldest inserted entry when full.
// Reads do not refresh entries. It is safe for concurrent use.
type FIFO[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	entries  map[K]V
	order    []K
}

// NewFIFO creates a cache holding at most capacity entries.
func NewFIFO[K comparable, V any](capacity int) *FIFO[K, V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &FIFO[K, V]{
		capacity: capacity,
		entries:  make(map[K]V, capacity),
		order:    make([]K, 0, capacity),
	}
}

// Get returns cached value for key.
func (c *FIFO[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.entries[key]
	return v, ok
}

// Put stores value under key. Replacing an existing key keeps its original
// insertion position.
func (c *FIFO[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		c.entries[key] = value
		return
	}
	for len(c.order) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	c.entries[key] = value
	c.order = append(c.order, key)
}

// Delete removes key from the cache.
func (c *FIFO[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; !ok {
		return
	}
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Clear drops all entries.
func (c *FIFO[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	clear(c.entries)
	c.order = c.order[:0]
}

// Len returns number of cached entries.
func (c *FIFO[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// Capacity returns maximum number of entries.
func (c *FIFO[K, V]) Capacity() int {
	return c.capacity
}

// Key returns content hash used to key caches by input text.
func Key(text string) uint64 {
	return xxhash.Sum64String(text)
}
