// Package cache keeps recently read index files in memory, bounded by bytes.
package cache

import (
	"sync"
	"sync/atomic"
)

// LRU maps blob names to their contents. Cached slices are shared with
// callers and must not be modified.
type LRU struct {
	mu       sync.Mutex
	capacity int64
	size     int64
	nodes    map[string]*node
	// head.next is the most recently used blob, head.prev the least.
	head node

	hits   atomic.Int64
	misses atomic.Int64
}

type node struct {
	prev, next *node
	name       string
	blob       []byte
}

// NewLRU returns a cache holding at most capacity bytes of blobs.
func NewLRU(capacity int64) *LRU {
	c := &LRU{capacity: capacity, nodes: make(map[string]*node)}
	c.head.prev, c.head.next = &c.head, &c.head
	return c
}

func (c *LRU) unlink(n *node) {
	n.prev.next, n.next.prev = n.next, n.prev
}

func (c *LRU) pushFront(n *node) {
	n.prev, n.next = &c.head, c.head.next
	c.head.next.prev = n
	c.head.next = n
}

func (c *LRU) drop(n *node) {
	c.unlink(n)
	delete(c.nodes, n.name)
	c.size -= int64(len(n.blob))
}

// Get returns the blob cached under name.
func (c *LRU) Get(name string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.nodes[name]
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	c.unlink(n)
	c.pushFront(n)
	return n.blob, true
}

// Set caches blob under name, evicting the least recently used blobs until
// the cache fits. A blob bigger than the whole cache is not kept.
func (c *LRU) Set(name string, blob []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n, ok := c.nodes[name]; ok {
		c.drop(n)
	}
	if int64(len(blob)) > c.capacity {
		return
	}

	n := &node{name: name, blob: blob}
	c.nodes[name] = n
	c.pushFront(n)
	c.size += int64(len(blob))

	for c.size > c.capacity && c.head.prev != &c.head {
		c.drop(c.head.prev)
	}
}

// Invalidate forgets every blob whose name matches.
func (c *LRU) Invalidate(match func(name string) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for name, n := range c.nodes {
		if match(name) {
			c.drop(n)
		}
	}
}

// Stats reports lookups served from and missed by the cache.
func (c *LRU) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Size is the number of cached bytes.
func (c *LRU) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// Len is the number of cached blobs.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.nodes)
}
