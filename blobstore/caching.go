package blobstore

import (
	"context"
	"slices"

	"github.com/hupe1980/gridex/cache"
)

// CachingStore keeps recently read blobs of another Store in memory.
// Published index files never change, so remote stores benefit the most.
// Writes and deletes through the CachingStore invalidate the cached copy;
// changes made to the underlying store by other writers are not seen until
// the entry is evicted.
type CachingStore struct {
	Store
	cache *cache.LRU
}

// NewCachingStore wraps s with a cache of at most capacity bytes.
func NewCachingStore(s Store, capacity int64) *CachingStore {
	return &CachingStore{
		Store: s,
		cache: cache.NewLRU(capacity),
	}
}

// Get reads a blob, from the cache when possible. The returned slice is a
// copy.
func (c *CachingStore) Get(ctx context.Context, name string) ([]byte, error) {
	if data, ok := c.cache.Get(name); ok {
		return slices.Clone(data), nil
	}

	data, err := c.Store.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	c.cache.Set(name, slices.Clone(data))
	return data, nil
}

// Put writes a blob through to the underlying store.
func (c *CachingStore) Put(ctx context.Context, name string, data []byte) error {
	c.invalidate(name)
	return c.Store.Put(ctx, name, data)
}

// Delete removes a blob from the underlying store and the cache.
func (c *CachingStore) Delete(ctx context.Context, name string) error {
	c.invalidate(name)
	return c.Store.Delete(ctx, name)
}

// Stats returns the cache hit and miss counts.
func (c *CachingStore) Stats() (hits, misses int64) {
	return c.cache.Stats()
}

func (c *CachingStore) invalidate(name string) {
	c.cache.Invalidate(func(key string) bool { return key == name })
}
