package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLRU(t *testing.T) {
	c := NewLRU(50)

	c.Set("k1", make([]byte, 20))
	assert.Equal(t, int64(20), c.Size())

	c.Set("k2", make([]byte, 20))
	assert.Equal(t, int64(40), c.Size())

	// 60 > 50 evicts the least recently used k1.
	c.Set("k3", make([]byte, 20))
	assert.Equal(t, int64(40), c.Size())
	assert.Equal(t, 2, c.Len())

	_, ok := c.Get("k1")
	assert.False(t, ok, "k1 should be evicted")
	_, ok = c.Get("k2")
	assert.True(t, ok)
	_, ok = c.Get("k3")
	assert.True(t, ok)

	hits, misses := c.Stats()
	assert.Equal(t, int64(2), hits)
	assert.Equal(t, int64(1), misses)
}

func TestLRU_RecentlyUsedSurvives(t *testing.T) {
	c := NewLRU(50)
	c.Set("a", make([]byte, 20))
	c.Set("b", make([]byte, 20))

	_, _ = c.Get("a")
	c.Set("c", make([]byte, 20))

	_, ok := c.Get("a")
	assert.True(t, ok)
	_, ok = c.Get("b")
	assert.False(t, ok)
}

func TestLRU_EdgeCases(t *testing.T) {
	c := NewLRU(50)

	c.Set("k", make([]byte, 60))
	_, ok := c.Get("k")
	assert.False(t, ok, "blobs larger than the capacity are not cached")

	c.Set("k", make([]byte, 10))
	assert.Equal(t, int64(10), c.Size())

	c.Set("k", make([]byte, 20))
	assert.Equal(t, int64(20), c.Size())

	c.Set("k", make([]byte, 5))
	assert.Equal(t, int64(5), c.Size())

	// Growing an entry past the capacity evicts it.
	c.Set("k", make([]byte, 70))
	assert.Equal(t, int64(0), c.Size())
	assert.Equal(t, 0, c.Len())
}

func TestLRU_Invalidate(t *testing.T) {
	c := NewLRU(100)
	c.Set("temperature/1.gdx", []byte("a"))
	c.Set("temperature/2.gdx", []byte("b"))
	c.Set("wind/1.gdx", []byte("c"))

	c.Invalidate(func(k string) bool { return k[0] == 't' })

	assert.Equal(t, 1, c.Len())
	assert.Equal(t, int64(1), c.Size())
	v, ok := c.Get("wind/1.gdx")
	assert.True(t, ok)
	assert.Equal(t, []byte("c"), v)
}
