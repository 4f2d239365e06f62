package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByteCachePutAndGet(t *testing.T) {
	c := NewByteCache(1024)
	c.Put("a", []byte("hello"))

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, []byte("hello"), v)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestByteCacheEvictsByWeightOldestFirst(t *testing.T) {
	c := NewByteCache(10)
	c.Put("a", []byte("12345")) // 5 bytes
	c.Put("b", []byte("12345")) // 5 bytes, total 10, fits
	assert.Equal(t, 2, c.Len())

	c.Put("c", []byte("12345")) // pushes total to 15, must evict "a" (LRU)
	assert.Equal(t, 2, c.Len())
	_, ok := c.Get("a")
	assert.False(t, ok)
	_, ok = c.Get("b")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
}

func TestByteCacheGetRefreshesLRU(t *testing.T) {
	c := NewByteCache(10)
	c.Put("a", []byte("12345"))
	c.Put("b", []byte("12345"))

	// Touch "a" so "b" becomes the LRU victim.
	_, _ = c.Get("a")
	c.Put("c", []byte("12345"))

	_, ok := c.Get("b")
	assert.False(t, ok)
	_, ok = c.Get("a")
	assert.True(t, ok)
}

func TestByteCacheIdleEviction(t *testing.T) {
	c := NewByteCache(1024)
	c.Put("a", []byte("hello"))

	elem := c.items["a"]
	elem.Value.(*cacheEntry).lastAccess = time.Now().Add(-2 * IdleEviction)

	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestByteCacheGetOrFetchInvokesOncePerMiss(t *testing.T) {
	c := NewByteCache(1024)
	var calls int64

	fetch := func() ([]byte, error) {
		atomic.AddInt64(&calls, 1)
		return []byte("fetched"), nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.GetOrFetch("k", fetch)
			assert.NoError(t, err)
			assert.Equal(t, []byte("fetched"), v)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), atomic.LoadInt64(&calls))
}

func TestByteCacheGetOrFetchPropagatesError(t *testing.T) {
	c := NewByteCache(1024)
	wantErr := errors.New("boom")

	_, err := c.GetOrFetch("k", func() ([]byte, error) { return nil, wantErr })
	assert.ErrorIs(t, err, wantErr)

	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestByteCacheStats(t *testing.T) {
	c := NewByteCache(1024)
	c.Put("a", []byte("hello"))
	_, _ = c.Get("a")
	_, _ = c.Get("missing")

	stats := c.Stats()
	assert.Equal(t, 1, stats.Entries)
	assert.EqualValues(t, 5, stats.CurrentBytes)
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
}
