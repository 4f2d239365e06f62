// Package cache implements the bucket store's in-memory byte cache: an
// LRU cache keyed by object path, bounded by total byte capacity rather
// than entry count, with a fixed idle-time eviction and single-flight
// fetch-on-miss semantics.
//
// Grounded on nornicdb/pkg/cache/query_cache.go's container/list + map
// LRU shape, adapted from an entry-count bound and insert-time TTL to a
// byte-weight bound and last-access idle timeout, per SPEC_FULL.md §4.2.
package cache

import (
	"container/list"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// IdleEviction is the fixed idle duration after which an entry is
// evicted regardless of LRU position.
const IdleEviction = 1 * time.Hour

// ByteCache is a thread-safe, byte-weighted LRU cache for object bytes.
type ByteCache struct {
	mu sync.Mutex

	maxBytes     int64
	currentBytes int64

	list  *list.List
	items map[string]*list.Element

	group singleflight.Group

	hits   uint64
	misses uint64
}

type cacheEntry struct {
	key        string
	value      []byte
	lastAccess time.Time
}

// NewByteCache returns a ByteCache bounded by maxBytes total payload
// size. A non-positive maxBytes defaults to 64 MiB.
func NewByteCache(maxBytes int64) *ByteCache {
	if maxBytes <= 0 {
		maxBytes = 64 << 20
	}
	return &ByteCache{
		maxBytes: maxBytes,
		list:     list.New(),
		items:    make(map[string]*list.Element),
	}
}

// Get returns the cached bytes for key, or (nil, false) on miss or
// idle-expiry. A hit refreshes both LRU position and last-access time.
func (c *ByteCache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		c.misses++
		return nil, false
	}

	entry := elem.Value.(*cacheEntry)
	if time.Since(entry.lastAccess) > IdleEviction {
		c.removeElement(elem)
		c.misses++
		return nil, false
	}

	entry.lastAccess = time.Now()
	c.list.MoveToFront(elem)
	c.hits++
	return entry.value, true
}

// Put installs value under key, evicting the least recently used
// entries (oldest first) until the cache fits within maxBytes or only the
// new entry is left; a single value larger than maxBytes stays cached on
// its own.
func (c *ByteCache) Put(key string, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.putLocked(key, value)
}

func (c *ByteCache) putLocked(key string, value []byte) {
	if elem, ok := c.items[key]; ok {
		entry := elem.Value.(*cacheEntry)
		c.currentBytes -= int64(len(entry.value))
		entry.value = value
		entry.lastAccess = time.Now()
		c.currentBytes += int64(len(value))
		c.list.MoveToFront(elem)
	} else {
		entry := &cacheEntry{key: key, value: value, lastAccess: time.Now()}
		elem := c.list.PushFront(entry)
		c.items[key] = elem
		c.currentBytes += int64(len(value))
	}

	for c.currentBytes > c.maxBytes && c.list.Len() > 1 {
		c.evictOldest()
	}
}

// GetOrFetch returns the cached bytes for key if present; otherwise it
// invokes fetch exactly once even under concurrent callers for the same
// key, installs the result on success, and returns it.
func (c *ByteCache) GetOrFetch(key string, fetch func() ([]byte, error)) ([]byte, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		if v, ok := c.Get(key); ok {
			return v, nil
		}
		data, err := fetch()
		if err != nil {
			return nil, err
		}
		c.Put(key, data)
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Remove evicts key if present.
func (c *ByteCache) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.items[key]; ok {
		c.removeElement(elem)
	}
}

// Clear empties the cache.
func (c *ByteCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.list.Init()
	c.items = make(map[string]*list.Element)
	c.currentBytes = 0
}

// Len returns the number of cached entries.
func (c *ByteCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.list.Len()
}

// Stats reports cache occupancy and hit/miss counters.
type Stats struct {
	Entries      int
	CurrentBytes int64
	MaxBytes     int64
	Hits         uint64
	Misses       uint64
}

// Stats returns a snapshot of cache counters.
func (c *ByteCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Entries:      c.list.Len(),
		CurrentBytes: c.currentBytes,
		MaxBytes:     c.maxBytes,
		Hits:         c.hits,
		Misses:       c.misses,
	}
}

// evictOldest removes the least recently used entry. Caller holds mu.
func (c *ByteCache) evictOldest() {
	elem := c.list.Back()
	if elem != nil {
		c.removeElement(elem)
	}
}

// removeElement removes elem from the list and index. Caller holds mu.
func (c *ByteCache) removeElement(elem *list.Element) {
	c.list.Remove(elem)
	entry := elem.Value.(*cacheEntry)
	delete(c.items, entry.key)
	c.currentBytes -= int64(len(entry.value))
}
