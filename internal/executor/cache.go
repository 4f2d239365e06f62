package executor

import (
	"container/list"
	"encoding/json"
	"sync"
	"time"

	"github.com/coredb/coredb/internal/query"
)

// defaultQueryCacheTTL bounds how long a cached Select result is served
// before a fresh execution is required, matching the teacher's
// SmartQueryCache default data-query TTL.
const defaultQueryCacheTTL = 60 * time.Second

// QueryCache is a thread-safe, target-invalidated LRU cache of Select
// QueryResults, adapted from the teacher's pkg/cache/query_cache.go
// (container/list + map LRU, TTL expiry) with label/type invalidation
// taken from StorageExecutor.Execute's write-path cache bust.
type QueryCache struct {
	mu sync.Mutex

	maxSize int
	ttl     time.Duration

	list  *list.List
	items map[string]*list.Element

	hits   uint64
	misses uint64
}

type queryCacheEntry struct {
	key       string
	target    string
	value     query.QueryResult
	expiresAt time.Time
}

// NewQueryCache returns a cache bounded to maxSize entries (default 1000
// if non-positive), each valid for ttl (default 60s if zero or negative).
func NewQueryCache(maxSize int, ttl time.Duration) *QueryCache {
	if maxSize <= 0 {
		maxSize = 1000
	}
	if ttl <= 0 {
		ttl = defaultQueryCacheTTL
	}
	return &QueryCache{
		maxSize: maxSize,
		ttl:     ttl,
		list:    list.New(),
		items:   make(map[string]*list.Element, maxSize),
	}
}

// cacheKey serializes the parts of q that determine its result, so two
// structurally identical Select queries share a cache entry.
func cacheKey(q *query.ParsedQuery) string {
	b, err := json.Marshal(q)
	if err != nil {
		return q.Target
	}
	return string(b)
}

// Get returns the cached result for q, if present and unexpired.
func (c *QueryCache) Get(q *query.ParsedQuery) (query.QueryResult, bool) {
	key := cacheKey(q)

	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		c.misses++
		return query.QueryResult{}, false
	}
	entry := elem.Value.(*queryCacheEntry)
	if time.Now().After(entry.expiresAt) {
		c.removeElementLocked(elem)
		c.misses++
		return query.QueryResult{}, false
	}
	c.list.MoveToFront(elem)
	c.hits++
	return entry.value, true
}

// Put caches result for q, evicting the least-recently-used entry first
// if the cache is at capacity.
func (c *QueryCache) Put(q *query.ParsedQuery, result query.QueryResult) {
	key := cacheKey(q)

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		entry := elem.Value.(*queryCacheEntry)
		entry.value = result
		entry.expiresAt = time.Now().Add(c.ttl)
		c.list.MoveToFront(elem)
		return
	}

	for c.list.Len() >= c.maxSize {
		oldest := c.list.Back()
		if oldest == nil {
			break
		}
		c.removeElementLocked(oldest)
	}

	entry := &queryCacheEntry{
		key:       key,
		target:    q.Target,
		value:     result,
		expiresAt: time.Now().Add(c.ttl),
	}
	c.items[key] = c.list.PushFront(entry)
}

// InvalidateTarget drops every cached result keyed to the named target,
// called after any mutation touching that node type.
func (c *QueryCache) InvalidateTarget(target string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var toRemove []*list.Element
	for e := c.list.Front(); e != nil; e = e.Next() {
		if e.Value.(*queryCacheEntry).target == target {
			toRemove = append(toRemove, e)
		}
	}
	for _, e := range toRemove {
		c.removeElementLocked(e)
	}
}

// Clear drops every cached entry.
func (c *QueryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.list.Init()
	c.items = make(map[string]*list.Element, c.maxSize)
}

// Len returns the number of cached entries.
func (c *QueryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.list.Len()
}

// Stats reports cache hit/miss counters.
func (c *QueryCache) Stats() (hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

func (c *QueryCache) removeElementLocked(e *list.Element) {
	c.list.Remove(e)
	entry := e.Value.(*queryCacheEntry)
	delete(c.items, entry.key)
}
