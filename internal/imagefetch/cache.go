package imagefetch

import (
	"container/list"
	"sync"
)

// CacheStats reports cache activity.
type CacheStats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Size      int
	MaxSize   int
}

type cacheEntry[K comparable, V any] struct {
	key   K
	value V
}

// lru is a mutex-guarded least-recently-used cache. maxSize <= 0 disables
// eviction.
type lru[K comparable, V any] struct {
	mu        sync.Mutex
	maxSize   int
	entries   map[K]*list.Element
	evictList *list.List
	stats     CacheStats
}

func newLRU[K comparable, V any](maxSize int) *lru[K, V] {
	return &lru[K, V]{
		maxSize:   max(maxSize, 0),
		entries:   make(map[K]*list.Element),
		evictList: list.New(),
	}
}

func (c *lru[K, V]) get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		c.stats.Misses++
		var zero V
		return zero, false
	}
	c.evictList.MoveToFront(el)
	c.stats.Hits++
	return el.Value.(*cacheEntry[K, V]).value, true
}

func (c *lru[K, V]) put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		c.evictList.MoveToFront(el)
		el.Value.(*cacheEntry[K, V]).value = value
		return
	}
	c.entries[key] = c.evictList.PushFront(&cacheEntry[K, V]{key: key, value: value})
	if c.maxSize > 0 && c.evictList.Len() > c.maxSize {
		oldest := c.evictList.Back()
		c.evictList.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry[K, V]).key)
		c.stats.Evictions++
	}
}

func (c *lru[K, V]) snapshot() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Size = c.evictList.Len()
	s.MaxSize = c.maxSize
	return s
}
