package loader

import (
	"context"
	"sync"

	"github.com/MidoraAholo/weather-dashboard/internal/domain"
	"github.com/MidoraAholo/weather-dashboard/internal/observability"
)

// CachedLoader wraps a TableLoader with an in-memory LRU cache keyed by
// source, so repeated dashboard interactions against the same source skip
// the fetch and reparse. Failed loads are never cached.
type CachedLoader struct {
	inner   TableLoader
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedLoader creates a cache decorator around a loader.
func NewCachedLoader(inner TableLoader, maxEntries int, metrics *observability.Metrics) *CachedLoader {
	return &CachedLoader{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
	}
}

func (c *CachedLoader) Load(ctx context.Context, source string) (domain.Table, domain.ParseStats, error) {
	if cached, ok := c.cache.get(source); ok {
		c.metrics.LoaderCache.WithLabelValues("hit").Inc()
		return cached.table, cached.stats, nil
	}
	c.metrics.LoaderCache.WithLabelValues("miss").Inc()

	table, stats, err := c.inner.Load(ctx, source)
	if err != nil {
		return table, stats, err
	}
	c.cache.put(source, cachedTable{table: table, stats: stats})
	return table, stats, nil
}

// Invalidate drops a source from the cache so the next Load refetches.
func (c *CachedLoader) Invalidate(source string) {
	c.cache.remove(source)
}

type cachedTable struct {
	table domain.Table
	stats domain.ParseStats
}

// lruCache is a simple thread-safe LRU cache for parsed tables.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value cachedTable
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) (cachedTable, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return cachedTable{}, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value cachedTable) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.pushFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		c.unlink(e)
		delete(c.entries, key)
	}
}

func (c *lruCache) moveToFront(e *entry) {
	if c.head == e {
		return
	}
	c.unlink(e)
	c.pushFront(e)
}

func (c *lruCache) pushFront(e *entry) {
	e.prev = nil
	e.next = c.head
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) unlink(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
	e.prev = nil
	e.next = nil
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	victim := c.tail
	c.unlink(victim)
	delete(c.entries, victim.key)
}
