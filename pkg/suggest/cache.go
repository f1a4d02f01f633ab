package suggest

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/charmbracelet/log"
)

// Cache keeps the results of recent queries in front of a slower provider,
// evicting the least recently used query once maxQueries is reached.
// Errors are never cached.
type Cache struct {
	inner       Provider
	results     map[string][]Suggestion
	accessTime  map[string]int64
	accessCount int64
	hits        int
	misses      int
	maxQueries  int
	mu          sync.Mutex
}

// NewCache wraps inner. A maxQueries below 1 is treated as 1.
func NewCache(inner Provider, maxQueries int) *Cache {
	if maxQueries < 1 {
		maxQueries = 1
	}
	return &Cache{
		inner:      inner,
		results:    make(map[string][]Suggestion, maxQueries),
		accessTime: make(map[string]int64, maxQueries),
		maxQueries: maxQueries,
	}
}

// Suggest answers from the cache or asks the wrapped provider.
// The returned slice is a copy the caller may keep.
func (c *Cache) Suggest(ctx context.Context, query string, limit int) ([]Suggestion, error) {
	key := fmt.Sprintf("%s\x00%d", query, limit)

	c.mu.Lock()
	if cached, ok := c.results[key]; ok {
		c.hits++
		c.accessTime[key] = c.getNextAccessTime()
		c.mu.Unlock()
		return append([]Suggestion(nil), cached...), nil
	}
	c.misses++
	c.mu.Unlock()

	results, err := c.inner.Suggest(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.results[key]; !ok && len(c.results) >= c.maxQueries {
		c.evictLRU()
	}
	c.results[key] = append([]Suggestion(nil), results...)
	c.accessTime[key] = c.getNextAccessTime()
	return results, nil
}

// Invalidate drops every cached result, for example after a dictionary reload.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = make(map[string][]Suggestion, c.maxQueries)
	c.accessTime = make(map[string]int64, c.maxQueries)
	log.Debug("suggestion cache invalidated")
}

// Stats reports cache size and hit counts.
func (c *Cache) Stats() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return map[string]int{
		"cachedQueries": len(c.results),
		"maxQueries":    c.maxQueries,
		"cacheHits":     c.hits,
		"cacheMisses":   c.misses,
	}
}

func (c *Cache) getNextAccessTime() int64 {
	c.accessCount++
	return c.accessCount
}

func (c *Cache) evictLRU() {
	var oldestKey string
	var oldestTime int64 = math.MaxInt64

	for key, accessTime := range c.accessTime {
		if accessTime < oldestTime {
			oldestTime = accessTime
			oldestKey = key
		}
	}

	if oldestKey != "" {
		delete(c.results, oldestKey)
		delete(c.accessTime, oldestKey)
		log.Debugf("Evicted query %q from suggestion cache", oldestKey)
	}
}
