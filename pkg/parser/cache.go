package parser

import (
	"sync"
	"time"

	"github.com/pocketpause/pausecore/pkg/product"
)

// DefaultTTL bounds how long a parse result is served from memory.
const DefaultTTL = 15 * time.Minute

type cacheEntry struct {
	result    product.ParseResult
	timestamp time.Time
}

// resultCache is a TTL map keyed by normalized URL. Eviction is lazy:
// expired entries are discarded on read, there is no background sweep.
// Lost updates under concurrency are tolerable; last write wins.
type resultCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
}

func newResultCache(ttl time.Duration) *resultCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &resultCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
	}
}

func (c *resultCache) get(key string) (product.ParseResult, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return product.ParseResult{}, false
	}
	if time.Since(entry.timestamp) > c.ttl {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return product.ParseResult{}, false
	}
	return entry.result, true
}

func (c *resultCache) set(key string, result product.ParseResult) {
	c.mu.Lock()
	c.entries[key] = cacheEntry{result: result, timestamp: time.Now()}
	c.mu.Unlock()
}

func (c *resultCache) clear() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
}

func (c *resultCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
