// internal/support/classify/cache.go
package classify

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"support-chat/internal/common/metrics"
)

type cacheEntry struct {
	response   string
	insertedAt time.Time
}

// ResponseCache is a bounded in-memory cache for completion replies.
// Entries expire after the TTL and the oldest-inserted entry is evicted
// when the size bound is hit.
type ResponseCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	ttl     time.Duration
	maxSize int
	now     func() time.Time
}

// NewResponseCache creates a cache with the given TTL and entry bound.
func NewResponseCache(ttl time.Duration, maxSize int) *ResponseCache {
	return &ResponseCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		maxSize: maxSize,
		now:     time.Now,
	}
}

// Key fingerprints a request so identical prompt/input/option triples
// share a cache slot.
func (c *ResponseCache) Key(prompt, input string, options map[string]interface{}) string {
	sum := md5.Sum([]byte(fmt.Sprintf("%s_%s_%v", prompt, input, options)))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached response for key if present and unexpired.
func (c *ResponseCache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		metrics.AICacheMisses.Inc()
		return "", false
	}

	if c.now().Sub(entry.insertedAt) >= c.ttl {
		delete(c.entries, key)
		metrics.AICacheMisses.Inc()
		return "", false
	}

	metrics.AICacheHits.Inc()
	return entry.response, true
}

// Put stores a response, evicting the oldest-inserted entry when full.
func (c *ResponseCache) Put(key, response string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxSize {
		c.evictOldestLocked()
	}

	c.entries[key] = cacheEntry{response: response, insertedAt: c.now()}
}

func (c *ResponseCache) evictOldestLocked() {
	var oldestKey string
	var oldestTime time.Time

	for key, entry := range c.entries {
		if oldestKey == "" || entry.insertedAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.insertedAt
		}
	}

	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}

// Len reports the current entry count.
func (c *ResponseCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
