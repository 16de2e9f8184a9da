package services

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// QueryCache is a TTL cache for read-path query results. It is owned by
// the service that creates it and must be closed on shutdown; it is not
// a process-wide singleton.
type QueryCache struct {
	cache map[string]*cacheEntry
	mu    sync.RWMutex
	ttl   time.Duration
	done  chan struct{}
}

type cacheEntry struct {
	data      interface{}
	expiresAt time.Time
}

func NewQueryCache(ttl time.Duration) *QueryCache {
	c := &QueryCache{
		cache: make(map[string]*cacheEntry),
		ttl:   ttl,
		done:  make(chan struct{}),
	}
	go c.cleanupLoop()
	return c
}

func (c *QueryCache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.cache[key]
	if !exists || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.data, true
}

func (c *QueryCache) Set(key string, data interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache[key] = &cacheEntry{
		data:      data,
		expiresAt: time.Now().Add(c.ttl),
	}
}

func (c *QueryCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.cache, key)
}

// Clear drops every entry. Called after any standings write.
func (c *QueryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache = make(map[string]*cacheEntry)
}

func (c *QueryCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.cache)
}

// Close stops the cleanup goroutine.
func (c *QueryCache) Close() {
	close(c.done)
}

func (c *QueryCache) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.done:
			return
		}
	}
}

func (c *QueryCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, entry := range c.cache {
		if now.After(entry.expiresAt) {
			delete(c.cache, key)
		}
	}
}

// CacheKey builds a stable key from a prefix and query parameters.
func CacheKey(prefix string, params interface{}) string {
	jsonBytes, err := json.Marshal(params)
	if err != nil {
		// not cacheable; unique key so it always misses
		return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
	}
	hash := sha256.Sum256(jsonBytes)
	return fmt.Sprintf("%s_%x", prefix, hash[:16])
}
