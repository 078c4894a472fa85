// Package cache memoizes chatbot replies per user with a TTL and a FIFO
// size bound.
package cache

import (
	"container/list"
	"strings"
	"sync"
	"time"

	"github.com/ashureev/adolai/internal/domain"
	"github.com/ashureev/adolai/internal/metrics"
)

// Defaults match the browser cache the service replaces.
const (
	DefaultMaxSize = 50
	DefaultTTL     = 5 * time.Minute
)

// Options configures a ResponseCache.
type Options struct {
	MaxSize int
	TTL     time.Duration
	Now     func() time.Time
}

type entry struct {
	key       string
	response  domain.CachedResponse
	timestamp time.Time
	owner     string
}

// ResponseCache is a bounded, TTL-based memo of bot replies keyed by
// (user, normalized message). Eviction is by insertion order, not recency.
type ResponseCache struct {
	mu      sync.Mutex
	entries map[string]*list.Element
	order   *list.List // front = oldest insertion
	maxSize int
	ttl     time.Duration
	now     func() time.Time
}

// Stats describes the cache configuration and occupancy.
type Stats struct {
	Size    int           `json:"size"`
	MaxSize int           `json:"max_size"`
	TTL     time.Duration `json:"ttl"`
}

// New creates a ResponseCache. Non-positive options fall back to defaults.
func New(opts Options) *ResponseCache {
	if opts.MaxSize <= 0 {
		opts.MaxSize = DefaultMaxSize
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &ResponseCache{
		entries: make(map[string]*list.Element),
		order:   list.New(),
		maxSize: opts.MaxSize,
		ttl:     opts.TTL,
		now:     opts.Now,
	}
}

// Key returns the cache key for a message sent by userID.
func Key(message, userID string) string {
	return userID + "_" + strings.ToLower(strings.TrimSpace(message))
}

// Get returns the cached reply. Entries older than the TTL are removed and
// reported as a miss.
func (c *ResponseCache) Get(message, userID string) (*domain.CachedResponse, bool) {
	key := Key(message, userID)

	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	}
	e := el.Value.(*entry)
	if c.now().Sub(e.timestamp) > c.ttl {
		c.removeElement(el)
		metrics.CacheLookups.WithLabelValues("expired").Inc()
		return nil, false
	}

	metrics.CacheLookups.WithLabelValues("hit").Inc()
	resp := e.response
	return &resp, true
}

// Set stores a reply. When the cache is full the oldest-inserted entry is
// evicted first, even when key is already present. A surviving duplicate is
// overwritten in place and keeps its position.
func (c *ResponseCache) Set(message string, response domain.CachedResponse, userID string) {
	key := Key(message, userID)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.order.Len() >= c.maxSize {
		if oldest := c.order.Front(); oldest != nil {
			c.removeElement(oldest)
			metrics.CacheEvictions.WithLabelValues("capacity").Inc()
		}
	}

	if el, ok := c.entries[key]; ok {
		e := el.Value.(*entry)
		e.response = response
		e.timestamp = c.now()
		e.owner = userID
		metrics.CacheEntries.Set(float64(c.order.Len()))
		return
	}

	e := &entry{key: key, response: response, timestamp: c.now(), owner: userID}
	c.entries[key] = c.order.PushBack(e)
	metrics.CacheEntries.Set(float64(c.order.Len()))
}

// Clear removes entries owned by userID, or every entry when userID is "".
func (c *ResponseCache) Clear(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if userID == "" {
		c.entries = make(map[string]*list.Element)
		c.order.Init()
		metrics.CacheEntries.Set(0)
		return
	}

	for el := c.order.Front(); el != nil; {
		next := el.Next()
		if el.Value.(*entry).owner == userID {
			c.removeElement(el)
		}
		el = next
	}
}

// Purge removes every expired entry and returns how many were dropped.
func (c *ResponseCache) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	purged := 0
	for el := c.order.Front(); el != nil; {
		next := el.Next()
		if now.Sub(el.Value.(*entry).timestamp) > c.ttl {
			c.removeElement(el)
			purged++
		}
		el = next
	}
	if purged > 0 {
		metrics.CacheEvictions.WithLabelValues("expired").Add(float64(purged))
	}
	return purged
}

// Stats returns the current size and configuration.
func (c *ResponseCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Size: c.order.Len(), MaxSize: c.maxSize, TTL: c.ttl}
}

// removeElement must be called with mu held.
func (c *ResponseCache) removeElement(el *list.Element) {
	delete(c.entries, el.Value.(*entry).key)
	c.order.Remove(el)
	metrics.CacheEntries.Set(float64(c.order.Len()))
}
