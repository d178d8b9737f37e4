// Package cache implements the Evaluation Cache (Component C): a
// size-bounded LRU with per-entry TTL, keyed on a SHA-256 fingerprint of
// normalized code, language, and evaluation kind.
//
// No teacher package implements an LRU directly; the eviction/TTL shape is
// grounded on the Rust reference implementation's cache/lru.rs, re-expressed
// idiomatically with container/list. No suitable generic LRU library
// appears in the retrieved example corpus, so this data structure is
// stdlib (container/list + sync.Mutex) by necessity.
package cache

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"sync/atomic"
	"time"

	"github.com/harrison/tetrad/internal/models"
	"github.com/harrison/tetrad/internal/patternmatch"
)

// Key computes the SHA-256 hex fingerprint of (normalized code, language,
// evaluation-kind tag), per spec.md §4.C.
func Key(code, language string, kind models.EvaluationKind) string {
	sum := sha256.Sum256([]byte(patternmatch.Normalize(code) + "\x1f" + language + "\x1f" + string(kind)))
	return hex.EncodeToString(sum[:])
}

type entry struct {
	key       string
	value     models.EvaluationResult
	insertedAt time.Time
}

// Cache is a size-bounded, TTL-expiring LRU.
type Cache struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	ll       *list.List
	index    map[string]*list.Element

	hits   int64
	misses int64
}

// New constructs a Cache with the given capacity (entries) and ttl.
func New(capacity int, ttl time.Duration) *Cache {
	return &Cache{
		capacity: capacity,
		ttl:      ttl,
		ll:       list.New(),
		index:    make(map[string]*list.Element),
	}
}

// Get returns the cached value for key iff present and not expired. Stale
// entries are removed on read; LRU recency is touched only on a hit.
func (c *Cache) Get(key string) (models.EvaluationResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.index[key]
	if !ok {
		atomic.AddInt64(&c.misses, 1)
		return models.EvaluationResult{}, false
	}
	e := el.Value.(*entry)
	if time.Since(e.insertedAt) > c.ttl {
		c.removeElement(el)
		atomic.AddInt64(&c.misses, 1)
		return models.EvaluationResult{}, false
	}
	c.ll.MoveToFront(el)
	atomic.AddInt64(&c.hits, 1)
	return e.value, true
}

// Insert stores value under key, evicting the least-recently-used entry
// on overflow.
func (c *Cache) Insert(key string, value models.EvaluationResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.index[key]; ok {
		e := el.Value.(*entry)
		e.value = value
		e.insertedAt = time.Now()
		c.ll.MoveToFront(el)
		return
	}

	e := &entry{key: key, value: value, insertedAt: time.Now()}
	el := c.ll.PushFront(e)
	c.index[key] = el

	if c.ll.Len() > c.capacity {
		oldest := c.ll.Back()
		if oldest != nil {
			c.removeElement(oldest)
		}
	}
}

// Invalidate removes key, if present.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.index[key]; ok {
		c.removeElement(el)
	}
}

// Clear empties the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ll.Init()
	c.index = make(map[string]*list.Element)
}

// CleanupExpired removes all entries older than the configured TTL.
func (c *Cache) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	var next *list.Element
	for el := c.ll.Front(); el != nil; el = next {
		next = el.Next()
		e := el.Value.(*entry)
		if time.Since(e.insertedAt) > c.ttl {
			c.removeElement(el)
			removed++
		}
	}
	return removed
}

func (c *Cache) removeElement(el *list.Element) {
	e := el.Value.(*entry)
	delete(c.index, e.key)
	c.ll.Remove(el)
}

// Stats is a point-in-time snapshot of hit/miss counters.
type Stats struct {
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	HitRate float64 `json:"hit_rate"`
	Size    int     `json:"size"`
}

// Stats returns a snapshot of the cache's atomic counters; reads do not
// require the exclusive mutation lock beyond the brief len() check.
func (c *Cache) Stats() Stats {
	hits := atomic.LoadInt64(&c.hits)
	misses := atomic.LoadInt64(&c.misses)
	var hitRate float64
	if hits+misses > 0 {
		hitRate = float64(hits) / float64(hits+misses)
	}
	c.mu.Lock()
	size := c.ll.Len()
	c.mu.Unlock()
	return Stats{Hits: hits, Misses: misses, HitRate: hitRate, Size: size}
}
