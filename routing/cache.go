package routing

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"sync"
	"time"
)

// ResponseCache memoizes successful route responses by request
// fingerprint. Implementations must be safe for concurrent use.
type ResponseCache interface {
	// Get returns the cached response and its age. Expired entries are
	// treated as absent.
	Get(fingerprint string) (*RouteResponse, time.Duration, bool)
	Put(fingerprint string, response *RouteResponse)
	Evict(fingerprint string)
	Stats() CacheStats
}

// CacheStats is a point-in-time snapshot of cache counters.
type CacheStats struct {
	Entries   int   `json:"entries"`
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
}

// Fingerprint derives a stable cache key from the parsed request. Two
// requests that parse identically share a fingerprint even when their
// raw text differs in casing or spacing. Capability order does not
// affect the key.
func Fingerprint(parsed *ParsedRequest) string {
	caps := append([]string(nil), parsed.Capabilities...)
	sort.Strings(caps)

	var b strings.Builder
	b.WriteString(parsed.Intent)
	b.WriteByte('|')
	b.WriteString(parsed.Category)
	b.WriteByte('|')
	b.WriteString(strings.Join(caps, ","))
	b.WriteByte('|')
	if parsed.Structured {
		keys := make([]string, 0, len(parsed.Entities))
		for k := range parsed.Entities {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			b.WriteString(k)
			b.WriteByte('=')
			b.WriteString(parsed.Entities[k])
			b.WriteByte(';')
		}
	} else {
		b.WriteString(parsed.NormalizedText)
	}

	hash := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(hash[:])[:16]
}

type cacheEntry struct {
	response  *RouteResponse
	createdAt time.Time
	expiresAt time.Time
}

// MemoryResponseCache is an in-memory TTL cache with a bounded entry
// count. Expired entries are evicted opportunistically on writes and by
// a background sweeper.
type MemoryResponseCache struct {
	mu         sync.RWMutex
	entries    map[string]*cacheEntry
	ttl        time.Duration
	maxEntries int

	hits      int64
	misses    int64
	evictions int64

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewMemoryResponseCache creates a cache with the given TTL and entry
// bound. A cleanupInterval above zero starts a background sweeper,
// stopped via Stop.
func NewMemoryResponseCache(ttl time.Duration, maxEntries int, cleanupInterval time.Duration) *MemoryResponseCache {
	c := &MemoryResponseCache{
		entries:    make(map[string]*cacheEntry),
		ttl:        ttl,
		maxEntries: maxEntries,
		stopCh:     make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go c.sweep(cleanupInterval)
	}
	return c
}

func (c *MemoryResponseCache) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.mu.Lock()
			c.evictExpiredLocked(time.Now())
			c.mu.Unlock()
		case <-c.stopCh:
			return
		}
	}
}

// Stop terminates the background sweeper. Safe to call more than once.
func (c *MemoryResponseCache) Stop() {
	c.stopOnce.Do(func() { close(c.stopCh) })
}

// Get returns the cached response for a fingerprint along with its age.
func (c *MemoryResponseCache) Get(fingerprint string) (*RouteResponse, time.Duration, bool) {
	now := time.Now()

	c.mu.RLock()
	entry, ok := c.entries[fingerprint]
	c.mu.RUnlock()

	if !ok || now.After(entry.expiresAt) {
		c.mu.Lock()
		if !ok {
			c.misses++
		} else if cur, still := c.entries[fingerprint]; still && cur == entry {
			delete(c.entries, fingerprint)
			c.evictions++
			c.misses++
		} else {
			c.misses++
		}
		c.mu.Unlock()
		return nil, 0, false
	}

	c.mu.Lock()
	c.hits++
	c.mu.Unlock()
	return entry.response, now.Sub(entry.createdAt), true
}

// Put stores a response under the fingerprint, evicting expired and
// then oldest entries when the cache is full.
func (c *MemoryResponseCache) Put(fingerprint string, response *RouteResponse) {
	if response == nil {
		return
	}
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[fingerprint]; !exists && len(c.entries) >= c.maxEntries {
		c.evictExpiredLocked(now)
		if len(c.entries) >= c.maxEntries {
			c.evictOldestLocked()
		}
	}

	c.entries[fingerprint] = &cacheEntry{
		response:  response,
		createdAt: now,
		expiresAt: now.Add(c.ttl),
	}
}

// Evict removes a fingerprint from the cache.
func (c *MemoryResponseCache) Evict(fingerprint string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[fingerprint]; ok {
		delete(c.entries, fingerprint)
		c.evictions++
	}
}

// Stats returns a snapshot of cache counters.
func (c *MemoryResponseCache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return CacheStats{
		Entries:   len(c.entries),
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
}

func (c *MemoryResponseCache) evictExpiredLocked(now time.Time) {
	for fp, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, fp)
			c.evictions++
		}
	}
}

func (c *MemoryResponseCache) evictOldestLocked() {
	var oldestFp string
	var oldestAt time.Time
	for fp, entry := range c.entries {
		if oldestFp == "" || entry.createdAt.Before(oldestAt) {
			oldestFp = fp
			oldestAt = entry.createdAt
		}
	}
	if oldestFp != "" {
		delete(c.entries, oldestFp)
		c.evictions++
	}
}
