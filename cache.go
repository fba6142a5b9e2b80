package edgebridge

import (
	"strconv"
	"strings"
	"sync"
	"time"
)

// MemoryCache is an in-memory Cache suitable as the host's native cache. It
// honors the max-age directive on stored responses; everything else about the
// response is kept verbatim.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
}

type cacheEntry struct {
	resp     *BridgeResponse
	inserted time.Time
	maxAge   time.Duration
}

// NewMemoryCache creates an empty cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]*cacheEntry)}
}

// Match returns a copy of the cached response for key. Expired entries are
// dropped and report not found.
func (c *MemoryCache) Match(key string) (*BridgeResponse, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if e.maxAge > 0 && time.Since(e.inserted) > e.maxAge {
		c.mu.Lock()
		// Recheck under the write lock; another request may have replaced it.
		if cur, ok := c.entries[key]; ok && cur == e {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false
	}

	return cloneResponse(e.resp), true
}

// Put stores a copy of resp under key, replacing any previous entry.
func (c *MemoryCache) Put(key string, resp *BridgeResponse) error {
	e := &cacheEntry{
		resp:     cloneResponse(resp),
		inserted: time.Now(),
		maxAge:   maxAge(resp),
	}
	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
	return nil
}

// Delete removes key, reporting whether an entry existed.
func (c *MemoryCache) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; !ok {
		return false
	}
	delete(c.entries, key)
	return true
}

// Len returns the number of live entries.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func cloneResponse(resp *BridgeResponse) *BridgeResponse {
	c := &BridgeResponse{StatusCode: resp.StatusCode}
	if resp.Header != nil {
		c.Header = resp.Header.Clone()
	}
	if resp.Body != nil {
		c.Body = make([]byte, len(resp.Body))
		copy(c.Body, resp.Body)
	}
	return c
}

// maxAge extracts the max-age directive from the response's Cache-Control
// header. Zero means no expiry.
func maxAge(resp *BridgeResponse) time.Duration {
	if resp.Header == nil {
		return 0
	}
	for _, directive := range strings.Split(resp.Header.Get("Cache-Control"), ",") {
		directive = strings.TrimSpace(directive)
		if rest, ok := strings.CutPrefix(directive, "max-age="); ok {
			if secs, err := strconv.Atoi(rest); err == nil && secs > 0 {
				return time.Duration(secs) * time.Second
			}
		}
	}
	return 0
}
