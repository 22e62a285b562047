package gateway

import (
	"context"
	"net/url"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	DefaultCacheTTL  = 5 * time.Minute
	DefaultCacheSize = 256
)

// Entry is the last successful GET response for a key.
type Entry struct {
	Data     []byte    `json:"data"`
	StoredAt time.Time `json:"storedAt"`
}

// Fresh reports whether e is younger than ttl at now.
func (e Entry) Fresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.StoredAt) < ttl
}

// Cache stores GET responses. Implementations must be safe for concurrent
// use. Errors are absorbed: a broken cache behaves like an empty one.
type Cache interface {
	Get(ctx context.Context, key string) (Entry, bool)
	Set(ctx context.Context, key string, e Entry)
	// Invalidate drops every key containing substr.
	Invalidate(ctx context.Context, substr string)
	Clear(ctx context.Context)
}

// CacheKey is path + "?" + the encoded query, "?" included when the query
// is empty.
func CacheKey(path string, query url.Values) string {
	return path + "?" + query.Encode()
}

// MemoryCache is a bounded in-process cache; the least recently used entry
// is evicted when it is full.
type MemoryCache struct {
	entries *lru.Cache[string, Entry]
}

func NewMemoryCache(size int) (*MemoryCache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	c, err := lru.New[string, Entry](size)
	if err != nil {
		return nil, err
	}
	return &MemoryCache{entries: c}, nil
}

func (m *MemoryCache) Get(_ context.Context, key string) (Entry, bool) {
	return m.entries.Get(key)
}

func (m *MemoryCache) Set(_ context.Context, key string, e Entry) {
	m.entries.Add(key, e)
}

func (m *MemoryCache) Invalidate(_ context.Context, substr string) {
	for _, k := range m.entries.Keys() {
		if strings.Contains(k, substr) {
			m.entries.Remove(k)
		}
	}
}

func (m *MemoryCache) Clear(_ context.Context) {
	m.entries.Purge()
}

func (m *MemoryCache) Len() int { return m.entries.Len() }
