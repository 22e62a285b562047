package gateway

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/valuationdesk/internal/logging"
)

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "/valuations?", CacheKey("/valuations", nil))
	assert.Equal(t, "/valuations?a=1&b=x+y", CacheKey("/valuations", url.Values{"b": {"x y"}, "a": {"1"}}))
}

func TestEntry_Fresh(t *testing.T) {
	now := time.Now()
	e := Entry{StoredAt: now.Add(-4 * time.Minute)}
	assert.True(t, e.Fresh(now, DefaultCacheTTL))
	assert.False(t, e.Fresh(now.Add(time.Minute), DefaultCacheTTL))
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewMemoryCache(2)
	require.NoError(t, err)

	c.Set(ctx, "/valuations?", Entry{Data: []byte("a")})
	c.Set(ctx, "/ubi-apf?", Entry{Data: []byte("b")})
	_, _ = c.Get(ctx, "/valuations?")
	c.Set(ctx, "/bof-maharashtra?", Entry{Data: []byte("c")})

	assert.Equal(t, 2, c.Len())
	_, ok := c.Get(ctx, "/ubi-apf?")
	assert.False(t, ok, "least recently used entry evicted")

	c.Invalidate(ctx, "valuations")
	_, ok = c.Get(ctx, "/valuations?")
	assert.False(t, ok)
	_, ok = c.Get(ctx, "/bof-maharashtra?")
	assert.True(t, ok)

	c.Clear(ctx)
	assert.Zero(t, c.Len())
}

// fakeRedis implements RedisClient over a map.
type fakeRedis struct {
	mu      sync.Mutex
	data    map[string]string
	ttls    map[string]time.Duration
	failGet bool
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failGet {
		return redis.NewStringResult("", errors.New("connection refused"))
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	case string:
		f.data[key] = v
	}
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(int64(n), nil)
}

func (f *fakeRedis) Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	prefix := strings.TrimSuffix(match, "*")
	var keys []string
	for k := range f.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return redis.NewScanCmdResult(keys, 0, nil)
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	fr := newFakeRedis()
	c := NewRedisCache(fr, time.Minute, logging.Discard())

	stored := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	c.Set(ctx, "/valuations?page=1", Entry{Data: []byte(`[1]`), StoredAt: stored})
	c.Set(ctx, "/valuations?page=2", Entry{Data: []byte(`[2]`), StoredAt: stored})
	c.Set(ctx, "/ubi-apf?", Entry{Data: []byte(`[3]`), StoredAt: stored})
	fr.data["unrelated"] = "x"

	assert.Equal(t, time.Minute, fr.ttls[redisKeyPrefix+"/ubi-apf?"])

	e, ok := c.Get(ctx, "/valuations?page=1")
	require.True(t, ok)
	assert.Equal(t, []byte(`[1]`), e.Data)
	assert.True(t, stored.Equal(e.StoredAt))

	_, ok = c.Get(ctx, "/absent?")
	assert.False(t, ok)

	c.Invalidate(ctx, "/valuations")
	_, ok = c.Get(ctx, "/valuations?page=2")
	assert.False(t, ok)
	_, ok = c.Get(ctx, "/ubi-apf?")
	assert.True(t, ok)

	c.Clear(ctx)
	_, ok = c.Get(ctx, "/ubi-apf?")
	assert.False(t, ok)
	assert.Equal(t, "x", fr.data["unrelated"], "keys outside the prefix survive")

	fr.data[redisKeyPrefix+"bad"] = "{"
	_, ok = c.Get(ctx, "bad")
	assert.False(t, ok)

	fr.failGet = true
	_, ok = c.Get(ctx, "/ubi-apf?")
	assert.False(t, ok)
}

func TestGateway_WithRedisCache(t *testing.T) {
	fr := newFakeRedis()
	g, err := New(Options{Cache: NewRedisCache(fr, 0, logging.Discard())})
	require.NoError(t, err)

	g.cache.Set(context.Background(), CacheKey("/valuations", nil), Entry{Data: []byte(`[]`), StoredAt: time.Now()})
	resp, err := g.Get(context.Background(), "/valuations", nil)
	require.NoError(t, err)
	assert.True(t, resp.Cached)
}
