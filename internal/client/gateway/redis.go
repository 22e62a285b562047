package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrijs2005/valuationdesk/internal/logging"
)

const redisKeyPrefix = "valuationdesk:cache:"

// RedisClient is the part of *redis.Client the cache uses.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd
}

// NewRedisClient connects to a Redis server.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// RedisCache shares the response cache between CLI processes. Keys expire
// in Redis after ttl, so stale entries do not pile up.
type RedisCache struct {
	client RedisClient
	ttl    time.Duration
	log    logging.Logger
}

func NewRedisCache(client RedisClient, ttl time.Duration, log logging.Logger) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &RedisCache{client: client, ttl: ttl, log: log}
}

func (r *RedisCache) Get(ctx context.Context, key string) (Entry, bool) {
	raw, err := r.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.log.Warn(ctx, "redis cache get failed", "key", key, "error", err)
		}
		return Entry{}, false
	}
	var e Entry
	if err := json.Unmarshal(raw, &e); err != nil {
		r.log.Warn(ctx, "redis cache entry corrupt", "key", key, "error", err)
		return Entry{}, false
	}
	return e, true
}

func (r *RedisCache) Set(ctx context.Context, key string, e Entry) {
	raw, err := json.Marshal(e)
	if err != nil {
		return
	}
	if err := r.client.Set(ctx, redisKeyPrefix+key, raw, r.ttl).Err(); err != nil {
		r.log.Warn(ctx, "redis cache set failed", "key", key, "error", err)
	}
}

func (r *RedisCache) Invalidate(ctx context.Context, substr string) {
	r.deleteMatching(ctx, func(key string) bool { return strings.Contains(key, substr) })
}

func (r *RedisCache) Clear(ctx context.Context) {
	r.deleteMatching(ctx, func(string) bool { return true })
}

func (r *RedisCache) deleteMatching(ctx context.Context, match func(key string) bool) {
	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, redisKeyPrefix+"*", 100).Result()
		if err != nil {
			r.log.Warn(ctx, "redis cache scan failed", "error", err)
			return
		}
		var doomed []string
		for _, k := range keys {
			if match(strings.TrimPrefix(k, redisKeyPrefix)) {
				doomed = append(doomed, k)
			}
		}
		if len(doomed) > 0 {
			if err := r.client.Del(ctx, doomed...).Err(); err != nil {
				r.log.Warn(ctx, "redis cache delete failed", "error", err)
			}
		}
		if next == 0 {
			return
		}
		cursor = next
	}
}
