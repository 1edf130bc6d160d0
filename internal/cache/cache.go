// Package cache is an optional redis-backed exact-match response cache. It
// stores opaque payloads so it stays independent of the response shape; the
// service handles serialization.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"lingo-engine/internal/metrics"
)

const keyPrefix = "lingo:translation:"

type ResponseCache struct {
	rdb *redis.Client
	ttl time.Duration
	log *zap.SugaredLogger
}

func New(rdb *redis.Client, ttl time.Duration, log *zap.SugaredLogger) *ResponseCache {
	return &ResponseCache{rdb: rdb, ttl: ttl, log: log}
}

// Key derives the cache key for an input text. Hashing keeps arbitrarily
// large inputs off the redis keyspace.
func Key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return keyPrefix + hex.EncodeToString(sum[:])
}

// Get returns the cached payload for text, or false on miss or redis error.
func (c *ResponseCache) Get(ctx context.Context, text string) ([]byte, bool) {
	data, err := c.rdb.Get(ctx, Key(text)).Bytes()
	if err == redis.Nil {
		metrics.CacheHits.WithLabelValues("miss").Inc()
		return nil, false
	}
	if err != nil {
		c.log.Warnw("cache get failed", "error", err)
		metrics.ErrorCount.WithLabelValues("cache").Inc()
		return nil, false
	}
	metrics.CacheHits.WithLabelValues("hit").Inc()
	return data, true
}

// Put stores a payload with the configured TTL. Failures are logged and
// swallowed; the cache is never load-bearing.
func (c *ResponseCache) Put(ctx context.Context, text string, payload []byte) {
	if err := c.rdb.Set(ctx, Key(text), payload, c.ttl).Err(); err != nil {
		c.log.Warnw("cache put failed", "error", err)
		metrics.ErrorCount.WithLabelValues("cache").Inc()
	}
}
