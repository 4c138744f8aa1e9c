// Package cache provides a Redis-backed cache for assembled result
// documents. The callback receiver invalidates a submission's entry whenever
// new report data arrives.
package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL bounds staleness for cached result documents that never receive
// an invalidating callback.
const DefaultTTL = 5 * time.Minute

// ResultCache caches rendered result documents keyed by submission ID.
// A nil *ResultCache is valid and disables caching.
type ResultCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New connects to Redis using a redis:// URL. Returns an error if the URL is
// malformed or the server is unreachable.
func New(redisURL string) (*ResultCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &ResultCache{rdb: rdb, ttl: DefaultTTL}, nil
}

// Close releases the underlying connection.
func (c *ResultCache) Close() {
	if c == nil || c.rdb == nil {
		return
	}
	_ = c.rdb.Close()
}

// GetResult returns the cached result document for a submission, or false on
// a miss. Cache failures degrade to misses.
func (c *ResultCache) GetResult(ctx context.Context, submissionID string) ([]byte, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}
	data, err := c.rdb.Get(ctx, resultKey(submissionID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("[cache] get failed for %s: %v", submissionID, err)
		}
		return nil, false
	}
	return data, true
}

// SetResult stores the rendered result document for a submission.
func (c *ResultCache) SetResult(ctx context.Context, submissionID string, doc []byte) {
	if c == nil || c.rdb == nil {
		return
	}
	if err := c.rdb.Set(ctx, resultKey(submissionID), doc, c.ttl).Err(); err != nil {
		log.Printf("[cache] set failed for %s: %v", submissionID, err)
	}
}

// Invalidate drops the cached result document for a submission.
func (c *ResultCache) Invalidate(ctx context.Context, submissionID string) {
	if c == nil || c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, resultKey(submissionID)).Err(); err != nil {
		log.Printf("[cache] invalidate failed for %s: %v", submissionID, err)
	}
}

func resultKey(submissionID string) string {
	return "result:" + submissionID
}
