package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	cfg := defaultConfig()
	cfg.CleanupInterval = 0
	return cfg
}

func TestSubmitBurstExhausts(t *testing.T) {
	limiter := NewLimiter(testConfig())
	defer limiter.Stop()

	for i := 0; i < 5; i++ {
		allowed, info := limiter.Allow("10.0.0.1", "/submit", "POST")
		require.True(t, allowed, "request %d within burst should be allowed", i+1)
		assert.Equal(t, 20, info.Limit)
	}

	allowed, info := limiter.Allow("10.0.0.1", "/submit", "POST")
	assert.False(t, allowed, "sixth submit should exceed the burst")
	assert.Greater(t, info.RetryAfter, time.Duration(0))
}

func TestClientsAreIndependent(t *testing.T) {
	limiter := NewLimiter(testConfig())
	defer limiter.Stop()

	for i := 0; i < 5; i++ {
		allowed, _ := limiter.Allow("10.0.0.1", "/submit", "POST")
		require.True(t, allowed)
	}
	allowed, _ := limiter.Allow("10.0.0.1", "/submit", "POST")
	require.False(t, allowed)

	allowed, _ = limiter.Allow("10.0.0.2", "/submit", "POST")
	assert.True(t, allowed, "a different client has its own bucket")
}

func TestTiersAreIndependent(t *testing.T) {
	limiter := NewLimiter(testConfig())
	defer limiter.Stop()

	for i := 0; i < 5; i++ {
		limiter.Allow("10.0.0.1", "/submit", "POST")
	}
	allowed, _ := limiter.Allow("10.0.0.1", "/submit", "POST")
	require.False(t, allowed)

	allowed, info := limiter.Allow("10.0.0.1", "/result/abc", "GET")
	assert.True(t, allowed, "read tier is not affected by submit exhaustion")
	assert.Equal(t, 300, info.Limit)
}

func TestHealthIsUnlimited(t *testing.T) {
	limiter := NewLimiter(testConfig())
	defer limiter.Stop()

	for i := 0; i < 1000; i++ {
		allowed, info := limiter.Allow("10.0.0.1", "/health", "GET")
		require.True(t, allowed)
		require.Equal(t, 0, info.Limit)
	}
}

func TestDisabledLimiterAllowsEverything(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: false})
	defer limiter.Stop()

	for i := 0; i < 100; i++ {
		allowed, _ := limiter.Allow("10.0.0.1", "/submit", "POST")
		require.True(t, allowed)
	}
}

func TestTrustedAndBlockedClients(t *testing.T) {
	cfg := testConfig()
	cfg.Trusted["10.0.0.9"] = true
	cfg.Blocked["10.0.0.66"] = true
	limiter := NewLimiter(cfg)
	defer limiter.Stop()

	for i := 0; i < 50; i++ {
		allowed, _ := limiter.Allow("10.0.0.9", "/submit", "POST")
		require.True(t, allowed, "trusted clients are never limited")
	}

	allowed, _ := limiter.Allow("10.0.0.66", "/result/abc", "GET")
	assert.False(t, allowed, "blocked clients are always denied")
}

func TestBucketRefill(t *testing.T) {
	// 10 tokens per second, capacity 1.
	b := newBucket(1, 10)

	require.True(t, b.take())
	require.False(t, b.take(), "bucket should be empty immediately after")

	time.Sleep(150 * time.Millisecond)
	assert.True(t, b.take(), "bucket should refill within 150ms at 10 tokens/s")
}

func TestEvictIdle(t *testing.T) {
	limiter := NewLimiter(testConfig())
	defer limiter.Stop()

	limiter.Allow("10.0.0.1", "/submit", "POST")
	limiter.mu.RLock()
	require.Len(t, limiter.buckets, 1)
	limiter.mu.RUnlock()

	limiter.evictIdle(time.Now().Add(time.Minute))

	limiter.mu.RLock()
	assert.Empty(t, limiter.buckets)
	limiter.mu.RUnlock()
}
