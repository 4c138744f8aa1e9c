package cache

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilCacheIsSafe(t *testing.T) {
	var c *ResultCache

	ctx := context.Background()
	data, hit := c.GetResult(ctx, "sub-1")
	assert.Nil(t, data)
	assert.False(t, hit)

	c.SetResult(ctx, "sub-1", []byte(`{}`))
	c.Invalidate(ctx, "sub-1")
	c.Close()
}

func TestNew_InvalidURL(t *testing.T) {
	_, err := New("not-a-redis-url")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid redis URL")
}

// Round-trip test against a real Redis. Skipped unless TEST_REDIS_URL is set.
func TestResultCacheRoundTrip(t *testing.T) {
	redisURL := os.Getenv("TEST_REDIS_URL")
	if redisURL == "" {
		t.Skip("TEST_REDIS_URL not set, skipping integration test")
	}

	c, err := New(redisURL)
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()
	doc := []byte(`{"submissionId":"sub-1","status":"completed"}`)

	_, hit := c.GetResult(ctx, "sub-1")
	require.False(t, hit, "fresh key must miss")

	c.SetResult(ctx, "sub-1", doc)
	got, hit := c.GetResult(ctx, "sub-1")
	require.True(t, hit)
	assert.Equal(t, doc, got)

	c.Invalidate(ctx, "sub-1")
	_, hit = c.GetResult(ctx, "sub-1")
	assert.False(t, hit, "invalidated key must miss")
}
