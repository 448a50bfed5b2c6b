package ratelimit

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a live server when REDIS_TEST_ADDR is set.
func TestRedisLimiter_Integration(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}

	ctx := context.Background()
	rdb, err := NewRedisClient(ctx, addr, os.Getenv("REDIS_TEST_PASSWORD"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	key := "203.0.113.7-" + time.Now().Format(time.RFC3339Nano)
	l := &RedisLimiter{Client: rdb, Prefix: "test:signin:", Max: 2, Window: time.Minute}
	t.Cleanup(func() { rdb.Del(context.Background(), l.redisKey(key)) })

	d, err := l.Allow(ctx, key)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.Remaining)

	d, err = l.Allow(ctx, key)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)

	d, err = l.Allow(ctx, key)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Greater(t, d.RetryAfter, time.Duration(0))
	assert.LessOrEqual(t, d.RetryAfter, time.Minute)
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewRedisClient(ctx, "127.0.0.1:1", "")
	assert.Error(t, err)
}

func TestRedisLimiter_Key(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "signin:203.0.113.7", (&RedisLimiter{Prefix: "signin"}).redisKey("203.0.113.7"))
	assert.Equal(t, "signin:203.0.113.7", (&RedisLimiter{Prefix: "signin:"}).redisKey("203.0.113.7"))
	assert.Equal(t, "203.0.113.7", (&RedisLimiter{}).redisKey("203.0.113.7"))
}
