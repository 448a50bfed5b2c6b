// Package ratelimit counts attempts per key in fixed Redis windows.
package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

type RedisLimiter struct {
	Client *redis.Client
	Prefix string
	Max    int
	Window time.Duration
}

func NewRedisClient(ctx context.Context, addr, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// Allow records one attempt for key. The window starts at the first attempt
// and is not extended by later ones.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	k := l.redisKey(key)

	pipe := l.Client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.ExpireNX(ctx, k, l.Window)
	ttl := pipe.PTTL(ctx, k)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, fmt.Errorf("rate limit %s: %w", k, err)
	}

	n := int(incr.Val())
	if n > l.Max {
		retry := ttl.Val()
		if retry < 0 {
			retry = l.Window
		}
		return Decision{Allowed: false, RetryAfter: retry}, nil
	}
	return Decision{Allowed: true, Remaining: l.Max - n}, nil
}

// redisKey joins Prefix and key with a colon, e.g. "signin:203.0.113.7".
func (l *RedisLimiter) redisKey(key string) string {
	if l.Prefix == "" {
		return key
	}
	return strings.TrimSuffix(l.Prefix, ":") + ":" + key
}
