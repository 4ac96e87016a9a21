package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ConnectRedis accepts either a redis:// URL or a bare host:port.
func ConnectRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	var client *redis.Client
	if strings.HasPrefix(redisURL, "redis://") || strings.HasPrefix(redisURL, "rediss://") {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{Addr: redisURL})
	}
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

const limiterPrefix = "dropvault:ratelimit:"

// RedisLimiter is a fixed-window counter: the first hit in a window creates
// the key with the window as its TTL and later hits only increment it. It
// uses SET NX EX and INCR, so any Redis from 2.6.12 on works.
type RedisLimiter struct {
	client redis.Cmdable
}

func NewRedisLimiter(client redis.Cmdable) *RedisLimiter {
	return &RedisLimiter{client: client}
}

// Allow counts one hit for key and reports whether it is within limit.
func (l *RedisLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	redisKey := limiterPrefix + key

	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.SetNX(ctx, redisKey, 0, window)
		incr = p.Incr(ctx, redisKey)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("rate limit %s: %w", key, err)
	}
	return incr.Val() <= int64(limit), nil
}

// NopLimiter allows everything. Used when no Redis is configured.
type NopLimiter struct{}

func (NopLimiter) Allow(context.Context, string, int, time.Duration) (bool, error) {
	return true, nil
}
