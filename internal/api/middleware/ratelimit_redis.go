package middleware

import (
	"context"
	"fmt"
	"math"
	"time"

	"customer-registry/internal/config"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter is a fixed-window counter shared by every replica that
// points at the same Redis.
type RedisLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

func NewRedisLimiter(client *redis.Client, cfg config.RateLimitConfig) *RedisLimiter {
	limit := int64(math.Ceil(cfg.RPS))
	if limit < 1 {
		limit = 1
	}
	return &RedisLimiter{
		client: client,
		limit:  limit,
		window: time.Second,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := fmt.Sprintf("ratelimit:%s", key)

	pipe := l.client.Pipeline()
	incrCmd := pipe.Incr(ctx, redisKey)
	ttlCmd := pipe.TTL(ctx, redisKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("redis pipeline for %s: %w", redisKey, err)
	}

	count, err := incrCmd.Result()
	if err != nil {
		return false, fmt.Errorf("redis INCR %s: %w", redisKey, err)
	}

	// A negative TTL means the key has no expiry yet: this request opened the window.
	if ttl, err := ttlCmd.Result(); err == nil && ttl < 0 {
		if err := l.client.Expire(ctx, redisKey, l.window).Err(); err != nil {
			return false, fmt.Errorf("redis EXPIRE %s: %w", redisKey, err)
		}
	}

	return count <= l.limit, nil
}

func (l *RedisLimiter) String() string {
	return fmt.Sprintf("redis(limit=%d per %v)", l.limit, l.window)
}
