package usage

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter is the distributed fixed-window backend: one INCR per
// request, window expiry set on the first hit. Counts are shared across
// processes, unlike MemoryLimiter's.
//
// Redis being unreachable never rejects the request outright: the limiter
// degrades to its in-memory insurance bucket, trading limit accuracy for
// availability.
type RedisLimiter struct {
	client    *redis.Client
	prefix    string
	points    int64
	window    time.Duration
	insurance *MemoryLimiter
}

func NewRedisLimiter(client *redis.Client, prefix string, points int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client:    client,
		prefix:    prefix,
		points:    int64(points),
		window:    window,
		insurance: NewMemoryLimiter(points, window),
	}
}

func (l *RedisLimiter) Consume(ctx context.Context, key string) error {
	windowKey := fmt.Sprintf("%s:%s:%d", l.prefix, key, time.Now().Unix()/int64(l.window.Seconds()))

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, windowKey)
	pipe.Expire(ctx, windowKey, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("rate limiter redis unavailable, using in-memory fallback: %v", err)
		return l.insurance.Consume(ctx, key)
	}

	if incr.Val() > l.points {
		ttl, err := l.client.TTL(ctx, windowKey).Result()
		if err != nil || ttl < 0 {
			ttl = l.window
		}
		return &LimitExceededError{Key: key, RetryAfter: ttl}
	}
	return nil
}
