package usage

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter is a single rate-limit bucket keyed by caller-chosen strings.
// Consume either admits the request or fails with *LimitExceededError.
// Backends are interchangeable: the governor never knows which one it got.
type Limiter interface {
	Consume(ctx context.Context, key string) error
}

// MemoryLimiter is the in-process token-bucket backend. It is the insurance
// path when Redis is unreachable, so its limits only hold per process.
type MemoryLimiter struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

// NewMemoryLimiter allows points requests per window for each key.
func NewMemoryLimiter(points int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Every(window / time.Duration(points)),
		burst:    points,
	}
}

func (l *MemoryLimiter) getLimiter(key string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limiters[key]
	l.mu.RUnlock()

	if exists {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists = l.limiters[key]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(l.rate, l.burst)
	l.limiters[key] = limiter
	return limiter
}

func (l *MemoryLimiter) Consume(ctx context.Context, key string) error {
	res := l.getLimiter(key).Reserve()
	if delay := res.Delay(); delay > 0 {
		res.Cancel()
		return &LimitExceededError{Key: key, RetryAfter: delay}
	}
	return nil
}
