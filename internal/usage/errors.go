package usage

import (
	"fmt"
	"time"
)

// RateLimitError means the user is sending requests too fast. Clients can
// retry after the hinted delay.
type RateLimitError struct {
	Message    string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return e.Message
}

// QuotaExceededError means the user's monthly token budget is spent.
// Retrying before the next period will not help.
type QuotaExceededError struct {
	Message string
}

func (e *QuotaExceededError) Error() string {
	return e.Message
}

// LimitExceededError is the rejection a rate limiter backend reports for a
// single bucket. The governor wraps it into a RateLimitError.
type LimitExceededError struct {
	Key        string
	RetryAfter time.Duration
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s, retry in %s", e.Key, e.RetryAfter)
}
