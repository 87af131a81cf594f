package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Archdiner/music-practice-tracker/internal/interfaces/http/middleware"
	"github.com/Archdiner/music-practice-tracker/internal/usage"
)

// respondUsageError maps governor rejections to 429 with a machine-readable
// code and a Retry-After hint where one exists. Returns false when err is
// not a governor rejection.
func respondUsageError(c *gin.Context, err error) bool {
	var rl *usage.RateLimitError
	if errors.As(err, &rl) {
		if rl.RetryAfter > 0 {
			c.Header("Retry-After", fmt.Sprintf("%d", int(rl.RetryAfter.Seconds())))
		}
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error": rl.Message,
			"code":  "rate_limited",
		})
		return true
	}

	var quota *usage.QuotaExceededError
	if errors.As(err, &quota) {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error": quota.Message,
			"code":  "quota_exceeded",
		})
		return true
	}
	return false
}

func authedUserID(c *gin.Context) (int64, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization required"})
	}
	return id, ok
}
