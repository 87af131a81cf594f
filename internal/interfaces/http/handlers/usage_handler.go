package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Archdiner/music-practice-tracker/internal/domain/models"
)

// UsageReporter reports the current month's AI consumption.
// *usage.Governor implements it.
type UsageReporter interface {
	MonthlyUsage(ctx context.Context, userID int64) (*models.MonthlyUsage, int, error)
}

type UsageHandler struct {
	reporter    UsageReporter
	aiAvailable bool
}

func NewUsageHandler(reporter UsageReporter, aiAvailable bool) *UsageHandler {
	return &UsageHandler{reporter: reporter, aiAvailable: aiAvailable}
}

// Get handles GET /api/usage.
func (h *UsageHandler) Get(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	used, tokenLimit, err := h.reporter.MonthlyUsage(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load usage"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"month":        used,
		"token_limit":  tokenLimit,
		"ai_available": h.aiAvailable,
	})
}
