package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Archdiner/music-practice-tracker/internal/domain/services"
)

type InsightHandler struct {
	insightService services.InsightService
	tipService     services.TipService
}

func NewInsightHandler(insightService services.InsightService, tipService services.TipService) *InsightHandler {
	return &InsightHandler{
		insightService: insightService,
		tipService:     tipService,
	}
}

// Get handles GET /api/insights?weekStart= (any date within the week works).
func (h *InsightHandler) Get(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	row, weekStart, weekEnd, err := h.insightService.GetWeekInsights(c.Request.Context(), userID, c.Query("weekStart"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"week_start": weekStart,
		"week_end":   weekEnd,
		"insights":   row,
	})
}

type generateInsightsRequest struct {
	WeekStart       string `json:"weekStart"`
	ForceRegenerate bool   `json:"forceRegenerate"`
}

// Generate handles POST /api/insights.
func (h *InsightHandler) Generate(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	var req generateInsightsRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	row, generated, err := h.insightService.GenerateWeekInsights(c.Request.Context(), userID, req.WeekStart, req.ForceRegenerate)
	if err != nil {
		if respondUsageError(c, err) {
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if row == nil {
		c.JSON(http.StatusOK, gin.H{
			"insights": nil,
			"message":  "No practice logged this week",
		})
		return
	}

	status := http.StatusOK
	if generated {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"insights": row, "generated": generated})
}

// AutoGenerateStatus handles GET /api/insights/auto-generate. It reports
// whether the last completed week still needs insights.
func (h *InsightHandler) AutoGenerateStatus(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	lastWeek := time.Now().AddDate(0, 0, -7).Format("2006-01-02")
	row, weekStart, weekEnd, err := h.insightService.GetWeekInsights(c.Request.Context(), userID, lastWeek)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check insights"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"needs_auto_generation": row == nil,
		"week_start":            weekStart,
		"week_end":              weekEnd,
		"has_existing":          row != nil,
	})
}

// AutoGenerate handles POST /api/insights/auto-generate. Safe to call
// repeatedly; an existing row is returned as-is.
func (h *InsightHandler) AutoGenerate(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	row, generated, weekStart, err := h.insightService.AutoGenerateWeekInsights(c.Request.Context(), userID)
	if err != nil {
		if respondUsageError(c, err) {
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if row == nil {
		c.JSON(http.StatusOK, gin.H{
			"insights":   nil,
			"generated":  false,
			"week_start": weekStart,
			"message":    "No practice logged last week",
		})
		return
	}

	status := http.StatusOK
	if generated {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"insights": row, "generated": generated, "week_start": weekStart})
}

// Tip handles GET /api/tip.
func (h *InsightHandler) Tip(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	tip, err := h.tipService.GetDailyTip(c.Request.Context(), userID)
	if err != nil {
		if respondUsageError(c, err) {
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate tip"})
		return
	}

	if tip == nil {
		c.JSON(http.StatusOK, gin.H{
			"tip":     nil,
			"message": "Set an overarching goal to get daily tips",
		})
		return
	}
	c.JSON(http.StatusOK, tip)
}
