package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Archdiner/music-practice-tracker/internal/domain/services"
)

type PracticeHandler struct {
	practiceService services.PracticeService
	parseService    services.ParseService
}

func NewPracticeHandler(practiceService services.PracticeService, parseService services.ParseService) *PracticeHandler {
	return &PracticeHandler{
		practiceService: practiceService,
		parseService:    parseService,
	}
}

type logRequest struct {
	RawText string `json:"rawText" binding:"required"`
	Date    string `json:"date"`
	UseAI   *bool  `json:"useAI"`
}

// Log handles POST /api/log.
func (h *PracticeHandler) Log(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	var req logRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	useAI := h.parseService.AIAvailable()
	if req.UseAI != nil {
		useAI = *req.UseAI
	}

	entry, method, err := h.practiceService.LogPractice(c.Request.Context(), userID, req.RawText, req.Date, useAI)
	if err != nil {
		if respondUsageError(c, err) {
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"entry":        entry,
		"parse_method": method,
	})
}

// List handles GET /api/entries.
func (h *PracticeHandler) List(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	entries, err := h.practiceService.ListEntries(c.Request.Context(), userID, c.Query("from"), c.Query("to"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load entries"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries, "count": len(entries)})
}

// Get handles GET /api/entries/:id.
func (h *PracticeHandler) Get(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	entry, err := h.practiceService.GetEntry(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load entry"})
		return
	}
	if entry == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "entry not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"entry": entry})
}

type updateRequest struct {
	RawText string `json:"rawText" binding:"required"`
	UseAI   *bool  `json:"useAI"`
}

// Update handles PUT /api/entries/:id by re-parsing and replacing activities.
func (h *PracticeHandler) Update(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	useAI := h.parseService.AIAvailable()
	if req.UseAI != nil {
		useAI = *req.UseAI
	}

	entry, method, err := h.practiceService.ReplaceEntry(c.Request.Context(), userID, c.Param("id"), req.RawText, useAI)
	if err != nil {
		if respondUsageError(c, err) {
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if entry == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "entry not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entry":        entry,
		"parse_method": method,
	})
}

// DeleteActivity handles DELETE /api/entries/:id?activityIndex=n.
func (h *PracticeHandler) DeleteActivity(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	index, err := strconv.Atoi(c.Query("activityIndex"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "activityIndex query parameter is required"})
		return
	}

	entry, err := h.practiceService.DeleteActivity(c.Request.Context(), userID, c.Param("id"), index)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if entry == nil {
		c.JSON(http.StatusOK, gin.H{"deleted": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entry": entry})
}

// Heatmap handles GET /api/heatmap. The response maps ISO dates to total
// minutes practiced, which feeds the calendar heatmap view.
func (h *PracticeHandler) Heatmap(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	heatmap, err := h.practiceService.GetHeatmap(c.Request.Context(), userID, c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, heatmap)
}

// Stats handles GET /api/stats.
func (h *PracticeHandler) Stats(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	days, _ := strconv.Atoi(c.Query("days"))
	stats, err := h.practiceService.GetStats(c.Request.Context(), userID, days)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}
