package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Archdiner/music-practice-tracker/internal/domain/services"
)

type PracticeGoalHandler struct {
	practiceGoalService services.PracticeGoalService
}

func NewPracticeGoalHandler(practiceGoalService services.PracticeGoalService) *PracticeGoalHandler {
	return &PracticeGoalHandler{practiceGoalService: practiceGoalService}
}

// List handles GET /api/practice-goals.
func (h *PracticeGoalHandler) List(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	goals, err := h.practiceGoalService.ListPracticeGoals(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load practice goals"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"goals": goals})
}

type createPracticeGoalRequest struct {
	Text string `json:"text" binding:"required"`
}

// Create handles POST /api/practice-goals.
func (h *PracticeGoalHandler) Create(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	var req createPracticeGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	goal, err := h.practiceGoalService.CreatePracticeGoal(c.Request.Context(), userID, req.Text)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"goal": goal})
}

type updatePracticeGoalRequest struct {
	Text      *string `json:"text"`
	Completed *bool   `json:"completed"`
}

// Update handles PUT /api/practice-goals/:id. Omitted fields are left
// unchanged.
func (h *PracticeGoalHandler) Update(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	var req updatePracticeGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	goal, err := h.practiceGoalService.UpdatePracticeGoal(c.Request.Context(), userID, c.Param("id"), req.Text, req.Completed)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if goal == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "practice goal not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"goal": goal})
}

// Delete handles DELETE /api/practice-goals/:id.
func (h *PracticeGoalHandler) Delete(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	deleted, err := h.practiceGoalService.DeletePracticeGoal(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete practice goal"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "practice goal not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
