package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Archdiner/music-practice-tracker/internal/domain/models"
	"github.com/Archdiner/music-practice-tracker/internal/domain/services"
)

type GoalHandler struct {
	goalService services.GoalService
}

func NewGoalHandler(goalService services.GoalService) *GoalHandler {
	return &GoalHandler{goalService: goalService}
}

// Get handles GET /api/goals. ?all=true lists history; default returns the
// active goal (null when none).
func (h *GoalHandler) Get(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	if c.Query("all") == "true" {
		goals, err := h.goalService.ListGoals(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load goals"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"goals": goals})
		return
	}

	goal, err := h.goalService.GetActiveGoal(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load goal"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"goal": goal})
}

// Create handles POST /api/goals.
func (h *GoalHandler) Create(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	var req services.CreateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	goal, err := h.goalService.CreateGoal(c.Request.Context(), userID, &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"goal": goal})
}

type updateGoalRequest struct {
	ID     string `json:"id" binding:"required"`
	Status string `json:"status" binding:"required"`
}

// Update handles PUT /api/goals and allows status transitions only.
func (h *GoalHandler) Update(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	var req updateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.goalService.UpdateGoalStatus(c.Request.Context(), userID, req.ID, models.GoalStatus(req.Status)); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": true})
}
