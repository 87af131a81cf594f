package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Archdiner/music-practice-tracker/internal/domain/models"
	"github.com/Archdiner/music-practice-tracker/internal/domain/repositories"
)

type GoalService interface {
	// CreateGoal activates a new goal, pausing any previously active one.
	CreateGoal(ctx context.Context, userID int64, req *CreateGoalRequest) (*models.OverarchingGoal, error)

	GetActiveGoal(ctx context.Context, userID int64) (*models.OverarchingGoal, error)
	ListGoals(ctx context.Context, userID int64) ([]*models.OverarchingGoal, error)
	UpdateGoalStatus(ctx context.Context, userID int64, id string, status models.GoalStatus) error
}

type CreateGoalRequest struct {
	Title           string  `json:"title" binding:"required,max=200"`
	Description     string  `json:"description" binding:"max=1000"`
	GoalType        string  `json:"goal_type" binding:"required"`
	DifficultyLevel int     `json:"difficulty_level"`
	TargetDate      *string `json:"target_date,omitempty"`
}

type goalService struct {
	goalRepo repositories.GoalRepository
}

func NewGoalService(goalRepo repositories.GoalRepository) GoalService {
	return &goalService{goalRepo: goalRepo}
}

func (s *goalService) CreateGoal(ctx context.Context, userID int64, req *CreateGoalRequest) (*models.OverarchingGoal, error) {
	goalType := models.GoalType(strings.ToLower(req.GoalType))
	if !goalType.Valid() {
		return nil, fmt.Errorf("invalid goal_type %q", req.GoalType)
	}
	if req.DifficultyLevel < 0 || req.DifficultyLevel > 10 {
		return nil, fmt.Errorf("difficulty_level must be between 0 and 10")
	}
	if req.TargetDate != nil {
		if _, err := time.Parse(dateLayout, *req.TargetDate); err != nil {
			return nil, fmt.Errorf("invalid target_date %q: %w", *req.TargetDate, err)
		}
	}

	goal := &models.OverarchingGoal{
		ID:              uuid.NewString(),
		UserID:          userID,
		Title:           strings.TrimSpace(req.Title),
		Description:     strings.TrimSpace(req.Description),
		GoalType:        goalType,
		DifficultyLevel: req.DifficultyLevel,
		TargetDate:      req.TargetDate,
		Status:          models.GoalStatusActive,
	}

	if err := s.goalRepo.CreateGoal(ctx, goal); err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}
	return goal, nil
}

func (s *goalService) GetActiveGoal(ctx context.Context, userID int64) (*models.OverarchingGoal, error) {
	return s.goalRepo.GetActiveGoal(ctx, userID)
}

func (s *goalService) ListGoals(ctx context.Context, userID int64) ([]*models.OverarchingGoal, error) {
	return s.goalRepo.ListGoals(ctx, userID)
}

func (s *goalService) UpdateGoalStatus(ctx context.Context, userID int64, id string, status models.GoalStatus) error {
	switch status {
	case models.GoalStatusActive, models.GoalStatusCompleted, models.GoalStatusPaused:
	default:
		return fmt.Errorf("invalid goal status %q", status)
	}
	return s.goalRepo.UpdateGoalStatus(ctx, id, userID, status)
}
