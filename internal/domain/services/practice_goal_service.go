package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Archdiner/music-practice-tracker/internal/domain/models"
	"github.com/Archdiner/music-practice-tracker/internal/domain/repositories"
)

type PracticeGoalService interface {
	CreatePracticeGoal(ctx context.Context, userID int64, text string) (*models.PracticeGoal, error)
	ListPracticeGoals(ctx context.Context, userID int64) ([]*models.PracticeGoal, error)

	// UpdatePracticeGoal applies the non-nil fields. Returns (nil, nil)
	// when no goal matches id.
	UpdatePracticeGoal(ctx context.Context, userID int64, id string, text *string, completed *bool) (*models.PracticeGoal, error)

	// DeletePracticeGoal reports whether a goal was deleted; (false, nil)
	// means no goal matched id.
	DeletePracticeGoal(ctx context.Context, userID int64, id string) (bool, error)
}

type practiceGoalService struct {
	practiceGoalRepo repositories.PracticeGoalRepository
}

func NewPracticeGoalService(practiceGoalRepo repositories.PracticeGoalRepository) PracticeGoalService {
	return &practiceGoalService{practiceGoalRepo: practiceGoalRepo}
}

func validPracticeGoalText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("goal text is required")
	}
	if len(text) > models.MaxPracticeGoalLength {
		return "", fmt.Errorf("goal text exceeds %d characters", models.MaxPracticeGoalLength)
	}
	return text, nil
}

func (s *practiceGoalService) CreatePracticeGoal(ctx context.Context, userID int64, text string) (*models.PracticeGoal, error) {
	text, err := validPracticeGoalText(text)
	if err != nil {
		return nil, err
	}

	goal := &models.PracticeGoal{
		ID:     uuid.NewString(),
		UserID: userID,
		Text:   text,
	}
	if err := s.practiceGoalRepo.CreatePracticeGoal(ctx, goal); err != nil {
		return nil, fmt.Errorf("failed to create practice goal: %w", err)
	}
	return goal, nil
}

func (s *practiceGoalService) ListPracticeGoals(ctx context.Context, userID int64) ([]*models.PracticeGoal, error) {
	return s.practiceGoalRepo.ListPracticeGoals(ctx, userID)
}

func (s *practiceGoalService) UpdatePracticeGoal(ctx context.Context, userID int64, id string, text *string, completed *bool) (*models.PracticeGoal, error) {
	if text == nil && completed == nil {
		return nil, fmt.Errorf("nothing to update")
	}

	goal, err := s.practiceGoalRepo.GetPracticeGoal(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if goal == nil {
		return nil, nil
	}

	if text != nil {
		clean, err := validPracticeGoalText(*text)
		if err != nil {
			return nil, err
		}
		goal.Text = clean
	}
	if completed != nil {
		goal.Completed = *completed
	}

	saved, err := s.practiceGoalRepo.UpdatePracticeGoal(ctx, goal)
	if err != nil {
		return nil, fmt.Errorf("failed to update practice goal: %w", err)
	}
	return saved, nil
}

func (s *practiceGoalService) DeletePracticeGoal(ctx context.Context, userID int64, id string) (bool, error) {
	goal, err := s.practiceGoalRepo.GetPracticeGoal(ctx, id, userID)
	if err != nil {
		return false, err
	}
	if goal == nil {
		return false, nil
	}

	if err := s.practiceGoalRepo.DeletePracticeGoal(ctx, id, userID); err != nil {
		return false, fmt.Errorf("failed to delete practice goal: %w", err)
	}
	return true, nil
}
