package repositories

import (
	"context"

	"github.com/Archdiner/music-practice-tracker/internal/domain/models"
)

type PracticeGoalRepository interface {
	//create
	CreatePracticeGoal(ctx context.Context, goal *models.PracticeGoal) error

	//get; (nil, nil) when no row matches
	GetPracticeGoal(ctx context.Context, id string, userID int64) (*models.PracticeGoal, error)
	ListPracticeGoals(ctx context.Context, userID int64) ([]*models.PracticeGoal, error)

	//update
	UpdatePracticeGoal(ctx context.Context, goal *models.PracticeGoal) (*models.PracticeGoal, error)

	//delete
	DeletePracticeGoal(ctx context.Context, id string, userID int64) error
}
