package repositories

import (
	"context"

	"github.com/Archdiner/music-practice-tracker/internal/domain/models"
)

type GoalRepository interface {
	//create (pauses any currently active goal)
	CreateGoal(ctx context.Context, goal *models.OverarchingGoal) error

	//get
	GetActiveGoal(ctx context.Context, userID int64) (*models.OverarchingGoal, error)
	ListGoals(ctx context.Context, userID int64) ([]*models.OverarchingGoal, error)

	//update
	UpdateGoalStatus(ctx context.Context, id string, userID int64, status models.GoalStatus) error
}
