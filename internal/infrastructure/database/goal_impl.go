package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Archdiner/music-practice-tracker/internal/domain/models"
	"github.com/Archdiner/music-practice-tracker/internal/domain/repositories"
)

type goalRepository struct {
	db *PostgresDB
}

func NewGoalRepository(db *PostgresDB) repositories.GoalRepository {
	return &goalRepository{db: db}
}

// CreateGoal inserts a new active goal, pausing any goal that was active
// before it. Both statements run in one transaction so there is never more
// than one active goal per user.
func (r *goalRepository) CreateGoal(ctx context.Context, goal *models.OverarchingGoal) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	pause := `UPDATE overarching_goals SET status = 'paused', updated_at = NOW()
              WHERE user_id = $1 AND status = 'active'`
	if _, err := tx.ExecContext(ctx, pause, goal.UserID); err != nil {
		return fmt.Errorf("failed to pause previous goal: %w", err)
	}

	insert := `INSERT INTO overarching_goals (id, user_id, title, description, goal_type, difficulty_level, target_date, status)
               VALUES ($1, $2, $3, $4, $5, $6, $7, 'active')
               RETURNING created_at, updated_at`
	err = tx.QueryRowContext(
		ctx, insert,
		goal.ID,
		goal.UserID,
		goal.Title,
		goal.Description,
		goal.GoalType,
		goal.DifficultyLevel,
		goal.TargetDate,
	).Scan(&goal.CreatedAt, &goal.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create goal: %w", err)
	}
	goal.Status = models.GoalStatusActive

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit goal creation: %w", err)
	}
	return nil
}

func (r *goalRepository) GetActiveGoal(ctx context.Context, userID int64) (*models.OverarchingGoal, error) {
	var goal models.OverarchingGoal
	query := `SELECT id, user_id, title, description, goal_type, difficulty_level, target_date, status, created_at, updated_at
              FROM overarching_goals WHERE user_id = $1 AND status = 'active'`

	err := r.db.GetContext(ctx, &goal, query, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get active goal: %w", err)
	}
	return &goal, nil
}

func (r *goalRepository) ListGoals(ctx context.Context, userID int64) ([]*models.OverarchingGoal, error) {
	goals := []*models.OverarchingGoal{}
	query := `SELECT id, user_id, title, description, goal_type, difficulty_level, target_date, status, created_at, updated_at
              FROM overarching_goals WHERE user_id = $1 ORDER BY created_at DESC`

	err := r.db.SelectContext(ctx, &goals, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	return goals, nil
}

func (r *goalRepository) UpdateGoalStatus(ctx context.Context, id string, userID int64, status models.GoalStatus) error {
	query := `UPDATE overarching_goals SET status = $3, updated_at = NOW()
              WHERE id = $1 AND user_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, userID, status)
	if err != nil {
		return fmt.Errorf("failed to update goal status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("goal %s not found", id)
	}
	return nil
}
