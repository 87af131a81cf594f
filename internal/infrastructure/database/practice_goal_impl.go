package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Archdiner/music-practice-tracker/internal/domain/models"
	"github.com/Archdiner/music-practice-tracker/internal/domain/repositories"
)

type practiceGoalRepository struct {
	db *PostgresDB
}

func NewPracticeGoalRepository(db *PostgresDB) repositories.PracticeGoalRepository {
	return &practiceGoalRepository{db: db}
}

func (r *practiceGoalRepository) CreatePracticeGoal(ctx context.Context, goal *models.PracticeGoal) error {
	query := `INSERT INTO practice_goals (id, user_id, text, completed)
              VALUES ($1, $2, $3, $4)
              RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(
		ctx, query,
		goal.ID,
		goal.UserID,
		goal.Text,
		goal.Completed,
	).Scan(&goal.CreatedAt, &goal.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create practice goal: %w", err)
	}
	return nil
}

func (r *practiceGoalRepository) GetPracticeGoal(ctx context.Context, id string, userID int64) (*models.PracticeGoal, error) {
	var goal models.PracticeGoal
	query := `SELECT id, user_id, text, completed, created_at, updated_at
              FROM practice_goals WHERE id = $1 AND user_id = $2`

	err := r.db.GetContext(ctx, &goal, query, id, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get practice goal: %w", err)
	}
	return &goal, nil
}

func (r *practiceGoalRepository) ListPracticeGoals(ctx context.Context, userID int64) ([]*models.PracticeGoal, error) {
	goals := []*models.PracticeGoal{}
	query := `SELECT id, user_id, text, completed, created_at, updated_at
              FROM practice_goals WHERE user_id = $1 ORDER BY created_at ASC`

	err := r.db.SelectContext(ctx, &goals, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list practice goals: %w", err)
	}
	return goals, nil
}

func (r *practiceGoalRepository) UpdatePracticeGoal(ctx context.Context, goal *models.PracticeGoal) (*models.PracticeGoal, error) {
	query := `UPDATE practice_goals SET text = $3, completed = $4, updated_at = NOW()
              WHERE id = $1 AND user_id = $2
              RETURNING updated_at`

	err := r.db.QueryRowContext(
		ctx, query,
		goal.ID,
		goal.UserID,
		goal.Text,
		goal.Completed,
	).Scan(&goal.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to update practice goal: %w", err)
	}
	return goal, nil
}

func (r *practiceGoalRepository) DeletePracticeGoal(ctx context.Context, id string, userID int64) error {
	query := `DELETE FROM practice_goals WHERE id = $1 AND user_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete practice goal: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("practice goal %s not found", id)
	}
	return nil
}
