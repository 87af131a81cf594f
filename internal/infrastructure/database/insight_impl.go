package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Archdiner/music-practice-tracker/internal/domain/models"
	"github.com/Archdiner/music-practice-tracker/internal/domain/repositories"
)

type insightRepository struct {
	db *PostgresDB
}

func NewInsightRepository(db *PostgresDB) repositories.InsightRepository {
	return &insightRepository{db: db}
}

func (r *insightRepository) UpsertInsights(ctx context.Context, row *models.WeeklyInsightRow) (*models.WeeklyInsightRow, error) {
	query := `INSERT INTO weekly_insights (id, user_id, week_start, summary, insights, metrics, has_ai)
              VALUES ($1, $2, $3, $4, $5, $6, $7)
              ON CONFLICT (user_id, week_start) DO UPDATE SET
                  summary = EXCLUDED.summary,
                  insights = EXCLUDED.insights,
                  metrics = EXCLUDED.metrics,
                  has_ai = EXCLUDED.has_ai,
                  updated_at = NOW()
              RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(
		ctx, query,
		row.ID,
		row.UserID,
		row.WeekStart,
		row.Summary,
		row.Insights,
		row.Metrics,
		row.HasAI,
	).Scan(&row.ID, &row.CreatedAt, &row.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to upsert weekly insights: %w", err)
	}
	return row, nil
}

func (r *insightRepository) GetInsights(ctx context.Context, userID int64, weekStart string) (*models.WeeklyInsightRow, error) {
	var row models.WeeklyInsightRow
	query := `SELECT id, user_id, week_start, summary, insights, metrics, has_ai, created_at, updated_at
              FROM weekly_insights WHERE user_id = $1 AND week_start = $2`

	err := r.db.GetContext(ctx, &row, query, userID, weekStart)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get weekly insights: %w", err)
	}
	return &row, nil
}
