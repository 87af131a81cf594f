package repositories

import (
	"context"

	"github.com/Archdiner/music-practice-tracker/internal/domain/models"
)

type InsightRepository interface {
	//upsert on (user_id, week_start)
	UpsertInsights(ctx context.Context, row *models.WeeklyInsightRow) (*models.WeeklyInsightRow, error)

	//get; (nil, nil) when no row exists for the week
	GetInsights(ctx context.Context, userID int64, weekStart string) (*models.WeeklyInsightRow, error)
}
