package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Archdiner/music-practice-tracker/internal/domain/models"
	"github.com/Archdiner/music-practice-tracker/internal/domain/repositories"
)

type usageRepository struct {
	db *PostgresDB
}

func NewUsageRepository(db *PostgresDB) repositories.UsageRepository {
	return &usageRepository{db: db}
}

func (r *usageRepository) InsertRecord(ctx context.Context, rec *models.UsageRecord) error {
	query := `INSERT INTO ai_usage (id, user_id, endpoint, model, prompt_tokens, completion_tokens, total_tokens, cost_usd, status)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
              RETURNING created_at`

	err := r.db.QueryRowContext(
		ctx, query,
		rec.ID,
		rec.UserID,
		rec.Endpoint,
		rec.Model,
		rec.PromptTokens,
		rec.CompletionTokens,
		rec.TotalTokens,
		rec.CostUSD,
		rec.Status,
	).Scan(&rec.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to insert usage record: %w", err)
	}
	return nil
}

func (r *usageRepository) CountRequestsSince(ctx context.Context, userID int64, since time.Time) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM ai_usage WHERE user_id = $1 AND created_at >= $2`

	if err := r.db.GetContext(ctx, &count, query, userID, since); err != nil {
		return 0, fmt.Errorf("failed to count usage records: %w", err)
	}
	return count, nil
}

func (r *usageRepository) SumTokensSince(ctx context.Context, userID int64, since time.Time) (int, error) {
	var sum int
	query := `SELECT COALESCE(SUM(total_tokens), 0) FROM ai_usage WHERE user_id = $1 AND created_at >= $2`

	if err := r.db.GetContext(ctx, &sum, query, userID, since); err != nil {
		return 0, fmt.Errorf("failed to sum usage tokens: %w", err)
	}
	return sum, nil
}

func (r *usageRepository) MonthlyUsage(ctx context.Context, userID int64, since time.Time) (*models.MonthlyUsage, error) {
	var usage models.MonthlyUsage
	query := `SELECT COUNT(*) AS requests,
                     COALESCE(SUM(total_tokens), 0) AS total_tokens,
                     COALESCE(SUM(cost_usd), 0) AS cost_usd
              FROM ai_usage WHERE user_id = $1 AND created_at >= $2`

	row := r.db.QueryRowContext(ctx, query, userID, since)
	if err := row.Scan(&usage.Requests, &usage.TotalTokens, &usage.CostUSD); err != nil {
		return nil, fmt.Errorf("failed to aggregate monthly usage: %w", err)
	}
	return &usage, nil
}

func (r *usageRepository) GetLimits(ctx context.Context, userID int64) (*models.UsageLimits, error) {
	var limits models.UsageLimits
	query := `SELECT user_id, requests_per_minute, requests_per_day, tokens_per_month, created_at
              FROM ai_limits WHERE user_id = $1`

	err := r.db.GetContext(ctx, &limits, query, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get usage limits: %w", err)
	}
	return &limits, nil
}

func (r *usageRepository) UpsertLimits(ctx context.Context, limits *models.UsageLimits) error {
	query := `INSERT INTO ai_limits (user_id, requests_per_minute, requests_per_day, tokens_per_month)
              VALUES ($1, $2, $3, $4)
              ON CONFLICT (user_id) DO UPDATE SET
                  requests_per_minute = EXCLUDED.requests_per_minute,
                  requests_per_day = EXCLUDED.requests_per_day,
                  tokens_per_month = EXCLUDED.tokens_per_month`

	_, err := r.db.ExecContext(
		ctx, query,
		limits.UserID,
		limits.RequestsPerMinute,
		limits.RequestsPerDay,
		limits.TokensPerMonth,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert usage limits: %w", err)
	}
	return nil
}
