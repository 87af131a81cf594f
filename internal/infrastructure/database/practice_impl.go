package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Archdiner/music-practice-tracker/internal/domain/models"
	"github.com/Archdiner/music-practice-tracker/internal/domain/repositories"
)

type practiceLogRepository struct {
	db *PostgresDB
}

func NewPracticeLogRepository(db *PostgresDB) repositories.PracticeLogRepository {
	return &practiceLogRepository{db: db}
}

func (r *practiceLogRepository) UpsertLog(ctx context.Context, log *models.PracticeLog) (*models.PracticeLog, error) {
	query := `INSERT INTO practice_logs (id, user_id, logged_at, raw_text, total_minutes, activities, parse_method)
              VALUES ($1, $2, $3, $4, $5, $6, $7)
              ON CONFLICT (user_id, logged_at) DO UPDATE SET
                  raw_text = EXCLUDED.raw_text,
                  total_minutes = EXCLUDED.total_minutes,
                  activities = EXCLUDED.activities,
                  parse_method = EXCLUDED.parse_method,
                  updated_at = NOW()
              RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(
		ctx, query,
		log.ID,
		log.UserID,
		log.LoggedAt,
		log.RawText,
		log.TotalMinutes,
		log.Activities,
		log.ParseMethod,
	).Scan(&log.ID, &log.CreatedAt, &log.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to upsert practice log: %w", err)
	}
	return log, nil
}

func (r *practiceLogRepository) GetLogByID(ctx context.Context, id string, userID int64) (*models.PracticeLog, error) {
	var log models.PracticeLog
	query := `SELECT id, user_id, logged_at, raw_text, total_minutes, activities, parse_method, created_at, updated_at
              FROM practice_logs WHERE id = $1 AND user_id = $2`

	err := r.db.GetContext(ctx, &log, query, id, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get practice log: %w", err)
	}
	return &log, nil
}

func (r *practiceLogRepository) GetLogByDate(ctx context.Context, userID int64, date string) (*models.PracticeLog, error) {
	var log models.PracticeLog
	query := `SELECT id, user_id, logged_at, raw_text, total_minutes, activities, parse_method, created_at, updated_at
              FROM practice_logs WHERE user_id = $1 AND logged_at = $2`

	err := r.db.GetContext(ctx, &log, query, userID, date)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get practice log by date: %w", err)
	}
	return &log, nil
}

func (r *practiceLogRepository) ListLogs(ctx context.Context, userID int64, from, to string, limit int) ([]*models.PracticeLog, error) {
	logs := []*models.PracticeLog{}
	query := `SELECT id, user_id, logged_at, raw_text, total_minutes, activities, parse_method, created_at, updated_at
              FROM practice_logs
              WHERE user_id = $1 AND logged_at >= $2 AND logged_at <= $3
              ORDER BY logged_at DESC
              LIMIT $4`

	err := r.db.SelectContext(ctx, &logs, query, userID, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list practice logs: %w", err)
	}
	return logs, nil
}

func (r *practiceLogRepository) UpdateLog(ctx context.Context, log *models.PracticeLog) (*models.PracticeLog, error) {
	query := `UPDATE practice_logs SET
                  raw_text = $3,
                  total_minutes = $4,
                  activities = $5,
                  parse_method = $6,
                  logged_at = $7,
                  updated_at = NOW()
              WHERE id = $1 AND user_id = $2
              RETURNING updated_at`

	err := r.db.QueryRowContext(
		ctx, query,
		log.ID,
		log.UserID,
		log.RawText,
		log.TotalMinutes,
		log.Activities,
		log.ParseMethod,
		log.LoggedAt,
	).Scan(&log.UpdatedAt)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("practice log %s not found", log.ID)
		}
		return nil, fmt.Errorf("failed to update practice log: %w", err)
	}
	return log, nil
}

func (r *practiceLogRepository) DeleteLog(ctx context.Context, id string, userID int64) error {
	query := `DELETE FROM practice_logs WHERE id = $1 AND user_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete practice log: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("practice log %s not found", id)
	}
	return nil
}
