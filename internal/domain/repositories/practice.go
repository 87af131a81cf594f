package repositories

import (
	"context"

	"github.com/Archdiner/music-practice-tracker/internal/domain/models"
)

type PracticeLogRepository interface {
	//create or merge into the row for (user, date)
	UpsertLog(ctx context.Context, log *models.PracticeLog) (*models.PracticeLog, error)

	//get; (nil, nil) when no row matches
	GetLogByID(ctx context.Context, id string, userID int64) (*models.PracticeLog, error)
	GetLogByDate(ctx context.Context, userID int64, date string) (*models.PracticeLog, error)
	ListLogs(ctx context.Context, userID int64, from, to string, limit int) ([]*models.PracticeLog, error)

	//update
	UpdateLog(ctx context.Context, log *models.PracticeLog) (*models.PracticeLog, error)

	//delete
	DeleteLog(ctx context.Context, id string, userID int64) error
}
