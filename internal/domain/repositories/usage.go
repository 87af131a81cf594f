package repositories

import (
	"context"
	"time"

	"github.com/Archdiner/music-practice-tracker/internal/domain/models"
)

// UsageRepository is the governor's view of the ai_usage and ai_limits
// tables. Counting and summation run against the same rows InsertRecord
// appends, so enforcement reads its own writes within a request.
type UsageRepository interface {
	//append-only
	InsertRecord(ctx context.Context, rec *models.UsageRecord) error

	//aggregation over the governance windows
	CountRequestsSince(ctx context.Context, userID int64, since time.Time) (int, error)
	SumTokensSince(ctx context.Context, userID int64, since time.Time) (int, error)
	MonthlyUsage(ctx context.Context, userID int64, since time.Time) (*models.MonthlyUsage, error)

	//per-user overrides; (nil, nil) when no override row exists
	GetLimits(ctx context.Context, userID int64) (*models.UsageLimits, error)
	UpsertLimits(ctx context.Context, limits *models.UsageLimits) error
}
