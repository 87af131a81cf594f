package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Archdiner/music-practice-tracker/internal/ai"
	"github.com/Archdiner/music-practice-tracker/internal/domain/models"
	"github.com/Archdiner/music-practice-tracker/internal/domain/repositories"
	"github.com/Archdiner/music-practice-tracker/internal/usage"
)

// AITipGenerator is the AI half of daily tip generation. *ai.InsightGenerator
// implements it.
type AITipGenerator interface {
	GenerateDailyTip(ctx context.Context, userID int64, goal *models.OverarchingGoal, recent []*models.PracticeLog) (string, error)
}

// DailyTip is one short goal-directed practice suggestion.
type DailyTip struct {
	Tip   string `json:"tip"`
	HasAI bool   `json:"has_ai"`
}

type TipService interface {
	// GetDailyTip produces a tip for the user's active goal. It returns
	// (nil, nil) when the user has no active goal.
	GetDailyTip(ctx context.Context, userID int64) (*DailyTip, error)
}

type tipService struct {
	generator    AITipGenerator
	governor     UsageGovernor
	goalRepo     repositories.GoalRepository
	practiceRepo repositories.PracticeLogRepository
}

func NewTipService(
	generator AITipGenerator,
	governor UsageGovernor,
	goalRepo repositories.GoalRepository,
	practiceRepo repositories.PracticeLogRepository,
) TipService {
	return &tipService{
		generator:    generator,
		governor:     governor,
		goalRepo:     goalRepo,
		practiceRepo: practiceRepo,
	}
}

func (s *tipService) GetDailyTip(ctx context.Context, userID int64) (*DailyTip, error) {
	goal, err := s.goalRepo.GetActiveGoal(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load active goal: %w", err)
	}
	if goal == nil {
		return nil, nil
	}

	if s.generator == nil {
		return &DailyTip{Tip: FallbackTip(goal)}, nil
	}

	if err := s.governor.Enforce(ctx, userID, models.EndpointDailyTip, ai.TipEstimatedTokens); err != nil {
		var rl *usage.RateLimitError
		var quota *usage.QuotaExceededError
		if errors.As(err, &rl) || errors.As(err, &quota) {
			return nil, err
		}
		log.Printf("usage enforcement unavailable for user %d, using fallback tip: %v", userID, err)
		return &DailyTip{Tip: FallbackTip(goal)}, nil
	}

	recent, err := s.recentLogs(ctx, userID)
	if err != nil {
		log.Printf("failed to load recent logs for user %d: %v", userID, err)
		recent = nil
	}

	tip, err := s.generator.GenerateDailyTip(ctx, userID, goal, recent)
	if err != nil {
		log.Printf("AI tip failed for user %d, using fallback: %v", userID, err)
		return &DailyTip{Tip: FallbackTip(goal)}, nil
	}
	return &DailyTip{Tip: tip, HasAI: true}, nil
}

func (s *tipService) recentLogs(ctx context.Context, userID int64) ([]*models.PracticeLog, error) {
	now := time.Now()
	from := now.AddDate(0, 0, -7).Format(dateLayout)
	to := now.Format(dateLayout)
	return s.practiceRepo.ListLogs(ctx, userID, from, to, 7)
}

// FallbackTip returns a fixed suggestion per goal type when the AI path is
// unavailable.
func FallbackTip(goal *models.OverarchingGoal) string {
	switch goal.GoalType {
	case models.GoalTypePiece:
		return fmt.Sprintf("Pick the hardest 4 bars of \"%s\" and loop them slowly until clean, then add speed.", goal.Title)
	case models.GoalTypeExam:
		return "Run one full mock segment under exam conditions today, then drill whatever broke down."
	case models.GoalTypeTechnique:
		return fmt.Sprintf("Spend 10 focused minutes on \"%s\" with a metronome, starting well below performance tempo.", goal.Title)
	case models.GoalTypePerformance:
		return "Play your set top to bottom without stopping, exactly as you would on stage. Note the rough spots, fix them tomorrow."
	default:
		return "Start today's session with 5 minutes on the thing you avoided last time."
	}
}
