package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Archdiner/music-practice-tracker/internal/domain/models"
	"github.com/Archdiner/music-practice-tracker/internal/usage"
)

type fakeTipGenerator struct {
	tip   string
	err   error
	calls int
}

func (f *fakeTipGenerator) GenerateDailyTip(ctx context.Context, userID int64, goal *models.OverarchingGoal, recent []*models.PracticeLog) (string, error) {
	f.calls++
	return f.tip, f.err
}

func pieceGoal() *models.OverarchingGoal {
	return &models.OverarchingGoal{
		ID:       "g1",
		UserID:   1,
		Title:    "Chopin Ballade No. 1",
		GoalType: models.GoalTypePiece,
		Status:   models.GoalStatusActive,
	}
}

func TestDailyTipNoActiveGoal(t *testing.T) {
	gen := &fakeTipGenerator{tip: "practice"}
	svc := NewTipService(gen, &fakeGovernor{}, &fakeGoalRepo{}, &fakePracticeRepo{})

	tip, err := svc.GetDailyTip(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, tip)
	assert.Zero(t, gen.calls)
}

func TestDailyTipAIPath(t *testing.T) {
	gen := &fakeTipGenerator{tip: "Slow the coda down to half tempo today."}
	svc := NewTipService(gen, &fakeGovernor{}, &fakeGoalRepo{active: pieceGoal()}, &fakePracticeRepo{})

	tip, err := svc.GetDailyTip(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, tip)
	assert.True(t, tip.HasAI)
	assert.Equal(t, "Slow the coda down to half tempo today.", tip.Tip)
}

func TestDailyTipAIFailureUsesFallback(t *testing.T) {
	gen := &fakeTipGenerator{err: fmt.Errorf("model timeout")}
	svc := NewTipService(gen, &fakeGovernor{}, &fakeGoalRepo{active: pieceGoal()}, &fakePracticeRepo{})

	tip, err := svc.GetDailyTip(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, tip)
	assert.False(t, tip.HasAI)
	assert.Contains(t, tip.Tip, "Chopin Ballade No. 1")
}

func TestDailyTipRateLimitPropagates(t *testing.T) {
	gen := &fakeTipGenerator{}
	gov := &fakeGovernor{err: &usage.RateLimitError{Message: "rate limit exceeded"}}
	svc := NewTipService(gen, gov, &fakeGoalRepo{active: pieceGoal()}, &fakePracticeRepo{})

	_, err := svc.GetDailyTip(context.Background(), 1)
	var rl *usage.RateLimitError
	require.True(t, errors.As(err, &rl))
	assert.Zero(t, gen.calls)
}

func TestFallbackTipPerGoalType(t *testing.T) {
	for _, goalType := range []models.GoalType{
		models.GoalTypePiece,
		models.GoalTypeExam,
		models.GoalTypeTechnique,
		models.GoalTypePerformance,
		models.GoalTypeGeneral,
	} {
		goal := &models.OverarchingGoal{Title: "My goal", GoalType: goalType}
		assert.NotEmpty(t, FallbackTip(goal), string(goalType))
	}
}
