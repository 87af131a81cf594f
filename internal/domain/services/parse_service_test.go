package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Archdiner/music-practice-tracker/internal/domain/models"
	"github.com/Archdiner/music-practice-tracker/internal/parser"
	"github.com/Archdiner/music-practice-tracker/internal/usage"
)

type fakeAIParser struct {
	entry *models.ParsedEntry
	err   error
	calls int
}

func (f *fakeAIParser) Parse(ctx context.Context, userID int64, rawText string, goal *models.OverarchingGoal) (*models.ParsedEntry, error) {
	f.calls++
	return f.entry, f.err
}

type fakeGovernor struct {
	err   error
	calls int
}

func (f *fakeGovernor) Enforce(ctx context.Context, userID int64, endpoint models.AIEndpoint, estimatedTokens int) error {
	f.calls++
	return f.err
}

type fakeGoalRepo struct {
	active *models.OverarchingGoal
	err    error
}

func (f *fakeGoalRepo) CreateGoal(ctx context.Context, goal *models.OverarchingGoal) error {
	return nil
}

func (f *fakeGoalRepo) GetActiveGoal(ctx context.Context, userID int64) (*models.OverarchingGoal, error) {
	return f.active, f.err
}

func (f *fakeGoalRepo) ListGoals(ctx context.Context, userID int64) ([]*models.OverarchingGoal, error) {
	return nil, nil
}

func (f *fakeGoalRepo) UpdateGoalStatus(ctx context.Context, id string, userID int64, status models.GoalStatus) error {
	return nil
}

func TestParseHeuristicWhenAIDisabled(t *testing.T) {
	aiParser := &fakeAIParser{}
	svc := NewParseService(aiParser, &fakeGovernor{}, &fakeGoalRepo{})

	raw := "scales 20m; Bach invention 15 min"
	result, err := svc.Parse(context.Background(), 1, raw, false)
	require.NoError(t, err)

	assert.Equal(t, models.ParseMethodHeuristic, result.Method)
	assert.Equal(t, parser.ParseHeuristic(raw), result.Entry)
	assert.Zero(t, aiParser.calls)
}

func TestParseHeuristicWhenNoAIParser(t *testing.T) {
	svc := NewParseService(nil, &fakeGovernor{}, &fakeGoalRepo{})

	result, err := svc.Parse(context.Background(), 1, "jam session", true)
	require.NoError(t, err)
	assert.Equal(t, models.ParseMethodHeuristic, result.Method)
	assert.False(t, svc.AIAvailable())
}

func TestParseAISuccessTaggedAI(t *testing.T) {
	entry := &models.ParsedEntry{
		TotalMinutes: 35,
		Activities: []models.Activity{
			{Category: models.CategoryTechnique, Sub: "scales", Minutes: 20},
			{Category: models.CategoryRepertoire, Sub: "Bach invention", Minutes: 15},
		},
	}
	svc := NewParseService(&fakeAIParser{entry: entry}, &fakeGovernor{}, &fakeGoalRepo{})

	result, err := svc.Parse(context.Background(), 1, "scales 20m, Bach invention 15m", true)
	require.NoError(t, err)
	assert.Equal(t, models.ParseMethodAI, result.Method)
	assert.Equal(t, entry, result.Entry)
	assert.True(t, svc.AIAvailable())
}

func TestParseRateLimitPropagatesWithoutFallback(t *testing.T) {
	aiParser := &fakeAIParser{entry: &models.ParsedEntry{}}
	gov := &fakeGovernor{err: &usage.RateLimitError{Message: "rate limit exceeded", RetryAfter: time.Minute}}
	svc := NewParseService(aiParser, gov, &fakeGoalRepo{})

	result, err := svc.Parse(context.Background(), 1, "scales 20m", true)
	require.Error(t, err)
	assert.Nil(t, result)

	var rl *usage.RateLimitError
	assert.True(t, errors.As(err, &rl))
	assert.Zero(t, aiParser.calls, "AI parser must not run after a rejection")
}

func TestParseQuotaExceededPropagates(t *testing.T) {
	gov := &fakeGovernor{err: &usage.QuotaExceededError{Message: "monthly token quota exceeded"}}
	svc := NewParseService(&fakeAIParser{}, gov, &fakeGoalRepo{})

	_, err := svc.Parse(context.Background(), 1, "scales", true)
	var quota *usage.QuotaExceededError
	require.True(t, errors.As(err, &quota))
}

func TestParseEnforceInfraErrorFallsBack(t *testing.T) {
	aiParser := &fakeAIParser{}
	gov := &fakeGovernor{err: fmt.Errorf("redis unavailable")}
	svc := NewParseService(aiParser, gov, &fakeGoalRepo{})

	raw := "ear training 10m"
	result, err := svc.Parse(context.Background(), 1, raw, true)
	require.NoError(t, err)

	assert.Equal(t, models.ParseMethodHeuristic, result.Method)
	assert.Equal(t, parser.ParseHeuristic(raw), result.Entry)
	assert.Zero(t, aiParser.calls)
}

func TestParseAIFailureFallsBackToHeuristic(t *testing.T) {
	aiParser := &fakeAIParser{err: fmt.Errorf("model returned invalid JSON")}
	svc := NewParseService(aiParser, &fakeGovernor{}, &fakeGoalRepo{})

	raw := "improv over changes 25 min"
	result, err := svc.Parse(context.Background(), 1, raw, true)
	require.NoError(t, err)

	assert.Equal(t, models.ParseMethodHeuristic, result.Method)
	assert.Equal(t, parser.ParseHeuristic(raw), result.Entry)
	assert.Equal(t, 1, aiParser.calls)
}

func TestParseGoalLoadErrorStillParses(t *testing.T) {
	entry := &models.ParsedEntry{
		TotalMinutes: 20,
		Activities:   []models.Activity{{Category: models.CategoryTechnique, Sub: "scales", Minutes: 20}},
	}
	goalRepo := &fakeGoalRepo{err: fmt.Errorf("db down")}
	svc := NewParseService(&fakeAIParser{entry: entry}, &fakeGovernor{}, goalRepo)

	result, err := svc.Parse(context.Background(), 1, "scales 20m", true)
	require.NoError(t, err)
	assert.Equal(t, models.ParseMethodAI, result.Method)
}
