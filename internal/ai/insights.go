package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Archdiner/music-practice-tracker/internal/domain/models"
)

// InsightEstimatedTokens and TipEstimatedTokens are pre-call estimates for
// the monthly quota projection.
const (
	InsightEstimatedTokens = 1200
	TipEstimatedTokens     = 600
)

// InsightGenerator produces weekly summaries and daily tips from the
// language model. Like EntryParser, it trusts the caller to have run the
// governor's enforce step.
type InsightGenerator struct {
	client   ChatClient
	prompts  *PromptTemplates
	recorder UsageRecorder
}

func NewInsightGenerator(client ChatClient, recorder UsageRecorder) *InsightGenerator {
	return &InsightGenerator{
		client:   client,
		prompts:  NewPromptTemplates(),
		recorder: recorder,
	}
}

// GenerateWeeklyInsights asks the model for a week summary. The response is
// validated loosely compared to entry parsing: the summary must be present
// and insights must carry a type, title and content.
func (g *InsightGenerator) GenerateWeeklyInsights(ctx context.Context, userID int64, week *models.WeekData) (*models.WeeklyInsights, error) {
	prompt := g.prompts.BuildWeeklyInsightsPrompt(week)

	res, err := g.client.Complete(ctx, insightsSystemPrompt, prompt, 0.3, 800)
	if err != nil {
		g.recorder.Record(ctx, userID, models.EndpointWeeklyInsights, g.client.Model(), nil, models.UsageStatusFailed)
		return nil, fmt.Errorf("%w: %v", ErrAIParse, err)
	}

	var insights models.WeeklyInsights
	if err := json.Unmarshal([]byte(ExtractJSON(res.Content)), &insights); err != nil {
		g.recorder.Record(ctx, userID, models.EndpointWeeklyInsights, g.client.Model(), &res.Usage, models.UsageStatusFailed)
		return nil, fmt.Errorf("%w: %v", ErrAIParse, err)
	}

	if err := checkInsights(&insights); err != nil {
		g.recorder.Record(ctx, userID, models.EndpointWeeklyInsights, g.client.Model(), &res.Usage, models.UsageStatusFailed)
		return nil, fmt.Errorf("%w: %v", ErrAIParse, err)
	}

	g.recorder.Record(ctx, userID, models.EndpointWeeklyInsights, g.client.Model(), &res.Usage, models.UsageStatusSuccess)
	return &insights, nil
}

// GenerateDailyTip asks the model for one short practice tip.
func (g *InsightGenerator) GenerateDailyTip(ctx context.Context, userID int64, goal *models.OverarchingGoal, recent []*models.PracticeLog) (string, error) {
	prompt := g.prompts.BuildDailyTipPrompt(goal, recent)

	res, err := g.client.Complete(ctx, tipSystemPrompt, prompt, 0.5, 120)
	if err != nil {
		g.recorder.Record(ctx, userID, models.EndpointDailyTip, g.client.Model(), nil, models.UsageStatusFailed)
		return "", fmt.Errorf("%w: %v", ErrAIParse, err)
	}

	tip := strings.TrimSpace(res.Content)
	if tip == "" {
		g.recorder.Record(ctx, userID, models.EndpointDailyTip, g.client.Model(), &res.Usage, models.UsageStatusFailed)
		return "", fmt.Errorf("%w: empty tip", ErrAIParse)
	}

	g.recorder.Record(ctx, userID, models.EndpointDailyTip, g.client.Model(), &res.Usage, models.UsageStatusSuccess)
	return tip, nil
}

func checkInsights(ins *models.WeeklyInsights) error {
	if strings.TrimSpace(ins.Summary) == "" {
		return fmt.Errorf("summary is empty")
	}
	for i, item := range ins.Insights {
		if item.Type == "" || item.Title == "" || item.Content == "" {
			return fmt.Errorf("insight %d is incomplete", i)
		}
	}
	return nil
}
