package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/Archdiner/music-practice-tracker/internal/ai"
	"github.com/Archdiner/music-practice-tracker/internal/domain/models"
	"github.com/Archdiner/music-practice-tracker/internal/domain/repositories"
	"github.com/Archdiner/music-practice-tracker/internal/usage"
)

// AIInsightGenerator is the AI half of insight generation.
// *ai.InsightGenerator implements it.
type AIInsightGenerator interface {
	GenerateWeeklyInsights(ctx context.Context, userID int64, week *models.WeekData) (*models.WeeklyInsights, error)
}

type InsightService interface {
	// GetWeekInsights returns the stored row for the week containing
	// date (nil when none exists) along with the week boundaries.
	GetWeekInsights(ctx context.Context, userID int64, date string) (*models.WeeklyInsightRow, string, string, error)

	// GenerateWeekInsights aggregates the week and generates insights,
	// upserting the result. It returns (nil, false, nil) for a week with
	// no practice, and (row, false, nil) when insights already existed
	// and force was not set.
	GenerateWeekInsights(ctx context.Context, userID int64, date string, force bool) (*models.WeeklyInsightRow, bool, error)

	// AutoGenerateWeekInsights backfills the most recently completed
	// week. It never regenerates an existing row, so clients can call it
	// on every load. The returned string is the week start.
	AutoGenerateWeekInsights(ctx context.Context, userID int64) (*models.WeeklyInsightRow, bool, string, error)
}

type insightService struct {
	generator    AIInsightGenerator
	governor     UsageGovernor
	insightRepo  repositories.InsightRepository
	practiceRepo repositories.PracticeLogRepository
	goalRepo     repositories.GoalRepository
	userRepo     repositories.UserRepository
}

func NewInsightService(
	generator AIInsightGenerator,
	governor UsageGovernor,
	insightRepo repositories.InsightRepository,
	practiceRepo repositories.PracticeLogRepository,
	goalRepo repositories.GoalRepository,
	userRepo repositories.UserRepository,
) InsightService {
	return &insightService{
		generator:    generator,
		governor:     governor,
		insightRepo:  insightRepo,
		practiceRepo: practiceRepo,
		goalRepo:     goalRepo,
		userRepo:     userRepo,
	}
}

const dateLayout = "2006-01-02"

// weekBoundaries returns the Monday and Sunday of the week containing date.
func weekBoundaries(date time.Time) (string, string) {
	weekday := int(date.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday belongs to the week that started 6 days earlier
	}
	monday := date.AddDate(0, 0, 1-weekday)
	sunday := monday.AddDate(0, 0, 6)
	return monday.Format(dateLayout), sunday.Format(dateLayout)
}

func parseTargetDate(date string) (time.Time, error) {
	if date == "" {
		return time.Now(), nil
	}
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return t, nil
}

func (s *insightService) GetWeekInsights(ctx context.Context, userID int64, date string) (*models.WeeklyInsightRow, string, string, error) {
	target, err := parseTargetDate(date)
	if err != nil {
		return nil, "", "", err
	}
	weekStart, weekEnd := weekBoundaries(target)

	row, err := s.insightRepo.GetInsights(ctx, userID, weekStart)
	if err != nil {
		return nil, "", "", err
	}
	return row, weekStart, weekEnd, nil
}

func (s *insightService) GenerateWeekInsights(ctx context.Context, userID int64, date string, force bool) (*models.WeeklyInsightRow, bool, error) {
	target, err := parseTargetDate(date)
	if err != nil {
		return nil, false, err
	}
	weekStart, weekEnd := weekBoundaries(target)

	if !force {
		existing, err := s.insightRepo.GetInsights(ctx, userID, weekStart)
		if err != nil {
			return nil, false, err
		}
		if existing != nil {
			return existing, false, nil
		}
	}

	week, err := s.aggregateWeek(ctx, userID, target, weekStart, weekEnd)
	if err != nil {
		return nil, false, err
	}

	// A week with no logged practice produces no insights at all; neither
	// generator runs.
	if week.TotalMinutes == 0 {
		return nil, false, nil
	}

	insights, hasAI, err := s.generate(ctx, userID, week)
	if err != nil {
		return nil, false, err
	}

	row := &models.WeeklyInsightRow{
		ID:        uuid.NewString(),
		UserID:    userID,
		WeekStart: weekStart,
		Summary:   insights.Summary,
		Insights:  insights.Insights,
		Metrics:   weekMetrics(week, insights.Recommendations),
		HasAI:     hasAI,
	}

	saved, err := s.insightRepo.UpsertInsights(ctx, row)
	if err != nil {
		return nil, false, err
	}
	return saved, true, nil
}

func (s *insightService) AutoGenerateWeekInsights(ctx context.Context, userID int64) (*models.WeeklyInsightRow, bool, string, error) {
	// The current week is still in progress, so the last completed week
	// is the one containing today minus seven days.
	target := time.Now().AddDate(0, 0, -7)
	weekStart, _ := weekBoundaries(target)

	existing, err := s.insightRepo.GetInsights(ctx, userID, weekStart)
	if err != nil {
		return nil, false, weekStart, err
	}
	if existing != nil {
		return existing, false, weekStart, nil
	}

	row, generated, err := s.GenerateWeekInsights(ctx, userID, target.Format(dateLayout), false)
	return row, generated, weekStart, err
}

// generate runs the same orchestration pattern as entry parsing: governor
// rejections propagate, any other AI failure falls back to the
// deterministic generator.
func (s *insightService) generate(ctx context.Context, userID int64, week *models.WeekData) (*models.WeeklyInsights, bool, error) {
	if s.generator == nil {
		return FallbackInsights(week), false, nil
	}

	if err := s.governor.Enforce(ctx, userID, models.EndpointWeeklyInsights, ai.InsightEstimatedTokens); err != nil {
		var rl *usage.RateLimitError
		var quota *usage.QuotaExceededError
		if errors.As(err, &rl) || errors.As(err, &quota) {
			return nil, false, err
		}
		log.Printf("usage enforcement unavailable for user %d, using fallback insights: %v", userID, err)
		return FallbackInsights(week), false, nil
	}

	insights, err := s.generator.GenerateWeeklyInsights(ctx, userID, week)
	if err != nil {
		log.Printf("AI insights failed for user %d, using fallback: %v", userID, err)
		return FallbackInsights(week), false, nil
	}
	return insights, true, nil
}

func (s *insightService) aggregateWeek(ctx context.Context, userID int64, target time.Time, weekStart, weekEnd string) (*models.WeekData, error) {
	logs, err := s.practiceRepo.ListLogs(ctx, userID, weekStart, weekEnd, 100)
	if err != nil {
		return nil, fmt.Errorf("failed to load week logs: %w", err)
	}

	prevStart, prevEnd := weekBoundaries(target.AddDate(0, 0, -7))
	prevLogs, err := s.practiceRepo.ListLogs(ctx, userID, prevStart, prevEnd, 100)
	if err != nil {
		return nil, fmt.Errorf("failed to load previous week logs: %w", err)
	}

	dailyTarget := defaultDailyTarget
	if user, err := s.userRepo.GetUserByID(ctx, userID); err == nil {
		dailyTarget = user.DailyTarget
	}

	week := &models.WeekData{
		DailyTarget:     dailyTarget,
		CategoryMinutes: map[string]int{},
	}

	dailyTotals := map[string]int{}
	for _, l := range logs {
		week.TotalMinutes += l.TotalMinutes
		dailyTotals[l.LoggedAt] += l.TotalMinutes
		for _, a := range l.Activities {
			week.CategoryMinutes[string(a.Category)] += a.Minutes
		}
	}
	week.DaysPracticed = len(dailyTotals)
	for _, mins := range dailyTotals {
		if mins >= dailyTarget {
			week.DaysHitGoal++
		}
	}

	for _, l := range prevLogs {
		week.PreviousWeekMinutes += l.TotalMinutes
	}

	if goal, err := s.goalRepo.GetActiveGoal(ctx, userID); err == nil {
		week.Goal = goal
	}

	return week, nil
}

func weekMetrics(week *models.WeekData, recommendations []string) models.MetricsMap {
	percentages := map[string]int{}
	for cat, mins := range week.CategoryMinutes {
		if week.TotalMinutes > 0 {
			percentages[cat] = int(float64(mins)/float64(week.TotalMinutes)*100 + 0.5)
		}
	}
	return models.MetricsMap{
		"total_minutes":         week.TotalMinutes,
		"days_practiced":        week.DaysPracticed,
		"days_hit_goal":         week.DaysHitGoal,
		"daily_target":          week.DailyTarget,
		"previous_week_minutes": week.PreviousWeekMinutes,
		"category_minutes":      week.CategoryMinutes,
		"category_percentages":  percentages,
		"recommendations":       recommendations,
	}
}

// FallbackInsights synthesizes a summary and 1-3 insights from fixed rules
// over the aggregate numbers. It is the deterministic stand-in for the AI
// generator and never fails.
func FallbackInsights(week *models.WeekData) *models.WeeklyInsights {
	out := &models.WeeklyInsights{}

	out.Summary = fmt.Sprintf("You practiced %d minutes across %d days this week.", week.TotalMinutes, week.DaysPracticed)
	if week.PreviousWeekMinutes > 0 {
		delta := week.TotalMinutes - week.PreviousWeekMinutes
		switch {
		case delta > 0:
			out.Summary += fmt.Sprintf(" That's +%d minutes compared to last week.", delta)
		case delta < 0:
			out.Summary += fmt.Sprintf(" That's %d fewer minutes than last week.", -delta)
		default:
			out.Summary += " That matches last week exactly."
		}
	}

	if week.DaysPracticed >= 3 {
		out.Insights = append(out.Insights, models.Insight{
			Type:    models.InsightAchievement,
			Title:   "Consistent Practice",
			Content: fmt.Sprintf("You showed up %d days this week. Consistency is the biggest driver of progress.", week.DaysPracticed),
		})
	}

	if cat, mins := largestCategory(week.CategoryMinutes); cat != "" {
		out.Insights = append(out.Insights, models.Insight{
			Type:    models.InsightProgress,
			Title:   "Focus Area",
			Content: fmt.Sprintf("%s took the largest share of your week with %d minutes.", cat, mins),
		})
	}

	if week.DaysHitGoal == 0 && week.DailyTarget > 0 {
		out.Insights = append(out.Insights, models.Insight{
			Type:    models.InsightConcern,
			Title:   "Daily Target Missed",
			Content: fmt.Sprintf("No day reached your %d-minute target. Shorter but more regular sessions can close the gap.", week.DailyTarget),
		})
	}

	if week.DaysPracticed < 3 {
		out.Recommendations = append(out.Recommendations,
			"Try more frequent, shorter sessions - three 15-minute sessions beat one long one.")
	}
	if week.Goal != nil {
		out.Recommendations = append(out.Recommendations,
			fmt.Sprintf("Pick one exercise this week that moves you toward \"%s\".", week.Goal.Title))
	}
	if len(out.Recommendations) == 0 {
		out.Recommendations = append(out.Recommendations, "Keep the streak going - same time, same place helps.")
	}

	return out
}

func largestCategory(categoryMinutes map[string]int) (string, int) {
	cats := make([]string, 0, len(categoryMinutes))
	for cat := range categoryMinutes {
		cats = append(cats, cat)
	}
	sort.Strings(cats) // deterministic tie-break

	best, bestMins := "", 0
	for _, cat := range cats {
		if categoryMinutes[cat] > bestMins {
			best, bestMins = cat, categoryMinutes[cat]
		}
	}
	return best, bestMins
}
