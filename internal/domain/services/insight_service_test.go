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
	"github.com/Archdiner/music-practice-tracker/internal/usage"
)

type fakeInsightGenerator struct {
	insights *models.WeeklyInsights
	err      error
	calls    int
}

func (f *fakeInsightGenerator) GenerateWeeklyInsights(ctx context.Context, userID int64, week *models.WeekData) (*models.WeeklyInsights, error) {
	f.calls++
	return f.insights, f.err
}

type fakeInsightRepo struct {
	stored map[string]*models.WeeklyInsightRow
}

func newFakeInsightRepo() *fakeInsightRepo {
	return &fakeInsightRepo{stored: map[string]*models.WeeklyInsightRow{}}
}

func (f *fakeInsightRepo) UpsertInsights(ctx context.Context, row *models.WeeklyInsightRow) (*models.WeeklyInsightRow, error) {
	f.stored[row.WeekStart] = row
	return row, nil
}

func (f *fakeInsightRepo) GetInsights(ctx context.Context, userID int64, weekStart string) (*models.WeeklyInsightRow, error) {
	return f.stored[weekStart], nil
}

type fakePracticeRepo struct {
	logs []*models.PracticeLog
}

func (f *fakePracticeRepo) UpsertLog(ctx context.Context, log *models.PracticeLog) (*models.PracticeLog, error) {
	return log, nil
}

func (f *fakePracticeRepo) GetLogByID(ctx context.Context, id string, userID int64) (*models.PracticeLog, error) {
	return nil, nil
}

func (f *fakePracticeRepo) GetLogByDate(ctx context.Context, userID int64, date string) (*models.PracticeLog, error) {
	return nil, nil
}

func (f *fakePracticeRepo) ListLogs(ctx context.Context, userID int64, from, to string, limit int) ([]*models.PracticeLog, error) {
	var out []*models.PracticeLog
	for _, l := range f.logs {
		if l.LoggedAt >= from && l.LoggedAt <= to {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakePracticeRepo) UpdateLog(ctx context.Context, log *models.PracticeLog) (*models.PracticeLog, error) {
	return log, nil
}

func (f *fakePracticeRepo) DeleteLog(ctx context.Context, id string, userID int64) error {
	return nil
}

type fakeUserRepo struct {
	user *models.User
}

func (f *fakeUserRepo) CreateUser(ctx context.Context, user *models.User) error { return nil }

func (f *fakeUserRepo) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	if f.user == nil {
		return nil, fmt.Errorf("not found")
	}
	return f.user, nil
}

func (f *fakeUserRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return f.user, nil
}

func (f *fakeUserRepo) UpdateDailyTarget(ctx context.Context, id int64, minutes int) error {
	return nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id int64) error { return nil }

func day(cat models.Category, date string, minutes int) *models.PracticeLog {
	return &models.PracticeLog{
		ID:           date,
		UserID:       1,
		LoggedAt:     date,
		TotalMinutes: minutes,
		Activities:   models.ActivityList{{Category: cat, Sub: "session", Minutes: minutes}},
	}
}

func newTestInsightService(gen *fakeInsightGenerator, gov *fakeGovernor, practice *fakePracticeRepo, insights *fakeInsightRepo) InsightService {
	var g AIInsightGenerator
	if gen != nil {
		g = gen
	}
	return NewInsightService(g, gov, insights, practice,
		&fakeGoalRepo{}, &fakeUserRepo{user: &models.User{ID: 1, DailyTarget: 30}})
}

func TestWeekBoundaries(t *testing.T) {
	cases := []struct {
		date, monday, sunday string
	}{
		{"2025-03-10", "2025-03-10", "2025-03-16"}, // a Monday
		{"2025-03-12", "2025-03-10", "2025-03-16"}, // mid-week
		{"2025-03-16", "2025-03-10", "2025-03-16"}, // Sunday stays in the same week
		{"2025-03-17", "2025-03-17", "2025-03-23"}, // next Monday
	}
	for _, c := range cases {
		d, err := time.Parse(dateLayout, c.date)
		require.NoError(t, err)
		start, end := weekBoundaries(d)
		assert.Equal(t, c.monday, start, c.date)
		assert.Equal(t, c.sunday, end, c.date)
	}
}

func TestGenerateInsightsZeroMinuteWeekShortCircuits(t *testing.T) {
	gen := &fakeInsightGenerator{insights: &models.WeeklyInsights{Summary: "x"}}
	gov := &fakeGovernor{}
	svc := newTestInsightService(gen, gov, &fakePracticeRepo{}, newFakeInsightRepo())

	row, generated, err := svc.GenerateWeekInsights(context.Background(), 1, "2025-03-12", false)
	require.NoError(t, err)
	assert.Nil(t, row)
	assert.False(t, generated)
	assert.Zero(t, gen.calls, "generator must not run for an empty week")
	assert.Zero(t, gov.calls, "governor must not run for an empty week")
}

func TestGenerateInsightsAIPath(t *testing.T) {
	gen := &fakeInsightGenerator{insights: &models.WeeklyInsights{
		Summary:  "Strong week of technique work.",
		Insights: []models.Insight{{Type: models.InsightProgress, Title: "Scales", Content: "Faster and cleaner."}},
	}}
	practice := &fakePracticeRepo{logs: []*models.PracticeLog{
		day(models.CategoryTechnique, "2025-03-10", 40),
		day(models.CategoryRepertoire, "2025-03-12", 20),
	}}
	repo := newFakeInsightRepo()
	svc := newTestInsightService(gen, &fakeGovernor{}, practice, repo)

	row, generated, err := svc.GenerateWeekInsights(context.Background(), 1, "2025-03-12", false)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.True(t, generated)
	assert.True(t, row.HasAI)
	assert.Equal(t, "2025-03-10", row.WeekStart)
	assert.Equal(t, "Strong week of technique work.", row.Summary)
	assert.Equal(t, 60, row.Metrics["total_minutes"])
	assert.Equal(t, 2, row.Metrics["days_practiced"])
	assert.Equal(t, 1, row.Metrics["days_hit_goal"]) // only the 40-minute day beats the 30-minute target
	assert.NotNil(t, repo.stored["2025-03-10"])
}

func TestGenerateInsightsAIFailureFallsBack(t *testing.T) {
	gen := &fakeInsightGenerator{err: fmt.Errorf("model timeout")}
	practice := &fakePracticeRepo{logs: []*models.PracticeLog{
		day(models.CategoryTechnique, "2025-03-10", 40),
	}}
	svc := newTestInsightService(gen, &fakeGovernor{}, practice, newFakeInsightRepo())

	row, generated, err := svc.GenerateWeekInsights(context.Background(), 1, "2025-03-12", false)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.True(t, generated)
	assert.False(t, row.HasAI)
	assert.NotEmpty(t, row.Summary)
}

func TestGenerateInsightsQuotaPropagates(t *testing.T) {
	gen := &fakeInsightGenerator{}
	gov := &fakeGovernor{err: &usage.QuotaExceededError{Message: "monthly token quota exceeded"}}
	practice := &fakePracticeRepo{logs: []*models.PracticeLog{
		day(models.CategoryTechnique, "2025-03-10", 40),
	}}
	svc := newTestInsightService(gen, gov, practice, newFakeInsightRepo())

	_, _, err := svc.GenerateWeekInsights(context.Background(), 1, "2025-03-12", false)
	var quota *usage.QuotaExceededError
	require.True(t, errors.As(err, &quota))
	assert.Zero(t, gen.calls)
}

func TestGenerateInsightsExistingRowReturnedWithoutForce(t *testing.T) {
	gen := &fakeInsightGenerator{insights: &models.WeeklyInsights{Summary: "new"}}
	repo := newFakeInsightRepo()
	repo.stored["2025-03-10"] = &models.WeeklyInsightRow{WeekStart: "2025-03-10", Summary: "old"}
	practice := &fakePracticeRepo{logs: []*models.PracticeLog{
		day(models.CategoryTechnique, "2025-03-10", 40),
	}}
	svc := newTestInsightService(gen, &fakeGovernor{}, practice, repo)

	row, generated, err := svc.GenerateWeekInsights(context.Background(), 1, "2025-03-12", false)
	require.NoError(t, err)
	assert.False(t, generated)
	assert.Equal(t, "old", row.Summary)
	assert.Zero(t, gen.calls)

	row, generated, err = svc.GenerateWeekInsights(context.Background(), 1, "2025-03-12", true)
	require.NoError(t, err)
	assert.True(t, generated)
	assert.Equal(t, "new", row.Summary)
}

func TestAutoGenerateBackfillsLastCompletedWeek(t *testing.T) {
	lastWeekStart, _ := weekBoundaries(time.Now().AddDate(0, 0, -7))
	gen := &fakeInsightGenerator{insights: &models.WeeklyInsights{Summary: "solid week"}}
	practice := &fakePracticeRepo{logs: []*models.PracticeLog{
		day(models.CategoryTechnique, lastWeekStart, 40),
	}}
	repo := newFakeInsightRepo()
	svc := newTestInsightService(gen, &fakeGovernor{}, practice, repo)

	row, generated, weekStart, err := svc.AutoGenerateWeekInsights(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.True(t, generated)
	assert.Equal(t, lastWeekStart, weekStart)
	assert.Equal(t, lastWeekStart, row.WeekStart)

	row, generated, _, err = svc.AutoGenerateWeekInsights(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.False(t, generated, "second call returns the stored row")
	assert.Equal(t, 1, gen.calls)
}

func TestAutoGenerateEmptyWeekProducesNothing(t *testing.T) {
	gen := &fakeInsightGenerator{insights: &models.WeeklyInsights{Summary: "x"}}
	svc := newTestInsightService(gen, &fakeGovernor{}, &fakePracticeRepo{}, newFakeInsightRepo())

	row, generated, weekStart, err := svc.AutoGenerateWeekInsights(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, row)
	assert.False(t, generated)
	assert.NotEmpty(t, weekStart)
	assert.Zero(t, gen.calls)
}

func TestFallbackInsightsRules(t *testing.T) {
	week := &models.WeekData{
		TotalMinutes:        120,
		DaysPracticed:       4,
		DaysHitGoal:         2,
		DailyTarget:         30,
		PreviousWeekMinutes: 90,
		CategoryMinutes: map[string]int{
			"Technique":  70,
			"Repertoire": 50,
		},
	}

	out := FallbackInsights(week)
	assert.Contains(t, out.Summary, "120 minutes")
	assert.Contains(t, out.Summary, "+30 minutes")

	var titles []string
	for _, in := range out.Insights {
		titles = append(titles, in.Title)
	}
	assert.Contains(t, titles, "Consistent Practice")
	assert.Contains(t, titles, "Focus Area")
	assert.NotEmpty(t, out.Recommendations)
}

func TestFallbackInsightsLowFrequencyWeek(t *testing.T) {
	week := &models.WeekData{
		TotalMinutes:        50,
		DaysPracticed:       2,
		DailyTarget:         30,
		PreviousWeekMinutes: 80,
		CategoryMinutes:     map[string]int{"Ear": 50},
	}

	out := FallbackInsights(week)
	assert.Contains(t, out.Summary, "30 fewer minutes")

	found := false
	for _, r := range out.Recommendations {
		if r == "Try more frequent, shorter sessions - three 15-minute sessions beat one long one." {
			found = true
		}
	}
	assert.True(t, found, "short week should recommend more frequent sessions")

	for _, in := range out.Insights {
		assert.NotEqual(t, "Consistent Practice", in.Title)
	}
}
