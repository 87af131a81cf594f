package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Archdiner/music-practice-tracker/internal/domain/models"
)

// stubParseService returns a canned result regardless of input.
type stubParseService struct {
	result *ParseResult
	err    error
}

func (s *stubParseService) Parse(ctx context.Context, userID int64, rawText string, useAI bool) (*ParseResult, error) {
	return s.result, s.err
}

func (s *stubParseService) AIAvailable() bool { return s.result != nil }

// recordingPracticeRepo keeps entries by date so merge behavior is visible.
type recordingPracticeRepo struct {
	fakePracticeRepo
	byDate  map[string]*models.PracticeLog
	deleted []string
}

func newRecordingPracticeRepo() *recordingPracticeRepo {
	return &recordingPracticeRepo{byDate: map[string]*models.PracticeLog{}}
}

func (r *recordingPracticeRepo) GetLogByDate(ctx context.Context, userID int64, date string) (*models.PracticeLog, error) {
	return r.byDate[date], nil
}

func (r *recordingPracticeRepo) GetLogByID(ctx context.Context, id string, userID int64) (*models.PracticeLog, error) {
	for _, l := range r.byDate {
		if l.ID == id {
			return l, nil
		}
	}
	return nil, nil
}

func (r *recordingPracticeRepo) ListLogs(ctx context.Context, userID int64, from, to string, limit int) ([]*models.PracticeLog, error) {
	var out []*models.PracticeLog
	for date, l := range r.byDate {
		if date >= from && date <= to {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *recordingPracticeRepo) UpsertLog(ctx context.Context, log *models.PracticeLog) (*models.PracticeLog, error) {
	r.byDate[log.LoggedAt] = log
	return log, nil
}

func (r *recordingPracticeRepo) UpdateLog(ctx context.Context, log *models.PracticeLog) (*models.PracticeLog, error) {
	r.byDate[log.LoggedAt] = log
	return log, nil
}

func (r *recordingPracticeRepo) DeleteLog(ctx context.Context, id string, userID int64) error {
	for date, l := range r.byDate {
		if l.ID == id {
			delete(r.byDate, date)
			r.deleted = append(r.deleted, id)
		}
	}
	return nil
}

func heuristicStub(activities ...models.Activity) *stubParseService {
	entry := &models.ParsedEntry{Activities: activities}
	entry.RecomputeTotal()
	return &stubParseService{result: &ParseResult{Entry: entry, Method: models.ParseMethodHeuristic}}
}

func TestLogPracticeCreatesEntry(t *testing.T) {
	repo := newRecordingPracticeRepo()
	svc := NewPracticeService(repo, &fakeUserRepo{}, heuristicStub(
		models.Activity{Category: models.CategoryTechnique, Sub: "scales", Minutes: 20},
	))

	entry, method, err := svc.LogPractice(context.Background(), 1, "scales 20m", "2025-03-10", false)
	require.NoError(t, err)
	assert.Equal(t, models.ParseMethodHeuristic, method)
	assert.Equal(t, "2025-03-10", entry.LoggedAt)
	assert.Equal(t, 20, entry.TotalMinutes)
	require.Len(t, entry.Activities, 1)
	assert.NotEmpty(t, entry.ID)
}

func TestLogPracticeMergesSameDate(t *testing.T) {
	repo := newRecordingPracticeRepo()
	svc := NewPracticeService(repo, &fakeUserRepo{}, heuristicStub(
		models.Activity{Category: models.CategoryTechnique, Sub: "scales", Minutes: 20},
	))

	first, _, err := svc.LogPractice(context.Background(), 1, "scales 20m", "2025-03-10", false)
	require.NoError(t, err)

	second, _, err := svc.LogPractice(context.Background(), 1, "scales 20m", "2025-03-10", false)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "same date merges into the existing row")
	assert.Len(t, second.Activities, 2)
	assert.Equal(t, 40, second.TotalMinutes)
	assert.Contains(t, second.RawText, "\n")
}

func TestLogPracticeMergedTotalClamped(t *testing.T) {
	repo := newRecordingPracticeRepo()
	svc := NewPracticeService(repo, &fakeUserRepo{}, heuristicStub(
		models.Activity{Category: models.CategoryRepertoire, Sub: "set practice", Minutes: 200},
	))

	_, _, err := svc.LogPractice(context.Background(), 1, "set practice 200m", "2025-03-10", false)
	require.NoError(t, err)
	entry, _, err := svc.LogPractice(context.Background(), 1, "set practice 200m", "2025-03-10", false)
	require.NoError(t, err)

	assert.Equal(t, models.MaxEntryMinutes, entry.TotalMinutes)
	assert.Equal(t, 200, entry.Activities[0].Minutes, "per-activity minutes survive the total clamp")
}

func TestLogPracticeRejectsBlankAndBadDate(t *testing.T) {
	svc := NewPracticeService(newRecordingPracticeRepo(), &fakeUserRepo{}, heuristicStub())

	_, _, err := svc.LogPractice(context.Background(), 1, "   ", "", false)
	assert.Error(t, err)

	_, _, err = svc.LogPractice(context.Background(), 1, "scales", "March 10", false)
	assert.Error(t, err)
}

func TestDeleteActivityRemovesOneAndRecomputes(t *testing.T) {
	repo := newRecordingPracticeRepo()
	repo.byDate["2025-03-10"] = &models.PracticeLog{
		ID:       "e1",
		UserID:   1,
		LoggedAt: "2025-03-10",
		Activities: models.ActivityList{
			{Category: models.CategoryTechnique, Sub: "scales", Minutes: 20},
			{Category: models.CategoryRepertoire, Sub: "Bach", Minutes: 15},
		},
		TotalMinutes: 35,
	}
	svc := NewPracticeService(repo, &fakeUserRepo{}, heuristicStub())

	entry, err := svc.DeleteActivity(context.Background(), 1, "e1", 0)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Len(t, entry.Activities, 1)
	assert.Equal(t, "Bach", entry.Activities[0].Sub)
	assert.Equal(t, 15, entry.TotalMinutes)

	_, err = svc.DeleteActivity(context.Background(), 1, "e1", 5)
	assert.Error(t, err, "out of range index")
}

func TestDeleteLastActivityDeletesEntry(t *testing.T) {
	repo := newRecordingPracticeRepo()
	repo.byDate["2025-03-10"] = &models.PracticeLog{
		ID:       "e1",
		UserID:   1,
		LoggedAt: "2025-03-10",
		Activities: models.ActivityList{
			{Category: models.CategoryTechnique, Sub: "scales", Minutes: 20},
		},
		TotalMinutes: 20,
	}
	svc := NewPracticeService(repo, &fakeUserRepo{}, heuristicStub())

	entry, err := svc.DeleteActivity(context.Background(), 1, "e1", 0)
	require.NoError(t, err)
	assert.Nil(t, entry)
	assert.Equal(t, []string{"e1"}, repo.deleted)
	assert.Empty(t, repo.byDate)
}

func TestGetHeatmapMapsDatesToMinutes(t *testing.T) {
	repo := newRecordingPracticeRepo()
	today := time.Now().Format(dateLayout)
	lastMonth := time.Now().AddDate(0, -1, 0).Format(dateLayout)
	repo.byDate[today] = &models.PracticeLog{
		ID: "e1", UserID: 1, LoggedAt: today, TotalMinutes: 45,
	}
	repo.byDate[lastMonth] = &models.PracticeLog{
		ID: "e2", UserID: 1, LoggedAt: lastMonth, TotalMinutes: 25,
	}
	svc := NewPracticeService(repo, &fakeUserRepo{}, heuristicStub())

	heatmap, err := svc.GetHeatmap(context.Background(), 1, "")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{today: 45, lastMonth: 25}, heatmap)

	heatmap, err = svc.GetHeatmap(context.Background(), 1, today)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{today: 45}, heatmap, "from bound excludes earlier entries")

	_, err = svc.GetHeatmap(context.Background(), 1, "last year")
	assert.Error(t, err)
}

func TestGetStatsAggregatesWindow(t *testing.T) {
	repo := newRecordingPracticeRepo()
	today := time.Now().Format(dateLayout)
	yesterday := time.Now().AddDate(0, 0, -1).Format(dateLayout)
	repo.byDate[today] = &models.PracticeLog{
		ID: "e1", UserID: 1, LoggedAt: today, TotalMinutes: 40,
		Activities: models.ActivityList{{Category: models.CategoryTechnique, Sub: "scales", Minutes: 40}},
	}
	repo.byDate[yesterday] = &models.PracticeLog{
		ID: "e2", UserID: 1, LoggedAt: yesterday, TotalMinutes: 10,
		Activities: models.ActivityList{{Category: models.CategoryEar, Sub: "intervals", Minutes: 10}},
	}
	svc := NewPracticeService(repo, &fakeUserRepo{user: &models.User{ID: 1, DailyTarget: 30}}, heuristicStub())

	stats, err := svc.GetStats(context.Background(), 1, 30)
	require.NoError(t, err)
	assert.Equal(t, 50, stats.TotalMinutes)
	assert.Equal(t, 2, stats.DaysPracticed)
	assert.Equal(t, 1, stats.DaysHitGoal)
	assert.Equal(t, 2, stats.CurrentStreak)
	assert.Equal(t, 40, stats.CategoryMinutes["Technique"])
	assert.Equal(t, 10, stats.CategoryMinutes["Ear"])
}
