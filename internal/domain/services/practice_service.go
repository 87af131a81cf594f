package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Archdiner/music-practice-tracker/internal/domain/models"
	"github.com/Archdiner/music-practice-tracker/internal/domain/repositories"
)

type PracticeService interface {
	// LogPractice parses raw text and merges the result into the entry
	// for date (today when empty). Re-logging on the same date appends
	// activities rather than replacing them.
	LogPractice(ctx context.Context, userID int64, rawText, date string, useAI bool) (*models.PracticeLog, models.ParseMethod, error)

	GetEntry(ctx context.Context, userID int64, id string) (*models.PracticeLog, error)
	GetEntryByDate(ctx context.Context, userID int64, date string) (*models.PracticeLog, error)
	ListEntries(ctx context.Context, userID int64, from, to string, limit int) ([]*models.PracticeLog, error)

	// ReplaceEntry re-parses raw text and overwrites the entry's
	// activities entirely. Returns (nil, "", nil) when no entry
	// matches id.
	ReplaceEntry(ctx context.Context, userID int64, id, rawText string, useAI bool) (*models.PracticeLog, models.ParseMethod, error)

	// DeleteActivity removes one activity by index; deleting the last
	// activity deletes the whole entry and returns (nil, nil).
	DeleteActivity(ctx context.Context, userID int64, id string, index int) (*models.PracticeLog, error)

	GetStats(ctx context.Context, userID int64, days int) (*PracticeStats, error)

	// GetHeatmap returns total minutes practiced per date since from
	// (defaults to one year ago), keyed by ISO date.
	GetHeatmap(ctx context.Context, userID int64, from string) (map[string]int, error)
}

// PracticeStats is the aggregate view over a trailing window of entries.
type PracticeStats struct {
	Days            int            `json:"days"`
	TotalMinutes    int            `json:"total_minutes"`
	DaysPracticed   int            `json:"days_practiced"`
	DaysHitGoal     int            `json:"days_hit_goal"`
	DailyTarget     int            `json:"daily_target"`
	CurrentStreak   int            `json:"current_streak"`
	CategoryMinutes map[string]int `json:"category_minutes"`
}

type practiceService struct {
	practiceRepo repositories.PracticeLogRepository
	userRepo     repositories.UserRepository
	parseService ParseService
}

func NewPracticeService(practiceRepo repositories.PracticeLogRepository, userRepo repositories.UserRepository, parseService ParseService) PracticeService {
	return &practiceService{
		practiceRepo: practiceRepo,
		userRepo:     userRepo,
		parseService: parseService,
	}
}

func (s *practiceService) LogPractice(ctx context.Context, userID int64, rawText, date string, useAI bool) (*models.PracticeLog, models.ParseMethod, error) {
	if strings.TrimSpace(rawText) == "" {
		return nil, "", fmt.Errorf("practice text is required")
	}
	if date == "" {
		date = time.Now().Format(dateLayout)
	} else if _, err := time.Parse(dateLayout, date); err != nil {
		return nil, "", fmt.Errorf("invalid date %q: %w", date, err)
	}

	result, err := s.parseService.Parse(ctx, userID, rawText, useAI)
	if err != nil {
		return nil, "", err
	}

	existing, err := s.practiceRepo.GetLogByDate(ctx, userID, date)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load entry for %s: %w", date, err)
	}

	entry := &models.PracticeLog{
		ID:          uuid.NewString(),
		UserID:      userID,
		LoggedAt:    date,
		RawText:     rawText,
		Activities:  models.ActivityList(result.Entry.Activities),
		ParseMethod: result.Method,
	}
	if existing != nil {
		entry.ID = existing.ID
		entry.RawText = existing.RawText + "\n" + rawText
		entry.Activities = append(existing.Activities, result.Entry.Activities...)
		if len(entry.Activities) > models.MaxActivities {
			entry.Activities = entry.Activities[:models.MaxActivities]
		}
	}
	entry.TotalMinutes = clampedTotal(entry.Activities)

	saved, err := s.practiceRepo.UpsertLog(ctx, entry)
	if err != nil {
		return nil, "", fmt.Errorf("failed to save entry: %w", err)
	}
	return saved, result.Method, nil
}

func (s *practiceService) GetEntry(ctx context.Context, userID int64, id string) (*models.PracticeLog, error) {
	return s.practiceRepo.GetLogByID(ctx, id, userID)
}

func (s *practiceService) GetEntryByDate(ctx context.Context, userID int64, date string) (*models.PracticeLog, error) {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return s.practiceRepo.GetLogByDate(ctx, userID, date)
}

func (s *practiceService) ListEntries(ctx context.Context, userID int64, from, to string, limit int) ([]*models.PracticeLog, error) {
	if limit <= 0 || limit > 100 {
		limit = 30
	}
	if to == "" {
		to = time.Now().Format(dateLayout)
	}
	if from == "" {
		from = time.Now().AddDate(0, 0, -30).Format(dateLayout)
	}
	return s.practiceRepo.ListLogs(ctx, userID, from, to, limit)
}

func (s *practiceService) ReplaceEntry(ctx context.Context, userID int64, id, rawText string, useAI bool) (*models.PracticeLog, models.ParseMethod, error) {
	if strings.TrimSpace(rawText) == "" {
		return nil, "", fmt.Errorf("practice text is required")
	}

	entry, err := s.practiceRepo.GetLogByID(ctx, id, userID)
	if err != nil {
		return nil, "", err
	}
	if entry == nil {
		return nil, "", nil
	}

	result, err := s.parseService.Parse(ctx, userID, rawText, useAI)
	if err != nil {
		return nil, "", err
	}

	entry.RawText = rawText
	entry.Activities = models.ActivityList(result.Entry.Activities)
	entry.TotalMinutes = result.Entry.TotalMinutes
	entry.ParseMethod = result.Method

	saved, err := s.practiceRepo.UpdateLog(ctx, entry)
	if err != nil {
		return nil, "", fmt.Errorf("failed to update entry: %w", err)
	}
	return saved, result.Method, nil
}

func (s *practiceService) DeleteActivity(ctx context.Context, userID int64, id string, index int) (*models.PracticeLog, error) {
	entry, err := s.practiceRepo.GetLogByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, fmt.Errorf("entry not found")
	}
	if index < 0 || index >= len(entry.Activities) {
		return nil, fmt.Errorf("activity index %d out of range", index)
	}

	entry.Activities = append(entry.Activities[:index], entry.Activities[index+1:]...)
	if len(entry.Activities) == 0 {
		if err := s.practiceRepo.DeleteLog(ctx, id, userID); err != nil {
			return nil, fmt.Errorf("failed to delete entry: %w", err)
		}
		return nil, nil
	}

	entry.TotalMinutes = clampedTotal(entry.Activities)
	return s.practiceRepo.UpdateLog(ctx, entry)
}

func (s *practiceService) GetStats(ctx context.Context, userID int64, days int) (*PracticeStats, error) {
	if days <= 0 || days > 365 {
		days = 30
	}
	now := time.Now()
	from := now.AddDate(0, 0, -(days - 1)).Format(dateLayout)
	to := now.Format(dateLayout)

	logs, err := s.practiceRepo.ListLogs(ctx, userID, from, to, days)
	if err != nil {
		return nil, fmt.Errorf("failed to load entries: %w", err)
	}

	dailyTarget := defaultDailyTarget
	if user, err := s.userRepo.GetUserByID(ctx, userID); err == nil {
		dailyTarget = user.DailyTarget
	}

	stats := &PracticeStats{
		Days:            days,
		DailyTarget:     dailyTarget,
		CategoryMinutes: map[string]int{},
	}

	byDate := map[string]int{}
	for _, l := range logs {
		stats.TotalMinutes += l.TotalMinutes
		byDate[l.LoggedAt] += l.TotalMinutes
		for _, a := range l.Activities {
			stats.CategoryMinutes[string(a.Category)] += a.Minutes
		}
	}
	stats.DaysPracticed = len(byDate)
	for _, mins := range byDate {
		if mins >= dailyTarget {
			stats.DaysHitGoal++
		}
	}
	stats.CurrentStreak = currentStreak(byDate, now)

	return stats, nil
}

func (s *practiceService) GetHeatmap(ctx context.Context, userID int64, from string) (map[string]int, error) {
	now := time.Now()
	if from == "" {
		from = now.AddDate(-1, 0, 0).Format(dateLayout)
	} else if _, err := time.Parse(dateLayout, from); err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", from, err)
	}

	logs, err := s.practiceRepo.ListLogs(ctx, userID, from, now.Format(dateLayout), 366)
	if err != nil {
		return nil, fmt.Errorf("failed to load entries: %w", err)
	}

	heatmap := map[string]int{}
	for _, l := range logs {
		heatmap[l.LoggedAt] += l.TotalMinutes
	}
	return heatmap, nil
}

// currentStreak counts consecutive days with any practice, ending today or
// yesterday (a streak is not broken until a full day is missed).
func currentStreak(byDate map[string]int, now time.Time) int {
	day := now
	if byDate[day.Format(dateLayout)] == 0 {
		day = day.AddDate(0, 0, -1)
	}
	streak := 0
	for byDate[day.Format(dateLayout)] > 0 {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

func clampedTotal(activities []models.Activity) int {
	total := 0
	for _, a := range activities {
		total += a.Minutes
	}
	if total > models.MaxEntryMinutes {
		total = models.MaxEntryMinutes
	}
	return total
}
