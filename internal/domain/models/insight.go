package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type InsightType string

const (
	InsightProgress       InsightType = "progress"
	InsightAchievement    InsightType = "achievement"
	InsightConcern        InsightType = "concern"
	InsightRecommendation InsightType = "recommendation"
)

// Insight is one categorized observation inside a weekly summary.
type Insight struct {
	Type    InsightType `json:"type"`
	Title   string      `json:"title"`
	Content string      `json:"content"`
}

// WeeklyInsights is the generated output for one week of practice.
type WeeklyInsights struct {
	Summary         string    `json:"summary"`
	Insights        []Insight `json:"insights"`
	Recommendations []string  `json:"recommendations"`
}

// WeekData is the externally aggregated practice data an insight generator
// works from. CategoryMinutes keys are Category values.
type WeekData struct {
	TotalMinutes        int              `json:"total_minutes"`
	DaysPracticed       int              `json:"days_practiced"`
	DaysHitGoal         int              `json:"days_hit_goal"`
	DailyTarget         int              `json:"daily_target"`
	PreviousWeekMinutes int              `json:"previous_week_minutes"`
	CategoryMinutes     map[string]int   `json:"category_minutes"`
	Goal                *OverarchingGoal `json:"goal,omitempty"`
}

// WeeklyInsightRow is the persisted form, one row per (user, week_start).
type WeeklyInsightRow struct {
	ID        string      `json:"id" db:"id"`
	UserID    int64       `json:"user_id" db:"user_id"`
	WeekStart string      `json:"week_start" db:"week_start"` // Monday, YYYY-MM-DD
	Summary   string      `json:"summary" db:"summary"`
	Insights  InsightList `json:"insights" db:"insights"`
	Metrics   MetricsMap  `json:"metrics" db:"metrics"`
	HasAI     bool        `json:"has_ai" db:"has_ai"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt time.Time   `json:"updated_at" db:"updated_at"`
}

type InsightList []Insight

func (l InsightList) Value() (driver.Value, error) {
	return json.Marshal(l)
}

func (l *InsightList) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	case nil:
		*l = nil
		return nil
	default:
		return fmt.Errorf("unsupported insights column type %T", src)
	}
}

// MetricsMap stores the week aggregate alongside the generated insights so
// the UI can render numbers without re-aggregating.
type MetricsMap map[string]interface{}

func (m MetricsMap) Value() (driver.Value, error) {
	return json.Marshal(m)
}

func (m *MetricsMap) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	case nil:
		*m = nil
		return nil
	default:
		return fmt.Errorf("unsupported metrics column type %T", src)
	}
}
