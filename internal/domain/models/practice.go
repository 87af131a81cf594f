package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type Category string

const (
	CategoryTechnique     Category = "Technique"
	CategoryImprovisation Category = "Improvisation"
	CategoryEar           Category = "Ear"
	CategoryTheory        Category = "Theory"
	CategoryRecording     Category = "Recording"
	CategoryRepertoire    Category = "Repertoire"
)

// Categories lists every valid practice category, in classification order.
var Categories = []Category{
	CategoryTechnique,
	CategoryImprovisation,
	CategoryEar,
	CategoryTheory,
	CategoryRecording,
	CategoryRepertoire,
}

func (c Category) Valid() bool {
	for _, cat := range Categories {
		if c == cat {
			return true
		}
	}
	return false
}

const (
	MinActivityMinutes = 1
	MaxActivityMinutes = 240
	MaxEntryMinutes    = 240
	MinActivities      = 1
	MaxActivities      = 10
	MaxSubLength       = 100
)

// Activity is one categorized, time-bounded unit of practice extracted from
// a free-text submission.
type Activity struct {
	Category    Category `json:"category"`
	Sub         string   `json:"sub"`
	Minutes     int      `json:"minutes"`
	GoalRelated *bool    `json:"goal_related,omitempty"`
}

// ParsedEntry is the structured result of parsing one raw submission.
// TotalMinutes is always recomputed as the clamped sum of activity minutes.
type ParsedEntry struct {
	TotalMinutes int        `json:"total_minutes"`
	Activities   []Activity `json:"activities"`
}

// RecomputeTotal sets TotalMinutes to min(MaxEntryMinutes, sum of activity
// minutes). Individual activity minutes are left untouched.
func (e *ParsedEntry) RecomputeTotal() {
	total := 0
	for _, a := range e.Activities {
		total += a.Minutes
	}
	if total > MaxEntryMinutes {
		total = MaxEntryMinutes
	}
	e.TotalMinutes = total
}

// ParseMethod identifies which path produced a ParsedEntry.
type ParseMethod string

const (
	ParseMethodAI        ParseMethod = "ai"
	ParseMethodHeuristic ParseMethod = "heuristic"
)

type PracticeLog struct {
	ID           string       `json:"id" db:"id"`
	UserID       int64        `json:"user_id" db:"user_id"`
	LoggedAt     string       `json:"logged_at" db:"logged_at"` // YYYY-MM-DD
	RawText      string       `json:"raw_text" db:"raw_text"`
	TotalMinutes int          `json:"total_minutes" db:"total_minutes"`
	Activities   ActivityList `json:"activities" db:"activities"`
	ParseMethod  ParseMethod  `json:"parse_method" db:"parse_method"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" db:"updated_at"`
}

// ActivityList stores activities as a JSONB column.
type ActivityList []Activity

func (l ActivityList) Value() (driver.Value, error) {
	return json.Marshal(l)
}

func (l *ActivityList) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	case nil:
		*l = nil
		return nil
	default:
		return fmt.Errorf("unsupported activities column type %T", src)
	}
}
