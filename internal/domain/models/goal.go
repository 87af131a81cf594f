package models

import (
	"time"
)

type GoalType string

const (
	GoalTypePiece       GoalType = "piece"
	GoalTypeExam        GoalType = "exam"
	GoalTypeTechnique   GoalType = "technique"
	GoalTypePerformance GoalType = "performance"
	GoalTypeGeneral     GoalType = "general"
)

func (t GoalType) Valid() bool {
	switch t {
	case GoalTypePiece, GoalTypeExam, GoalTypeTechnique, GoalTypePerformance, GoalTypeGeneral:
		return true
	}
	return false
}

type GoalStatus string

const (
	GoalStatusActive    GoalStatus = "active"
	GoalStatusCompleted GoalStatus = "completed"
	GoalStatusPaused    GoalStatus = "paused"
)

// OverarchingGoal is the user's current big-picture musical goal. At most
// one goal per user is active at a time; the active goal is injected as
// context into AI parsing and insight generation.
type OverarchingGoal struct {
	ID              string     `json:"id" db:"id"`
	UserID          int64      `json:"user_id" db:"user_id"`
	Title           string     `json:"title" db:"title"`
	Description     string     `json:"description" db:"description"`
	GoalType        GoalType   `json:"goal_type" db:"goal_type"`
	DifficultyLevel int        `json:"difficulty_level" db:"difficulty_level"`
	TargetDate      *string    `json:"target_date,omitempty" db:"target_date"`
	Status          GoalStatus `json:"status" db:"status"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// MaxPracticeGoalLength bounds a practice goal's text.
const MaxPracticeGoalLength = 100

// PracticeGoal is a short-term checklist item, distinct from the single
// overarching goal. A user keeps any number of them and ticks them off.
type PracticeGoal struct {
	ID        string    `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	Text      string    `json:"text" db:"text"`
	Completed bool      `json:"completed" db:"completed"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
