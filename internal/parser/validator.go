package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Archdiner/music-practice-tracker/internal/domain/models"
)

// ValidationError reports every field constraint a candidate entry violated,
// not just the first one.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "invalid parsed entry: " + strings.Join(e.Violations, "; ")
}

// candidateEntry mirrors the JSON shape requested from the model. Pointer
// fields distinguish missing keys from zero values.
type candidateEntry struct {
	TotalMinutes *int                `json:"total_minutes"`
	Activities   []candidateActivity `json:"activities"`
}

type candidateActivity struct {
	Category    *string `json:"category"`
	Sub         *string `json:"sub"`
	Minutes     *int    `json:"minutes"`
	GoalRelated *bool   `json:"goal_related"`
}

// ValidateEntry decodes and validates untrusted JSON into a ParsedEntry.
// Unknown fields are rejected. The returned entry's TotalMinutes is the
// candidate's own value, bounds-checked only; callers must recompute it as
// the clamped activity sum before trusting it.
func ValidateEntry(data []byte) (*models.ParsedEntry, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var cand candidateEntry
	if err := dec.Decode(&cand); err != nil {
		return nil, &ValidationError{Violations: []string{fmt.Sprintf("malformed entry: %v", err)}}
	}

	var violations []string

	if cand.TotalMinutes == nil {
		violations = append(violations, "total_minutes is required")
	} else if *cand.TotalMinutes < models.MinActivityMinutes || *cand.TotalMinutes > models.MaxEntryMinutes {
		violations = append(violations, fmt.Sprintf("total_minutes %d out of range [%d,%d]",
			*cand.TotalMinutes, models.MinActivityMinutes, models.MaxEntryMinutes))
	}

	if len(cand.Activities) < models.MinActivities || len(cand.Activities) > models.MaxActivities {
		violations = append(violations, fmt.Sprintf("activities length %d out of range [%d,%d]",
			len(cand.Activities), models.MinActivities, models.MaxActivities))
	}

	activities := make([]models.Activity, 0, len(cand.Activities))
	for i, a := range cand.Activities {
		act := models.Activity{GoalRelated: a.GoalRelated}

		switch {
		case a.Category == nil:
			violations = append(violations, fmt.Sprintf("activities[%d].category is required", i))
		case !models.Category(*a.Category).Valid():
			violations = append(violations, fmt.Sprintf("activities[%d].category %q is not a valid category", i, *a.Category))
		default:
			act.Category = models.Category(*a.Category)
		}

		switch {
		case a.Sub == nil:
			violations = append(violations, fmt.Sprintf("activities[%d].sub is required", i))
		case strings.TrimSpace(*a.Sub) == "":
			violations = append(violations, fmt.Sprintf("activities[%d].sub must not be empty", i))
		case len(*a.Sub) > models.MaxSubLength:
			violations = append(violations, fmt.Sprintf("activities[%d].sub exceeds %d characters", i, models.MaxSubLength))
		default:
			act.Sub = strings.TrimSpace(*a.Sub)
		}

		switch {
		case a.Minutes == nil:
			violations = append(violations, fmt.Sprintf("activities[%d].minutes is required", i))
		case *a.Minutes < models.MinActivityMinutes || *a.Minutes > models.MaxActivityMinutes:
			violations = append(violations, fmt.Sprintf("activities[%d].minutes %d out of range [%d,%d]",
				i, *a.Minutes, models.MinActivityMinutes, models.MaxActivityMinutes))
		default:
			act.Minutes = *a.Minutes
		}

		activities = append(activities, act)
	}

	if len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}

	return &models.ParsedEntry{
		TotalMinutes: *cand.TotalMinutes,
		Activities:   activities,
	}, nil
}
