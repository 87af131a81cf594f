package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Archdiner/music-practice-tracker/internal/domain/models"
)

const (
	defaultChunkMinutes = 10
	fallbackMinutes     = 30
	fallbackSub         = "General practice"
	fallbackCategory    = models.CategoryRepertoire
)

var (
	chunkSplitRe = regexp.MustCompile(`[;,]+`)
	durationRe   = regexp.MustCompile(`(?i)(\d+)\s*(min|m)`)
)

// categoryRule pairs a category with the keyword pattern that selects it.
// Order matters: the first matching rule wins, and anything unmatched is
// Repertoire.
type categoryRule struct {
	category models.Category
	pattern  *regexp.Regexp
}

var categoryRules = []categoryRule{
	{models.CategoryTechnique, regexp.MustCompile(`(?i)(scale|arpeggio|technique|finger|bow|breathing|metronome|slap)`)},
	{models.CategoryImprovisation, regexp.MustCompile(`(?i)(improv|jam|composition|songwriting)`)},
	{models.CategoryEar, regexp.MustCompile(`(?i)(ear|interval|transcription|chord identification)`)},
	{models.CategoryTheory, regexp.MustCompile(`(?i)(theory|mode|harmony|sight.reading|rhythm)`)},
	{models.CategoryRecording, regexp.MustCompile(`(?i)(record|mix|production|audio)`)},
}

// ParseHeuristic turns a raw practice description into a ParsedEntry using
// keyword matching only. It is a pure function with no failure path: empty
// or unparseable input yields a single generic Repertoire activity.
func ParseHeuristic(raw string) *models.ParsedEntry {
	chunks := splitChunks(raw)
	if len(chunks) == 0 {
		return &models.ParsedEntry{
			TotalMinutes: fallbackMinutes,
			Activities: []models.Activity{
				{Category: fallbackCategory, Sub: fallbackSub, Minutes: fallbackMinutes},
			},
		}
	}

	if len(chunks) > models.MaxActivities {
		chunks = chunks[:models.MaxActivities]
	}

	activities := make([]models.Activity, 0, len(chunks))
	for _, chunk := range chunks {
		minutes := defaultChunkMinutes
		if m := durationRe.FindStringSubmatch(chunk); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
				minutes = n
			}
		}
		if minutes > models.MaxActivityMinutes {
			minutes = models.MaxActivityMinutes
		}

		sub := strings.TrimSpace(durationRe.ReplaceAllString(chunk, ""))
		if sub == "" {
			sub = fallbackSub
		}

		activities = append(activities, models.Activity{
			Category: classify(sub),
			Sub:      sub,
			Minutes:  minutes,
		})
	}

	entry := &models.ParsedEntry{Activities: activities}
	entry.RecomputeTotal()
	return entry
}

func splitChunks(raw string) []string {
	parts := chunkSplitRe.Split(raw, -1)
	chunks := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			chunks = append(chunks, p)
		}
	}
	return chunks
}

func classify(sub string) models.Category {
	for _, rule := range categoryRules {
		if rule.pattern.MatchString(sub) {
			return rule.category
		}
	}
	return models.CategoryRepertoire
}
