package ai

import (
	"fmt"
	"strings"

	"github.com/Archdiner/music-practice-tracker/internal/domain/models"
)

type PromptTemplates struct{}

func NewPromptTemplates() *PromptTemplates {
	return &PromptTemplates{}
}

const parseSystemPrompt = "You are a precise music practice parser. Return only valid JSON, no additional text or formatting."

func (p *PromptTemplates) BuildParseEntryPrompt(rawText string, goal *models.OverarchingGoal) string {
	var b strings.Builder

	b.WriteString(`You are a music practice tracker AI. Parse the following practice session description into structured JSON.

CATEGORIES (use exactly these):
- "Technique": scales, arpeggios, exercises, finger work, bow technique, breathing, embouchure, posture
- "Repertoire": specific pieces, songs, compositions, etudes, studies
- "Improvisation": improvisation, jamming, free play, composition, songwriting
- "Ear": ear training, interval recognition, chord identification, transcription
- "Theory": music theory, harmony, analysis, sight-reading, rhythm studies
- "Recording": recording, mixing, production, audio work

RULES:
1. Extract time durations from text (30min, 1 hour, half hour, etc.)
2. If no time specified, estimate reasonable duration (10-30 minutes)
3. Create clear, standardized descriptions for "sub" field
4. Total minutes should not exceed 240 (4 hours)
5. Each activity should be 1-240 minutes
6. Return 1-10 activities maximum
`)

	if goal != nil {
		fmt.Fprintf(&b, `
USER'S CURRENT GOAL (%s): %s
%s
7. For each activity, set "goal_related" to true if it advances this goal.
`, goal.GoalType, goal.Title, goal.Description)
	}

	fmt.Fprintf(&b, `
INPUT: "%s"

Return ONLY valid JSON in this exact format:
{
  "total_minutes": <number>,
  "activities": [
    {
      "category": "<category>",
      "sub": "<clear description>",
      "minutes": <number>
    }
  ]
}

Examples of good "sub" descriptions:
- "Major scales - C, G, D"
- "Bach Invention No. 1 - hands together"
- "Jazz improvisation over ii-V-I"
- "Interval recognition training"
- "Chord progressions in A minor"
- "Recording demo track"`, rawText)

	return b.String()
}

const insightsSystemPrompt = "You are an encouraging but honest music practice coach. Return only valid JSON."

func (p *PromptTemplates) BuildWeeklyInsightsPrompt(week *models.WeekData) string {
	var b strings.Builder

	b.WriteString("Analyze this week of music practice and produce coaching insights.\n\nWEEK DATA:\n")
	fmt.Fprintf(&b, "- Total practice: %d minutes across %d days\n", week.TotalMinutes, week.DaysPracticed)
	fmt.Fprintf(&b, "- Days hitting the %d-minute daily target: %d\n", week.DailyTarget, week.DaysHitGoal)
	if week.PreviousWeekMinutes > 0 {
		fmt.Fprintf(&b, "- Previous week total: %d minutes\n", week.PreviousWeekMinutes)
	}
	for cat, mins := range week.CategoryMinutes {
		fmt.Fprintf(&b, "- %s: %d minutes\n", cat, mins)
	}
	if week.Goal != nil {
		fmt.Fprintf(&b, "\nCURRENT GOAL (%s): %s\n%s\n", week.Goal.GoalType, week.Goal.Title, week.Goal.Description)
	}

	b.WriteString(`
Respond in JSON format:
{
  "summary": "2-3 sentence summary of the week",
  "insights": [
    {"type": "progress|achievement|concern|recommendation", "title": "short title", "content": "1-2 sentences"}
  ],
  "recommendations": ["actionable suggestion", "..."]
}

Provide 2-4 insights and 1-3 recommendations. Be specific to the numbers above.`)

	return b.String()
}

const tipSystemPrompt = "You are a concise music practice coach. Respond with a single short paragraph of plain text."

func (p *PromptTemplates) BuildDailyTipPrompt(goal *models.OverarchingGoal, recent []*models.PracticeLog) string {
	var b strings.Builder

	fmt.Fprintf(&b, `Give one specific, actionable practice tip for today.

USER'S GOAL (%s, difficulty %d/10): %s
%s
`, goal.GoalType, goal.DifficultyLevel, goal.Title, goal.Description)

	if len(recent) > 0 {
		b.WriteString("\nRECENT PRACTICE:\n")
		for _, log := range recent {
			fmt.Fprintf(&b, "- %s: %d minutes (%s)\n", log.LoggedAt, log.TotalMinutes, log.RawText)
		}
	} else {
		b.WriteString("\nNo practice logged in the last 7 days.\n")
	}

	b.WriteString("\nKeep it under 60 words and tie it to the goal.")

	return b.String()
}
