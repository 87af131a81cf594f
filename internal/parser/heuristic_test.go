package parser

import (
	"math/rand"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Archdiner/music-practice-tracker/internal/domain/models"
)

func TestParseHeuristicMultipleChunks(t *testing.T) {
	entry := ParseHeuristic("scales 20m; Bach invention 15 min; jam session")

	require.Len(t, entry.Activities, 3)

	require.Equal(t, models.CategoryTechnique, entry.Activities[0].Category)
	require.Equal(t, "scales", entry.Activities[0].Sub)
	require.Equal(t, 20, entry.Activities[0].Minutes)

	require.Equal(t, models.CategoryRepertoire, entry.Activities[1].Category)
	require.Equal(t, "Bach invention", entry.Activities[1].Sub)
	require.Equal(t, 15, entry.Activities[1].Minutes)

	require.Equal(t, models.CategoryImprovisation, entry.Activities[2].Category)
	require.Equal(t, "jam session", entry.Activities[2].Sub)
	require.Equal(t, 10, entry.Activities[2].Minutes, "chunks without a duration default to 10 minutes")

	require.Equal(t, 45, entry.TotalMinutes)
}

func TestParseHeuristicEmptyInput(t *testing.T) {
	for _, raw := range []string{"", "   ", ";;;", " , ; "} {
		entry := ParseHeuristic(raw)
		require.Len(t, entry.Activities, 1, "input %q", raw)
		require.Equal(t, models.CategoryRepertoire, entry.Activities[0].Category)
		require.Equal(t, "General practice", entry.Activities[0].Sub)
		require.Equal(t, 30, entry.Activities[0].Minutes)
		require.Equal(t, 30, entry.TotalMinutes)
	}
}

func TestParseHeuristicClampsTotal(t *testing.T) {
	entry := ParseHeuristic("marathon practice 300m")

	require.Len(t, entry.Activities, 1)
	require.Equal(t, 240, entry.TotalMinutes)
	require.LessOrEqual(t, entry.Activities[0].Minutes, 240)
}

func TestParseHeuristicClampsSummedTotal(t *testing.T) {
	entry := ParseHeuristic("scales 100m; etudes 100m; jam 100m")

	require.Len(t, entry.Activities, 3)
	require.Equal(t, 240, entry.TotalMinutes)
	for _, a := range entry.Activities {
		require.Equal(t, 100, a.Minutes, "per-activity minutes stay as parsed")
	}
}

func TestParseHeuristicClassification(t *testing.T) {
	cases := []struct {
		raw  string
		want models.Category
	}{
		{"arpeggio drills", models.CategoryTechnique},
		{"metronome work", models.CategoryTechnique},
		{"slap bass", models.CategoryTechnique},
		{"songwriting session", models.CategoryImprovisation},
		{"interval training", models.CategoryEar},
		{"transcription of solo", models.CategoryEar},
		{"harmony study", models.CategoryTheory},
		{"sight-reading", models.CategoryTheory},
		{"rhythm exercises", models.CategoryTheory},
		{"mixing the demo", models.CategoryRecording},
		{"audio cleanup", models.CategoryRecording},
		{"Chopin nocturne", models.CategoryRepertoire},
	}

	for _, tc := range cases {
		entry := ParseHeuristic(tc.raw)
		require.Len(t, entry.Activities, 1, "input %q", tc.raw)
		require.Equal(t, tc.want, entry.Activities[0].Category, "input %q", tc.raw)
	}
}

// Classification is first-match-wins over the ordered rule list, so a label
// matching both Technique and Improvisation keywords lands on Technique.
func TestParseHeuristicClassificationOrder(t *testing.T) {
	entry := ParseHeuristic("scale improv 5m")
	require.Equal(t, models.CategoryTechnique, entry.Activities[0].Category)
}

func TestParseHeuristicIdempotent(t *testing.T) {
	raw := "scales 20m; ear training; recording 45 min"
	first := ParseHeuristic(raw)
	second := ParseHeuristic(raw)
	require.Equal(t, first, second)
}

func TestParseHeuristicInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	words := []string{"scales", "jam", "ear", "theory", "recording", "piece", "etude", "warmup"}

	for i := 0; i < 200; i++ {
		var sb strings.Builder
		n := rng.Intn(12) + 1
		for j := 0; j < n; j++ {
			if j > 0 {
				sb.WriteString("; ")
			}
			sb.WriteString(words[rng.Intn(len(words))])
			if rng.Intn(2) == 0 {
				sb.WriteString(" " + strconv.Itoa(rng.Intn(400)+1) + "m")
			}
		}

		entry := ParseHeuristic(sb.String())

		require.GreaterOrEqual(t, len(entry.Activities), 1)
		require.LessOrEqual(t, len(entry.Activities), 10)
		sum := 0
		for _, a := range entry.Activities {
			require.True(t, a.Category.Valid())
			require.GreaterOrEqual(t, a.Minutes, 1)
			require.LessOrEqual(t, a.Minutes, 240)
			require.NotEmpty(t, strings.TrimSpace(a.Sub))
			sum += a.Minutes
		}
		want := sum
		if want > 240 {
			want = 240
		}
		require.Equal(t, want, entry.TotalMinutes)
	}
}
