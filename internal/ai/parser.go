package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Archdiner/music-practice-tracker/internal/domain/models"
	"github.com/Archdiner/music-practice-tracker/internal/parser"
)

// ErrAIParse folds every runtime AI failure (provider error, non-JSON
// output, schema violation) into one error the orchestrator falls back on.
// The wrapped cause stays available for logging.
var ErrAIParse = errors.New("ai parsing failed")

// UsageRecorder receives the token spend of every AI call attempt. It is
// best-effort: implementations swallow their own failures, so calls never
// affect the primary control flow.
type UsageRecorder interface {
	Record(ctx context.Context, userID int64, endpoint models.AIEndpoint, model string, usage *TokenUsage, status models.UsageStatus)
}

// ParseEstimatedTokens is a conservative pre-call estimate used for the
// monthly quota projection before the real token counts are known.
const ParseEstimatedTokens = 900

// EntryParser turns free-text practice descriptions into structured entries
// via the language model. It does not gate itself: governed callers run the
// usage governor's enforce step first.
type EntryParser struct {
	client   ChatClient
	prompts  *PromptTemplates
	recorder UsageRecorder
}

func NewEntryParser(client ChatClient, recorder UsageRecorder) *EntryParser {
	return &EntryParser{
		client:   client,
		prompts:  NewPromptTemplates(),
		recorder: recorder,
	}
}

// Parse prompts the model and validates its output into a ParsedEntry.
// Token usage is recorded whenever the provider answered, even if the
// answer then fails validation: the spend has already happened.
func (p *EntryParser) Parse(ctx context.Context, userID int64, rawText string, goal *models.OverarchingGoal) (*models.ParsedEntry, error) {
	prompt := p.prompts.BuildParseEntryPrompt(rawText, goal)

	res, err := p.client.Complete(ctx, parseSystemPrompt, prompt, 0.1, 500)
	if err != nil {
		p.recorder.Record(ctx, userID, models.EndpointParseEntry, p.client.Model(), nil, models.UsageStatusFailed)
		return nil, fmt.Errorf("%w: %v", ErrAIParse, err)
	}

	entry, err := parser.ValidateEntry([]byte(ExtractJSON(res.Content)))
	if err != nil {
		p.recorder.Record(ctx, userID, models.EndpointParseEntry, p.client.Model(), &res.Usage, models.UsageStatusFailed)
		return nil, fmt.Errorf("%w: %v", ErrAIParse, err)
	}

	entry.RecomputeTotal()
	p.recorder.Record(ctx, userID, models.EndpointParseEntry, p.client.Model(), &res.Usage, models.UsageStatusSuccess)
	return entry, nil
}

// ExtractJSON trims any prose the model wrapped around its JSON object by
// slicing from the first '{' to the last '}'.
func ExtractJSON(response string) string {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start != -1 && end != -1 && end > start {
		return response[start : end+1]
	}
	return response
}
