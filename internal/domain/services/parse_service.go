package services

import (
	"context"
	"errors"
	"log"

	"github.com/Archdiner/music-practice-tracker/internal/ai"
	"github.com/Archdiner/music-practice-tracker/internal/domain/models"
	"github.com/Archdiner/music-practice-tracker/internal/domain/repositories"
	"github.com/Archdiner/music-practice-tracker/internal/parser"
	"github.com/Archdiner/music-practice-tracker/internal/usage"
)

// AIEntryParser is the AI half of the parsing pipeline. *ai.EntryParser
// implements it; tests substitute fakes.
type AIEntryParser interface {
	Parse(ctx context.Context, userID int64, rawText string, goal *models.OverarchingGoal) (*models.ParsedEntry, error)
}

// UsageGovernor gates metered AI calls. *usage.Governor implements it.
type UsageGovernor interface {
	Enforce(ctx context.Context, userID int64, endpoint models.AIEndpoint, estimatedTokens int) error
}

// ParseResult carries the structured entry plus which path produced it, so
// callers and tests can tell an AI parse from a heuristic fallback.
type ParseResult struct {
	Entry  *models.ParsedEntry `json:"entry"`
	Method models.ParseMethod  `json:"method"`
}

// ParseService chooses between the AI and heuristic parsing paths.
//
// The only error it ever returns is a governor rejection (*RateLimitError
// or *QuotaExceededError) while useAI is set: that is a cost-control
// decision the user must see, not a parsing defect to paper over. Every
// other AI failure falls back to the heuristic, which cannot fail.
type ParseService interface {
	Parse(ctx context.Context, userID int64, rawText string, useAI bool) (*ParseResult, error)
	AIAvailable() bool
}

type parseService struct {
	aiParser AIEntryParser
	governor UsageGovernor
	goalRepo repositories.GoalRepository
}

// NewParseService builds the orchestrator. aiParser may be nil when no
// provider credential is configured; the service then always takes the
// heuristic path.
func NewParseService(aiParser AIEntryParser, governor UsageGovernor, goalRepo repositories.GoalRepository) ParseService {
	return &parseService{
		aiParser: aiParser,
		governor: governor,
		goalRepo: goalRepo,
	}
}

func (s *parseService) AIAvailable() bool {
	return s.aiParser != nil
}

func (s *parseService) Parse(ctx context.Context, userID int64, rawText string, useAI bool) (*ParseResult, error) {
	if !useAI || s.aiParser == nil {
		return heuristicResult(rawText), nil
	}

	if err := s.governor.Enforce(ctx, userID, models.EndpointParseEntry, ai.ParseEstimatedTokens); err != nil {
		var rl *usage.RateLimitError
		var quota *usage.QuotaExceededError
		if errors.As(err, &rl) || errors.As(err, &quota) {
			return nil, err
		}
		// Governance bookkeeping being unavailable is not the user's
		// problem: degrade to the ungoverned heuristic path.
		log.Printf("usage enforcement unavailable for user %d, using heuristic parse: %v", userID, err)
		return heuristicResult(rawText), nil
	}

	goal, err := s.goalRepo.GetActiveGoal(ctx, userID)
	if err != nil {
		log.Printf("failed to load goal context for user %d: %v", userID, err)
		goal = nil
	}

	entry, err := s.aiParser.Parse(ctx, userID, rawText, goal)
	if err != nil {
		log.Printf("AI parse failed for user %d, falling back to heuristic: %v", userID, err)
		return heuristicResult(rawText), nil
	}

	return &ParseResult{Entry: entry, Method: models.ParseMethodAI}, nil
}

func heuristicResult(rawText string) *ParseResult {
	return &ParseResult{
		Entry:  parser.ParseHeuristic(rawText),
		Method: models.ParseMethodHeuristic,
	}
}
