package usage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/Archdiner/music-practice-tracker/internal/ai"
	"github.com/Archdiner/music-practice-tracker/internal/config"
	"github.com/Archdiner/music-practice-tracker/internal/domain/models"
	"github.com/Archdiner/music-practice-tracker/internal/domain/repositories"
)

// Governor gates every metered AI call. Enforce runs the per-user request
// counts and the monthly token projection against the ai_usage table, then
// the three coarse rate buckets (global, per-user, per-AI-endpoint).
// Record appends the resulting usage row and is fail-open.
type Governor struct {
	repo     repositories.UsageRepository
	defaults config.LimitsConfig

	global      Limiter
	perUser     Limiter
	perEndpoint Limiter

	// now is swappable for tests.
	now func() time.Time
}

func NewGovernor(repo repositories.UsageRepository, defaults config.LimitsConfig, global, perUser, perEndpoint Limiter) *Governor {
	return &Governor{
		repo:        repo,
		defaults:    defaults,
		global:      global,
		perUser:     perUser,
		perEndpoint: perEndpoint,
		now:         time.Now,
	}
}

// Enforce rejects with *RateLimitError or *QuotaExceededError, in the fixed
// order per-minute -> per-day -> monthly tokens -> global bucket -> user
// bucket -> AI-endpoint bucket. estimatedTokens is an optional conservative
// projection added to the month's spend before the real counts exist.
func (g *Governor) Enforce(ctx context.Context, userID int64, endpoint models.AIEndpoint, estimatedTokens int) error {
	perMinute, perDay, perMonth, err := g.effectiveLimits(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to resolve usage limits: %w", err)
	}

	now := g.now()

	minuteCount, err := g.repo.CountRequestsSince(ctx, userID, now.Add(-time.Minute))
	if err != nil {
		return fmt.Errorf("failed to count per-minute usage: %w", err)
	}
	if minuteCount >= perMinute {
		return &RateLimitError{
			Message:    "too many AI requests per minute",
			RetryAfter: time.Minute,
		}
	}

	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayCount, err := g.repo.CountRequestsSince(ctx, userID, midnight)
	if err != nil {
		return fmt.Errorf("failed to count per-day usage: %w", err)
	}
	if dayCount >= perDay {
		return &RateLimitError{
			Message:    "daily AI request limit reached",
			RetryAfter: midnight.AddDate(0, 0, 1).Sub(now),
		}
	}

	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	usedThisMonth, err := g.repo.SumTokensSince(ctx, userID, firstOfMonth)
	if err != nil {
		return fmt.Errorf("failed to sum monthly tokens: %w", err)
	}
	if usedThisMonth+estimatedTokens > perMonth {
		return &QuotaExceededError{Message: "monthly AI token quota reached"}
	}

	return g.consumeBuckets(ctx, userID, endpoint)
}

// consumeBuckets checks the coarse request-rate buckets, global first so
// load is shed before per-user bookkeeping. The first violated bucket
// determines the rejection and its retry-after hint.
func (g *Governor) consumeBuckets(ctx context.Context, userID int64, endpoint models.AIEndpoint) error {
	buckets := []struct {
		limiter Limiter
		key     string
	}{
		{g.global, "global"},
		{g.perUser, fmt.Sprintf("user:%d", userID)},
		{g.perEndpoint, fmt.Sprintf("user:%d:%s", userID, endpoint)},
	}

	for _, b := range buckets {
		if b.limiter == nil {
			continue
		}
		if err := b.limiter.Consume(ctx, b.key); err != nil {
			var exceeded *LimitExceededError
			if errors.As(err, &exceeded) {
				return &RateLimitError{
					Message:    fmt.Sprintf("rate limit exceeded, try again in %ds", int(exceeded.RetryAfter.Seconds())+1),
					RetryAfter: exceeded.RetryAfter,
				}
			}
			return err
		}
	}
	return nil
}

// Record appends one usage row. It never fails the caller: a write error is
// logged and swallowed, because losing one telemetry row must not break a
// response the user already paid tokens for.
func (g *Governor) Record(ctx context.Context, userID int64, endpoint models.AIEndpoint, model string, usage *ai.TokenUsage, status models.UsageStatus) {
	rec := &models.UsageRecord{
		ID:       uuid.NewString(),
		UserID:   userID,
		Endpoint: endpoint,
		Model:    model,
		Status:   status,
	}
	if usage != nil {
		prompt, completion, total := usage.PromptTokens, usage.CompletionTokens, usage.TotalTokens
		if total == 0 {
			total = prompt + completion
		}
		rec.PromptTokens = &prompt
		rec.CompletionTokens = &completion
		rec.TotalTokens = &total
		rec.CostUSD = Cost(model, total)
	}

	if err := g.repo.InsertRecord(ctx, rec); err != nil {
		log.Printf("failed to record AI usage for user %d (%s): %v", userID, endpoint, err)
	}
}

// MonthlyUsage reports the current month's consumption plus the effective
// limits, for the usage introspection endpoint.
func (g *Governor) MonthlyUsage(ctx context.Context, userID int64) (*models.MonthlyUsage, int, error) {
	now := g.now()
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	used, err := g.repo.MonthlyUsage(ctx, userID, firstOfMonth)
	if err != nil {
		return nil, 0, err
	}

	_, _, perMonth, err := g.effectiveLimits(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return used, perMonth, nil
}

func (g *Governor) effectiveLimits(ctx context.Context, userID int64) (perMinute, perDay, perMonth int, err error) {
	perMinute = g.defaults.RequestsPerMinute
	perDay = g.defaults.RequestsPerDay
	perMonth = g.defaults.TokensPerMonth

	overrides, err := g.repo.GetLimits(ctx, userID)
	if err != nil {
		return 0, 0, 0, err
	}
	if overrides == nil {
		return perMinute, perDay, perMonth, nil
	}
	if overrides.RequestsPerMinute != nil {
		perMinute = *overrides.RequestsPerMinute
	}
	if overrides.RequestsPerDay != nil {
		perDay = *overrides.RequestsPerDay
	}
	if overrides.TokensPerMonth != nil {
		perMonth = *overrides.TokensPerMonth
	}
	return perMinute, perDay, perMonth, nil
}
