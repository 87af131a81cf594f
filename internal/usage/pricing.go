package usage

import (
	"math"
	"strings"
)

// usdPer1KTokens maps model names to a blended USD rate per 1000 total
// tokens. Unknown models fall back to defaultUSDPer1K so a renamed model
// never makes cost accounting silently zero.
var usdPer1KTokens = map[string]float64{
	"gpt-4o-mini":   0.000375,
	"gpt-4o":        0.0075,
	"gpt-4":         0.045,
	"gpt-4-turbo":   0.02,
	"gpt-3.5-turbo": 0.001,
}

const defaultUSDPer1K = 0.002

const costPrecision = 1e6 // 6 decimal places

// Cost converts a total token count into USD for the given model.
func Cost(model string, totalTokens int) float64 {
	rate, ok := usdPer1KTokens[normalizeModelName(model)]
	if !ok {
		rate = defaultUSDPer1K
	}
	cost := float64(totalTokens) / 1000.0 * rate
	return math.Round(cost*costPrecision) / costPrecision
}

// normalizeModelName strips dated suffixes like "gpt-4o-mini-2024-07-18" so
// versioned deployments still hit the table.
func normalizeModelName(model string) string {
	model = strings.ToLower(strings.TrimSpace(model))
	if _, ok := usdPer1KTokens[model]; ok {
		return model
	}
	// Longest prefix wins so "gpt-4o-mini-..." never matches "gpt-4".
	best := ""
	for name := range usdPer1KTokens {
		if strings.HasPrefix(model, name) && len(name) > len(best) {
			best = name
		}
	}
	if best != "" {
		return best
	}
	return model
}
