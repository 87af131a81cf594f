package models

import (
	"time"
)

// AIEndpoint classifies which feature a governed AI call served.
type AIEndpoint string

const (
	EndpointParseEntry     AIEndpoint = "parseEntry"
	EndpointWeeklyInsights AIEndpoint = "weeklyInsights"
	EndpointDailyTip       AIEndpoint = "dailyTip"
)

func (e AIEndpoint) Valid() bool {
	switch e {
	case EndpointParseEntry, EndpointWeeklyInsights, EndpointDailyTip:
		return true
	}
	return false
}

type UsageStatus string

const (
	UsageStatusSuccess UsageStatus = "success"
	UsageStatusFailed  UsageStatus = "failed"
)

// UsageRecord is one governed AI call. Rows are append-only: written after
// every call attempt and read back for every enforcement decision.
type UsageRecord struct {
	ID               string      `json:"id" db:"id"`
	UserID           int64       `json:"user_id" db:"user_id"`
	Endpoint         AIEndpoint  `json:"endpoint" db:"endpoint"`
	Model            string      `json:"model" db:"model"`
	PromptTokens     *int        `json:"prompt_tokens" db:"prompt_tokens"`
	CompletionTokens *int        `json:"completion_tokens" db:"completion_tokens"`
	TotalTokens      *int        `json:"total_tokens" db:"total_tokens"`
	CostUSD          float64     `json:"cost_usd" db:"cost_usd"`
	Status           UsageStatus `json:"status" db:"status"`
	CreatedAt        time.Time   `json:"created_at" db:"created_at"`
}

// UsageLimits is a per-user override of the global default AI limits.
// Absent rows mean the configured defaults apply.
type UsageLimits struct {
	UserID            int64     `json:"user_id" db:"user_id"`
	RequestsPerMinute *int      `json:"requests_per_minute" db:"requests_per_minute"`
	RequestsPerDay    *int      `json:"requests_per_day" db:"requests_per_day"`
	TokensPerMonth    *int      `json:"tokens_per_month" db:"tokens_per_month"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
}

// MonthlyUsage summarizes a user's AI consumption for the current calendar
// month, returned by the usage introspection endpoint.
type MonthlyUsage struct {
	Requests    int     `json:"requests"`
	TotalTokens int     `json:"total_tokens"`
	CostUSD     float64 `json:"cost_usd"`
}
