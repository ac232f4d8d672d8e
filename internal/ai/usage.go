package ai

import (
	"fmt"
	"time"
)

// UsageRecord is per-call token and cost accounting.
type UsageRecord struct {
	Timestamp    time.Time `json:"timestamp"`
	Model        string    `json:"model"`
	InputTokens  int       `json:"inputTokens"`
	OutputTokens int       `json:"outputTokens"`
	Cost         float64   `json:"cost"`
}

// UsageLimits holds optional ceilings on tokens and cost.
// A zero value means unlimited; each ceiling is enforced independently.
type UsageLimits struct {
	DailyTokens   int     `json:"dailyTokens"`
	MonthlyTokens int     `json:"monthlyTokens"`
	DailyCost     float64 `json:"dailyCost"`
	MonthlyCost   float64 `json:"monthlyCost"`
}

// UsageTracker accumulates usage records and enforces limits.
type UsageTracker struct {
	limits  UsageLimits
	records []UsageRecord
}

// NewUsageTracker creates a tracker with the given limits.
func NewUsageTracker(limits UsageLimits) *UsageTracker {
	return &UsageTracker{limits: limits}
}

// Record appends a usage record.
func (t *UsageTracker) Record(r UsageRecord) {
	t.records = append(t.records, r)
}

// Records returns all recorded usage.
func (t *UsageTracker) Records() []UsageRecord {
	return t.records
}

// Totals sums tokens and cost for records at or after since.
func (t *UsageTracker) Totals(since time.Time) (int, float64) {
	tokens := 0
	cost := 0.0
	for _, r := range t.records {
		if r.Timestamp.Before(since) {
			continue
		}
		tokens += r.InputTokens + r.OutputTokens
		cost += r.Cost
	}
	return tokens, cost
}

// CheckLimits returns an error if any configured ceiling is already
// reached at the given time.
func (t *UsageTracker) CheckLimits(now time.Time) error {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	dayTokens, dayCost := t.Totals(dayStart)
	monthTokens, monthCost := t.Totals(monthStart)

	if t.limits.DailyTokens > 0 && dayTokens >= t.limits.DailyTokens {
		return fmt.Errorf("daily token limit reached (%d/%d)", dayTokens, t.limits.DailyTokens)
	}
	if t.limits.MonthlyTokens > 0 && monthTokens >= t.limits.MonthlyTokens {
		return fmt.Errorf("monthly token limit reached (%d/%d)", monthTokens, t.limits.MonthlyTokens)
	}
	if t.limits.DailyCost > 0 && dayCost >= t.limits.DailyCost {
		return fmt.Errorf("daily cost limit reached ($%.4f/$%.2f)", dayCost, t.limits.DailyCost)
	}
	if t.limits.MonthlyCost > 0 && monthCost >= t.limits.MonthlyCost {
		return fmt.Errorf("monthly cost limit reached ($%.4f/$%.2f)", monthCost, t.limits.MonthlyCost)
	}
	return nil
}
