package ai_test

import (
	"testing"
	"time"

	"github.com/nikbrunner/bmtidy/internal/ai"
)

func TestUsageTracker_TotalsSince(t *testing.T) {
	tracker := ai.NewUsageTracker(ai.UsageLimits{})
	base := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

	tracker.Record(ai.UsageRecord{Timestamp: base.AddDate(0, 0, -2), InputTokens: 100, OutputTokens: 50, Cost: 0.10})
	tracker.Record(ai.UsageRecord{Timestamp: base, InputTokens: 200, OutputTokens: 100, Cost: 0.20})

	tokens, cost := tracker.Totals(base.AddDate(0, 0, -1))
	if tokens != 300 {
		t.Errorf("tokens = %d, want 300", tokens)
	}
	if cost != 0.20 {
		t.Errorf("cost = %v, want 0.20", cost)
	}

	tokens, cost = tracker.Totals(time.Time{})
	if tokens != 450 || cost != 0.30 {
		t.Errorf("all-time totals = %d tokens, %v cost", tokens, cost)
	}
}

func TestUsageTracker_NoLimitsNeverBlocks(t *testing.T) {
	tracker := ai.NewUsageTracker(ai.UsageLimits{})
	tracker.Record(ai.UsageRecord{Timestamp: time.Now(), InputTokens: 1 << 30, Cost: 1e6})

	if err := tracker.CheckLimits(time.Now()); err != nil {
		t.Fatalf("unconfigured limits must not block: %v", err)
	}
}

func TestUsageTracker_DailyTokenLimit(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	tracker := ai.NewUsageTracker(ai.UsageLimits{DailyTokens: 100})

	// Yesterday's usage does not count toward today
	tracker.Record(ai.UsageRecord{Timestamp: now.AddDate(0, 0, -1), InputTokens: 500})
	if err := tracker.CheckLimits(now); err != nil {
		t.Fatalf("yesterday's usage must not count: %v", err)
	}

	tracker.Record(ai.UsageRecord{Timestamp: now.Add(-time.Hour), InputTokens: 60, OutputTokens: 40})
	if err := tracker.CheckLimits(now); err == nil {
		t.Fatal("expected daily token limit to block")
	}
}

func TestUsageTracker_MonthlyCostLimit(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	tracker := ai.NewUsageTracker(ai.UsageLimits{MonthlyCost: 1.00})

	// Last month's cost does not count
	tracker.Record(ai.UsageRecord{Timestamp: now.AddDate(0, -1, 0), Cost: 5.00})
	if err := tracker.CheckLimits(now); err != nil {
		t.Fatalf("last month's cost must not count: %v", err)
	}

	// Spread across the current month, limits sum
	tracker.Record(ai.UsageRecord{Timestamp: now.AddDate(0, 0, -10), Cost: 0.60})
	tracker.Record(ai.UsageRecord{Timestamp: now.Add(-time.Minute), Cost: 0.40})
	if err := tracker.CheckLimits(now); err == nil {
		t.Fatal("expected monthly cost limit to block")
	}
}

func TestUsageTracker_LimitsIndependent(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	tracker := ai.NewUsageTracker(ai.UsageLimits{DailyTokens: 1000, DailyCost: 0.50})

	// Token budget fine, cost budget blown
	tracker.Record(ai.UsageRecord{Timestamp: now.Add(-time.Hour), InputTokens: 10, Cost: 0.75})
	if err := tracker.CheckLimits(now); err == nil {
		t.Fatal("expected daily cost limit to block independently of tokens")
	}
}
