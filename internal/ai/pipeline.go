package ai

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	defaultMinInterval = 100 * time.Millisecond
	defaultMaxRetries  = 3
	defaultBaseBackoff = time.Second
)

// PipelineOptions tunes the resilient invocation pipeline.
// Zero values fall back to defaults.
type PipelineOptions struct {
	MinInterval    time.Duration // minimum spacing between outbound calls
	MaxRetries     int           // additional attempts after the first
	BaseBackoff    time.Duration // first retry delay, doubled per attempt
	CostPerMTokIn  float64       // dollars per million input tokens
	CostPerMTokOut float64       // dollars per million output tokens
}

// Pipeline wraps a Provider with usage-limit checks, minimum inter-call
// spacing, and retry/backoff. The last-call timestamp is owned by the
// pipeline instance, not a process-wide global, so independent pipelines
// do not interfere.
type Pipeline struct {
	provider Provider
	usage    *UsageTracker
	opts     PipelineOptions
	lastCall time.Time
}

// NewPipeline creates a Pipeline around a provider.
func NewPipeline(provider Provider, usage *UsageTracker, opts PipelineOptions) *Pipeline {
	if opts.MinInterval == 0 {
		opts.MinInterval = defaultMinInterval
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = defaultMaxRetries
	}
	if opts.BaseBackoff == 0 {
		opts.BaseBackoff = defaultBaseBackoff
	}
	return &Pipeline{
		provider: provider,
		usage:    usage,
		opts:     opts,
	}
}

// Usage returns the pipeline's usage tracker.
func (p *Pipeline) Usage() *UsageTracker {
	return p.usage
}

// Chat performs one resilient provider call: usage limits are checked
// before any attempt; retryable failures back off and retry up to the
// configured bound; fatal failures propagate immediately.
func (p *Pipeline) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if err := p.usage.CheckLimits(time.Now()); err != nil {
		return nil, fatal(fmt.Errorf("%w: %v", ErrUsageLimitExceeded, err))
	}

	var lastErr error
	for attempt := 0; attempt <= p.opts.MaxRetries; attempt++ {
		p.waitForSlot()

		resp, err := p.provider.Chat(ctx, req)
		p.lastCall = time.Now()

		if err == nil {
			p.recordUsage(resp)
			return resp, nil
		}
		lastErr = err

		var callErr *CallError
		if !errors.As(err, &callErr) || !callErr.Retryable {
			return nil, err
		}
		if attempt == p.opts.MaxRetries {
			break
		}

		delay := callErr.RetryAfter
		if delay <= 0 {
			delay = p.opts.BaseBackoff << attempt
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, lastErr
}

// waitForSlot enforces the minimum spacing since the previous call.
func (p *Pipeline) waitForSlot() {
	if p.lastCall.IsZero() {
		return
	}
	elapsed := time.Since(p.lastCall)
	if elapsed < p.opts.MinInterval {
		time.Sleep(p.opts.MinInterval - elapsed)
	}
}

func (p *Pipeline) recordUsage(resp *ChatResponse) {
	cost := float64(resp.Usage.InputTokens)/1e6*p.opts.CostPerMTokIn +
		float64(resp.Usage.OutputTokens)/1e6*p.opts.CostPerMTokOut

	p.usage.Record(UsageRecord{
		Timestamp:    time.Now(),
		Model:        resp.Model,
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
		Cost:         cost,
	})
}
