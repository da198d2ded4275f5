package ai

import (
	"context"
	"time"

	"telegram-deploy-bot/internal/domain/ports/adapter"
	"telegram-deploy-bot/internal/infra/metrics"
)

// Compile-time check
var _ adapter.AIService = (*limitedAI)(nil)

type limitedAI struct {
	inner adapter.AIService
	sem   chan struct{}
}

// NewLimitedAI caps concurrent provider calls and records call latency.
func NewLimitedAI(inner adapter.AIService, maxConcurrent int) adapter.AIService {
	if maxConcurrent <= 0 {
		return inner
	}
	return &limitedAI{
		inner: inner,
		sem:   make(chan struct{}, maxConcurrent),
	}
}

func (l *limitedAI) Model() string { return l.inner.Model() }

func (l *limitedAI) Complete(ctx context.Context, prompt string) (string, error) {
	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	defer func() { <-l.sem }()

	start := time.Now()
	text, err := l.inner.Complete(ctx, prompt)
	metrics.ObserveAILatency(l.inner.Model(), err == nil, float64(time.Since(start).Milliseconds()))
	return text, err
}
