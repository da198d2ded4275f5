package ai

import (
	"context"
	"time"

	"telegram-deploy-bot/internal/domain/ports/adapter"
)

var _ adapter.AIService = (*NoopAIAdapter)(nil)

// NoopAIAdapter implements the AI port for local/dev testing. It returns a
// canned reply instead of calling a real provider.
type NoopAIAdapter struct{}

func NewNoopAIAdapter() *NoopAIAdapter {
	return &NoopAIAdapter{}
}

func (a *NoopAIAdapter) Model() string { return "noop-model" }

func (a *NoopAIAdapter) Complete(ctx context.Context, prompt string) (string, error) {
	select {
	case <-time.After(100 * time.Millisecond):
	case <-ctx.Done():
		return "", ctx.Err()
	}
	return "This is a noop AI response.", nil
}
