package adapter

import "context"

// AIService is the port for the generative-text provider. Callers treat the
// returned text as unreliable free-form prose: any structured extraction is
// best-effort and must fall back to a deterministic default.
type AIService interface {
	// Complete submits a prompt and returns the provider's text reply.
	Complete(ctx context.Context, prompt string) (string, error)
	// Model reports the model the adapter will use.
	Model() string
}
