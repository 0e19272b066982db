// Package llm is the transport layer for language-model calls. The
// generation service builds requests against the Provider interface and
// never talks to a vendor SDK directly, so providers are swappable and
// tests run against a fake.
package llm

import "context"

// Provider defines the interface for LLM providers.
type Provider interface {
	// Complete sends a completion request and returns the response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	// Name returns the name of this provider.
	Name() string
}
