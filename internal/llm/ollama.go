package llm

import (
	"context"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OllamaProvider implements Provider against a local Ollama instance via
// its OpenAI-compatible endpoint. No API key is required.
type OllamaProvider struct {
	client *openai.Client
	model  string
}

// NewOllamaProvider creates a provider for the Ollama server at host
// (default http://localhost:11434).
func NewOllamaProvider(host, model string) *OllamaProvider {
	cfg := openai.DefaultConfig("ollama")
	cfg.BaseURL = strings.TrimSuffix(host, "/") + "/v1"
	return &OllamaProvider{client: openai.NewClientWithConfig(cfg), model: model}
}

func (p *OllamaProvider) Name() string { return "ollama" }

func (p *OllamaProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	resp, err := p.client.CreateChatCompletion(ctx, buildChatRequest(req, p.model))
	if err != nil {
		return nil, err
	}
	return fromChatResponse(resp), nil
}
