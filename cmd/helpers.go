package cmd

import (
	"fmt"
	"os"

	"github.com/ashwanth2007/TheVibeCoders/internal/config"
	"github.com/ashwanth2007/TheVibeCoders/internal/generate"
	"github.com/ashwanth2007/TheVibeCoders/internal/llm"
	"github.com/ashwanth2007/TheVibeCoders/internal/search"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `vibe init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// createGenerateService builds the generation service from config. Errors
// out when the provider's API key is missing.
func createGenerateService(cfg *config.Config) (*generate.Service, error) {
	provider, err := llm.NewProvider(string(cfg.Provider), cfg.Model)
	if err != nil {
		return nil, err
	}
	return generate.NewService(provider, cfg.Model), nil
}

// createSearchIndex builds the semantic project index. Embeddings always go
// through the OpenAI API; when no key is set the studio simply runs
// without search.
func createSearchIndex(cfg *config.Config) (*search.Store, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, nil
	}
	return search.NewStore(search.NewOpenAIEmbedder(apiKey, cfg.EmbeddingModel))
}
