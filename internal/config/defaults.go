package config

// defaultModels maps each provider to its default generation model.
var defaultModels = map[ProviderType]string{
	ProviderOpenAI:     "gpt-4o",
	ProviderOpenRouter: "anthropic/claude-sonnet-4.5",
	ProviderOllama:     "llama3",
}

// DefaultModel returns the default model for a provider.
func DefaultModel(provider ProviderType) string {
	if m, ok := defaultModels[provider]; ok {
		return m
	}
	return defaultModels[ProviderOpenAI]
}

// DefaultExcludes are glob patterns excluded from zip exports by default.
var DefaultExcludes = []string{
	"**/.gitkeep",
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider:       ProviderOpenAI,
		Model:          DefaultModel(ProviderOpenAI),
		EmbeddingModel: "text-embedding-3-small",
		Port:           8090,
		DataDir:        ".vibe",
		Export: ExportConfig{
			Include: []string{"**"},
			Exclude: DefaultExcludes,
		},
	}
}
