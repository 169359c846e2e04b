package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/agenthands/papergraph/internal/config"
)

// NewClient builds a text-generation client for the configured provider.
func NewClient(ctx context.Context, cfg config.LLMConfig) (Client, error) {
	provider := strings.ToLower(cfg.Provider)

	switch provider {
	case "openai":
		return NewOpenAIClient(cfg.APIKey, cfg.Model, cfg.BaseURL), nil

	case "gemini":
		return NewGeminiClient(ctx, cfg.APIKey, cfg.Model)

	case "claude":
		return NewClaudeClient(cfg.APIKey, cfg.Model, cfg.BaseURL), nil

	case "ollama":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		return NewOllamaClient(cfg.Model, baseURL)

	case "":
		return nil, fmt.Errorf("llm provider not specified")

	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", provider)
	}
}
