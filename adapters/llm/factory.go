package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/satriahrh/notetaker/domain/repositories"
	"github.com/satriahrh/notetaker/internal/config"
)

// NewGenerator creates the TextGenerator selected by the configuration
func NewGenerator(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger) (repositories.TextGenerator, error) {
	switch cfg.Provider {
	case config.ProviderGemini, "":
		return NewGeminiGenerator(ctx, GeminiConfig{
			APIKey:          cfg.APIKey,
			Model:           cfg.Model,
			MaxOutputTokens: cfg.MaxOutputTokens,
			Timeout:         cfg.Timeout,
		}, logger)

	case config.ProviderOpenAI:
		return NewOpenAIGenerator(cfg.APIKey, cfg.Model, cfg.BaseURL, logger)

	case config.ProviderOllama:
		return NewOllamaGenerator(cfg.Model, cfg.BaseURL, logger)

	case config.ProviderMock:
		return NewMockGenerator(), nil

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s (supported: gemini, openai, ollama, mock)", cfg.Provider)
	}
}
