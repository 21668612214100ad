package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"

	"github.com/satriahrh/notetaker/domain/repositories"
)

// LangChainGenerator implements TextGenerator on top of any langchaingo model.
// It serves the openai and ollama providers.
type LangChainGenerator struct {
	llm       llms.Model
	modelName string
	logger    *zap.Logger
}

var _ repositories.TextGenerator = (*LangChainGenerator)(nil)

// NewOpenAIGenerator creates an OpenAI-backed generator
func NewOpenAIGenerator(apiKey, model, baseURL string, logger *zap.Logger) (*LangChainGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key required")
	}
	if model == "" {
		model = "gpt-4o"
	}

	opts := []openai.Option{
		openai.WithToken(apiKey),
		openai.WithModel(model),
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}

	m, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create openai model: %w", err)
	}
	return NewLangChainGenerator(m, model, logger), nil
}

// NewOllamaGenerator creates a generator talking to a local Ollama server
func NewOllamaGenerator(model, serverURL string, logger *zap.Logger) (*LangChainGenerator, error) {
	if model == "" {
		model = "llama3.1"
	}
	if serverURL == "" {
		serverURL = "http://localhost:11434"
	}

	m, err := ollama.New(
		ollama.WithModel(model),
		ollama.WithServerURL(serverURL),
	)
	if err != nil {
		return nil, fmt.Errorf("create ollama model: %w", err)
	}
	return NewLangChainGenerator(m, model, logger), nil
}

// NewLangChainGenerator wraps an already constructed langchaingo model
func NewLangChainGenerator(m llms.Model, modelName string, logger *zap.Logger) *LangChainGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LangChainGenerator{llm: m, modelName: modelName, logger: logger}
}

func (l *LangChainGenerator) Generate(ctx context.Context, prompt string, config repositories.GenerationConfig) (string, error) {
	opts := []llms.CallOption{llms.WithTemperature(float64(config.Temperature))}
	if config.MaxOutputTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(int(config.MaxOutputTokens)))
	}

	response, err := llms.GenerateFromSinglePrompt(ctx, l.llm, prompt, opts...)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	if strings.TrimSpace(response) == "" {
		return "", fmt.Errorf("empty response from %s", l.modelName)
	}
	return response, nil
}

func (l *LangChainGenerator) Model() string {
	return l.modelName
}
