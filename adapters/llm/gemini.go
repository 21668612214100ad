package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/satriahrh/notetaker/domain/repositories"
)

const (
	defaultModel           = "gemini-2.5-flash"
	defaultMaxOutputTokens = 8192
	defaultTimeout         = 60 * time.Second
)

// medicalSafetySettings disables blocking for every harm category.
// Clinical dialogue about injuries and medication trips the default filters.
var medicalSafetySettings = []*genai.SafetySetting{
	{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockNone},
}

// GeminiConfig holds configuration for the Gemini adapter
// Required fields:
// - APIKey: Google Gemini API key
// Optional fields with defaults:
// - Model: model name (default: "gemini-2.5-flash")
// - MaxOutputTokens: reply size cap (default: 8192)
// - Timeout: per-request timeout (default: 60s)
type GeminiConfig struct {
	APIKey          string
	Model           string
	MaxOutputTokens int32
	Timeout         time.Duration
}

// GeminiGenerator implements TextGenerator using Google's Gemini API
type GeminiGenerator struct {
	client          *genai.Client
	logger          *zap.Logger
	model           string
	maxOutputTokens int32
	timeout         time.Duration
	safetySettings  []*genai.SafetySetting
}

var _ repositories.TextGenerator = (*GeminiGenerator)(nil)

// ValidateGeminiConfig validates the GeminiConfig
func ValidateGeminiConfig(config GeminiConfig) error {
	if config.APIKey == "" {
		return fmt.Errorf("Gemini API key is required")
	}

	if config.MaxOutputTokens < 0 {
		return fmt.Errorf("maxOutputTokens must be positive, got %d", config.MaxOutputTokens)
	}

	if config.Timeout < 0 {
		return fmt.Errorf("timeout must be positive, got %s", config.Timeout)
	}

	return nil
}

// NewGeminiGenerator creates a Gemini-backed generator. The safety settings
// are fixed for the lifetime of the client.
func NewGeminiGenerator(ctx context.Context, config GeminiConfig, logger *zap.Logger) (*GeminiGenerator, error) {
	if err := ValidateGeminiConfig(config); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	model := config.Model
	if model == "" {
		model = defaultModel
		logger.Info("Using default model", zap.String("model", model))
	}

	maxOutputTokens := config.MaxOutputTokens
	if maxOutputTokens == 0 {
		maxOutputTokens = defaultMaxOutputTokens
		logger.Info("Using default maxOutputTokens", zap.Int32("maxOutputTokens", maxOutputTokens))
	}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
		logger.Info("Using default timeout", zap.Duration("timeout", timeout))
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiGenerator{
		client:          client,
		logger:          logger,
		model:           model,
		maxOutputTokens: maxOutputTokens,
		timeout:         timeout,
		safetySettings:  medicalSafetySettings,
	}, nil
}

// Generate sends one prompt to Gemini. Retries are the caller's concern.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string, config repositories.GenerationConfig) (string, error) {
	maxOutputTokens := config.MaxOutputTokens
	if maxOutputTokens == 0 {
		maxOutputTokens = g.maxOutputTokens
	}

	genConfig := &genai.GenerateContentConfig{
		SafetySettings:  g.safetySettings,
		Temperature:     genai.Ptr(config.Temperature),
		MaxOutputTokens: maxOutputTokens,
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	response, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), genConfig)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	text := responseText(response)
	if strings.TrimSpace(text) == "" {
		reason := "no candidates"
		if len(response.Candidates) > 0 && response.Candidates[0].FinishReason != "" {
			reason = string(response.Candidates[0].FinishReason)
		}
		return "", fmt.Errorf("empty response from Gemini (%s)", reason)
	}

	g.logger.Debug("Gemini reply received",
		zap.String("model", g.model),
		zap.Int("prompt_length", len(prompt)),
		zap.String("response_preview", text[:min(50, len(text))]))

	return text, nil
}

// Model returns the Gemini model name
func (g *GeminiGenerator) Model() string {
	return g.model
}

// responseText concatenates the text parts of the first candidate
func responseText(response *genai.GenerateContentResponse) string {
	if response == nil || len(response.Candidates) == 0 {
		return ""
	}
	content := response.Candidates[0].Content
	if content == nil {
		return ""
	}

	var text string
	for _, part := range content.Parts {
		if part != nil && part.Text != "" {
			text += part.Text
		}
	}
	return text
}
