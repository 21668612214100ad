package usecase

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/satriahrh/notetaker/domain/entities"
	"github.com/satriahrh/notetaker/internal/generation"
	"github.com/satriahrh/notetaker/internal/prompts"
	"github.com/satriahrh/notetaker/internal/schema"
)

const DefaultExecutiveSummaryLength = 200

// SummaryService turns a transcript into a structured or a brief free-text summary
type SummaryService struct {
	gen    Generator
	logger *zap.Logger
}

// NewSummaryService creates a new summary service
func NewSummaryService(gen Generator, logger *zap.Logger) *SummaryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SummaryService{gen: gen, logger: logger}
}

// Summarize produces the structured medical summary
func (s *SummaryService) Summarize(ctx context.Context, transcript string) (entities.MedicalSummary, error) {
	raw, err := s.gen.GenerateStructured(ctx, prompts.BuildSummaryPrompt(transcript), generation.WithTemperature(0.3))
	if err != nil {
		return entities.MedicalSummary{}, fmt.Errorf("summarization: %w", err)
	}
	logDrift(s.logger, schema.KindSummary, raw)
	return schema.ValidateSummary(raw), nil
}

// ExecutiveSummary returns a free-text summary of at most maxLength runes
func (s *SummaryService) ExecutiveSummary(ctx context.Context, transcript string, maxLength int) (string, error) {
	if maxLength <= 0 {
		maxLength = DefaultExecutiveSummaryLength
	}

	text, err := s.gen.GenerateText(ctx, prompts.BuildExecutiveSummaryPrompt(transcript, maxLength), generation.WithTemperature(0.4))
	if err != nil {
		return "", fmt.Errorf("executive summary: %w", err)
	}
	return truncateRunes(strings.TrimSpace(text), maxLength), nil
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
