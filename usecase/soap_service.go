package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/satriahrh/notetaker/domain/entities"
	"github.com/satriahrh/notetaker/internal/generation"
	"github.com/satriahrh/notetaker/internal/prompts"
	"github.com/satriahrh/notetaker/internal/schema"
)

// SOAPService drafts SOAP notes
type SOAPService struct {
	gen    Generator
	logger *zap.Logger
}

func NewSOAPService(gen Generator, logger *zap.Logger) *SOAPService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SOAPService{gen: gen, logger: logger}
}

// GenerateSOAPNote converts the transcript into a SOAP note
func (s *SOAPService) GenerateSOAPNote(ctx context.Context, transcript string) (entities.SOAPNote, error) {
	raw, err := s.gen.GenerateStructured(ctx, prompts.BuildSOAPPrompt(transcript), generation.WithTemperature(0.2))
	if err != nil {
		return entities.SOAPNote{}, fmt.Errorf("SOAP note generation: %w", err)
	}
	logDrift(s.logger, schema.KindSOAP, raw)
	return schema.ValidateSOAP(raw), nil
}
