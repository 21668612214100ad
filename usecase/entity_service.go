package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/satriahrh/notetaker/domain/entities"
	"github.com/satriahrh/notetaker/internal/generation"
	"github.com/satriahrh/notetaker/internal/prompts"
	"github.com/satriahrh/notetaker/internal/schema"
)

const DefaultKeywordLimit = 10

var medicalKeywordPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(whiplash|injury|pain|ache|discomfort|stiffness)\b`),
	regexp.MustCompile(`\b(physiotherapy|therapy|treatment|medication|painkiller)\b`),
	regexp.MustCompile(`\b(diagnosis|condition|symptom|sign)\b`),
	regexp.MustCompile(`\b(recovery|prognosis|healing|improvement)\b`),
	regexp.MustCompile(`\b(accident|trauma|impact|collision)\b`),
	regexp.MustCompile(`\b(range of motion|mobility|movement|tenderness)\b`),
	regexp.MustCompile(`\b(follow-up|appointment|examination|check-up)\b`),
}

// EntityService extracts medical entities and keywords
type EntityService struct {
	gen          Generator
	keywordLimit int
	logger       *zap.Logger
}

// NewEntityService creates a new entity service
func NewEntityService(gen Generator, keywordLimit int, logger *zap.Logger) *EntityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if keywordLimit <= 0 {
		keywordLimit = DefaultKeywordLimit
	}
	return &EntityService{gen: gen, keywordLimit: keywordLimit, logger: logger}
}

// ExtractEntities asks for the entity record and validates it. Keywords stay empty.
func (s *EntityService) ExtractEntities(ctx context.Context, transcript string) (entities.MedicalEntities, error) {
	raw, err := s.gen.GenerateStructured(ctx, prompts.BuildEntitiesPrompt(transcript), generation.WithTemperature(0.2))
	if err != nil {
		return entities.MedicalEntities{}, fmt.Errorf("entity extraction: %w", err)
	}
	logDrift(s.logger, schema.KindEntities, raw)
	return schema.ValidateEntities(raw), nil
}

// ExtractKeywords combines model-suggested keywords with a fixed vocabulary
// matched against the transcript. It never fails: if the model call fails
// only the vocabulary matches are returned.
func (s *EntityService) ExtractKeywords(ctx context.Context, transcript string) []string {
	var suggested []string
	raw, err := s.gen.GenerateStructured(ctx, prompts.BuildKeywordsPrompt(transcript, s.keywordLimit), generation.WithTemperature(0.3))
	if err != nil {
		s.logger.Warn("Keyword generation failed, using vocabulary matches only", zap.Error(err))
	} else {
		logDrift(s.logger, schema.KindKeywords, raw)
		suggested = schema.ParseKeywords(raw)
	}

	return schema.MergeKeywords(s.keywordLimit, suggested, vocabularyKeywords(transcript))
}

// ExtractStructuredSummary is ExtractEntities with keywords filled in
func (s *EntityService) ExtractStructuredSummary(ctx context.Context, transcript string) (entities.MedicalEntities, error) {
	result, err := s.ExtractEntities(ctx, transcript)
	if err != nil {
		return result, err
	}
	result.Keywords = s.ExtractKeywords(ctx, transcript)
	return result, nil
}

func vocabularyKeywords(transcript string) []string {
	lower := strings.ToLower(transcript)
	var out []string
	for _, re := range medicalKeywordPatterns {
		out = append(out, re.FindAllString(lower, -1)...)
	}
	return out
}
