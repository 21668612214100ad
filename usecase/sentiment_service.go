package usecase

import (
	"context"
	"fmt"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/satriahrh/notetaker/domain/entities"
	"github.com/satriahrh/notetaker/internal/generation"
	"github.com/satriahrh/notetaker/internal/prompts"
	"github.com/satriahrh/notetaker/internal/schema"
	"github.com/satriahrh/notetaker/internal/transcript"
)

const (
	// segments this short ("Yes.", "Okay") carry no sentiment worth a call
	minSegmentLength = 10
	previewLength    = 100
)

// SentimentService classifies patient sentiment and intent
type SentimentService struct {
	gen    Generator
	logger *zap.Logger
}

// NewSentimentService creates a new sentiment service
func NewSentimentService(gen Generator, logger *zap.Logger) *SentimentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SentimentService{gen: gen, logger: logger}
}

// AnalyzeSentiment classifies one patient utterance. The result always holds
// enumerated values.
func (s *SentimentService) AnalyzeSentiment(ctx context.Context, text string) (entities.SentimentResult, error) {
	raw, err := s.gen.GenerateStructured(ctx, prompts.BuildSentimentPrompt(text), generation.WithTemperature(0.2))
	if err != nil {
		return entities.SentimentResult{}, fmt.Errorf("sentiment analysis: %w", err)
	}
	logDrift(s.logger, schema.KindSentiment, raw)
	return schema.ValidateSentiment(raw), nil
}

// AnalyzeFullTranscript classifies every substantial patient segment and
// reports the most frequent labels. Without patient segments the opening
// lines of the transcript are classified instead and SegmentsAnalyzed is 0.
func (s *SentimentService) AnalyzeFullTranscript(ctx context.Context, text string) (entities.SentimentReport, error) {
	segments := transcript.PatientSegments(text)

	if len(segments) == 0 {
		s.logger.Debug("No patient segments found, classifying the opening lines")
		overall, err := s.AnalyzeSentiment(ctx, transcript.FallbackWindow(text, transcript.DefaultFallbackLines))
		if err != nil {
			return entities.SentimentReport{}, err
		}
		return entities.SentimentReport{
			OverallSentiment: overall.Sentiment,
			OverallIntent:    overall.Intent,
			SegmentsAnalyzed: 0,
			SegmentDetails:   []entities.SegmentDetail{},
		}, nil
	}

	details := []entities.SegmentDetail{}
	var sentiments []entities.Sentiment
	var intents []entities.Intent

	for _, segment := range segments {
		if utf8.RuneCountInString(segment) <= minSegmentLength {
			continue
		}

		result, err := s.AnalyzeSentiment(ctx, segment)
		if err != nil {
			return entities.SentimentReport{}, err
		}

		details = append(details, entities.SegmentDetail{
			Text:      preview(segment),
			Sentiment: result.Sentiment,
			Intent:    result.Intent,
		})
		sentiments = append(sentiments, result.Sentiment)
		intents = append(intents, result.Intent)
	}

	s.logger.Debug("Sentiment analysis completed",
		zap.Int("segments", len(segments)),
		zap.Int("analyzed", len(details)))

	return entities.SentimentReport{
		OverallSentiment: mode(sentiments, entities.SentimentNeutral),
		OverallIntent:    mode(intents, entities.IntentOther),
		SegmentsAnalyzed: len(details),
		SegmentDetails:   details,
	}, nil
}

// mode returns the most frequent value. Ties go to the value seen first.
func mode[T comparable](values []T, def T) T {
	if len(values) == 0 {
		return def
	}

	counts := make(map[T]int, len(values))
	best, bestCount := def, 0
	for _, v := range values {
		counts[v]++
	}
	for _, v := range values {
		if counts[v] > bestCount {
			best, bestCount = v, counts[v]
		}
	}
	return best
}

func preview(text string) string {
	r := []rune(text)
	if len(r) <= previewLength {
		return text
	}
	return string(r[:previewLength]) + "..."
}
