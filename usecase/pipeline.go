package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/satriahrh/notetaker/domain/entities"
	"github.com/satriahrh/notetaker/internal/config"
	"github.com/satriahrh/notetaker/internal/generation"
	"github.com/satriahrh/notetaker/internal/schema"
)

// Generator is the generation client as seen by the services
type Generator interface {
	GenerateText(ctx context.Context, prompt string, opts ...generation.CallOption) (string, error)
	GenerateStructured(ctx context.Context, prompt string, opts ...generation.CallOption) (any, error)
	Model() string
}

var _ Generator = (*generation.Client)(nil)

// Pipeline runs every analysis task for one transcript and merges the
// results. A failing task only ever affects its own section.
type Pipeline struct {
	extractor  *EntityService
	summarizer *SummaryService
	sentiment  *SentimentService
	soap       *SOAPService

	model    string
	parallel bool
	logger   *zap.Logger

	now   func() time.Time
	newID func() string
}

// NewPipeline wires the four services around one shared generator
func NewPipeline(gen Generator, cfg config.PipelineConfig, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		extractor:  NewEntityService(gen, cfg.KeywordLimit, logger.Named("entities")),
		summarizer: NewSummaryService(gen, logger.Named("summary")),
		sentiment:  NewSentimentService(gen, logger.Named("sentiment")),
		soap:       NewSOAPService(gen, logger.Named("soap")),
		model:      gen.Model(),
		parallel:   cfg.Parallel,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC().Truncate(time.Second) },
		newID:      uuid.NewString,
	}
}

// ProcessTranscript produces the full report. When includeSOAP is false the
// SOAP section is left empty rather than failed.
func (p *Pipeline) ProcessTranscript(ctx context.Context, transcript string, includeSOAP bool) *entities.AnalysisReport {
	start := time.Now()
	report := &entities.AnalysisReport{
		ID:          p.newID(),
		GeneratedAt: p.now(),
		Model:       p.model,
	}

	p.logger.Info("Processing transcript",
		zap.String("report_id", report.ID),
		zap.Int("transcript_length", len(transcript)),
		zap.Bool("include_soap", includeSOAP),
		zap.Bool("parallel", p.parallel))

	tasks := []func(){
		func() {
			report.Entities = capture(p.logger, "entities", func() (entities.MedicalEntities, error) {
				return p.extractor.ExtractStructuredSummary(ctx, transcript)
			})
		},
		func() {
			report.Summary = capture(p.logger, "summary", func() (entities.MedicalSummary, error) {
				return p.summarizer.Summarize(ctx, transcript)
			})
		},
		func() {
			report.Sentiment = capture(p.logger, "sentiment", func() (entities.SentimentReport, error) {
				return p.sentiment.AnalyzeFullTranscript(ctx, transcript)
			})
		},
	}
	if includeSOAP {
		tasks = append(tasks, func() {
			report.SOAP = capture(p.logger, "soap", func() (entities.SOAPNote, error) {
				return p.soap.GenerateSOAPNote(ctx, transcript)
			})
		})
	}

	p.run(tasks)

	p.logger.Info("Transcript processed",
		zap.String("report_id", report.ID),
		zap.Duration("duration", time.Since(start)))
	return report
}

// ProcessQuickSummary produces entities (without keywords) and sentiment only
func (p *Pipeline) ProcessQuickSummary(ctx context.Context, transcript string) *entities.QuickReport {
	report := &entities.QuickReport{
		ID:          p.newID(),
		GeneratedAt: p.now(),
		Model:       p.model,
	}

	p.logger.Info("Processing quick summary",
		zap.String("report_id", report.ID),
		zap.Int("transcript_length", len(transcript)))

	p.run([]func(){
		func() {
			report.Entities = capture(p.logger, "entities", func() (entities.MedicalEntities, error) {
				return p.extractor.ExtractEntities(ctx, transcript)
			})
		},
		func() {
			report.Sentiment = capture(p.logger, "sentiment", func() (entities.SentimentReport, error) {
				return p.sentiment.AnalyzeFullTranscript(ctx, transcript)
			})
		},
	})
	return report
}

// ExecutiveSummary returns a short free-text summary of the transcript
func (p *Pipeline) ExecutiveSummary(ctx context.Context, transcript string, maxLength int) (string, error) {
	return p.summarizer.ExecutiveSummary(ctx, transcript, maxLength)
}

// run executes the tasks in order, or all at once when parallel. Tasks
// report failure through their own section, so none returns an error and
// one failing never cancels the others.
func (p *Pipeline) run(tasks []func()) {
	if !p.parallel {
		for _, task := range tasks {
			task()
		}
		return
	}

	var g errgroup.Group
	for _, task := range tasks {
		g.Go(func() error {
			task()
			return nil
		})
	}
	_ = g.Wait()
}

func capture[T any](logger *zap.Logger, task string, fn func() (T, error)) entities.Section[T] {
	v, err := fn()
	if err != nil {
		logger.Error("Analysis task failed", zap.String("task", task), zap.Error(err))
		return entities.Failed[T](err)
	}
	return entities.Succeeded(v)
}

func logDrift(logger *zap.Logger, kind schema.Kind, raw any) {
	if violations := schema.Conformance(kind, raw); len(violations) > 0 {
		logger.Warn("Reply does not match the requested shape",
			zap.String("kind", string(kind)),
			zap.Strings("violations", violations))
	}
}
