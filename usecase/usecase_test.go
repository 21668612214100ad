package usecase

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/satriahrh/notetaker/domain/entities"
	"github.com/satriahrh/notetaker/domain/repositories"
	"github.com/satriahrh/notetaker/internal/config"
	"github.com/satriahrh/notetaker/internal/generation"
)

const (
	entitiesMarker  = "Extract medical entities"
	keywordsMarker  = "medical keywords"
	summaryMarker   = "structured medical report"
	sentimentMarker = "Patient Statement:"
	soapMarker      = "SOAP note"
	briefMarker     = "characters or less"
)

const sampleTranscript = "Physician: How are you?\nPatient: My neck still hurts.\nPhysician: Since when?\nPatient: Since the accident three weeks ago."

type route struct {
	marker string
	reply  func(prompt string) (string, error)
}

// routedGenerator answers by the first route whose marker occurs in the prompt
type routedGenerator struct {
	mu      sync.Mutex
	routes  []route
	prompts []string
}

func (g *routedGenerator) Generate(_ context.Context, prompt string, _ repositories.GenerationConfig) (string, error) {
	g.mu.Lock()
	g.prompts = append(g.prompts, prompt)
	g.mu.Unlock()

	for _, r := range g.routes {
		if strings.Contains(prompt, r.marker) {
			return r.reply(prompt)
		}
	}
	return "", errors.New("unexpected prompt")
}

func (g *routedGenerator) Model() string { return "routed" }

func (g *routedGenerator) count(marker string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, p := range g.prompts {
		if strings.Contains(p, marker) {
			n++
		}
	}
	return n
}

func fixed(text string) func(string) (string, error) {
	return func(string) (string, error) { return text, nil }
}

func failing(msg string) func(string) (string, error) {
	return func(string) (string, error) { return "", errors.New(msg) }
}

// sentimentByStatement classifies the quoted statement by a few cue words
func sentimentByStatement(prompt string) (string, error) {
	_, rest, _ := strings.Cut(prompt, sentimentMarker)
	statement, _, _ := strings.Cut(rest, "\n")
	statement = strings.ToLower(statement)
	switch {
	case strings.Contains(statement, "hurts"):
		return `{"Sentiment": "Anxious", "Intent": "Reporting symptoms"}`, nil
	case strings.Contains(statement, "relief"):
		return "```json\n{\"Sentiment\": \"relieved\", \"Intent\": \"Other\"}\n```", nil
	default:
		return `{"Sentiment": "Neutral", "Intent": "Reporting symptoms"}`, nil
	}
}

func healthyRoutes() []route {
	return []route{
		{entitiesMarker, fixed(`{"Patient_Name": "Janet Jones", "Symptoms": ["Neck pain"], "Diagnosis": "Whiplash", "Treatment": ["Physiotherapy"], "Current_Status": "Improving", "Prognosis": null}`)},
		{keywordsMarker, fixed(`["neck pain", "Whiplash"]`)},
		{summaryMarker, fixed(`{"Chief_Complaint": "Neck pain", "Symptoms": {"Primary": ["Neck pain"], "Timeline": "three weeks"}}`)},
		{sentimentMarker, sentimentByStatement},
		{soapMarker, fixed(`{"Subjective": {"Chief_Complaint": "Neck pain"}, "Objective": {}, "Assessment": {"Diagnosis": "Whiplash"}, "Plan": {"Follow-Up": "2 weeks"}}`)},
		{briefMarker, fixed("  Whiplash after a car accident, improving with physiotherapy.  ")},
	}
}

func withRoute(routes []route, marker string, reply func(string) (string, error)) []route {
	out := make([]route, 0, len(routes))
	for _, r := range routes {
		if r.marker == marker {
			r.reply = reply
		}
		out = append(out, r)
	}
	return out
}

func newTestGenerator(t *testing.T, routes []route) (*routedGenerator, *generation.Client) {
	t.Helper()
	gen := &routedGenerator{routes: routes}
	return gen, generation.NewClient(gen, generation.Options{RetryDelay: 0}, zaptest.NewLogger(t))
}

func TestProcessTranscriptIsolatesFailedSection(t *testing.T) {
	for _, parallel := range []bool{false, true} {
		name := "sequential"
		if parallel {
			name = "parallel"
		}
		t.Run(name, func(t *testing.T) {
			gen, client := newTestGenerator(t, withRoute(healthyRoutes(), soapMarker, fixed("I am unable to write a SOAP note in JSON.")))
			pipeline := NewPipeline(client, config.PipelineConfig{Parallel: parallel, KeywordLimit: 10}, zaptest.NewLogger(t))

			report := pipeline.ProcessTranscript(context.Background(), sampleTranscript, true)

			if !report.Entities.OK() || !report.Summary.OK() || !report.Sentiment.OK() {
				t.Fatalf("expected entities, summary and sentiment to succeed: %+v", report)
			}
			if report.SOAP.Err == nil {
				t.Fatal("expected SOAP section to hold an error record")
			}
			if !strings.Contains(report.SOAP.Err.Message, "failed to parse JSON response after 3 attempts") {
				t.Errorf("unexpected SOAP error %q", report.SOAP.Err.Message)
			}
			if gen.count(soapMarker) != 3 {
				t.Errorf("expected 3 SOAP generations, got %d", gen.count(soapMarker))
			}

			if report.ID == "" || report.GeneratedAt.IsZero() || report.Model != "routed" {
				t.Errorf("missing report metadata: id=%q generated_at=%v model=%q", report.ID, report.GeneratedAt, report.Model)
			}

			ents := report.Entities.Value
			if ents.PatientName == nil || *ents.PatientName != "Janet Jones" {
				t.Errorf("unexpected patient name %v", ents.PatientName)
			}
			if len(ents.Keywords) == 0 {
				t.Error("expected keywords on the full report")
			}
			if report.Summary.Value.Symptoms.Timeline != "three weeks" {
				t.Errorf("unexpected timeline %q", report.Summary.Value.Symptoms.Timeline)
			}
		})
	}
}

func TestProcessTranscriptGenerationFailure(t *testing.T) {
	gen, client := newTestGenerator(t, withRoute(healthyRoutes(), entitiesMarker, failing("quota exceeded")))
	pipeline := NewPipeline(client, config.PipelineConfig{Parallel: true}, zaptest.NewLogger(t))

	report := pipeline.ProcessTranscript(context.Background(), sampleTranscript, true)

	if report.Entities.Err == nil || !strings.Contains(report.Entities.Err.Message, "quota exceeded") {
		t.Fatalf("expected entities error record, got %+v", report.Entities)
	}
	if !report.Summary.OK() || !report.Sentiment.OK() || !report.SOAP.OK() {
		t.Errorf("expected the other sections to succeed: %+v", report)
	}
	if gen.count(entitiesMarker) != 1 {
		t.Errorf("expected a single entities generation, got %d", gen.count(entitiesMarker))
	}
	if gen.count(keywordsMarker) != 0 {
		t.Errorf("expected no keyword request after entity failure, got %d", gen.count(keywordsMarker))
	}
}

func TestProcessTranscriptWithoutSOAP(t *testing.T) {
	gen, client := newTestGenerator(t, healthyRoutes())
	pipeline := NewPipeline(client, config.PipelineConfig{}, zaptest.NewLogger(t))

	report := pipeline.ProcessTranscript(context.Background(), sampleTranscript, false)

	if !report.SOAP.Omitted() {
		t.Errorf("expected omitted SOAP section, got %+v", report.SOAP)
	}
	if gen.count(soapMarker) != 0 {
		t.Errorf("expected no SOAP request, got %d", gen.count(soapMarker))
	}
}

func TestProcessQuickSummary(t *testing.T) {
	gen, client := newTestGenerator(t, healthyRoutes())
	pipeline := NewPipeline(client, config.PipelineConfig{Parallel: true}, zaptest.NewLogger(t))

	report := pipeline.ProcessQuickSummary(context.Background(), sampleTranscript)

	if !report.Entities.OK() || !report.Sentiment.OK() {
		t.Fatalf("expected both sections to succeed: %+v", report)
	}
	if len(report.Entities.Value.Keywords) != 0 {
		t.Errorf("expected no keywords in quick summary, got %v", report.Entities.Value.Keywords)
	}
	if gen.count(keywordsMarker) != 0 || gen.count(summaryMarker) != 0 || gen.count(soapMarker) != 0 {
		t.Error("expected only entity and sentiment requests")
	}
}

func TestExtractKeywords(t *testing.T) {
	transcript := "Patient: The pain started after the accident. Physiotherapy helped my recovery."

	_, client := newTestGenerator(t, healthyRoutes())
	svc := NewEntityService(client, 4, zaptest.NewLogger(t))

	got := svc.ExtractKeywords(context.Background(), transcript)
	want := []string{"neck pain", "Whiplash", "pain", "physiotherapy"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractKeywords() = %#v, want %#v", got, want)
	}
}

func TestExtractKeywordsSurvivesModelFailure(t *testing.T) {
	transcript := "Patient: I had whiplash and some stiffness. Whiplash again."

	_, client := newTestGenerator(t, withRoute(healthyRoutes(), keywordsMarker, failing("unavailable")))
	svc := NewEntityService(client, 10, zaptest.NewLogger(t))

	got := svc.ExtractKeywords(context.Background(), transcript)
	want := []string{"whiplash", "stiffness"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractKeywords() = %#v, want %#v", got, want)
	}
}

func TestAnalyzeFullTranscript(t *testing.T) {
	transcript := "Physician: How are you?\nPatient: My neck still hurts.\nPhysician: Any news?\nPatient: Yes.\nPatient: What a relief to hear that."

	gen, client := newTestGenerator(t, healthyRoutes())
	svc := NewSentimentService(client, zaptest.NewLogger(t))

	got, err := svc.AnalyzeFullTranscript(context.Background(), transcript)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := entities.SentimentReport{
		OverallSentiment: entities.SentimentAnxious,
		OverallIntent:    entities.IntentReportingSymptoms,
		SegmentsAnalyzed: 2,
		SegmentDetails: []entities.SegmentDetail{
			{Text: "My neck still hurts.", Sentiment: entities.SentimentAnxious, Intent: entities.IntentReportingSymptoms},
			{Text: "What a relief to hear that.", Sentiment: entities.SentimentReassured, Intent: entities.IntentOther},
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("AnalyzeFullTranscript() = %+v, want %+v", got, want)
	}
	if gen.count(sentimentMarker) != 2 {
		t.Errorf("expected short segment to be skipped, got %d requests", gen.count(sentimentMarker))
	}
}

func TestAnalyzeFullTranscriptFallback(t *testing.T) {
	transcript := "Visit notes\nneck hurts badly\nline three\nline four\nline five\nline six is ignored"

	gen, client := newTestGenerator(t, healthyRoutes())
	svc := NewSentimentService(client, zaptest.NewLogger(t))

	got, err := svc.AnalyzeFullTranscript(context.Background(), transcript)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.SegmentsAnalyzed != 0 || got.SegmentDetails == nil || len(got.SegmentDetails) != 0 {
		t.Errorf("expected zero analyzed segments and empty details, got %+v", got)
	}
	if got.OverallSentiment != entities.SentimentAnxious {
		t.Errorf("expected the fallback window to be classified, got %q", got.OverallSentiment)
	}

	if len(gen.prompts) != 1 {
		t.Fatalf("expected one request, got %d", len(gen.prompts))
	}
	if !strings.Contains(gen.prompts[0], "Visit notes neck hurts badly line three line four line five") ||
		strings.Contains(gen.prompts[0], "line six") {
		t.Errorf("unexpected fallback prompt %q", gen.prompts[0])
	}
}

func TestAnalyzeFullTranscriptOnlyShortSegments(t *testing.T) {
	gen, client := newTestGenerator(t, healthyRoutes())
	svc := NewSentimentService(client, zaptest.NewLogger(t))

	got, err := svc.AnalyzeFullTranscript(context.Background(), "Physician: Okay?\nPatient: Yes.\nPatient: Fine.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.OverallSentiment != entities.SentimentNeutral || got.OverallIntent != entities.IntentOther || got.SegmentsAnalyzed != 0 {
		t.Errorf("expected Neutral/Other defaults, got %+v", got)
	}
	if len(gen.prompts) != 0 {
		t.Errorf("expected no requests, got %d", len(gen.prompts))
	}
}

func TestAnalyzeFullTranscriptSegmentFailure(t *testing.T) {
	_, client := newTestGenerator(t, withRoute(healthyRoutes(), sentimentMarker, fixed("no json here")))
	svc := NewSentimentService(client, zaptest.NewLogger(t))

	if _, err := svc.AnalyzeFullTranscript(context.Background(), sampleTranscript); err == nil {
		t.Fatal("expected an error when a segment cannot be classified")
	}
}

func TestExecutiveSummary(t *testing.T) {
	_, client := newTestGenerator(t, healthyRoutes())
	svc := NewSummaryService(client, zaptest.NewLogger(t))

	got, err := svc.ExecutiveSummary(context.Background(), sampleTranscript, 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Whiplash" {
		t.Errorf("expected trimmed and truncated summary, got %q", got)
	}

	got, err = svc.ExecutiveSummary(context.Background(), sampleTranscript, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Whiplash after a car accident, improving with physiotherapy." {
		t.Errorf("unexpected summary %q", got)
	}
}

func TestMode(t *testing.T) {
	tests := []struct {
		values []entities.Sentiment
		want   entities.Sentiment
	}{
		{nil, entities.SentimentNeutral},
		{[]entities.Sentiment{entities.SentimentReassured}, entities.SentimentReassured},
		{[]entities.Sentiment{entities.SentimentReassured, entities.SentimentAnxious}, entities.SentimentReassured},
		{[]entities.Sentiment{entities.SentimentReassured, entities.SentimentAnxious, entities.SentimentAnxious}, entities.SentimentAnxious},
	}

	for _, tt := range tests {
		if got := mode(tt.values, entities.SentimentNeutral); got != tt.want {
			t.Errorf("mode(%v) = %q, want %q", tt.values, got, tt.want)
		}
	}
}

func TestPreview(t *testing.T) {
	short := "Only a little stiff."
	if got := preview(short); got != short {
		t.Errorf("expected short text unchanged, got %q", got)
	}

	long := strings.Repeat("é", 120)
	got := preview(long)
	if got != strings.Repeat("é", 100)+"..." {
		t.Errorf("expected 100 runes plus ellipsis, got %d runes", len([]rune(got)))
	}
}
