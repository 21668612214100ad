package generation

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap/zaptest"

	"github.com/satriahrh/notetaker/domain"
	"github.com/satriahrh/notetaker/domain/repositories"
	"github.com/satriahrh/notetaker/internal/prompts"
)

type reply struct {
	text string
	err  error
}

// scriptedGenerator replays a fixed sequence of replies and records every call
type scriptedGenerator struct {
	mu      sync.Mutex
	replies []reply
	prompts []string
	configs []repositories.GenerationConfig
	// onCall runs before each reply is returned
	onCall func()
}

func (g *scriptedGenerator) Generate(_ context.Context, prompt string, config repositories.GenerationConfig) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.onCall != nil {
		g.onCall()
	}
	g.prompts = append(g.prompts, prompt)
	g.configs = append(g.configs, config)
	if len(g.replies) == 0 {
		return "", errors.New("no scripted reply left")
	}
	r := g.replies[0]
	g.replies = g.replies[1:]
	return r.text, r.err
}

func (g *scriptedGenerator) Model() string { return "scripted" }

func (g *scriptedGenerator) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.prompts)
}

func newTestClient(t *testing.T, gen repositories.TextGenerator) (*Client, *[]time.Duration) {
	t.Helper()
	client := NewClient(gen, Options{RetryDelay: time.Second}, zaptest.NewLogger(t))
	var slept []time.Duration
	client.backoff = func(delay time.Duration, maxRetries int) retry.Backoff {
		schedule := linearBackoff(delay, maxRetries)
		return retry.BackoffFunc(func() (time.Duration, bool) {
			d, stop := schedule.Next()
			if !stop {
				slept = append(slept, d)
			}
			return 0, stop
		})
	}
	return client, &slept
}

func TestGenerateTextSucceedsAfterRetries(t *testing.T) {
	gen := &scriptedGenerator{replies: []reply{
		{err: errors.New("quota exceeded")},
		{err: errors.New("connection reset")},
		{text: "hello"},
	}}
	client, slept := newTestClient(t, gen)

	text, err := client.GenerateText(context.Background(), "say hello", WithTemperature(0.4))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "hello" {
		t.Errorf("expected hello, got %q", text)
	}
	if gen.calls() != 3 {
		t.Errorf("expected 3 calls, got %d", gen.calls())
	}

	want := []time.Duration{time.Second, 2 * time.Second}
	if len(*slept) != len(want) {
		t.Fatalf("expected %d sleeps, got %v", len(want), *slept)
	}
	for i, d := range want {
		if (*slept)[i] != d {
			t.Errorf("sleep %d: expected %s, got %s", i, d, (*slept)[i])
		}
	}

	for _, cfg := range gen.configs {
		if cfg.Temperature != 0.4 {
			t.Errorf("expected temperature 0.4, got %v", cfg.Temperature)
		}
		if cfg.MaxOutputTokens != DefaultMaxOutputTokens {
			t.Errorf("expected max output tokens %d, got %d", DefaultMaxOutputTokens, cfg.MaxOutputTokens)
		}
	}
}

func TestGenerateTextExhaustsRetries(t *testing.T) {
	gen := &scriptedGenerator{replies: []reply{
		{err: errors.New("unavailable")},
		{err: errors.New("unavailable")},
		{err: errors.New("blocked by safety filter")},
	}}
	client, slept := newTestClient(t, gen)

	_, err := client.GenerateText(context.Background(), "prompt")
	var genErr *domain.GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected GenerationError, got %v", err)
	}
	if genErr.Attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", genErr.Attempts)
	}
	if !strings.Contains(err.Error(), "blocked by safety filter") {
		t.Errorf("expected last error in message, got %q", err.Error())
	}
	if len(*slept) != 2 {
		t.Errorf("expected no sleep after the final attempt, got %v", *slept)
	}
}

func TestGenerateTextStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gen := &scriptedGenerator{
		replies: []reply{
			{err: errors.New("quota exceeded")},
			{text: "never reached"},
		},
		onCall: cancel,
	}
	client := NewClient(gen, Options{RetryDelay: time.Hour}, zaptest.NewLogger(t))

	_, err := client.GenerateText(ctx, "prompt")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if !strings.Contains(err.Error(), "quota exceeded") {
		t.Errorf("expected the provider error to be kept, got %q", err.Error())
	}
	var genErr *domain.GenerationError
	if !errors.As(err, &genErr) || genErr.Attempts != 1 {
		t.Errorf("expected a GenerationError after 1 attempt, got %v", err)
	}
	if gen.calls() != 1 {
		t.Errorf("expected 1 call, got %d", gen.calls())
	}
}

func TestGenerateStructuredStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gen := &scriptedGenerator{
		replies: []reply{{text: "not json"}, {text: "{}"}},
		onCall:  cancel,
	}
	client := NewClient(gen, Options{RetryDelay: time.Hour}, zaptest.NewLogger(t))

	_, err := client.GenerateStructured(ctx, "prompt")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	var syntaxErr *json.SyntaxError
	if !errors.As(err, &syntaxErr) {
		t.Errorf("expected the parse error to be kept, got %v", err)
	}
	if gen.calls() != 1 {
		t.Errorf("expected 1 call, got %d", gen.calls())
	}
}

func TestLinearBackoff(t *testing.T) {
	b := linearBackoff(time.Second, 4)

	for i, want := range []time.Duration{time.Second, 2 * time.Second, 3 * time.Second} {
		d, stop := b.Next()
		if stop || d != want {
			t.Fatalf("retry %d: expected %s, got %s (stop=%v)", i+1, want, d, stop)
		}
	}
	if _, stop := b.Next(); !stop {
		t.Error("expected the schedule to stop after 3 retries")
	}

	if _, stop := linearBackoff(time.Second, 1).Next(); !stop {
		t.Error("expected a single-attempt budget to never retry")
	}
}

func TestGenerateStructuredStripsFences(t *testing.T) {
	gen := &scriptedGenerator{replies: []reply{
		{text: "```json\n{\"Sentiment\": \"Anxious\"}\n```"},
	}}
	client, _ := newTestClient(t, gen)

	value, err := client.GenerateStructured(context.Background(), "classify")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	obj, ok := value.(map[string]any)
	if !ok || obj["Sentiment"] != "Anxious" {
		t.Fatalf("unexpected value: %#v", value)
	}

	if !strings.HasSuffix(gen.prompts[0], prompts.StructuredOutputInstruction) {
		t.Errorf("expected strict-output instruction appended, got %q", gen.prompts[0])
	}
	if gen.configs[0].Temperature != DefaultStructuredTemperature {
		t.Errorf("expected structured temperature %v, got %v", DefaultStructuredTemperature, gen.configs[0].Temperature)
	}
}

func TestGenerateStructuredRetriesParseFailures(t *testing.T) {
	gen := &scriptedGenerator{replies: []reply{
		{text: "Sure! Here is the JSON you asked for"},
		{text: "```\n[\"neck pain\", \"whiplash\"]\n```"},
	}}
	client, slept := newTestClient(t, gen)

	value, err := client.GenerateStructured(context.Background(), "keywords")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	list, ok := value.([]any)
	if !ok || len(list) != 2 {
		t.Fatalf("unexpected value: %#v", value)
	}
	if len(*slept) != 1 || (*slept)[0] != time.Second {
		t.Errorf("expected one 1s backoff, got %v", *slept)
	}
}

func TestGenerateStructuredMalformed(t *testing.T) {
	gen := &scriptedGenerator{replies: []reply{
		{text: "not json"},
		{text: "{broken"},
		{text: "still {not} json"},
	}}
	client, _ := newTestClient(t, gen)

	_, err := client.GenerateStructured(context.Background(), "prompt")
	var malformed *domain.MalformedResponseError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedResponseError, got %v", err)
	}
	if malformed.Attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", malformed.Attempts)
	}
	if malformed.Raw != "still {not} json" {
		t.Errorf("expected last raw text, got %q", malformed.Raw)
	}
	if gen.calls() != 3 {
		t.Errorf("expected 3 generation calls, got %d", gen.calls())
	}
}

func TestGenerateStructuredPropagatesGenerationFailure(t *testing.T) {
	gen := &scriptedGenerator{replies: []reply{
		{err: errors.New("permission denied")},
		{text: `{"ok": true}`},
	}}
	client, slept := newTestClient(t, gen)

	_, err := client.GenerateStructured(context.Background(), "prompt")
	var genErr *domain.GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected GenerationError, got %v", err)
	}
	if genErr.Attempts != 1 {
		t.Errorf("expected the inner call to make a single attempt, got %d", genErr.Attempts)
	}
	if gen.calls() != 1 {
		t.Errorf("expected no further generation, got %d calls", gen.calls())
	}
	if len(*slept) != 0 {
		t.Errorf("expected no backoff, got %v", *slept)
	}
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a": 1}`, `{"a": 1}`},
		{"json fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"unlabeled fence", "```\n[1, 2]\n```", `[1, 2]`},
		{"upper label", "```JSON\n{}\n```", `{}`},
		{"single line", "```json{\"a\": 1}```", `{"a": 1}`},
		{"label then space", "```json {\"a\":1}\n```", `{"a":1}`},
		{"label then space array", "```json [1]```", `[1]`},
		{"surrounding whitespace", "\n\n  ```json\n{}\n```  \n", `{}`},
		{"only trailing fence", "{}\n```", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripFences(tt.in); got != tt.want {
				t.Errorf("StripFences(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
