// Package generation is the single chokepoint for calls to the text-generation
// service. It owns the retry and backoff policy and turns raw replies into
// parsed JSON values.
package generation

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/satriahrh/notetaker/domain"
	"github.com/satriahrh/notetaker/domain/repositories"
	"github.com/satriahrh/notetaker/internal/prompts"
)

const (
	DefaultMaxRetries            = 3
	DefaultRetryDelay            = time.Second
	DefaultTextTemperature       = 0.3
	DefaultStructuredTemperature = 0.2
	DefaultMaxOutputTokens       = 8192
)

// Options configures a Client. Zero MaxRetries and MaxOutputTokens select the
// defaults; a zero RetryDelay retries immediately.
type Options struct {
	MaxRetries      int
	RetryDelay      time.Duration
	MaxOutputTokens int32
}

// Client wraps a TextGenerator with retries. It is read-only after
// construction and safe to share between goroutines.
type Client struct {
	generator       repositories.TextGenerator
	logger          *zap.Logger
	maxRetries      int
	retryDelay      time.Duration
	maxOutputTokens int32
	backoff         func(delay time.Duration, maxRetries int) retry.Backoff
}

// NewClient creates a new generation client
func NewClient(generator repositories.TextGenerator, opts Options, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = DefaultMaxRetries
	}
	if opts.RetryDelay < 0 {
		opts.RetryDelay = DefaultRetryDelay
	}
	if opts.MaxOutputTokens <= 0 {
		opts.MaxOutputTokens = DefaultMaxOutputTokens
	}

	return &Client{
		generator:       generator,
		logger:          logger,
		maxRetries:      opts.MaxRetries,
		retryDelay:      opts.RetryDelay,
		maxOutputTokens: opts.MaxOutputTokens,
		backoff:         linearBackoff,
	}
}

// Model names the model behind the client
func (c *Client) Model() string {
	return c.generator.Model()
}

type callSettings struct {
	maxRetries  int
	retryDelay  time.Duration
	temperature float32
}

// CallOption overrides a client default for one call
type CallOption func(*callSettings)

func WithTemperature(t float32) CallOption {
	return func(s *callSettings) { s.temperature = t }
}

func WithMaxRetries(n int) CallOption {
	return func(s *callSettings) {
		if n > 0 {
			s.maxRetries = n
		}
	}
}

func WithRetryDelay(d time.Duration) CallOption {
	return func(s *callSettings) {
		if d >= 0 {
			s.retryDelay = d
		}
	}
}

func (c *Client) settings(temperature float32, opts []CallOption) callSettings {
	s := callSettings{
		maxRetries:  c.maxRetries,
		retryDelay:  c.retryDelay,
		temperature: temperature,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// GenerateText sends prompt to the generation service. Any failure is retried
// up to the retry budget, waiting retryDelay*attempt between attempts.
// Exhaustion returns a *domain.GenerationError.
func (c *Client) GenerateText(ctx context.Context, prompt string, opts ...CallOption) (string, error) {
	s := c.settings(DefaultTextTemperature, opts)
	config := repositories.GenerationConfig{
		Temperature:     s.temperature,
		MaxOutputTokens: c.maxOutputTokens,
	}

	var text string
	var lastErr error
	attempts := 0
	err := retry.Do(ctx, c.backoff(s.retryDelay, s.maxRetries), func(ctx context.Context) error {
		attempts++
		reply, err := c.generator.Generate(ctx, prompt, config)
		if err != nil {
			lastErr = err
			if attempts < s.maxRetries {
				c.logger.Warn("Failed to generate content, retrying",
					zap.Int("attempt", attempts),
					zap.Int("max_retries", s.maxRetries),
					zap.Error(err))
			}
			return retry.RetryableError(err)
		}
		text = reply
		return nil
	})
	if err == nil {
		return text, nil
	}

	// Cancellation during a backoff keeps the provider error alongside it
	if lastErr != nil && err != lastErr {
		err = errors.Join(lastErr, err)
	}
	return "", &domain.GenerationError{Attempts: attempts, Err: err}
}

// GenerateStructured asks for a JSON reply and parses it. Each attempt makes
// exactly one generation call; a reply that does not parse triggers a fresh
// generation after the usual backoff. A generation failure is returned as-is.
// Exhaustion returns a *domain.MalformedResponseError carrying the last reply.
func (c *Client) GenerateStructured(ctx context.Context, prompt string, opts ...CallOption) (any, error) {
	s := c.settings(DefaultStructuredTemperature, opts)
	structuredPrompt := prompts.WithStructuredOutput(prompt)

	var value any
	var raw string
	var parseErr, genErr error
	attempts := 0
	err := retry.Do(ctx, c.backoff(s.retryDelay, s.maxRetries), func(ctx context.Context) error {
		attempts++
		text, err := c.GenerateText(ctx, structuredPrompt, WithTemperature(s.temperature), WithMaxRetries(1))
		if err != nil {
			genErr = err
			return err
		}

		raw = StripFences(text)
		var parsed any
		if parseErr = json.Unmarshal([]byte(raw), &parsed); parseErr != nil {
			if attempts < s.maxRetries {
				c.logger.Warn("Failed to parse structured response, retrying",
					zap.Int("attempt", attempts),
					zap.Int("max_retries", s.maxRetries),
					zap.String("response_preview", raw[:min(80, len(raw))]),
					zap.Error(parseErr))
			}
			return retry.RetryableError(parseErr)
		}
		value = parsed
		return nil
	})

	switch {
	case err == nil:
		return value, nil
	case genErr != nil:
		return nil, genErr
	case err == parseErr:
		return nil, &domain.MalformedResponseError{Attempts: attempts, Raw: raw, Err: parseErr}
	default:
		return nil, &domain.GenerationError{Attempts: attempts, Err: errors.Join(parseErr, err)}
	}
}

// linearBackoff waits delay*n before the n-th retry and allows maxRetries
// attempts in total
func linearBackoff(delay time.Duration, maxRetries int) retry.Backoff {
	var retries int64
	next := retry.BackoffFunc(func() (time.Duration, bool) {
		retries++
		return delay * time.Duration(retries), false
	})
	return retry.WithMaxRetries(uint64(max(maxRetries-1, 0)), next)
}

// StripFences removes a leading ``` or ```json fence and a trailing ``` fence.
// The fence label may be followed by a newline, a space or the JSON itself.
func StripFences(text string) string {
	text = strings.TrimSpace(text)
	if rest, ok := strings.CutPrefix(text, "```"); ok {
		text = rest
		labelEnd := strings.IndexFunc(text, func(r rune) bool { return !isLetter(r) })
		if labelEnd < 0 {
			text = ""
		} else if r, _ := utf8.DecodeRuneInString(text[labelEnd:]); r == '{' || r == '[' || unicode.IsSpace(r) {
			text = text[labelEnd:]
		}
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

func isLetter(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'
}
