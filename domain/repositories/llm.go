package repositories

import "context"

// TextGenerator abstracts the hosted text-generation service.
// Implementations must be safe for concurrent use.
type TextGenerator interface {
	// Generate sends a single prompt and returns the model's reply.
	// A reply without any text is an error.
	Generate(ctx context.Context, prompt string, config GenerationConfig) (string, error)
	// Model names the underlying model
	Model() string
}

// GenerationConfig carries the per-call sampling parameters
type GenerationConfig struct {
	Temperature     float32
	MaxOutputTokens int32
}
