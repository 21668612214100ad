package domain

import (
	"errors"
	"fmt"
)

// ErrConfiguration is wrapped by every ConfigurationError
var ErrConfiguration = errors.New("configuration error")

// ConfigurationError reports a missing or invalid setting. It is fatal and
// surfaces before any transcript is processed.
type ConfigurationError struct {
	Field   string
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}

// GenerationError means the generation service could not produce text
// within the retry budget.
type GenerationError struct {
	Attempts int
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("failed to generate text after %d attempts: %v", e.Attempts, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// MalformedResponseError means no structured reply parsed within the retry budget.
// Raw is the last unparsable text.
type MalformedResponseError struct {
	Attempts int
	Raw      string
	Err      error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("failed to parse JSON response after %d attempts: %v", e.Attempts, e.Err)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// InvalidFormatError is returned for an unsupported rendering format
type InvalidFormatError struct {
	Format string
}

func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("unknown format type: %s", e.Format)
}
