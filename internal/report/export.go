// Package report renders analysis reports for people and machines
package report

import (
	"bytes"
	"encoding/json"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/satriahrh/notetaker/domain"
	"github.com/satriahrh/notetaker/domain/entities"
)

// Format selects a rendering
type Format string

const (
	FormatJSON     Format = "json"
	FormatText     Format = "text"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
)

// Formats lists every supported format
var Formats = []Format{FormatJSON, FormatText, FormatYAML, FormatMarkdown}

// ParseFormat resolves a user-supplied format name. "md" and "yml" are accepted aliases.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json":
		return FormatJSON, nil
	case "text", "txt":
		return FormatText, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	default:
		return "", &domain.InvalidFormatError{Format: name}
	}
}

// ContentType is the HTTP media type of a rendering
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatYAML:
		return "application/yaml"
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Export renders the full report
func Export(r *entities.AnalysisReport, format Format) (string, error) {
	switch format {
	case FormatJSON:
		return marshalJSON(r)
	case FormatYAML:
		return marshalYAML(r)
	case FormatText:
		return renderText(r), nil
	case FormatMarkdown:
		return renderMarkdown(r), nil
	default:
		return "", &domain.InvalidFormatError{Format: string(format)}
	}
}

// ExportQuick renders a quick report
func ExportQuick(r *entities.QuickReport, format Format) (string, error) {
	switch format {
	case FormatJSON:
		return marshalJSON(r)
	case FormatYAML:
		return marshalYAML(r)
	case FormatText:
		return renderQuickText(r), nil
	case FormatMarkdown:
		return renderQuickMarkdown(r), nil
	default:
		return "", &domain.InvalidFormatError{Format: string(format)}
	}
}

func marshalJSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func marshalYAML(v any) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}
