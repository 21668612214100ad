package entities

import (
	"encoding/json"
	"time"
)

// ErrorRecord replaces a report section whose task failed
type ErrorRecord struct {
	Message string `json:"error" yaml:"error"`
}

// Section holds either a validated record or the ErrorRecord of its failed task.
// A Section with neither was not requested.
type Section[T any] struct {
	Value *T
	Err   *ErrorRecord
}

// Succeeded wraps a validated record
func Succeeded[T any](v T) Section[T] {
	return Section[T]{Value: &v}
}

// Failed records the failure of the task producing the section
func Failed[T any](err error) Section[T] {
	return Section[T]{Err: &ErrorRecord{Message: err.Error()}}
}

// OK reports whether the section holds a validated record
func (s Section[T]) OK() bool {
	return s.Value != nil && s.Err == nil
}

// Omitted reports whether the section was never requested
func (s Section[T]) Omitted() bool {
	return s.Value == nil && s.Err == nil
}

func (s Section[T]) MarshalJSON() ([]byte, error) {
	switch {
	case s.Err != nil:
		return json.Marshal(s.Err)
	case s.Value != nil:
		return json.Marshal(s.Value)
	default:
		return []byte("{}"), nil
	}
}

func (s *Section[T]) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*s = Section[T]{}
	if len(raw) == 0 {
		return nil
	}

	if _, ok := raw["error"]; ok && len(raw) == 1 {
		var rec ErrorRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return err
		}
		s.Err = &rec
		return nil
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	s.Value = &v
	return nil
}

// MarshalYAML mirrors MarshalJSON for the yaml export
func (s Section[T]) MarshalYAML() (interface{}, error) {
	switch {
	case s.Err != nil:
		return s.Err, nil
	case s.Value != nil:
		return s.Value, nil
	default:
		return map[string]string{}, nil
	}
}

// AnalysisReport is the aggregate result of processing one transcript
type AnalysisReport struct {
	ID          string                   `json:"id" yaml:"id"`
	GeneratedAt time.Time                `json:"generated_at" yaml:"generated_at"`
	Model       string                   `json:"model" yaml:"model"`
	Entities    Section[MedicalEntities] `json:"entities" yaml:"entities"`
	Summary     Section[MedicalSummary]  `json:"summary" yaml:"summary"`
	Sentiment   Section[SentimentReport] `json:"sentiment" yaml:"sentiment"`
	SOAP        Section[SOAPNote]        `json:"soap" yaml:"soap"`
}

// QuickReport carries only entities and sentiment
type QuickReport struct {
	ID          string                   `json:"id" yaml:"id"`
	GeneratedAt time.Time                `json:"generated_at" yaml:"generated_at"`
	Model       string                   `json:"model" yaml:"model"`
	Entities    Section[MedicalEntities] `json:"entities" yaml:"entities"`
	Sentiment   Section[SentimentReport] `json:"sentiment" yaml:"sentiment"`
}
