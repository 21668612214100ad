package schema

import (
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Kind names the reply shape a conformance check runs against
type Kind string

const (
	KindEntities  Kind = "entities"
	KindSummary   Kind = "summary"
	KindSentiment Kind = "sentiment"
	KindSOAP      Kind = "soap"
	KindKeywords  Kind = "keywords"
)

// Shapes requested by the prompts. Optional members are unconstrained.
var replySchemas = map[Kind]string{
	KindEntities: `{
  "type": "object",
  "required": ["Symptoms", "Treatment", "Current_Status"],
  "properties": {
    "Patient_Name": {"type": ["string", "null"]},
    "Symptoms": {"type": "array", "items": {"type": "string"}},
    "Diagnosis": {"type": ["string", "null"]},
    "Treatment": {"type": "array", "items": {"type": "string"}},
    "Current_Status": {"type": "string"},
    "Prognosis": {"type": ["string", "null"]}
  }
}`,
	KindSummary: `{
  "type": "object",
  "required": ["Chief_Complaint", "Symptoms"],
  "properties": {
    "Patient_Demographics": {"type": "object"},
    "Chief_Complaint": {"type": "string"},
    "History_of_Present_Illness": {"type": "string"},
    "Symptoms": {
      "type": "object",
      "properties": {
        "Primary": {"type": "array", "items": {"type": "string"}},
        "Secondary": {"type": "array", "items": {"type": "string"}},
        "Timeline": {"type": "string"}
      }
    },
    "Previous_Treatments": {"type": "array", "items": {"type": "string"}},
    "Current_Status": {"type": "string"},
    "Medical_Findings": {"type": "string"},
    "Clinical_Notes": {"type": "string"}
  }
}`,
	KindSentiment: `{
  "type": "object",
  "required": ["Sentiment", "Intent"],
  "properties": {
    "Sentiment": {"enum": ["Anxious", "Neutral", "Reassured"]},
    "Intent": {"enum": ["Seeking reassurance", "Reporting symptoms", "Expressing concern", "Other"]}
  }
}`,
	KindSOAP: `{
  "type": "object",
  "required": ["Subjective", "Objective", "Assessment", "Plan"],
  "properties": {
    "Subjective": {"type": "object"},
    "Objective": {"type": "object"},
    "Assessment": {"type": "object"},
    "Plan": {"type": "object"}
  }
}`,
	KindKeywords: `{
  "oneOf": [
    {"type": "array", "items": {"type": "string"}},
    {"type": "object", "required": ["keywords"], "properties": {"keywords": {"type": "array"}}}
  ]
}`,
}

var (
	compileOnce sync.Once
	compiled    map[Kind]*jsonschema.Schema
	compileErr  error
)

func compileSchemas() {
	compiled = make(map[Kind]*jsonschema.Schema, len(replySchemas))
	for kind, src := range replySchemas {
		compiler := jsonschema.NewCompiler()
		url := string(kind) + ".json"
		if err := compiler.AddResource(url, strings.NewReader(src)); err != nil {
			compileErr = fmt.Errorf("add %s schema: %w", kind, err)
			return
		}
		s, err := compiler.Compile(url)
		if err != nil {
			compileErr = fmt.Errorf("compile %s schema: %w", kind, err)
			return
		}
		compiled[kind] = s
	}
}

// Conformance checks a decoded reply against the shape its prompt asked for
// and returns the violations. An empty result means the reply conforms.
// The validators accept non-conforming replies regardless.
func Conformance(kind Kind, raw any) []string {
	compileOnce.Do(compileSchemas)
	if compileErr != nil {
		return []string{compileErr.Error()}
	}

	s, ok := compiled[kind]
	if !ok {
		return []string{fmt.Sprintf("no schema for %q", kind)}
	}
	if err := s.Validate(raw); err != nil {
		return []string{err.Error()}
	}
	return nil
}
