package llm

import (
	"context"
	"strings"

	"github.com/satriahrh/notetaker/domain/repositories"
)

// MockGenerator returns canned replies so the pipeline can run offline.
// The reply is chosen from the task wording of the prompt.
type MockGenerator struct{}

var _ repositories.TextGenerator = (*MockGenerator)(nil)

// NewMockGenerator creates a new mock generator
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// Generate implements repositories.TextGenerator
func (m *MockGenerator) Generate(ctx context.Context, prompt string, _ repositories.GenerationConfig) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	switch {
	case strings.Contains(prompt, "Extract medical entities"):
		return mockEntities, nil
	case strings.Contains(prompt, "medical keywords"):
		return mockKeywords, nil
	case strings.Contains(prompt, "structured medical report"):
		return mockSummary, nil
	case strings.Contains(prompt, "Patient Statement:"):
		return mockSentiment(statementOf(prompt)), nil
	case strings.Contains(prompt, "SOAP note"):
		return mockSOAP, nil
	default:
		return "Patient recovering from whiplash after a car accident; physiotherapy completed, full recovery expected.", nil
	}
}

// Model implements repositories.TextGenerator
func (m *MockGenerator) Model() string {
	return "mock"
}

func statementOf(prompt string) string {
	_, rest, found := strings.Cut(prompt, "Patient Statement:")
	if !found {
		return ""
	}
	line, _, _ := strings.Cut(rest, "\n")
	return strings.ToLower(line)
}

func mockSentiment(statement string) string {
	switch {
	case strings.Contains(statement, "worried") || strings.Contains(statement, "hope") || strings.Contains(statement, "?"):
		return "```json\n{\"Sentiment\": \"Anxious\", \"Intent\": \"Seeking reassurance\"}\n```"
	case strings.Contains(statement, "relief") || strings.Contains(statement, "better") || strings.Contains(statement, "thank"):
		return `{"Sentiment": "Reassured", "Intent": "Other"}`
	default:
		return `{"Sentiment": "Neutral", "Intent": "Reporting symptoms"}`
	}
}

const mockEntities = `{
  "Patient_Name": "Janet Jones",
  "Symptoms": ["Neck pain", "Back pain", "Head impact"],
  "Diagnosis": "Whiplash injury",
  "Treatment": ["10 physiotherapy sessions", "Painkillers"],
  "Current_Status": "Occasional backache",
  "Prognosis": "Full recovery expected within six months"
}`

const mockKeywords = `["whiplash injury", "physiotherapy", "car accident", "neck pain", "painkillers"]`

const mockSummary = "```json\n" + `{
  "Patient_Demographics": {"Name": "Janet Jones", "Age": null, "Gender": "Female"},
  "Chief_Complaint": "Neck and back pain after a car accident",
  "History_of_Present_Illness": "Rear-ended on September 1st; pain for four weeks, improved with physiotherapy.",
  "Symptoms": {"Primary": ["Neck pain", "Back pain"], "Secondary": ["Trouble sleeping"], "Timeline": "Four weeks of pain, now occasional"},
  "Previous_Treatments": ["Physiotherapy", "Painkillers"],
  "Current_Status": "Occasional backache",
  "Medical_Findings": "Full range of motion, no tenderness",
  "Clinical_Notes": "No long-term damage expected"
}` + "\n```"

const mockSOAP = `{
  "Subjective": {"Chief_Complaint": "Neck and back pain", "History_of_Present_Illness": "Whiplash after a car accident, improving"},
  "Objective": {"Physical_Exam": "Full range of motion in cervical and lumbar spine, no tenderness", "Observations": "Normal posture and gait"},
  "Assessment": {"Diagnosis": "Whiplash injury", "Severity": "Mild, improving"},
  "Plan": {"Treatment": "Continue physiotherapy as needed; analgesics for pain", "Follow-Up": "Return if pain worsens or persists beyond six months"}
}`
