package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/satriahrh/notetaker/domain/entities"
)

const (
	textWidth = 60
	na        = "N/A"
)

func renderText(r *entities.AnalysisReport) string {
	var b strings.Builder
	textHeader(&b, r.ID, r.GeneratedAt, r.Model)
	textSection(&b, "MEDICAL ENTITIES", r.Entities, textEntities)
	textSection(&b, "MEDICAL SUMMARY", r.Summary, textSummary)
	textSection(&b, "SENTIMENT ANALYSIS", r.Sentiment, textSentiment)
	textSection(&b, "SOAP NOTE", r.SOAP, textSOAP)
	return b.String()
}

func renderQuickText(r *entities.QuickReport) string {
	var b strings.Builder
	textHeader(&b, r.ID, r.GeneratedAt, r.Model)
	textSection(&b, "MEDICAL ENTITIES", r.Entities, textEntities)
	textSection(&b, "SENTIMENT ANALYSIS", r.Sentiment, textSentiment)
	return b.String()
}

func textHeader(b *strings.Builder, id string, at time.Time, model string) {
	rule := strings.Repeat("=", textWidth)
	fmt.Fprintf(b, "%s\nMEDICAL TRANSCRIPT ANALYSIS RESULTS\n%s\n", rule, rule)
	if id != "" {
		fmt.Fprintf(b, "Report ID: %s\n", id)
	}
	if !at.IsZero() {
		fmt.Fprintf(b, "Generated: %s\n", at.Format(time.RFC3339))
	}
	if model != "" {
		fmt.Fprintf(b, "Model: %s\n", model)
	}
	b.WriteString("\n")
}

// textSection writes nothing for a section that was not requested
func textSection[T any](b *strings.Builder, title string, s entities.Section[T], body func(*strings.Builder, *T)) {
	if s.Omitted() {
		return
	}
	fmt.Fprintf(b, "%s:\n%s\n", title, strings.Repeat("-", textWidth))
	if s.Err != nil {
		fmt.Fprintf(b, "Error: %s\n", s.Err.Message)
	} else {
		body(b, s.Value)
	}
	b.WriteString("\n")
}

func textEntities(b *strings.Builder, e *entities.MedicalEntities) {
	fmt.Fprintf(b, "Patient Name: %s\n", optional(e.PatientName))
	fmt.Fprintf(b, "Symptoms: %s\n", joinList(e.Symptoms))
	fmt.Fprintf(b, "Diagnosis: %s\n", optional(e.Diagnosis))
	fmt.Fprintf(b, "Treatment: %s\n", joinList(e.Treatment))
	fmt.Fprintf(b, "Current Status: %s\n", e.CurrentStatus)
	fmt.Fprintf(b, "Prognosis: %s\n", optional(e.Prognosis))
	if len(e.Keywords) > 0 {
		fmt.Fprintf(b, "Keywords: %s\n", joinList(e.Keywords))
	}
}

func textSummary(b *strings.Builder, s *entities.MedicalSummary) {
	d := s.PatientDemographics
	fmt.Fprintf(b, "Patient: %s (age %s, gender %s)\n", optional(d.Name), optional(d.Age), optional(d.Gender))
	fmt.Fprintf(b, "Chief Complaint: %s\n", s.ChiefComplaint)
	fmt.Fprintf(b, "History of Present Illness: %s\n", s.HistoryOfPresentIllness)
	fmt.Fprintf(b, "Primary Symptoms: %s\n", joinList(s.Symptoms.Primary))
	fmt.Fprintf(b, "Secondary Symptoms: %s\n", joinList(s.Symptoms.Secondary))
	fmt.Fprintf(b, "Timeline: %s\n", s.Symptoms.Timeline)
	fmt.Fprintf(b, "Previous Treatments: %s\n", joinList(s.PreviousTreatments))
	fmt.Fprintf(b, "Current Status: %s\n", s.CurrentStatus)
	fmt.Fprintf(b, "Medical Findings: %s\n", s.MedicalFindings)
	fmt.Fprintf(b, "Clinical Notes: %s\n", s.ClinicalNotes)
}

func textSentiment(b *strings.Builder, s *entities.SentimentReport) {
	fmt.Fprintf(b, "Overall Sentiment: %s\n", s.OverallSentiment)
	fmt.Fprintf(b, "Overall Intent: %s\n", s.OverallIntent)
	fmt.Fprintf(b, "Segments Analyzed: %d\n", s.SegmentsAnalyzed)
	for _, d := range s.SegmentDetails {
		fmt.Fprintf(b, "  - [%s / %s] %s\n", d.Sentiment, d.Intent, oneLine(d.Text))
	}
}

func textSOAP(b *strings.Builder, n *entities.SOAPNote) {
	b.WriteString("SUBJECTIVE:\n")
	fmt.Fprintf(b, "  Chief Complaint: %s\n", n.Subjective.ChiefComplaint)
	fmt.Fprintf(b, "  History of Present Illness: %s\n\n", n.Subjective.HistoryOfPresentIllness)

	b.WriteString("OBJECTIVE:\n")
	fmt.Fprintf(b, "  Physical Exam: %s\n", n.Objective.PhysicalExam)
	fmt.Fprintf(b, "  Observations: %s\n\n", n.Objective.Observations)

	b.WriteString("ASSESSMENT:\n")
	fmt.Fprintf(b, "  Diagnosis: %s\n", n.Assessment.Diagnosis)
	fmt.Fprintf(b, "  Severity: %s\n\n", n.Assessment.Severity)

	b.WriteString("PLAN:\n")
	fmt.Fprintf(b, "  Treatment: %s\n", n.Plan.Treatment)
	fmt.Fprintf(b, "  Follow-Up: %s\n", n.Plan.FollowUp)
}

func optional(s *string) string {
	if s == nil || *s == "" {
		return na
	}
	return *s
}

func joinList(items []string) string {
	if len(items) == 0 {
		return "None"
	}
	return strings.Join(items, ", ")
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
