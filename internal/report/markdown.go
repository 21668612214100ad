package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/satriahrh/notetaker/domain/entities"
)

func renderMarkdown(r *entities.AnalysisReport) string {
	var b strings.Builder
	mdHeader(&b, r.ID, r.GeneratedAt, r.Model)
	mdSection(&b, "Medical Entities", r.Entities, mdEntities)
	mdSection(&b, "Medical Summary", r.Summary, mdSummary)
	mdSection(&b, "Sentiment Analysis", r.Sentiment, mdSentiment)
	mdSection(&b, "SOAP Note", r.SOAP, mdSOAP)
	return strings.TrimRight(b.String(), "\n") + "\n"
}

func renderQuickMarkdown(r *entities.QuickReport) string {
	var b strings.Builder
	mdHeader(&b, r.ID, r.GeneratedAt, r.Model)
	mdSection(&b, "Medical Entities", r.Entities, mdEntities)
	mdSection(&b, "Sentiment Analysis", r.Sentiment, mdSentiment)
	return strings.TrimRight(b.String(), "\n") + "\n"
}

func mdHeader(b *strings.Builder, id string, at time.Time, model string) {
	b.WriteString("# Medical Transcript Analysis\n\n")
	if id != "" {
		fmt.Fprintf(b, "- **Report ID:** %s\n", id)
	}
	if !at.IsZero() {
		fmt.Fprintf(b, "- **Generated:** %s\n", at.Format(time.RFC3339))
	}
	if model != "" {
		fmt.Fprintf(b, "- **Model:** %s\n", model)
	}
	b.WriteString("\n")
}

func mdSection[T any](b *strings.Builder, title string, s entities.Section[T], body func(*strings.Builder, *T)) {
	if s.Omitted() {
		return
	}
	fmt.Fprintf(b, "## %s\n\n", title)
	if s.Err != nil {
		fmt.Fprintf(b, "**Error:** %s\n\n", s.Err.Message)
		return
	}
	body(b, s.Value)
}

func mdField(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "**%s:** %s\n\n", label, value)
}

func mdEntities(b *strings.Builder, e *entities.MedicalEntities) {
	mdField(b, "Patient Name", optional(e.PatientName))
	mdField(b, "Symptoms", joinList(e.Symptoms))
	mdField(b, "Diagnosis", optional(e.Diagnosis))
	mdField(b, "Treatment", joinList(e.Treatment))
	mdField(b, "Current Status", e.CurrentStatus)
	mdField(b, "Prognosis", optional(e.Prognosis))
	if len(e.Keywords) > 0 {
		mdField(b, "Keywords", joinList(e.Keywords))
	}
}

func mdSummary(b *strings.Builder, s *entities.MedicalSummary) {
	d := s.PatientDemographics
	mdField(b, "Patient", fmt.Sprintf("%s (age %s, gender %s)", optional(d.Name), optional(d.Age), optional(d.Gender)))
	mdField(b, "Chief Complaint", s.ChiefComplaint)
	mdField(b, "History of Present Illness", s.HistoryOfPresentIllness)
	mdField(b, "Primary Symptoms", joinList(s.Symptoms.Primary))
	mdField(b, "Secondary Symptoms", joinList(s.Symptoms.Secondary))
	mdField(b, "Timeline", s.Symptoms.Timeline)
	mdField(b, "Previous Treatments", joinList(s.PreviousTreatments))
	mdField(b, "Current Status", s.CurrentStatus)
	mdField(b, "Medical Findings", s.MedicalFindings)
	mdField(b, "Clinical Notes", s.ClinicalNotes)
}

func mdSentiment(b *strings.Builder, s *entities.SentimentReport) {
	mdField(b, "Overall Sentiment", string(s.OverallSentiment))
	mdField(b, "Overall Intent", string(s.OverallIntent))
	mdField(b, "Segments Analyzed", fmt.Sprint(s.SegmentsAnalyzed))
	if len(s.SegmentDetails) == 0 {
		return
	}
	b.WriteString("| Segment | Sentiment | Intent |\n|---|---|---|\n")
	for _, d := range s.SegmentDetails {
		text := strings.ReplaceAll(oneLine(d.Text), "|", `\|`)
		fmt.Fprintf(b, "| %s | %s | %s |\n", text, d.Sentiment, d.Intent)
	}
	b.WriteString("\n")
}

func mdSOAP(b *strings.Builder, n *entities.SOAPNote) {
	b.WriteString("### Subjective\n\n")
	mdField(b, "Chief Complaint", n.Subjective.ChiefComplaint)
	mdField(b, "History of Present Illness", n.Subjective.HistoryOfPresentIllness)

	b.WriteString("### Objective\n\n")
	mdField(b, "Physical Exam", n.Objective.PhysicalExam)
	mdField(b, "Observations", n.Objective.Observations)

	b.WriteString("### Assessment\n\n")
	mdField(b, "Diagnosis", n.Assessment.Diagnosis)
	mdField(b, "Severity", n.Assessment.Severity)

	b.WriteString("### Plan\n\n")
	mdField(b, "Treatment", n.Plan.Treatment)
	mdField(b, "Follow-Up", n.Plan.FollowUp)
}
