package api

import "github.com/satriahrh/notetaker/domain/entities"

// AnalyzeRequest is the payload of POST /api/v1/analyze
type AnalyzeRequest struct {
	Transcript  string `json:"transcript"`
	IncludeSOAP *bool  `json:"include_soap,omitempty"`
	Format      string `json:"format,omitempty"`
}

// QuickRequest is the payload of POST /api/v1/quick
type QuickRequest struct {
	Transcript string `json:"transcript"`
	Format     string `json:"format,omitempty"`
}

// SegmentsRequest is the payload of POST /api/v1/segments
type SegmentsRequest struct {
	Transcript string `json:"transcript"`
}

// SegmentsResponse lists every labeled utterance and the patient-only projection
type SegmentsResponse struct {
	Segments        []entities.DialogueSegment `json:"segments"`
	PatientSegments []string                   `json:"patient_segments"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
