package entities

// Placeholders substituted for absent free-text fields
const (
	NotSpecified  = "Not specified"
	NotDocumented = "Not documented"
)

// MedicalEntities holds the entities extracted from a transcript
type MedicalEntities struct {
	PatientName   *string  `json:"patient_name" yaml:"patient_name"`
	Symptoms      []string `json:"symptoms" yaml:"symptoms"`
	Diagnosis     *string  `json:"diagnosis" yaml:"diagnosis"`
	Treatment     []string `json:"treatment" yaml:"treatment"`
	CurrentStatus string   `json:"current_status" yaml:"current_status"`
	Prognosis     *string  `json:"prognosis" yaml:"prognosis"`
	Keywords      []string `json:"keywords" yaml:"keywords"`
}

// Demographics describes the patient as far as the transcript reveals
type Demographics struct {
	Name   *string `json:"name" yaml:"name"`
	Age    *string `json:"age" yaml:"age"`
	Gender *string `json:"gender" yaml:"gender"`
}

// SymptomSummary groups symptoms by prominence
type SymptomSummary struct {
	Primary   []string `json:"primary" yaml:"primary"`
	Secondary []string `json:"secondary" yaml:"secondary"`
	Timeline  string   `json:"timeline" yaml:"timeline"`
}

// MedicalSummary is the structured medical report of an encounter
type MedicalSummary struct {
	PatientDemographics     Demographics   `json:"patient_demographics" yaml:"patient_demographics"`
	ChiefComplaint          string         `json:"chief_complaint" yaml:"chief_complaint"`
	HistoryOfPresentIllness string         `json:"history_of_present_illness" yaml:"history_of_present_illness"`
	Symptoms                SymptomSummary `json:"symptoms" yaml:"symptoms"`
	PreviousTreatments      []string       `json:"previous_treatments" yaml:"previous_treatments"`
	CurrentStatus           string         `json:"current_status" yaml:"current_status"`
	MedicalFindings         string         `json:"medical_findings" yaml:"medical_findings"`
	ClinicalNotes           string         `json:"clinical_notes" yaml:"clinical_notes"`
}

// Subjective is the patient-reported part of a SOAP note
type Subjective struct {
	ChiefComplaint          string `json:"chief_complaint" yaml:"chief_complaint"`
	HistoryOfPresentIllness string `json:"history_of_present_illness" yaml:"history_of_present_illness"`
}

// Objective holds observable findings
type Objective struct {
	PhysicalExam string `json:"physical_exam" yaml:"physical_exam"`
	Observations string `json:"observations" yaml:"observations"`
}

// Assessment holds the clinical assessment
type Assessment struct {
	Diagnosis string `json:"diagnosis" yaml:"diagnosis"`
	Severity  string `json:"severity" yaml:"severity"`
}

// Plan holds treatment and follow-up
type Plan struct {
	Treatment string `json:"treatment" yaml:"treatment"`
	FollowUp  string `json:"follow_up" yaml:"follow_up"`
}

// SOAPNote is a four-section clinical note
type SOAPNote struct {
	Subjective Subjective `json:"subjective" yaml:"subjective"`
	Objective  Objective  `json:"objective" yaml:"objective"`
	Assessment Assessment `json:"assessment" yaml:"assessment"`
	Plan       Plan       `json:"plan" yaml:"plan"`
}
