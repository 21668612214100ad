package schema

import (
	"strings"

	"github.com/satriahrh/notetaker/domain/entities"
)

// ValidateEntities reads an entity-extraction reply. Keywords are left empty;
// they come from a separate request.
func ValidateEntities(raw any) entities.MedicalEntities {
	root := Wrap(raw)
	return entities.MedicalEntities{
		PatientName:   root.Field("Patient_Name").OptionalText(),
		Symptoms:      root.Field("Symptoms").List(),
		Diagnosis:     root.Field("Diagnosis").OptionalText(),
		Treatment:     root.Field("Treatment").List(),
		CurrentStatus: root.Field("Current_Status").Text(entities.NotSpecified),
		Prognosis:     root.Field("Prognosis").OptionalText(),
		Keywords:      []string{},
	}
}

// ValidateSummary reads a structured-summary reply
func ValidateSummary(raw any) entities.MedicalSummary {
	root := Wrap(raw)

	demo := root.Field("Patient_Demographics")
	symptoms := root.Field("Symptoms")

	return entities.MedicalSummary{
		PatientDemographics: entities.Demographics{
			Name:   demo.Field("Name").OptionalText(),
			Age:    demo.Field("Age").OptionalText(),
			Gender: demo.Field("Gender").OptionalText(),
		},
		ChiefComplaint:          root.Field("Chief_Complaint").Text(entities.NotSpecified),
		HistoryOfPresentIllness: root.Field("History_of_Present_Illness").Text(entities.NotDocumented),
		Symptoms: entities.SymptomSummary{
			Primary:   symptoms.Field("Primary").List(),
			Secondary: symptoms.Field("Secondary").List(),
			Timeline:  symptoms.Field("Timeline").Text(entities.NotSpecified),
		},
		PreviousTreatments: root.Field("Previous_Treatments").List(),
		CurrentStatus:      root.Field("Current_Status").Text(entities.NotSpecified),
		MedicalFindings:    root.Field("Medical_Findings").Text(entities.NotDocumented),
		ClinicalNotes:      root.Field("Clinical_Notes").Text(entities.NotDocumented),
	}
}

// ValidateSOAP reads a SOAP-note reply. Every leaf defaults to NotDocumented.
func ValidateSOAP(raw any) entities.SOAPNote {
	root := Wrap(raw)

	s := root.Field("Subjective")
	o := root.Field("Objective")
	a := root.Field("Assessment")
	p := root.Field("Plan")

	return entities.SOAPNote{
		Subjective: entities.Subjective{
			ChiefComplaint:          s.Field("Chief_Complaint").Text(entities.NotDocumented),
			HistoryOfPresentIllness: s.Field("History_of_Present_Illness").Text(entities.NotDocumented),
		},
		Objective: entities.Objective{
			PhysicalExam: o.Field("Physical_Exam").Text(entities.NotDocumented),
			Observations: o.Field("Observations").Text(entities.NotDocumented),
		},
		Assessment: entities.Assessment{
			Diagnosis: a.Field("Diagnosis").Text(entities.NotDocumented),
			Severity:  a.Field("Severity").Text(entities.NotDocumented),
		},
		Plan: entities.Plan{
			Treatment: p.Field("Treatment").Text(entities.NotDocumented),
			FollowUp:  p.Field("Follow-Up").Text(entities.NotDocumented),
		},
	}
}

// ParseKeywords accepts either a JSON array or an object with a "keywords" array
func ParseKeywords(raw any) []string {
	root := Wrap(raw)
	if root.IsMap() {
		return root.Field("keywords").List()
	}
	return root.List()
}

// MergeKeywords unions the lists case-insensitively in first-seen order and
// caps the result at limit. A limit of zero or less means no cap.
func MergeKeywords(limit int, lists ...[]string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, list := range lists {
		for _, kw := range list {
			kw = strings.TrimSpace(kw)
			if kw == "" {
				continue
			}
			key := strings.ToLower(kw)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, kw)
			if limit > 0 && len(out) == limit {
				return out
			}
		}
	}
	return out
}
