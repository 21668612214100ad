package schema

import (
	"strings"

	"github.com/satriahrh/notetaker/domain/entities"
)

// ValidateSentiment reads a sentiment reply and always resolves both labels to
// an enumerated value
func ValidateSentiment(raw any) entities.SentimentResult {
	root := Wrap(raw)
	return entities.SentimentResult{
		Sentiment: ClassifySentiment(root.Field("Sentiment").Text(string(entities.SentimentNeutral))),
		Intent:    ClassifyIntent(root.Field("Intent").Text(string(entities.IntentOther))),
	}
}

// ClassifySentiment maps a free-form label onto a Sentiment. Exact labels pass
// through; otherwise keyword containment decides, falling back to Neutral.
// The keyword rules are fuzzy and can misclassify labels like "not worried".
func ClassifySentiment(label string) entities.Sentiment {
	if s := entities.Sentiment(label); s.Valid() {
		return s
	}

	lower := strings.ToLower(label)
	switch {
	case containsAny(lower, "anxious", "worried", "concerned"):
		return entities.SentimentAnxious
	case containsAny(lower, "reassured", "relieved", "better"):
		return entities.SentimentReassured
	default:
		return entities.SentimentNeutral
	}
}

// ClassifyIntent maps a free-form label onto an Intent, falling back to Other
func ClassifyIntent(label string) entities.Intent {
	if i := entities.Intent(label); i.Valid() {
		return i
	}

	lower := strings.ToLower(label)
	switch {
	case containsAny(lower, "reassurance"):
		return entities.IntentSeekingReassurance
	case containsAny(lower, "symptom", "reporting"):
		return entities.IntentReportingSymptoms
	case containsAny(lower, "concern", "worried"):
		return entities.IntentExpressingConcern
	default:
		return entities.IntentOther
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
