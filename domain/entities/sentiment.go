package entities

// Sentiment is the emotional state expressed by the patient
type Sentiment string

const (
	SentimentAnxious   Sentiment = "Anxious"
	SentimentNeutral   Sentiment = "Neutral"
	SentimentReassured Sentiment = "Reassured"
)

// Sentiments lists every sentiment in tie-break order
var Sentiments = []Sentiment{SentimentAnxious, SentimentNeutral, SentimentReassured}

// Intent is what the patient is trying to achieve with an utterance
type Intent string

const (
	IntentSeekingReassurance Intent = "Seeking reassurance"
	IntentReportingSymptoms  Intent = "Reporting symptoms"
	IntentExpressingConcern  Intent = "Expressing concern"
	IntentOther              Intent = "Other"
)

// Intents lists every intent in tie-break order
var Intents = []Intent{IntentSeekingReassurance, IntentReportingSymptoms, IntentExpressingConcern, IntentOther}

// Valid reports whether s is one of the enumerated sentiments
func (s Sentiment) Valid() bool {
	for _, v := range Sentiments {
		if s == v {
			return true
		}
	}
	return false
}

// Valid reports whether i is one of the enumerated intents
func (i Intent) Valid() bool {
	for _, v := range Intents {
		if i == v {
			return true
		}
	}
	return false
}

// SentimentResult is the classification of a single utterance
type SentimentResult struct {
	Sentiment Sentiment `json:"sentiment" yaml:"sentiment"`
	Intent    Intent    `json:"intent" yaml:"intent"`
}

// SegmentDetail is the per-segment entry of a SentimentReport
type SegmentDetail struct {
	Text      string    `json:"text" yaml:"text"`
	Sentiment Sentiment `json:"sentiment" yaml:"sentiment"`
	Intent    Intent    `json:"intent" yaml:"intent"`
}

// SentimentReport aggregates sentiment over all patient segments
type SentimentReport struct {
	OverallSentiment Sentiment       `json:"overall_sentiment" yaml:"overall_sentiment"`
	OverallIntent    Intent          `json:"overall_intent" yaml:"overall_intent"`
	SegmentsAnalyzed int             `json:"segments_analyzed" yaml:"segments_analyzed"`
	SegmentDetails   []SegmentDetail `json:"segment_details" yaml:"segment_details"`
}
