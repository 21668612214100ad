package entities

// SpeakerRole identifies who said a dialogue segment
type SpeakerRole string

const (
	SpeakerPatient   SpeakerRole = "Patient"
	SpeakerPhysician SpeakerRole = "Physician"
	SpeakerUnknown   SpeakerRole = "Unknown"
)

// DialogueSegment is a contiguous span of transcript text attributed to one speaker
type DialogueSegment struct {
	SpeakerRole SpeakerRole `json:"speaker_role" yaml:"speaker_role"`
	Text        string      `json:"text" yaml:"text"`
}
