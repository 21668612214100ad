// Package transcript splits a raw dialogue transcript into speaker-attributed
// segments. Segmentation is heuristic: it relies on role labels such as
// "Patient:" or "**Doctor:**" and does not attempt to parse unlabeled prose.
package transcript

import (
	"regexp"
	"sort"
	"strings"

	"github.com/satriahrh/notetaker/domain/entities"
)

// DefaultFallbackLines is how many leading lines FallbackWindow keeps
const DefaultFallbackLines = 5

const rolePattern = `patient|physician|doctor|dr\.?|nurse|speaker(?:[ \t]*\d+)?`

var (
	// Role label at the start of a line. The utterance runs until the next
	// label, a bracketed stage direction line, or the end of the transcript.
	lineLabelRe = regexp.MustCompile(`(?im)^[ \t]*(` + rolePattern + `)[ \t]*:`)

	// Titled physician label, "Dr. Smith:" or "Doctor Jane Doe:"
	titledLabelRe = regexp.MustCompile(`(?im)^[ \t]*((?:dr\.?|doctor)[ \t]+[A-Za-z][\w.'-]*(?:[ \t]+[A-Za-z][\w.'-]*)?)[ \t]*:`)

	// Emphasized label, "**Patient:**" or "**Patient**:"
	emphasisLabelRe = regexp.MustCompile(`(?im)^[ \t]*\*\*[ \t]*(` + rolePattern + `)[ \t]*(?::[ \t]*\*\*|\*\*[ \t]*:)`)

	// Label anywhere in a line, capturing the rest of that line
	inlineLabelRe = regexp.MustCompile(`(?i)\b(` + rolePattern + `)[ \t]*:[ \t]*([^\n]+)`)

	stageDirectionRe = regexp.MustCompile(`\n[ \t]*\[`)

	fallbackLineRe = regexp.MustCompile(`(?i)^[ \t]*patient(?:[ \t]*[>-]+[ \t]*|[ \t]+)(\S.*)$`)
)

type block struct {
	start     int
	bodyStart int
	end       int
	role      entities.SpeakerRole
}

// Segments returns every labeled utterance in transcript order. Blank
// utterances are dropped. A transcript without role labels yields no segments.
func Segments(transcript string) []entities.DialogueSegment {
	text := strings.ReplaceAll(transcript, "\r\n", "\n")

	var labeled []block
	for _, re := range []*regexp.Regexp{lineLabelRe, titledLabelRe, emphasisLabelRe} {
		for _, m := range re.FindAllStringSubmatchIndex(text, -1) {
			labeled = append(labeled, block{
				start:     m[0],
				bodyStart: m[1],
				role:      roleOf(text[m[2]:m[3]]),
			})
		}
	}
	sort.Slice(labeled, func(i, j int) bool { return labeled[i].start < labeled[j].start })

	for i := range labeled {
		end := len(text)
		if i+1 < len(labeled) {
			end = labeled[i+1].start
		}
		if loc := stageDirectionRe.FindStringIndex(text[labeled[i].bodyStart:end]); loc != nil {
			end = labeled[i].bodyStart + loc[0]
		}
		labeled[i].end = end
	}

	blocks := append([]block(nil), labeled...)
	for _, m := range inlineLabelRe.FindAllStringSubmatchIndex(text, -1) {
		if overlaps(labeled, m[0], m[1]) {
			continue
		}
		blocks = append(blocks, block{
			start:     m[0],
			bodyStart: m[4],
			end:       m[5],
			role:      roleOf(text[m[2]:m[3]]),
		})
	}
	sort.SliceStable(blocks, func(i, j int) bool { return blocks[i].start < blocks[j].start })

	segments := make([]entities.DialogueSegment, 0, len(blocks))
	for _, b := range blocks {
		utterance := strings.TrimSpace(text[b.bodyStart:b.end])
		if utterance == "" {
			continue
		}
		segments = append(segments, entities.DialogueSegment{SpeakerRole: b.role, Text: utterance})
	}
	return segments
}

// PatientSegments returns the patient utterances in order. When no labeled
// patient utterance exists it falls back to scanning lines that begin with
// "patient" followed by a space, "-" or ">" and keeps the rest of each line.
func PatientSegments(transcript string) []string {
	out := []string{}
	for _, s := range Segments(transcript) {
		if s.SpeakerRole == entities.SpeakerPatient {
			out = append(out, s.Text)
		}
	}
	if len(out) > 0 {
		return out
	}

	for _, line := range strings.Split(strings.ReplaceAll(transcript, "\r\n", "\n"), "\n") {
		m := fallbackLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if s := strings.TrimSpace(m[1]); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// FallbackWindow joins the first n lines of the transcript with spaces. It
// stands in for the patient's voice when no segments can be found.
func FallbackWindow(transcript string, n int) string {
	if n <= 0 {
		n = DefaultFallbackLines
	}
	lines := strings.Split(strings.ReplaceAll(transcript, "\r\n", "\n"), "\n")
	if len(lines) > n {
		lines = lines[:n]
	}
	return strings.TrimSpace(strings.Join(lines, " "))
}

// roleOf maps a label to a role by its first word, so "Dr. Smith" is a
// physician and "Speaker 2" is unknown.
func roleOf(label string) entities.SpeakerRole {
	fields := strings.Fields(strings.ToLower(label))
	if len(fields) == 0 {
		return entities.SpeakerUnknown
	}
	switch strings.TrimSuffix(fields[0], ".") {
	case "patient":
		return entities.SpeakerPatient
	case "physician", "doctor", "dr":
		return entities.SpeakerPhysician
	default:
		return entities.SpeakerUnknown
	}
}

func overlaps(blocks []block, start, end int) bool {
	for _, b := range blocks {
		if start < b.end && b.start < end {
			return true
		}
	}
	return false
}
