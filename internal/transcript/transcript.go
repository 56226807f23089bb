// Package transcript provides the domain model for timestamped speech
// transcripts produced by a speech-to-text provider.
package transcript

import "strings"

// Line is a single timestamped transcript line.
// Start and End are in seconds from the beginning of the video, with
// Start <= End. Timestamp mirrors Start and exists for consumers that
// render a single point-in-time anchor per line.
type Line struct {
	// Speaker is a display identifier for who is speaking.
	Speaker string `json:"speaker"`
	// Text is the transcribed speech for this line.
	Text string `json:"text"`
	// Start is the line start time in seconds.
	Start float64 `json:"start"`
	// End is the line end time in seconds.
	End float64 `json:"end"`
	// Timestamp is the point-in-time anchor for the line in seconds.
	Timestamp float64 `json:"timestamp"`
}

// Transcript is an ordered sequence of lines.
// Lines are expected in non-decreasing Start order as emitted by the
// transcription provider; this package does not re-sort them.
type Transcript []Line

// Duration returns the total duration in seconds, defined as the End
// time of the last line. Returns 0 for an empty transcript.
func (t Transcript) Duration() float64 {
	if len(t) == 0 {
		return 0
	}
	return t[len(t)-1].End
}

// FullText returns all line texts joined with single spaces.
func (t Transcript) FullText() string {
	texts := make([]string, 0, len(t))
	for _, line := range t {
		texts = append(texts, line.Text)
	}
	return strings.Join(texts, " ")
}

// Speakers returns the distinct speaker identifiers in first-seen order.
func (t Transcript) Speakers() []string {
	seen := make(map[string]bool)
	var speakers []string
	for _, line := range t {
		if line.Speaker == "" || seen[line.Speaker] {
			continue
		}
		seen[line.Speaker] = true
		speakers = append(speakers, line.Speaker)
	}
	return speakers
}

// AssignAlternatingSpeakers labels lines with speaker identifiers by line
// parity. This is a placeholder heuristic standing in for a real
// diarization signal: it only affects the Speaker display field and has
// no bearing on segment boundaries. Replace when the transcription
// provider supplies per-line speaker labels.
func AssignAlternatingSpeakers(lines []Line, speakers []string) {
	if len(speakers) == 0 {
		speakers = []string{"Speaker 1", "Speaker 2"}
	}
	for i := range lines {
		lines[i].Speaker = speakers[i%len(speakers)]
	}
}
