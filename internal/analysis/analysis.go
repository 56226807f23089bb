// Package analysis provides structured insights over a full transcript:
// summary, highlights, topic list, speakers and decisions. The timeline
// builder consumes the topic list read-only to override keyword-derived
// segment labels; everything here is optional and a legitimately empty
// analysis must be handled by the consumer.
package analysis

import "context"

// Topic is a single named topic detected in the transcript.
type Topic struct {
	// Name is the display label for the topic.
	Name string `json:"name"`
	// Description is an optional one-line elaboration.
	Description string `json:"description,omitempty"`
}

// VideoAnalysis holds the structured insights for one video.
type VideoAnalysis struct {
	// Summary is a short prose summary of the whole video.
	Summary string `json:"summary"`
	// Highlights are notable moments or statements.
	Highlights []string `json:"highlights"`
	// MainTopics is the ordered topic list, consumed by the timeline builder.
	MainTopics []Topic `json:"mainTopics"`
	// Speakers is the list of detected speaker identifiers.
	Speakers []string `json:"speakers"`
	// Decisions are action items or conclusions reached.
	Decisions []string `json:"decisions"`
}

// Empty returns a VideoAnalysis with no content. Consumers must treat an
// empty analysis as valid input, not an error.
func Empty() *VideoAnalysis {
	return &VideoAnalysis{
		Highlights: []string{},
		MainTopics: []Topic{},
		Speakers:   []string{},
		Decisions:  []string{},
	}
}

// Provider produces a VideoAnalysis from the full transcript text and the
// detected speaker list. Implementations may call an external API or
// return an empty analysis when deferred to a downstream consumer.
type Provider interface {
	Analyze(ctx context.Context, fullText string, speakers []string) (*VideoAnalysis, error)
}

// NoopProvider always returns an empty analysis. Used when no analysis
// backend is configured; segment topics then fall back to keywords.
type NoopProvider struct{}

// Analyze implements Provider.
func (NoopProvider) Analyze(_ context.Context, _ string, _ []string) (*VideoAnalysis, error) {
	return Empty(), nil
}

// Verify interface implementation at compile time.
var _ Provider = NoopProvider{}
