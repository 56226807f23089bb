package timeline

import (
	"fmt"
	"math"
	"strings"

	"github.com/dverdu/videotimeline-api/internal/analysis"
	"github.com/dverdu/videotimeline-api/internal/transcript"
)

// Policy selects how the segment count and boundaries are derived.
type Policy string

const (
	// PolicyDuration derives the segment count from the total duration:
	// at least two minutes per segment, at most five segments. It needs
	// no upstream analysis and is the production default.
	PolicyDuration Policy = "duration"
	// PolicyTopics derives the segment count from the upstream analysis
	// topic list (capped at five, three when the list is empty).
	PolicyTopics Policy = "topics"
)

// Palette is the fixed color cycle for segment rendering. Segment i is
// always assigned Palette[i % len(Palette)] regardless of content.
var Palette = [5]string{"#FF6B6B", "#4ECDC4", "#45B7D1", "#96CEB4", "#FFEAA7"}

const (
	// maxSegments bounds the number of segments under either policy.
	maxSegments = 5
	// minSegmentSec is the minimum target segment duration under
	// PolicyDuration, in seconds.
	minSegmentSec = 120
	// defaultTopicSegments is the PolicyTopics segment count when the
	// analysis topic list is empty.
	defaultTopicSegments = 3
)

// Segment is a contiguous time range of the video assigned a single topic
// label for timeline display. StartTime and EndTime are floored to whole
// seconds; segments emitted by Generate are contiguous and non-overlapping
// across the full transcript duration.
type Segment struct {
	// Topic is the display label for the segment.
	Topic string `json:"topic"`
	// Description is a human-readable time range summary.
	Description string `json:"description"`
	// StartTime is the segment start in whole seconds (floored).
	StartTime int `json:"start_time"`
	// EndTime is the segment end in whole seconds (floored).
	EndTime int `json:"end_time"`
	// Keywords are up to 5 frequency-ranked words from the segment text.
	Keywords []string `json:"keywords"`
	// Color is the palette entry assigned to this segment.
	Color string `json:"color"`
}

// Builder generates timeline segments under a configured policy.
// The zero value uses PolicyDuration.
type Builder struct {
	policy Policy
}

// NewBuilder creates a Builder for the given policy. An empty or unknown
// policy falls back to PolicyDuration.
func NewBuilder(policy Policy) *Builder {
	if policy != PolicyTopics {
		policy = PolicyDuration
	}
	return &Builder{policy: policy}
}

// Policy returns the policy this builder generates under.
func (b *Builder) Policy() Policy {
	return b.policy
}

// Generate partitions the transcript's duration into topic-labeled
// segments. The analysis may be nil or empty; its MainTopics, when
// present, override keyword-derived labels positionally.
//
// Precondition: lines must be in non-decreasing Start order, as produced
// by the transcription provider. Generate performs no defensive sort.
//
// Degenerate inputs are handled deterministically: an empty transcript
// yields no segments, and a non-positive duration yields a single [0,0]
// segment labeled "Video Content".
func (b *Builder) Generate(lines []transcript.Line, a *analysis.VideoAnalysis) []Segment {
	if len(lines) == 0 {
		return nil
	}

	total := transcript.Transcript(lines).Duration()
	if total <= 0 {
		return []Segment{{
			Topic:       "Video Content",
			Description: "Full video",
			StartTime:   0,
			EndTime:     0,
			Keywords:    ExtractKeywords(transcript.Transcript(lines).FullText()),
			Color:       Palette[0],
		}}
	}

	count := b.segmentCount(total, a)
	segDuration := total / float64(count)

	segments := make([]Segment, 0, count)
	for i := 0; i < count; i++ {
		start := float64(i) * segDuration
		end := math.Min(float64(i+1)*segDuration, total)

		keywords := ExtractKeywords(segmentText(lines, start, end))

		segments = append(segments, Segment{
			Topic:       b.topicFor(i, keywords, a),
			Description: fmt.Sprintf("Discussion from %s to %s", FormatTime(start), FormatTime(end)),
			StartTime:   int(start),
			EndTime:     int(end),
			Keywords:    keywords,
			Color:       Palette[i%len(Palette)],
		})
	}

	return segments
}

// segmentCount returns the number of segments for the configured policy.
func (b *Builder) segmentCount(total float64, a *analysis.VideoAnalysis) int {
	if b.policy == PolicyTopics {
		if a == nil || len(a.MainTopics) == 0 {
			return defaultTopicSegments
		}
		if len(a.MainTopics) > maxSegments {
			return maxSegments
		}
		return len(a.MainTopics)
	}

	// PolicyDuration: at least two minutes per segment, else a fifth of
	// the total, clamped to [1, maxSegments].
	target := math.Max(minSegmentSec, total/maxSegments)
	count := int(math.Ceil(total / target))
	if count < 1 {
		count = 1
	}
	if count > maxSegments {
		count = maxSegments
	}
	return count
}

// topicFor resolves the segment label through the fallback chain:
// analysis topic, then top-2 keywords, then a positional placeholder.
func (b *Builder) topicFor(i int, keywords []string, a *analysis.VideoAnalysis) string {
	if a != nil && i < len(a.MainTopics) && a.MainTopics[i].Name != "" {
		return a.MainTopics[i].Name
	}

	if b.policy == PolicyTopics {
		return fmt.Sprintf("Segment %d", i+1)
	}

	if len(keywords) > 0 {
		top := keywords
		if len(top) > 2 {
			top = top[:2]
		}
		return strings.Join(top, " & ")
	}
	return fmt.Sprintf("Part %d", i+1)
}

// segmentText concatenates the texts of the lines attributed to the
// [start, end) window. A line belongs to the segment containing its start
// point; its end time and any cross-boundary overlap are ignored.
func segmentText(lines []transcript.Line, start, end float64) string {
	var texts []string
	for _, line := range lines {
		if line.Start >= start && line.Start < end {
			texts = append(texts, line.Text)
		}
	}
	return strings.Join(texts, " ")
}
