// Package video provides the Video aggregate for managing uploaded videos
// through the transcription and timeline generation pipeline. It includes
// the Video entity with state machine transitions as well as repository
// interfaces for persistence.
package video

import (
	"errors"
	"sync"
	"time"

	"github.com/dverdu/videotimeline-api/internal/analysis"
	"github.com/dverdu/videotimeline-api/internal/timeline"
	"github.com/dverdu/videotimeline-api/internal/transcript"
	"github.com/dverdu/videotimeline-api/internal/video/id"
)

// Status represents the current state of a Video in the pipeline.
type Status string

const (
	// StatusUploaded indicates the video has been stored and is waiting for processing.
	StatusUploaded Status = "UPLOADED"
	// StatusProcessing indicates the video is being transcribed and segmented.
	StatusProcessing Status = "PROCESSING"
	// StatusCompleted indicates processing finished successfully.
	StatusCompleted Status = "COMPLETED"
	// StatusFailed indicates processing encountered an error.
	StatusFailed Status = "FAILED"
	// StatusCancelled indicates processing was manually cancelled.
	StatusCancelled Status = "CANCELLED"
)

// ErrInvalidTransition is returned when an invalid state transition is attempted.
var ErrInvalidTransition = errors.New("invalid state transition")

// validTransitions defines which state transitions are allowed.
var validTransitions = map[Status][]Status{
	StatusUploaded:   {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusCompleted, StatusFailed, StatusCancelled},
	StatusCompleted:  {},
	StatusFailed:     {},
	StatusCancelled:  {},
}

// canTransition checks if a transition from one status to another is valid.
func canTransition(from, to Status) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// Video represents an uploaded video aggregate.
// It contains all state accumulated while producing a topic timeline.
type Video struct {
	mu sync.RWMutex

	// ID is the unique identifier for this video.
	ID string
	// Filename is the original name of the uploaded file.
	Filename string
	// Status is the current pipeline state.
	Status Status
	// VideoPath is the path to the stored video file.
	VideoPath string
	// AudioPath is the path to the extracted audio track.
	AudioPath string
	// Duration is the video duration in seconds.
	Duration float64
	// Transcript contains the timestamped transcript lines.
	Transcript transcript.Transcript
	// Segments contains the generated timeline segments.
	Segments []timeline.Segment
	// Analysis contains the optional LLM analysis of the transcript.
	Analysis *analysis.VideoAnalysis
	// Error contains any error message if processing failed.
	Error string
	// VideoURL is the S3 URL if the video was uploaded to S3.
	VideoURL string
	// CreatedAt is when the video was uploaded.
	CreatedAt time.Time
	// UpdatedAt is when the video was last updated.
	UpdatedAt time.Time
	// StartedAt is when processing started.
	StartedAt time.Time
	// CompletedAt is when processing finished.
	CompletedAt time.Time
}

// New creates a new Video with a generated ID and initial UPLOADED status.
func New(filename string) *Video {
	now := time.Now()
	return &Video{
		ID:        id.Generate(),
		Filename:  filename,
		Status:    StatusUploaded,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewWithID creates a new Video with the specified ID and initial UPLOADED status.
// Useful for testing or when ID needs to be externally generated.
func NewWithID(videoID, filename string) *Video {
	now := time.Now()
	return &Video{
		ID:        videoID,
		Filename:  filename,
		Status:    StatusUploaded,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TransitionTo attempts to change the video status to the specified state.
// Returns ErrInvalidTransition if the transition is not allowed.
func (v *Video) TransitionTo(status Status) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !canTransition(v.Status, status) {
		return ErrInvalidTransition
	}

	v.Status = status
	v.UpdatedAt = time.Now()

	// Set timestamps based on state
	switch status {
	case StatusProcessing:
		v.StartedAt = v.UpdatedAt
	case StatusCompleted, StatusFailed, StatusCancelled:
		v.CompletedAt = v.UpdatedAt
	}

	return nil
}

// Start transitions the video from UPLOADED to PROCESSING.
// Returns ErrInvalidTransition if the video is not in UPLOADED state.
func (v *Video) Start() error {
	return v.TransitionTo(StatusProcessing)
}

// Complete transitions the video to COMPLETED state.
// Returns ErrInvalidTransition if the transition is not allowed.
func (v *Video) Complete() error {
	return v.TransitionTo(StatusCompleted)
}

// Fail transitions the video to FAILED state with an error message.
// Returns ErrInvalidTransition if the transition is not allowed.
func (v *Video) Fail(errMsg string) error {
	v.mu.Lock()
	v.Error = errMsg
	v.mu.Unlock()
	return v.TransitionTo(StatusFailed)
}

// Cancel transitions the video to CANCELLED state.
// Returns ErrInvalidTransition if the transition is not allowed.
func (v *Video) Cancel() error {
	return v.TransitionTo(StatusCancelled)
}

// GetStatus returns the current video status (thread-safe).
func (v *Video) GetStatus() Status {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.Status
}

// SetMedia sets the stored video and extracted audio paths.
func (v *Video) SetMedia(videoPath, audioPath string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.VideoPath = videoPath
	v.AudioPath = audioPath
	v.UpdatedAt = time.Now()
}

// SetDuration sets the probed video duration in seconds.
func (v *Video) SetDuration(seconds float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.Duration = seconds
	v.UpdatedAt = time.Now()
}

// SetResults sets the transcript, segments and optional analysis
// produced by the pipeline.
func (v *Video) SetResults(lines transcript.Transcript, segments []timeline.Segment, a *analysis.VideoAnalysis) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.Transcript = lines
	v.Segments = segments
	v.Analysis = a
	v.UpdatedAt = time.Now()
}

// SetVideoURL sets the S3 URL of the uploaded video.
func (v *Video) SetVideoURL(url string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.VideoURL = url
	v.UpdatedAt = time.Now()
}

// ClearMedia clears the stored file paths.
// This is used when deleting the video's working files.
func (v *Video) ClearMedia() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.VideoPath = ""
	v.AudioPath = ""
	v.UpdatedAt = time.Now()
}

// IsTerminal returns true if the video is in a terminal state.
func (v *Video) IsTerminal() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.Status == StatusCompleted ||
		v.Status == StatusFailed ||
		v.Status == StatusCancelled
}

// Clone creates a deep copy of the video for safe reads.
func (v *Video) Clone() *Video {
	v.mu.RLock()
	defer v.mu.RUnlock()

	lines := make(transcript.Transcript, len(v.Transcript))
	copy(lines, v.Transcript)

	segments := make([]timeline.Segment, len(v.Segments))
	copy(segments, v.Segments)

	var a *analysis.VideoAnalysis
	if v.Analysis != nil {
		clone := *v.Analysis
		a = &clone
	}

	return &Video{
		ID:          v.ID,
		Filename:    v.Filename,
		Status:      v.Status,
		VideoPath:   v.VideoPath,
		AudioPath:   v.AudioPath,
		Duration:    v.Duration,
		Transcript:  lines,
		Segments:    segments,
		Analysis:    a,
		Error:       v.Error,
		VideoURL:    v.VideoURL,
		CreatedAt:   v.CreatedAt,
		UpdatedAt:   v.UpdatedAt,
		StartedAt:   v.StartedAt,
		CompletedAt: v.CompletedAt,
	}
}
