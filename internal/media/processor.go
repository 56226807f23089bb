// Package media provides audio extraction from uploaded video files.
package media

import "context"

// Processor defines the interface for media operations on uploaded videos.
// Implementations should use ffmpeg or similar tools.
type Processor interface {
	// ExtractAudio extracts the audio track from the video at videoPath
	// and writes it to audioPath as 16 kHz mono PCM WAV, the format
	// expected by speech-to-text providers.
	ExtractAudio(ctx context.Context, videoPath, audioPath string) error

	// ProbeDuration returns the duration of the media file in seconds.
	ProbeDuration(ctx context.Context, path string) (float64, error)
}
