// Package audio provides interfaces and implementations for splitting
// extracted audio into transcription-sized chunks at silence boundaries.
package audio

import "context"

// Chunk is one piece of the source audio with its position on the
// full-recording clock. Transcripts produced from a chunk must be
// offset-shifted by Start before they are merged.
type Chunk struct {
	// Path is the location of the chunk audio file.
	Path string
	// Start is the chunk start time in seconds within the source audio.
	Start float64
	// End is the chunk end time in seconds within the source audio.
	End float64
}

// SplitOpts configures the behavior of audio splitting.
type SplitOpts struct {
	// ChunkTargetSec is the target duration for each audio chunk in seconds.
	// Audio will be split at silence boundaries close to this duration.
	// Default: 300 seconds.
	ChunkTargetSec int

	// MinSilenceMs is the minimum silence duration in milliseconds
	// to consider for a split point.
	// Default: 500 milliseconds.
	MinSilenceMs int

	// SilenceThreshDB is the volume threshold in dBFS below which
	// audio is considered silence.
	// Default: -40 dBFS.
	SilenceThreshDB float64
}

// DefaultSplitOpts returns the default options for audio splitting.
func DefaultSplitOpts() SplitOpts {
	return SplitOpts{
		ChunkTargetSec:  300,
		MinSilenceMs:    500,
		SilenceThreshDB: -40,
	}
}

// Splitter defines the interface for splitting audio files at silence
// boundaries.
type Splitter interface {
	// Split divides an audio file of totalDuration seconds into chunks
	// at silence boundaries. If the audio is shorter than or equal to
	// ChunkTargetSec, it returns a single chunk pointing to a copy of
	// the input covering [0, totalDuration].
	//
	// The caller is responsible for cleaning up the chunk files.
	Split(ctx context.Context, inputWav, outputDir string, totalDuration float64, opts SplitOpts) ([]Chunk, error)
}
