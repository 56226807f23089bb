// Package transcribe provides speech-to-text provider adapters.
// The service treats transcription as an external collaborator: adapters
// turn an audio file into an ordered transcript and nothing more.
package transcribe

import (
	"context"

	"github.com/dverdu/videotimeline-api/internal/transcript"
)

// Provider defines the interface for speech-to-text providers.
// Implementations must return lines in non-decreasing Start order.
type Provider interface {
	// Transcribe converts the audio file at audioPath into a transcript.
	Transcribe(ctx context.Context, audioPath string) (transcript.Transcript, error)
}
