package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
)

// Static errors for media operations.
var (
	// ErrInputNotFound is returned when the input file does not exist.
	ErrInputNotFound = errors.New("media: input file does not exist")
	// ErrDurationNotFound is returned when ffmpeg output contains no duration.
	ErrDurationNotFound = errors.New("media: could not parse duration from ffmpeg output")
)

// durationRe matches the "Duration: HH:MM:SS.ms" line ffmpeg writes to stderr.
var durationRe = regexp.MustCompile(`Duration:\s*(\d+):(\d+):(\d+)\.(\d+)`)

// FFmpegProcessor implements Processor using the ffmpeg CLI.
type FFmpegProcessor struct {
	// ffmpegPath is the path to the ffmpeg binary. Defaults to "ffmpeg".
	ffmpegPath string
}

// NewFFmpegProcessor creates a new FFmpegProcessor.
// If ffmpegPath is empty, it defaults to "ffmpeg" (found via PATH).
func NewFFmpegProcessor(ffmpegPath string) *FFmpegProcessor {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &FFmpegProcessor{ffmpegPath: ffmpegPath}
}

// ExtractAudio extracts the audio track to 16 kHz mono PCM WAV.
func (p *FFmpegProcessor) ExtractAudio(ctx context.Context, videoPath, audioPath string) error {
	if _, err := os.Stat(videoPath); os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", ErrInputNotFound, videoPath)
	}

	if err := os.MkdirAll(filepath.Dir(audioPath), 0o750); err != nil {
		return fmt.Errorf("media: create output directory: %w", err)
	}

	args := []string{
		"-y", // Overwrite output file without asking
		"-i", videoPath,
		"-vn",                // Drop the video stream
		"-acodec", "pcm_s16le",
		"-ar", "16000",       // 16 kHz sample rate
		"-ac", "1",           // Mono
		audioPath,
	}

	cmd := exec.CommandContext(ctx, p.ffmpegPath, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("media: ffmpeg error: %w, stderr: %s", err, stderr.String())
	}

	return nil
}

// ProbeDuration returns the duration of a media file in seconds.
func (p *FFmpegProcessor) ProbeDuration(ctx context.Context, path string) (float64, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return 0, fmt.Errorf("%w: %s", ErrInputNotFound, path)
	}

	cmd := exec.CommandContext(ctx, p.ffmpegPath,
		"-i", path,
		"-hide_banner",
		"-f", "null", "-",
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	// ffmpeg writes duration info to stderr and exits non-zero with a
	// null output target, so the run error is ignored on purpose.
	_ = cmd.Run()

	return parseDuration(stderr.String())
}

// parseDuration extracts the duration in seconds from ffmpeg stderr output.
func parseDuration(output string) (float64, error) {
	matches := durationRe.FindStringSubmatch(output)
	if len(matches) < 5 {
		return 0, fmt.Errorf("%w: %s", ErrDurationNotFound, output)
	}

	hours, _ := strconv.ParseFloat(matches[1], 64)
	minutes, _ := strconv.ParseFloat(matches[2], 64)
	seconds, _ := strconv.ParseFloat(matches[3], 64)
	frac, _ := strconv.ParseFloat(matches[4], 64)

	// The fractional part can have varying precision.
	fracDivisor := 1.0
	for i := 0; i < len(matches[4]); i++ {
		fracDivisor *= 10
	}

	return hours*3600 + minutes*60 + seconds + frac/fracDivisor, nil
}

// Verify interface implementation at compile time.
var _ Processor = (*FFmpegProcessor)(nil)
