package audio

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// FFmpegSplitter implements Splitter using the ffmpeg CLI.
type FFmpegSplitter struct {
	ffmpegPath string
}

// NewFFmpegSplitter creates a new FFmpegSplitter.
// If ffmpegPath is empty, it defaults to "ffmpeg" (found in PATH).
func NewFFmpegSplitter(ffmpegPath string) *FFmpegSplitter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &FFmpegSplitter{ffmpegPath: ffmpegPath}
}

// silenceInterval represents a detected silence interval in the audio.
type silenceInterval struct {
	start float64
	end   float64
}

// Split implements Splitter.Split using ffmpeg silencedetect and segment
// extraction.
func (s *FFmpegSplitter) Split(ctx context.Context, inputWav, outputDir string, totalDuration float64, opts SplitOpts) ([]Chunk, error) {
	if _, err := os.Stat(inputWav); os.IsNotExist(err) {
		return nil, fmt.Errorf("audio: input file does not exist: %s", inputWav)
	}

	// Short audio needs no splitting: a single chunk covers everything.
	if totalDuration <= float64(opts.ChunkTargetSec) {
		outputPath := filepath.Join(outputDir, "chunk_000.wav")
		if err := s.copyAudio(ctx, inputWav, outputPath); err != nil {
			return nil, fmt.Errorf("audio: copy audio: %w", err)
		}
		return []Chunk{{Path: outputPath, Start: 0, End: totalDuration}}, nil
	}

	silences, err := s.detectSilences(ctx, inputWav, opts)
	if err != nil {
		return nil, fmt.Errorf("audio: detect silences: %w", err)
	}

	splitPoints := calculateSplitPoints(silences, totalDuration, opts.ChunkTargetSec)

	chunks, err := s.extractChunks(ctx, inputWav, outputDir, splitPoints, totalDuration)
	if err != nil {
		return nil, fmt.Errorf("audio: extract chunks: %w", err)
	}

	return chunks, nil
}

// detectSilences uses ffmpeg silencedetect to find silence intervals.
func (s *FFmpegSplitter) detectSilences(ctx context.Context, inputPath string, opts SplitOpts) ([]silenceInterval, error) {
	filter := fmt.Sprintf("silencedetect=noise=%ddB:d=%f",
		int(opts.SilenceThreshDB),
		float64(opts.MinSilenceMs)/1000.0,
	)

	cmd := exec.CommandContext(ctx, s.ffmpegPath,
		"-i", inputPath,
		"-af", filter,
		"-f", "null",
		"-hide_banner",
		"-",
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	// ffmpeg writes silencedetect output to stderr and exits non-zero
	// with a null output target, so the run error is ignored on purpose.
	_ = cmd.Run()

	return parseSilenceOutput(stderr.String())
}

// silence start/end markers in ffmpeg silencedetect stderr output.
var (
	silenceStartRe = regexp.MustCompile(`silence_start:\s*([\d.]+)`)
	silenceEndRe   = regexp.MustCompile(`silence_end:\s*([\d.]+)`)
)

// parseSilenceOutput parses ffmpeg silencedetect output.
func parseSilenceOutput(output string) ([]silenceInterval, error) {
	var intervals []silenceInterval

	var currentStart float64
	hasStart := false

	for _, line := range strings.Split(output, "\n") {
		if m := silenceStartRe.FindStringSubmatch(line); len(m) > 1 {
			val, err := strconv.ParseFloat(m[1], 64)
			if err != nil {
				continue
			}
			currentStart = val
			hasStart = true
		}

		if m := silenceEndRe.FindStringSubmatch(line); len(m) > 1 && hasStart {
			val, err := strconv.ParseFloat(m[1], 64)
			if err != nil {
				continue
			}
			intervals = append(intervals, silenceInterval{
				start: currentStart,
				end:   val,
			})
			hasStart = false
		}
	}

	return intervals, nil
}

// calculateSplitPoints determines split points near the target chunk
// duration, preferring the middle of a detected silence.
func calculateSplitPoints(silences []silenceInterval, totalDuration float64, targetSec int) []float64 {
	if len(silences) == 0 {
		return fixedSplitPoints(totalDuration, targetSec)
	}

	target := float64(targetSec)
	var splitPoints []float64
	lastSplit := 0.0

	for lastSplit < totalDuration-target/2 {
		idealPoint := lastSplit + target
		bestSilence := findBestSilence(silences, idealPoint, target/3) // Allow 1/3 deviation

		if bestSilence != nil {
			splitPoint := (bestSilence.start + bestSilence.end) / 2
			if splitPoint > lastSplit+1 { // Ensure some minimum chunk size
				splitPoints = append(splitPoints, splitPoint)
				lastSplit = splitPoint
				continue
			}
		}

		// No suitable silence found, split at the ideal point if it is
		// not too close to the end.
		if idealPoint < totalDuration-1 {
			splitPoints = append(splitPoints, idealPoint)
		}
		lastSplit = idealPoint
	}

	return splitPoints
}

// fixedSplitPoints generates evenly spaced split points when no silences
// are found.
func fixedSplitPoints(totalDuration float64, targetSec int) []float64 {
	var points []float64
	target := float64(targetSec)

	for t := target; t < totalDuration-1; t += target {
		points = append(points, t)
	}

	return points
}

// findBestSilence finds the silence interval closest to the ideal point
// within tolerance. Silences must be sorted by time.
func findBestSilence(silences []silenceInterval, idealPoint, tolerance float64) *silenceInterval {
	var best *silenceInterval
	bestDistance := tolerance

	for i := range silences {
		silenceMiddle := (silences[i].start + silences[i].end) / 2

		if silenceMiddle < idealPoint-tolerance {
			continue
		}
		if silenceMiddle > idealPoint+tolerance {
			break
		}

		distance := abs(silenceMiddle - idealPoint)
		if distance < bestDistance {
			bestDistance = distance
			best = &silences[i]
		}
	}

	return best
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// extractChunks creates chunk files based on split points, carrying each
// chunk's [start, end] window so transcripts can be offset-shifted.
func (s *FFmpegSplitter) extractChunks(ctx context.Context, inputPath, outputDir string, splitPoints []float64, totalDuration float64) ([]Chunk, error) {
	if err := os.MkdirAll(outputDir, 0o750); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	// Build chunk boundaries from the split points.
	var boundaries [][2]float64
	start := 0.0
	for _, point := range splitPoints {
		boundaries = append(boundaries, [2]float64{start, point})
		start = point
	}
	boundaries = append(boundaries, [2]float64{start, totalDuration})

	var chunks []Chunk
	for i, b := range boundaries {
		outputPath := filepath.Join(outputDir, fmt.Sprintf("chunk_%03d.wav", i))

		if err := s.extractWindow(ctx, inputPath, outputPath, b[0], b[1]-b[0]); err != nil {
			// Cleanup already created chunks on error
			for _, chunk := range chunks {
				os.Remove(chunk.Path)
			}
			return nil, fmt.Errorf("extract chunk %d: %w", i, err)
		}

		chunks = append(chunks, Chunk{Path: outputPath, Start: b[0], End: b[1]})
	}

	return chunks, nil
}

// extractWindow extracts a portion of audio to a new file.
func (s *FFmpegSplitter) extractWindow(ctx context.Context, inputPath, outputPath string, start, duration float64) error {
	args := []string{
		"-y", // Overwrite output
		"-ss", fmt.Sprintf("%.3f", start),
		"-t", fmt.Sprintf("%.3f", duration),
		"-i", inputPath,
		"-c", "copy", // Copy without re-encoding
		outputPath,
	}

	cmd := exec.CommandContext(ctx, s.ffmpegPath, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg error: %w, stderr: %s", err, stderr.String())
	}

	return nil
}

// copyAudio copies an audio file to a new location.
func (s *FFmpegSplitter) copyAudio(ctx context.Context, src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	cmd := exec.CommandContext(ctx, s.ffmpegPath,
		"-y",
		"-i", src,
		"-c", "copy",
		dst,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg error: %w, stderr: %s", err, stderr.String())
	}

	return nil
}

// Verify interface implementation at compile time.
var _ Splitter = (*FFmpegSplitter)(nil)
