package video

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dverdu/videotimeline-api/internal/analysis"
	"github.com/dverdu/videotimeline-api/internal/audio"
	"github.com/dverdu/videotimeline-api/internal/events"
	"github.com/dverdu/videotimeline-api/internal/media"
	"github.com/dverdu/videotimeline-api/internal/metrics"
	"github.com/dverdu/videotimeline-api/internal/storage"
	"github.com/dverdu/videotimeline-api/internal/timeline"
	"github.com/dverdu/videotimeline-api/internal/transcribe"
	"github.com/dverdu/videotimeline-api/internal/transcript"
)

// ProcessServiceDeps contains the dependencies for ProcessService.
type ProcessServiceDeps struct {
	// Repository persists video aggregates.
	Repository Repository
	// Storage stores uploads and working files.
	Storage storage.Storage
	// Media extracts audio and probes durations.
	Media media.Processor
	// Splitter splits extracted audio into transcription-sized chunks.
	Splitter audio.Splitter
	// Transcriber converts audio chunks into transcript lines.
	Transcriber transcribe.Provider
	// Analyzer produces the optional transcript analysis.
	// Defaults to analysis.NoopProvider when nil.
	Analyzer analysis.Provider
	// Builder generates timeline segments. Defaults to PolicyDuration when nil.
	Builder *timeline.Builder
	// Metrics is optional Prometheus instrumentation.
	Metrics *metrics.Metrics
	// Publisher is the optional lifecycle event publisher.
	Publisher *events.Publisher
	// Logger defaults to slog.Default when nil.
	Logger *slog.Logger
	// ChunkTargetSec overrides the default audio chunk target duration.
	ChunkTargetSec int
	// UploadToS3 uploads the source video to S3 after processing.
	UploadToS3 bool
}

// ProcessService orchestrates the video processing workflow.
// It coordinates storage, media processing, audio splitting, transcription,
// analysis and timeline generation to turn an uploaded video into a
// topic-labeled timeline.
type ProcessService struct {
	repo           Repository
	store          storage.Storage
	media          media.Processor
	splitter       audio.Splitter
	transcriber    transcribe.Provider
	analyzer       analysis.Provider
	builder        *timeline.Builder
	metrics        *metrics.Metrics
	publisher      *events.Publisher
	logger         *slog.Logger
	chunkTargetSec int
	uploadToS3     bool
}

// NewProcessService creates a new ProcessService from its dependencies.
func NewProcessService(deps ProcessServiceDeps) *ProcessService {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Analyzer == nil {
		deps.Analyzer = analysis.NoopProvider{}
	}
	if deps.Builder == nil {
		deps.Builder = timeline.NewBuilder(timeline.PolicyDuration)
	}
	return &ProcessService{
		repo:           deps.Repository,
		store:          deps.Storage,
		media:          deps.Media,
		splitter:       deps.Splitter,
		transcriber:    deps.Transcriber,
		analyzer:       deps.Analyzer,
		builder:        deps.Builder,
		metrics:        deps.Metrics,
		publisher:      deps.Publisher,
		logger:         deps.Logger,
		chunkTargetSec: deps.ChunkTargetSec,
		uploadToS3:     deps.UploadToS3,
	}
}

// CreateVideo stores the uploaded stream and persists a new Video in
// UPLOADED status, ready for processing.
func (s *ProcessService) CreateVideo(ctx context.Context, filename string, data io.Reader) (*Video, error) {
	path, err := s.store.SaveUpload(ctx, filename, data)
	if err != nil {
		return nil, fmt.Errorf("save upload: %w", err)
	}

	v := New(filename)
	v.SetMedia(path, "")

	s.logger.Info("video uploaded",
		slog.String("video_id", v.ID),
		slog.String("filename", filename),
	)

	if err := s.repo.Save(ctx, v); err != nil {
		_ = s.store.Cleanup(ctx, []string{path})
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.VideosTotal.Inc()
	}
	return v, nil
}

// GetVideo retrieves a video by ID.
func (s *ProcessService) GetVideo(ctx context.Context, id string) (*Video, error) {
	return s.repo.FindByID(ctx, id)
}

// ListVideos returns all videos.
func (s *ProcessService) ListVideos(ctx context.Context) ([]*Video, error) {
	return s.repo.List(ctx)
}

// DeleteVideo removes the video's working files and clears its paths.
// The video record itself is kept. Calling it again after the files are
// gone is a no-op.
func (s *ProcessService) DeleteVideo(ctx context.Context, id string) error {
	v, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	var paths []string
	if v.VideoPath != "" {
		paths = append(paths, v.VideoPath)
	}
	if v.AudioPath != "" {
		paths = append(paths, v.AudioPath)
	}
	if len(paths) == 0 {
		return nil
	}

	if err := s.store.Cleanup(ctx, paths); err != nil {
		return fmt.Errorf("remove video files: %w", err)
	}

	v.ClearMedia()
	return s.repo.Save(ctx, v)
}

// Process executes the complete processing workflow for an uploaded video:
// extract audio, split it into chunks, transcribe each chunk, analyze the
// merged transcript and generate the timeline segments. The video ends in
// COMPLETED or FAILED state.
func (s *ProcessService) Process(ctx context.Context, videoID string) error {
	v, err := s.repo.FindByID(ctx, videoID)
	if err != nil {
		return err
	}

	if err := v.Start(); err != nil {
		return err
	}
	if err := s.repo.Save(ctx, v); err != nil {
		return err
	}

	started := time.Now()
	s.logger.Info("processing started", slog.String("video_id", v.ID))

	if err := s.run(ctx, v); err != nil {
		s.logger.Error("processing failed",
			slog.String("video_id", v.ID),
			slog.String("error", err.Error()),
		)
		_ = v.Fail(err.Error())
		if s.metrics != nil {
			s.metrics.VideosFailed.Inc()
		}
		s.publishResult(ctx, v)
		if saveErr := s.repo.Save(ctx, v); saveErr != nil {
			s.logger.Error("failed to save video",
				slog.String("video_id", v.ID),
				slog.String("error", saveErr.Error()),
			)
		}
		return err
	}

	_ = v.Complete()
	if s.metrics != nil {
		s.metrics.ProcessingDuration.Observe(time.Since(started).Seconds())
		s.metrics.TranscriptLines.Observe(float64(len(v.Transcript)))
		s.metrics.SegmentsGenerated.Observe(float64(len(v.Segments)))
		// One keyword extraction runs per generated segment window.
		s.metrics.KeywordExtractions.Add(float64(len(v.Segments)))
	}
	s.publishResult(ctx, v)

	s.logger.Info("processing completed",
		slog.String("video_id", v.ID),
		slog.Int("transcript_lines", len(v.Transcript)),
		slog.Int("segments", len(v.Segments)),
	)

	return s.repo.Save(ctx, v)
}

// run performs the pipeline steps, mutating the video as results arrive.
func (s *ProcessService) run(ctx context.Context, v *Video) error {
	audioPath := v.VideoPath + ".wav"
	if err := s.media.ExtractAudio(ctx, v.VideoPath, audioPath); err != nil {
		return fmt.Errorf("extract audio: %w", err)
	}
	v.SetMedia(v.VideoPath, audioPath)

	duration, err := s.media.ProbeDuration(ctx, v.VideoPath)
	if err != nil {
		return fmt.Errorf("probe duration: %w", err)
	}
	v.SetDuration(duration)

	opts := audio.DefaultSplitOpts()
	if s.chunkTargetSec > 0 {
		opts.ChunkTargetSec = s.chunkTargetSec
	}
	// Chunks go into a per-video subdirectory: the work dir is flat and
	// shared, and concurrently processed videos must not overwrite or
	// clean up each other's chunk files.
	chunkDir := filepath.Join(filepath.Dir(audioPath), v.ID)
	chunks, err := s.splitter.Split(ctx, audioPath, chunkDir, duration, opts)
	if err != nil {
		return fmt.Errorf("split audio: %w", err)
	}
	defer func() {
		_ = os.Remove(chunkDir)
	}()

	lines, err := s.transcribeChunks(ctx, chunks)
	if err != nil {
		return err
	}

	transcript.AssignAlternatingSpeakers(lines, nil)

	a, err := s.analyzer.Analyze(ctx, lines.FullText(), lines.Speakers())
	if err != nil {
		// Analysis is optional enrichment; segment labels fall back to keywords.
		s.logger.Warn("analysis failed, continuing without topics",
			slog.String("video_id", v.ID),
			slog.String("error", err.Error()),
		)
		a = nil
	}

	segments := s.builder.Generate(lines, a)
	v.SetResults(lines, segments, a)

	if s.uploadToS3 {
		s.uploadOriginal(ctx, v)
	}

	return nil
}

// transcribeChunks transcribes each chunk and shifts the resulting lines
// onto the full-video clock. Chunk files are removed when done.
func (s *ProcessService) transcribeChunks(ctx context.Context, chunks []audio.Chunk) (transcript.Transcript, error) {
	chunkPaths := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		chunkPaths = append(chunkPaths, chunk.Path)
	}
	defer func() {
		if err := s.store.Cleanup(ctx, chunkPaths); err != nil {
			s.logger.Warn("chunk cleanup failed", slog.String("error", err.Error()))
		}
	}()

	var lines transcript.Transcript
	for _, chunk := range chunks {
		part, err := s.transcriber.Transcribe(ctx, chunk.Path)
		if err != nil {
			return nil, fmt.Errorf("transcribe chunk at %.0fs: %w", chunk.Start, err)
		}
		for i := range part {
			part[i].Start += chunk.Start
			part[i].End += chunk.Start
			part[i].Timestamp += chunk.Start
		}
		lines = append(lines, part...)
	}
	return lines, nil
}

// uploadOriginal pushes the source video to S3 and records the URL.
// Upload failures are logged, not fatal.
func (s *ProcessService) uploadOriginal(ctx context.Context, v *Video) {
	f, err := s.store.Open(ctx, v.VideoPath)
	if err != nil {
		s.logger.Warn("open video for upload failed",
			slog.String("video_id", v.ID),
			slog.String("error", err.Error()),
		)
		return
	}
	defer f.Close()

	key := v.ID + filepath.Ext(v.Filename)
	url, err := s.store.UploadToS3(ctx, key, f)
	if err != nil {
		if !errors.Is(err, storage.ErrS3NotConfigured) {
			s.logger.Warn("S3 upload failed",
				slog.String("video_id", v.ID),
				slog.String("error", err.Error()),
			)
		}
		return
	}
	v.SetVideoURL(url)
}

// publishResult emits a terminal-state lifecycle event.
func (s *ProcessService) publishResult(ctx context.Context, v *Video) {
	if s.publisher == nil {
		return
	}
	event := events.VideoProcessed{
		VideoID:     v.ID,
		Filename:    v.Filename,
		Status:      string(v.GetStatus()),
		Duration:    v.Duration,
		Segments:    len(v.Segments),
		Error:       v.Error,
		ProcessedAt: time.Now(),
	}
	if err := s.publisher.PublishProcessed(ctx, event); err != nil {
		s.logger.Warn("event publish failed",
			slog.String("video_id", v.ID),
			slog.String("error", err.Error()),
		)
	}
}
