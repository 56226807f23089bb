// Package bootstrap provides dependency initialization for the video timeline API.
package bootstrap

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dverdu/videotimeline-api/internal/analysis"
	"github.com/dverdu/videotimeline-api/internal/audio"
	"github.com/dverdu/videotimeline-api/internal/config"
	"github.com/dverdu/videotimeline-api/internal/events"
	"github.com/dverdu/videotimeline-api/internal/media"
	"github.com/dverdu/videotimeline-api/internal/metrics"
	"github.com/dverdu/videotimeline-api/internal/server"
	"github.com/dverdu/videotimeline-api/internal/storage"
	"github.com/dverdu/videotimeline-api/internal/timeline"
	"github.com/dverdu/videotimeline-api/internal/transcribe"
	"github.com/dverdu/videotimeline-api/internal/video"
)

// Dependencies holds all initialized dependencies for the HTTP server.
type Dependencies struct {
	VideoService *video.ProcessService
	Publisher    *events.Publisher
	ServerConfig server.Config
}

// Close releases resources held by the dependencies.
func (d *Dependencies) Close() error {
	if d.Publisher != nil {
		return d.Publisher.Close()
	}
	return nil
}

// NewDependencies creates and initializes all dependencies for the application.
func NewDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	// Initialize storage
	store, err := initStorage(cfg, logger)
	if err != nil {
		return nil, err
	}

	// Initialize transcription provider
	transcriber, err := transcribe.NewWhisperClient(
		cfg.TranscriptionAPIKey,
		cfg.TranscriptionModel,
		transcribe.WithBaseURL(cfg.TranscriptionBaseURL),
	)
	if err != nil {
		return nil, fmt.Errorf("create transcription client: %w", err)
	}

	// Initialize analysis provider; falls back to keyword-only topics
	var analyzer analysis.Provider = analysis.NoopProvider{}
	if cfg.AnalysisEnabled() {
		client, err := analysis.NewHTTPClient(
			cfg.AnalysisAPIKey,
			cfg.AnalysisModel,
			analysis.WithBaseURL(cfg.AnalysisBaseURL),
		)
		if err != nil {
			return nil, fmt.Errorf("create analysis client: %w", err)
		}
		analyzer = client
		logger.Info("analysis provider configured",
			slog.String("model", cfg.AnalysisModel),
		)
	}

	// Initialize media processor and audio splitter
	processor := media.NewFFmpegProcessor("")
	splitter := audio.NewFFmpegSplitter("")

	// Initialize video repository
	repo := video.NewMemoryRepository()

	// Initialize Prometheus metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	m := metrics.New(registry)

	// Initialize lifecycle event publisher
	publisher := events.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
	if publisher.Enabled() {
		logger.Info("event publisher configured",
			slog.String("topic", cfg.KafkaTopic),
		)
	}

	// Initialize ProcessService
	svc := video.NewProcessService(video.ProcessServiceDeps{
		Repository:     repo,
		Storage:        store,
		Media:          processor,
		Splitter:       splitter,
		Transcriber:    transcriber,
		Analyzer:       analyzer,
		Builder:        timeline.NewBuilder(timeline.Policy(strings.ToLower(cfg.SegmentPolicy))),
		Metrics:        m,
		Publisher:      publisher,
		Logger:         logger,
		ChunkTargetSec: cfg.ChunkTargetSec,
		UploadToS3:     cfg.S3Enabled(),
	})

	serverCfg := server.DefaultConfig()
	serverCfg.MetricsHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &Dependencies{
		VideoService: svc,
		Publisher:    publisher,
		ServerConfig: serverCfg,
	}, nil
}

// initStorage creates the appropriate storage backend based on configuration.
func initStorage(cfg *config.Config, logger *slog.Logger) (storage.Storage, error) {
	if cfg.S3Enabled() {
		s3Cfg := storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		}
		s3Store, err := storage.NewS3Storage(cfg.TempDir, s3Cfg)
		if err != nil {
			return nil, fmt.Errorf("create S3 storage: %w", err)
		}
		logger.Info("S3 storage configured",
			slog.String("bucket", cfg.S3Bucket),
			slog.String("region", cfg.S3Region),
		)
		return s3Store, nil
	}

	localStore, err := storage.NewLocalStorage(cfg.TempDir)
	if err != nil {
		return nil, fmt.Errorf("create local storage: %w", err)
	}
	logger.Info("local storage configured",
		slog.String("temp_dir", cfg.TempDir),
	)
	return localStore, nil
}
