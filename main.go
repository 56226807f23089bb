// Package main provides the entry point for the video timeline API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

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

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Create structured logger
	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	logger.Info("starting video timeline API",
		slog.Int("port", cfg.Port),
		slog.String("log_format", cfg.LogFormat),
		slog.String("log_level", cfg.LogLevel),
		slog.String("temp_dir", cfg.TempDir),
		slog.String("segment_policy", cfg.SegmentPolicy),
		slog.Int("chunk_target_sec", cfg.ChunkTargetSec),
		slog.Bool("s3_enabled", cfg.S3Enabled()),
		slog.Bool("analysis_enabled", cfg.AnalysisEnabled()),
		slog.Bool("kafka_enabled", cfg.KafkaEnabled()),
	)

	// Initialize storage
	var store storage.Storage
	if cfg.S3Enabled() {
		s3Cfg := storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		}
		s3Store, err := storage.NewS3Storage(cfg.TempDir, s3Cfg)
		if err != nil {
			return fmt.Errorf("create S3 storage: %w", err)
		}
		store = s3Store
		logger.Info("S3 storage configured",
			slog.String("bucket", cfg.S3Bucket),
			slog.String("region", cfg.S3Region),
		)
	} else {
		localStore, err := storage.NewLocalStorage(cfg.TempDir)
		if err != nil {
			return fmt.Errorf("create local storage: %w", err)
		}
		store = localStore
		logger.Info("local storage configured",
			slog.String("temp_dir", cfg.TempDir),
		)
	}

	// Initialize transcription provider
	transcriber, err := transcribe.NewWhisperClient(
		cfg.TranscriptionAPIKey,
		cfg.TranscriptionModel,
		transcribe.WithBaseURL(cfg.TranscriptionBaseURL),
	)
	if err != nil {
		return fmt.Errorf("create transcription client: %w", err)
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
			return fmt.Errorf("create analysis client: %w", err)
		}
		analyzer = client
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
	defer func() {
		if closeErr := publisher.Close(); closeErr != nil {
			logger.Error("failed to close event publisher",
				slog.String("error", closeErr.Error()),
			)
		}
	}()

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

	// Initialize HTTP handlers and router
	handlers := server.NewHandlers(svc, logger)
	serverCfg := server.DefaultConfig()
	serverCfg.MetricsHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	router := server.NewRouter(handlers, logger, serverCfg)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // Allow for large video uploads
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown handling
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening",
			slog.String("addr", srv.Addr),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server failed: %w", err)
		}
	}()

	// Wait for shutdown signal or error
	select {
	case sig := <-shutdownCh:
		logger.Info("received shutdown signal",
			slog.String("signal", sig.String()),
		)
	case err := <-errCh:
		return err
	}

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Info("shutting down server...")
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	logger.Info("server stopped gracefully")
	return nil
}
