// Package config provides configuration loading from environment variables.
package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/sethvargo/go-envconfig"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Static errors for configuration validation.
var (
	// ErrTranscriptionAPIKeyRequired is returned when TRANSCRIPTION_API_KEY is not set.
	ErrTranscriptionAPIKeyRequired = errors.New("config: TRANSCRIPTION_API_KEY is required")
	// ErrInvalidSegmentPolicy is returned when SEGMENT_POLICY is not a known value.
	ErrInvalidSegmentPolicy = errors.New("config: SEGMENT_POLICY must be \"duration\" or \"topics\"")
)

// Config holds all configuration for the application.
type Config struct {
	// Server settings
	Port int `env:"PORT, default=8080" json:"port"`

	// Transcription provider settings
	TranscriptionAPIKey  string `env:"TRANSCRIPTION_API_KEY" json:"-"` // Masked in JSON; presence checked in Validate
	TranscriptionBaseURL string `env:"TRANSCRIPTION_BASE_URL, default=https://api.openai.com/v1" json:"transcription_base_url"`
	TranscriptionModel   string `env:"TRANSCRIPTION_MODEL, default=whisper-1" json:"transcription_model"`

	// Analysis provider settings. When the API key is empty the service
	// runs with an empty analysis and segment topics fall back to keywords.
	AnalysisAPIKey  string `env:"ANALYSIS_API_KEY" json:"-"` // Masked in JSON
	AnalysisBaseURL string `env:"ANALYSIS_BASE_URL, default=https://api.openai.com/v1" json:"analysis_base_url"`
	AnalysisModel   string `env:"ANALYSIS_MODEL, default=gpt-4o-mini" json:"analysis_model"`

	// Timeline settings
	SegmentPolicy string `env:"SEGMENT_POLICY, default=duration" json:"segment_policy"` // "duration" or "topics"

	// Storage settings
	TempDir string `env:"TEMP_DIR, default=/tmp/videotimeline" json:"temp_dir"`

	// Processing settings
	ChunkTargetSec int `env:"CHUNK_TARGET_SEC, default=300" json:"chunk_target_sec"`

	// Optional S3 settings
	S3Bucket           string `env:"S3_BUCKET" json:"s3_bucket,omitempty"`
	S3Region           string `env:"S3_REGION" json:"s3_region,omitempty"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID" json:"-"`     // Masked in JSON
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" json:"-"` // Masked in JSON

	// Optional Kafka settings
	KafkaBrokers []string `env:"KAFKA_BROKERS" json:"kafka_brokers,omitempty"`
	KafkaTopic   string   `env:"KAFKA_TOPIC, default=video.processed" json:"kafka_topic"`

	// Logging settings
	LogFormat string `env:"LOG_FORMAT, default=text" json:"log_format"` // "json" or "text"
	LogLevel  string `env:"LOG_LEVEL, default=info" json:"log_level"`   // "debug", "info", "warn", "error"
	LogFile   string `env:"LOG_FILE" json:"log_file,omitempty"`         // Rotated with lumberjack when set
}

// S3Enabled returns true if S3 configuration is provided.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != "" && c.S3Region != ""
}

// AnalysisEnabled returns true if an analysis provider is configured.
func (c *Config) AnalysisEnabled() bool {
	return c.AnalysisAPIKey != ""
}

// KafkaEnabled returns true if Kafka brokers are configured.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// Load reads configuration from environment variables using go-envconfig.
// It returns an error if required variables are not set.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := envconfig.Process(context.Background(), cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all required configuration is present and coherent.
func (c *Config) Validate() error {
	if c.TranscriptionAPIKey == "" {
		return ErrTranscriptionAPIKeyRequired
	}
	switch strings.ToLower(c.SegmentPolicy) {
	case "duration", "topics":
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidSegmentPolicy, c.SegmentPolicy)
	}
	return nil
}

// NewLogger creates a structured logger based on the configuration.
// When LogFormat is "json", it outputs JSON logs suitable for production.
// When LogFile is set, output goes to a size-rotated file instead of stdout.
func (c *Config) NewLogger() *slog.Logger {
	level := parseLogLevel(c.LogLevel)

	var out io.Writer = os.Stdout
	if c.LogFile != "" {
		out = &lumberjack.Logger{
			Filename:   c.LogFile,
			MaxSize:    100, // megabytes
			MaxBackups: 5,
			MaxAge:     30, // days
		}
	}

	var handler slog.Handler
	if strings.ToLower(c.LogFormat) == "json" {
		handler = slog.NewJSONHandler(out, &slog.HandlerOptions{
			Level: level,
		})
	} else {
		handler = slog.NewTextHandler(out, &slog.HandlerOptions{
			Level: level,
		})
	}

	return slog.New(handler)
}

// String returns a string representation of the config with sensitive values masked.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Port: %d, TranscriptionBaseURL: %s, TranscriptionModel: %s, AnalysisEnabled: %t, SegmentPolicy: %s, TempDir: %s, ChunkTargetSec: %d, S3Bucket: %s, S3Region: %s, KafkaBrokers: %v, LogFormat: %s, LogLevel: %s}",
		c.Port,
		c.TranscriptionBaseURL,
		c.TranscriptionModel,
		c.AnalysisEnabled(),
		c.SegmentPolicy,
		c.TempDir,
		c.ChunkTargetSec,
		c.S3Bucket,
		c.S3Region,
		c.KafkaBrokers,
		c.LogFormat,
		c.LogLevel,
	)
}

// parseLogLevel converts a string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
