// Package events publishes processing lifecycle events to Kafka.
// Publishing is optional: when no brokers are configured the publisher
// logs events instead of sending them.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

// VideoProcessed is emitted when a video reaches a terminal state.
type VideoProcessed struct {
	VideoID     string    `json:"videoId"`
	Filename    string    `json:"filename"`
	Status      string    `json:"status"`
	Duration    float64   `json:"duration"`
	Segments    int       `json:"segments"`
	Error       string    `json:"error,omitempty"`
	ProcessedAt time.Time `json:"processedAt"`
}

// writer is the subset of kafka.Writer used by the publisher.
type writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher sends lifecycle events to a Kafka topic.
type Publisher struct {
	writer writer
	logger *slog.Logger
}

// NewPublisher creates a Publisher for the given brokers and topic.
// If brokers is empty the publisher is disabled and only logs events.
func NewPublisher(brokers []string, topic string, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}

	p := &Publisher{logger: logger}
	if len(brokers) == 0 {
		return p
	}

	p.writer = &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
	}
	return p
}

// Enabled returns true if events are sent to Kafka.
func (p *Publisher) Enabled() bool {
	return p.writer != nil
}

// PublishProcessed emits a VideoProcessed event.
// When the publisher is disabled the event is logged and no error is returned.
func (p *Publisher) PublishProcessed(ctx context.Context, event VideoProcessed) error {
	if p.writer == nil {
		p.logger.Info("event publishing disabled, skipping",
			slog.String("video_id", event.VideoID),
			slog.String("status", event.Status),
		)
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.VideoID),
		Value: payload,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write event: %w", err)
	}

	p.logger.Debug("event published",
		slog.String("video_id", event.VideoID),
		slog.String("status", event.Status),
	)
	return nil
}

// Close releases the underlying Kafka writer.
func (p *Publisher) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
