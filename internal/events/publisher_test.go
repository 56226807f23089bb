package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureWriter struct {
	messages []kafka.Message
	closed   bool
	err      error
}

func (w *captureWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *captureWriter) Close() error {
	w.closed = true
	return nil
}

func TestNewPublisher_DisabledWithoutBrokers(t *testing.T) {
	p := NewPublisher(nil, "video.processed", slog.Default())

	assert.False(t, p.Enabled())

	err := p.PublishProcessed(context.Background(), VideoProcessed{VideoID: "vid-1"})
	assert.NoError(t, err)
	assert.NoError(t, p.Close())
}

func TestNewPublisher_EnabledWithBrokers(t *testing.T) {
	p := NewPublisher([]string{"localhost:9092"}, "video.processed", slog.Default())
	defer p.Close()

	assert.True(t, p.Enabled())
}

func TestPublishProcessed(t *testing.T) {
	w := &captureWriter{}
	p := &Publisher{writer: w, logger: slog.Default()}

	event := VideoProcessed{
		VideoID:     "vid-123",
		Filename:    "lecture.mp4",
		Status:      "COMPLETED",
		Duration:    601.5,
		Segments:    5,
		ProcessedAt: time.Now(),
	}

	err := p.PublishProcessed(context.Background(), event)
	require.NoError(t, err)

	require.Len(t, w.messages, 1)
	assert.Equal(t, "vid-123", string(w.messages[0].Key))

	var decoded VideoProcessed
	require.NoError(t, json.Unmarshal(w.messages[0].Value, &decoded))
	assert.Equal(t, "lecture.mp4", decoded.Filename)
	assert.Equal(t, 5, decoded.Segments)
}

func TestPublishProcessed_WriteError(t *testing.T) {
	w := &captureWriter{err: assert.AnError}
	p := &Publisher{writer: w, logger: slog.Default()}

	err := p.PublishProcessed(context.Background(), VideoProcessed{VideoID: "vid-1"})
	assert.Error(t, err)
}

func TestClose(t *testing.T) {
	w := &captureWriter{}
	p := &Publisher{writer: w, logger: slog.Default()}

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}
