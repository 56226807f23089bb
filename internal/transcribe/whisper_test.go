package transcribe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audio.wav")
	require.NoError(t, os.WriteFile(path, []byte("RIFF fake wav data"), 0o644))
	return path
}

func TestNewWhisperClient_RequiresAPIKey(t *testing.T) {
	_, err := NewWhisperClient("", "whisper-1")
	assert.ErrorIs(t, err, ErrAPIKeyRequired)
}

func TestTranscribe_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/audio/transcriptions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "whisper-1", r.FormValue("model"))
		assert.Equal(t, "verbose_json", r.FormValue("response_format"))

		_, header, err := r.FormFile("file")
		require.NoError(t, err)
		assert.Equal(t, "audio.wav", header.Filename)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"text": "hello world testing segmentation",
			"segments": [
				{"start": 0, "end": 4.5, "text": " hello world"},
				{"start": 4.5, "end": 10, "text": " testing segmentation"}
			]
		}`))
	}))
	defer srv.Close()

	client, err := NewWhisperClient("test-key", "whisper-1", WithBaseURL(srv.URL))
	require.NoError(t, err)

	lines, err := client.Transcribe(context.Background(), writeTempAudio(t))
	require.NoError(t, err)

	require.Len(t, lines, 2)
	assert.Equal(t, "hello world", lines[0].Text)
	assert.Equal(t, 0.0, lines[0].Start)
	assert.Equal(t, 4.5, lines[0].End)
	assert.Equal(t, 0.0, lines[0].Timestamp)
	assert.Equal(t, "testing segmentation", lines[1].Text)
	assert.Equal(t, 4.5, lines[1].Start)
	assert.Equal(t, 10.0, lines[1].End)
}

func TestTranscribe_NoSegmentTimings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text": "  just plain text  "}`))
	}))
	defer srv.Close()

	client, err := NewWhisperClient("test-key", "", WithBaseURL(srv.URL))
	require.NoError(t, err)

	lines, err := client.Transcribe(context.Background(), writeTempAudio(t))
	require.NoError(t, err)

	require.Len(t, lines, 1)
	assert.Equal(t, "just plain text", lines[0].Text)
	assert.Equal(t, 0.0, lines[0].Start)
	assert.Equal(t, 0.0, lines[0].End)
}

func TestTranscribe_EmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text": ""}`))
	}))
	defer srv.Close()

	client, err := NewWhisperClient("test-key", "", WithBaseURL(srv.URL))
	require.NoError(t, err)

	lines, err := client.Transcribe(context.Background(), writeTempAudio(t))
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestTranscribe_RetriesOnServerError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text": "ok", "segments": [{"start":0,"end":1,"text":"ok"}]}`))
	}))
	defer srv.Close()

	client, err := NewWhisperClient("test-key", "",
		WithBaseURL(srv.URL),
		WithMaxRetries(3),
		WithBaseBackoff(time.Millisecond),
	)
	require.NoError(t, err)

	lines, err := client.Transcribe(context.Background(), writeTempAudio(t))
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestTranscribe_NonRetryableClientError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client, err := NewWhisperClient("test-key", "", WithBaseURL(srv.URL), WithBaseBackoff(time.Millisecond))
	require.NoError(t, err)

	_, err = client.Transcribe(context.Background(), writeTempAudio(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRequestFailed)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestTranscribe_MissingFile(t *testing.T) {
	client, err := NewWhisperClient("test-key", "")
	require.NoError(t, err)

	_, err = client.Transcribe(context.Background(), "/nonexistent/audio.wav")
	require.Error(t, err)
}
