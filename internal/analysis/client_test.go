package analysis

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completionBody(t *testing.T, content string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	})
	require.NoError(t, err)
	return body
}

func TestNewHTTPClient_RequiresAPIKey(t *testing.T) {
	_, err := NewHTTPClient("", "gpt-4o-mini")
	assert.ErrorIs(t, err, ErrAPIKeyRequired)
}

func TestAnalyze_Success(t *testing.T) {
	analysisJSON := `{
		"summary": "A discussion about project deadlines",
		"highlights": ["deadline moved to June"],
		"mainTopics": [{"name": "Planning", "description": "release planning"}],
		"speakers": ["Speaker 1", "Speaker 2"],
		"decisions": ["ship in June"]
	}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Contains(t, req.Messages[1].Content, "Speakers: Speaker 1, Speaker 2")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(completionBody(t, analysisJSON))
	}))
	defer srv.Close()

	client, err := NewHTTPClient("test-key", "gpt-4o-mini", WithBaseURL(srv.URL))
	require.NoError(t, err)

	result, err := client.Analyze(context.Background(), "we talked about deadlines", []string{"Speaker 1", "Speaker 2"})
	require.NoError(t, err)

	assert.Equal(t, "A discussion about project deadlines", result.Summary)
	require.Len(t, result.MainTopics, 1)
	assert.Equal(t, "Planning", result.MainTopics[0].Name)
	assert.Equal(t, []string{"ship in June"}, result.Decisions)
}

func TestAnalyze_RetriesOnServerError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(completionBody(t, `{"summary":"ok","mainTopics":[]}`))
	}))
	defer srv.Close()

	client, err := NewHTTPClient("test-key", "",
		WithBaseURL(srv.URL),
		WithMaxRetries(2),
		WithBaseBackoff(time.Millisecond),
	)
	require.NoError(t, err)

	result, err := client.Analyze(context.Background(), "text", nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", result.Summary)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestAnalyze_NonRetryableClientError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	client, err := NewHTTPClient("test-key", "", WithBaseURL(srv.URL), WithBaseBackoff(time.Millisecond))
	require.NoError(t, err)

	_, err = client.Analyze(context.Background(), "text", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRequestFailed)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestAnalyze_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	client, err := NewHTTPClient("test-key", "", WithBaseURL(srv.URL))
	require.NoError(t, err)

	_, err = client.Analyze(context.Background(), "text", nil)
	assert.ErrorIs(t, err, ErrEmptyCompletion)
}

func TestNoopProvider(t *testing.T) {
	result, err := NoopProvider{}.Analyze(context.Background(), "anything", []string{"a"})
	require.NoError(t, err)
	assert.Empty(t, result.MainTopics)
	assert.Empty(t, result.Summary)
}
