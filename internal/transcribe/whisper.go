package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dverdu/videotimeline-api/internal/transcript"
)

// Static errors for Whisper client operations.
var (
	// ErrAPIKeyRequired is returned when no API key is provided.
	ErrAPIKeyRequired = errors.New("transcribe: API key is required")
	// ErrServerError is returned when the server returns a 5xx status code.
	ErrServerError = errors.New("transcribe: server error")
	// ErrRateLimited is returned when the server returns a 429 status code.
	ErrRateLimited = errors.New("transcribe: rate limited")
	// ErrRequestFailed is returned when the request fails with a non-2xx status code.
	ErrRequestFailed = errors.New("transcribe: request failed")
)

// WhisperClient is an HTTP client for Whisper-compatible transcription
// endpoints (POST {base}/audio/transcriptions, verbose_json response).
type WhisperClient struct {
	apiKey      string
	model       string
	baseURL     string
	httpClient  *http.Client
	maxRetries  int
	baseBackoff time.Duration
}

// ClientOption configures a WhisperClient.
type ClientOption func(*WhisperClient)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(wc *WhisperClient) {
		wc.httpClient = c
	}
}

// WithBaseURL sets a custom base URL for the transcription API.
func WithBaseURL(url string) ClientOption {
	return func(wc *WhisperClient) {
		wc.baseURL = strings.TrimSuffix(url, "/")
	}
}

// WithMaxRetries sets the maximum number of retries for transient failures.
func WithMaxRetries(n int) ClientOption {
	return func(wc *WhisperClient) {
		wc.maxRetries = n
	}
}

// WithBaseBackoff sets the initial backoff duration for retries.
func WithBaseBackoff(d time.Duration) ClientOption {
	return func(wc *WhisperClient) {
		wc.baseBackoff = d
	}
}

// NewWhisperClient creates a new Whisper transcription client.
func NewWhisperClient(apiKey, model string, opts ...ClientOption) (*WhisperClient, error) {
	if apiKey == "" {
		return nil, ErrAPIKeyRequired
	}
	if model == "" {
		model = "whisper-1"
	}

	c := &WhisperClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: "https://api.openai.com/v1",
		// Transcription of long audio can take minutes.
		httpClient:  &http.Client{Timeout: 10 * time.Minute},
		maxRetries:  3,
		baseBackoff: 1 * time.Second,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// verbose_json wire types.
type whisperResponse struct {
	Text     string           `json:"text"`
	Segments []whisperSegment `json:"segments"`
	Error    *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type whisperSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Transcribe implements Provider by uploading the audio file and mapping
// the provider's segments onto transcript lines. When the provider
// returns no segment timings, the full text becomes a single line.
func (c *WhisperClient) Transcribe(ctx context.Context, audioPath string) (transcript.Transcript, error) {
	var resp whisperResponse
	if err := c.doUploadWithRetry(ctx, audioPath, &resp); err != nil {
		return nil, err
	}

	if resp.Error != nil {
		return nil, fmt.Errorf("%w: %s", ErrRequestFailed, resp.Error.Message)
	}

	if len(resp.Segments) == 0 {
		if strings.TrimSpace(resp.Text) == "" {
			return transcript.Transcript{}, nil
		}
		return transcript.Transcript{{
			Text:      strings.TrimSpace(resp.Text),
			Start:     0,
			End:       0,
			Timestamp: 0,
		}}, nil
	}

	lines := make(transcript.Transcript, 0, len(resp.Segments))
	for _, seg := range resp.Segments {
		lines = append(lines, transcript.Line{
			Text:      strings.TrimSpace(seg.Text),
			Start:     seg.Start,
			End:       seg.End,
			Timestamp: seg.Start,
		})
	}

	return lines, nil
}

// buildUploadBody creates the multipart payload for one attempt.
// The body is rebuilt per attempt because a bytes.Reader cannot be
// reused once consumed by a failed request.
func (c *WhisperClient) buildUploadBody(audioPath string) ([]byte, string, error) {
	f, err := os.Open(audioPath) // #nosec G304 - path is provided by trusted caller
	if err != nil {
		return nil, "", fmt.Errorf("transcribe: open audio file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	if err := mw.WriteField("model", c.model); err != nil {
		return nil, "", fmt.Errorf("transcribe: write model field: %w", err)
	}
	if err := mw.WriteField("response_format", "verbose_json"); err != nil {
		return nil, "", fmt.Errorf("transcribe: write format field: %w", err)
	}

	fw, err := mw.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return nil, "", fmt.Errorf("transcribe: create form file: %w", err)
	}
	if _, err := io.Copy(fw, f); err != nil {
		return nil, "", fmt.Errorf("transcribe: copy audio data: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("transcribe: close multipart writer: %w", err)
	}

	return body.Bytes(), mw.FormDataContentType(), nil
}

// doUploadWithRetry performs the upload with exponential backoff retry.
func (c *WhisperClient) doUploadWithRetry(ctx context.Context, audioPath string, result interface{}) error {
	var lastErr error
	backoff := c.baseBackoff

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("transcribe: context cancelled: %w", ctx.Err())
			case <-time.After(backoff):
				backoff *= 2 // Exponential backoff
			}
		}

		body, contentType, err := c.buildUploadBody(audioPath)
		if err != nil {
			return err
		}

		err = c.doRequest(ctx, body, contentType, result)
		if err == nil {
			return nil
		}

		if !isRetryable(err) {
			return err
		}

		lastErr = err
	}

	return fmt.Errorf("transcribe: max retries exceeded: %w", lastErr)
}

// doRequest performs a single HTTP request.
func (c *WhisperClient) doRequest(ctx context.Context, body []byte, contentType string, result interface{}) error {
	url := c.baseURL + "/audio/transcriptions"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("transcribe: create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &retryableError{err: fmt.Errorf("transcribe: request failed: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &retryableError{err: fmt.Errorf("transcribe: read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if resp.StatusCode >= 500 {
			return &retryableError{err: fmt.Errorf("%w %d: %s", ErrServerError, resp.StatusCode, string(respBody))}
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			return &retryableError{err: fmt.Errorf("%w: %s", ErrRateLimited, string(respBody))}
		}
		return fmt.Errorf("%w with status %d: %s", ErrRequestFailed, resp.StatusCode, string(respBody))
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("transcribe: unmarshal response: %w", err)
		}
	}

	return nil
}

// retryableError wraps errors that should be retried.
type retryableError struct {
	err error
}

func (e *retryableError) Error() string {
	return e.err.Error()
}

func (e *retryableError) Unwrap() error {
	return e.err
}

// isRetryable returns true if the error should be retried.
func isRetryable(err error) bool {
	var re *retryableError
	return errors.As(err, &re)
}

// Verify interface implementation at compile time.
var _ Provider = (*WhisperClient)(nil)
