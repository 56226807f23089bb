package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/dverdu/videotimeline-api/internal/video"
)

// maxUploadBytes limits the size of an uploaded video file.
const maxUploadBytes = 2 << 30 // 2 GiB

// uploadForm carries the validated fields of a video upload.
type uploadForm struct {
	// Filename is the original name of the uploaded file.
	Filename string `validate:"required,max=255"`
}

// Handlers contains the HTTP handlers for the API.
type Handlers struct {
	service            *video.ProcessService
	validator          *validator.Validate
	logger             *slog.Logger
	enableAsyncProcess bool
}

// HandlerOption is a function that configures a Handlers instance.
type HandlerOption func(*Handlers)

// WithAsyncProcessing enables or disables background processing.
// When disabled, UploadVideo only stores the video and returns immediately
// without starting background processing.
func WithAsyncProcessing(enabled bool) HandlerOption {
	return func(h *Handlers) {
		h.enableAsyncProcess = enabled
	}
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(service *video.ProcessService, logger *slog.Logger, opts ...HandlerOption) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handlers{
		service:            service,
		validator:          validator.New(),
		logger:             logger,
		enableAsyncProcess: true, // Default to enabled
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Health handles GET /health requests.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// UploadVideo handles POST /videos requests.
// It expects a multipart form with the video file in the "video" field,
// stores it and starts background processing.
func (h *Handlers) UploadVideo(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("video")
	if err != nil {
		h.logger.Warn("failed to read upload form",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadRequest, "multipart form with a 'video' file field is required", "INVALID_UPLOAD")
		return
	}
	defer file.Close()

	form := uploadForm{Filename: header.Filename}
	if err := h.validator.Struct(form); err != nil {
		h.logger.Warn("upload validation failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
		return
	}

	v, err := h.service.CreateVideo(r.Context(), header.Filename, file)
	if err != nil {
		h.logger.Error("failed to create video",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to store video", "VIDEO_CREATION_FAILED")
		return
	}

	// Start processing in background with a detached context
	// Use context.WithoutCancel to prevent cancellation when the request ends
	if h.enableAsyncProcess {
		go func(ctx context.Context, videoID string) {
			if processErr := h.service.Process(ctx, videoID); processErr != nil {
				h.logger.Error("background processing failed",
					slog.String("video_id", videoID),
					slog.String("error", processErr.Error()),
				)
			}
		}(context.WithoutCancel(r.Context()), v.ID)
	}

	h.logger.Info("video accepted",
		slog.String("video_id", v.ID),
		slog.String("filename", header.Filename),
	)

	writeJSON(w, http.StatusAccepted, UploadResponse{
		ID:     v.ID,
		Status: string(v.Status),
	})
}

// GetVideo handles GET /videos/{id} requests.
func (h *Handlers) GetVideo(w http.ResponseWriter, r *http.Request) {
	v, ok := h.findVideo(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toVideoResponse(v))
}

// ListVideos handles GET /videos requests.
func (h *Handlers) ListVideos(w http.ResponseWriter, r *http.Request) {
	videos, err := h.service.ListVideos(r.Context())
	if err != nil {
		h.logger.Error("failed to list videos",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list videos", "VIDEO_LIST_FAILED")
		return
	}

	resp := VideoListResponse{Videos: make([]VideoResponse, 0, len(videos))}
	for _, v := range videos {
		resp.Videos = append(resp.Videos, toVideoResponse(v))
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetSegments handles GET /videos/{id}/segments requests.
func (h *Handlers) GetSegments(w http.ResponseWriter, r *http.Request) {
	v, ok := h.findVideo(w, r)
	if !ok {
		return
	}

	segments := make([]SegmentDTO, 0, len(v.Segments))
	for _, s := range v.Segments {
		segments = append(segments, SegmentDTO{
			Topic:       s.Topic,
			Description: s.Description,
			StartTime:   s.StartTime,
			EndTime:     s.EndTime,
			Keywords:    s.Keywords,
			Color:       s.Color,
		})
	}

	writeJSON(w, http.StatusOK, SegmentsResponse{
		VideoID:  v.ID,
		Status:   string(v.Status),
		Segments: segments,
	})
}

// GetTranscript handles GET /videos/{id}/transcript requests.
func (h *Handlers) GetTranscript(w http.ResponseWriter, r *http.Request) {
	v, ok := h.findVideo(w, r)
	if !ok {
		return
	}

	lines := make([]TranscriptLineDTO, 0, len(v.Transcript))
	for _, l := range v.Transcript {
		lines = append(lines, TranscriptLineDTO{
			Speaker:   l.Speaker,
			Text:      l.Text,
			Start:     l.Start,
			End:       l.End,
			Timestamp: l.Timestamp,
		})
	}

	writeJSON(w, http.StatusOK, TranscriptResponse{
		VideoID: v.ID,
		Status:  string(v.Status),
		Lines:   lines,
	})
}

// DeleteVideo handles POST /videos/{id}/delete requests.
// It removes the video's working files; the record itself is kept, so
// repeated calls succeed.
func (h *Handlers) DeleteVideo(w http.ResponseWriter, r *http.Request) {
	videoID := r.PathValue("id")
	if videoID == "" {
		writeError(w, http.StatusBadRequest, "video ID is required", "MISSING_VIDEO_ID")
		return
	}

	if err := h.service.DeleteVideo(r.Context(), videoID); err != nil {
		if errors.Is(err, video.ErrVideoNotFound) {
			writeError(w, http.StatusNotFound, "video not found", "VIDEO_NOT_FOUND")
			return
		}
		h.logger.Error("failed to delete video files",
			slog.String("video_id", videoID),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to delete video files", "VIDEO_DELETE_FAILED")
		return
	}

	writeJSON(w, http.StatusOK, DeleteResponse{ID: videoID, Deleted: true})
}

// findVideo resolves the {id} path value to a video, writing the error
// response itself when the lookup fails.
func (h *Handlers) findVideo(w http.ResponseWriter, r *http.Request) (*video.Video, bool) {
	videoID := r.PathValue("id")
	if videoID == "" {
		writeError(w, http.StatusBadRequest, "video ID is required", "MISSING_VIDEO_ID")
		return nil, false
	}

	v, err := h.service.GetVideo(r.Context(), videoID)
	if err != nil {
		if errors.Is(err, video.ErrVideoNotFound) {
			writeError(w, http.StatusNotFound, "video not found", "VIDEO_NOT_FOUND")
			return nil, false
		}
		h.logger.Error("failed to get video",
			slog.String("video_id", videoID),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to get video", "VIDEO_FETCH_FAILED")
		return nil, false
	}
	return v, true
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}

// writeError writes an error response in the standard format.
func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// toVideoResponse maps the domain aggregate to its API representation.
func toVideoResponse(v *video.Video) VideoResponse {
	resp := VideoResponse{
		ID:              v.ID,
		Filename:        v.Filename,
		Status:          string(v.Status),
		Duration:        v.Duration,
		Segments:        len(v.Segments),
		TranscriptLines: len(v.Transcript),
		Error:           v.Error,
		VideoURL:        v.VideoURL,
	}
	if v.Analysis != nil {
		resp.Summary = v.Analysis.Summary
	}
	return resp
}
