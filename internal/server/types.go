// Package server provides the HTTP server for the video timeline API.
// It includes handlers, middleware, routes, and DTOs separated from domain types.
package server

// UploadResponse is the HTTP response after uploading a video.
type UploadResponse struct {
	// ID is the unique identifier for the uploaded video.
	ID string `json:"id"`
	// Status is the initial video status.
	Status string `json:"status"`
}

// VideoResponse is the HTTP response for getting video details.
type VideoResponse struct {
	// ID is the unique identifier for the video.
	ID string `json:"id"`
	// Filename is the original name of the uploaded file.
	Filename string `json:"filename"`
	// Status is the current pipeline status.
	Status string `json:"status"`
	// Duration is the video duration in seconds (0 until probed).
	Duration float64 `json:"duration"`
	// Segments is the number of generated timeline segments.
	Segments int `json:"segments"`
	// TranscriptLines is the number of transcript lines.
	TranscriptLines int `json:"transcript_lines"`
	// Error contains any error message if processing failed.
	Error string `json:"error,omitempty"`
	// VideoURL is the S3 URL of the video if it was uploaded.
	VideoURL string `json:"video_url,omitempty"`
	// Summary is the analysis summary, present when analysis ran.
	Summary string `json:"summary,omitempty"`
}

// VideoListResponse is the HTTP response for listing videos.
type VideoListResponse struct {
	// Videos is the list of video summaries.
	Videos []VideoResponse `json:"videos"`
}

// SegmentDTO is one timeline segment in API responses.
type SegmentDTO struct {
	// Topic is the display label for the segment.
	Topic string `json:"topic"`
	// Description is a human-readable time range summary.
	Description string `json:"description"`
	// StartTime is the segment start in whole seconds.
	StartTime int `json:"start_time"`
	// EndTime is the segment end in whole seconds.
	EndTime int `json:"end_time"`
	// Keywords are the frequency-ranked words for the segment.
	Keywords []string `json:"keywords"`
	// Color is the palette entry assigned to the segment.
	Color string `json:"color"`
}

// SegmentsResponse is the HTTP response for the segments endpoint.
type SegmentsResponse struct {
	// VideoID is the video these segments belong to.
	VideoID string `json:"video_id"`
	// Status is the current pipeline status.
	Status string `json:"status"`
	// Segments is the generated timeline.
	Segments []SegmentDTO `json:"segments"`
}

// TranscriptLineDTO is one transcript line in API responses.
type TranscriptLineDTO struct {
	// Speaker is the display identifier for who is speaking.
	Speaker string `json:"speaker"`
	// Text is the transcribed speech.
	Text string `json:"text"`
	// Start is the line start time in seconds.
	Start float64 `json:"start"`
	// End is the line end time in seconds.
	End float64 `json:"end"`
	// Timestamp is the point-in-time anchor in seconds.
	Timestamp float64 `json:"timestamp"`
}

// TranscriptResponse is the HTTP response for the transcript endpoint.
type TranscriptResponse struct {
	// VideoID is the video this transcript belongs to.
	VideoID string `json:"video_id"`
	// Status is the current pipeline status.
	Status string `json:"status"`
	// Lines is the timestamped transcript.
	Lines []TranscriptLineDTO `json:"lines"`
}

// DeleteResponse is the HTTP response after deleting a video's files.
type DeleteResponse struct {
	// ID is the video whose files were removed.
	ID string `json:"id"`
	// Deleted indicates the working files are gone.
	Deleted bool `json:"deleted"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	// Error is the human-readable error message.
	Error string `json:"error"`
	// Code is the error code for programmatic handling.
	Code string `json:"code"`
}

// HealthResponse is the HTTP response for the health check endpoint.
type HealthResponse struct {
	// Status is the health status of the service.
	Status string `json:"status"`
}
