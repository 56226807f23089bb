package video

import (
	"testing"
	"time"

	"github.com/dverdu/videotimeline-api/internal/analysis"
	"github.com/dverdu/videotimeline-api/internal/timeline"
	"github.com/dverdu/videotimeline-api/internal/transcript"
)

func TestNew(t *testing.T) {
	v := New("lecture.mp4")

	if v.ID == "" {
		t.Error("expected video to have an ID")
	}
	if v.Filename != "lecture.mp4" {
		t.Errorf("expected filename lecture.mp4, got %s", v.Filename)
	}
	if v.Status != StatusUploaded {
		t.Errorf("expected status %s, got %s", StatusUploaded, v.Status)
	}
	if v.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
	if v.UpdatedAt.IsZero() {
		t.Error("expected UpdatedAt to be set")
	}
}

func TestNewWithID(t *testing.T) {
	id := "test-vid-123"
	v := NewWithID(id, "demo.mov")

	if v.ID != id {
		t.Errorf("expected ID %s, got %s", id, v.ID)
	}
	if v.Status != StatusUploaded {
		t.Errorf("expected status %s, got %s", StatusUploaded, v.Status)
	}
}

func TestVideo_ValidTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    Status
		to      Status
		wantErr bool
	}{
		// Valid transitions from UPLOADED
		{"UPLOADED to PROCESSING", StatusUploaded, StatusProcessing, false},
		{"UPLOADED to CANCELLED", StatusUploaded, StatusCancelled, false},
		// Valid transitions from PROCESSING
		{"PROCESSING to COMPLETED", StatusProcessing, StatusCompleted, false},
		{"PROCESSING to FAILED", StatusProcessing, StatusFailed, false},
		{"PROCESSING to CANCELLED", StatusProcessing, StatusCancelled, false},
		// Invalid transitions
		{"UPLOADED to COMPLETED", StatusUploaded, StatusCompleted, true},
		{"UPLOADED to FAILED", StatusUploaded, StatusFailed, true},
		{"COMPLETED to UPLOADED", StatusCompleted, StatusUploaded, true},
		{"COMPLETED to PROCESSING", StatusCompleted, StatusProcessing, true},
		{"FAILED to PROCESSING", StatusFailed, StatusProcessing, true},
		{"FAILED to COMPLETED", StatusFailed, StatusCompleted, true},
		{"CANCELLED to PROCESSING", StatusCancelled, StatusProcessing, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewWithID("test", "test.mp4")
			v.Status = tt.from

			err := v.TransitionTo(tt.to)

			if tt.wantErr && err == nil {
				t.Errorf("expected error for transition %s -> %s", tt.from, tt.to)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error for transition %s -> %s: %v", tt.from, tt.to, err)
			}
		})
	}
}

func TestVideo_Start(t *testing.T) {
	v := New("test.mp4")
	beforeStart := time.Now()

	err := v.Start()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if v.Status != StatusProcessing {
		t.Errorf("expected status %s, got %s", StatusProcessing, v.Status)
	}
	if v.StartedAt.Before(beforeStart) {
		t.Error("expected StartedAt to be set after test start")
	}
}

func TestVideo_Complete(t *testing.T) {
	v := New("test.mp4")
	_ = v.Start()

	err := v.Complete()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if v.Status != StatusCompleted {
		t.Errorf("expected status %s, got %s", StatusCompleted, v.Status)
	}
	if v.CompletedAt.IsZero() {
		t.Error("expected CompletedAt to be set")
	}
}

func TestVideo_Fail(t *testing.T) {
	v := New("test.mp4")
	_ = v.Start()

	errMsg := "something went wrong"
	err := v.Fail(errMsg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if v.Status != StatusFailed {
		t.Errorf("expected status %s, got %s", StatusFailed, v.Status)
	}
	if v.Error != errMsg {
		t.Errorf("expected error %q, got %q", errMsg, v.Error)
	}
	if v.CompletedAt.IsZero() {
		t.Error("expected CompletedAt to be set on failure")
	}
}

func TestVideo_Cancel(t *testing.T) {
	v := New("test.mp4")
	_ = v.Start()

	err := v.Cancel()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if v.Status != StatusCancelled {
		t.Errorf("expected status %s, got %s", StatusCancelled, v.Status)
	}
}

func TestVideo_CannotTransitionFromTerminalState(t *testing.T) {
	terminalStates := []Status{StatusCompleted, StatusFailed, StatusCancelled}
	allStates := []Status{StatusUploaded, StatusProcessing, StatusCompleted, StatusFailed, StatusCancelled}

	for _, terminal := range terminalStates {
		for _, target := range allStates {
			t.Run(string(terminal)+"_to_"+string(target), func(t *testing.T) {
				v := NewWithID("test", "test.mp4")
				v.Status = terminal

				err := v.TransitionTo(target)
				if err == nil {
					t.Errorf("expected error when transitioning from %s to %s", terminal, target)
				}
				if err != ErrInvalidTransition {
					t.Errorf("expected ErrInvalidTransition, got %v", err)
				}
			})
		}
	}
}

func TestVideo_IsTerminal(t *testing.T) {
	tests := []struct {
		status   Status
		terminal bool
	}{
		{StatusUploaded, false},
		{StatusProcessing, false},
		{StatusCompleted, true},
		{StatusFailed, true},
		{StatusCancelled, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			v := NewWithID("test", "test.mp4")
			v.Status = tt.status

			if got := v.IsTerminal(); got != tt.terminal {
				t.Errorf("IsTerminal() = %v, want %v", got, tt.terminal)
			}
		})
	}
}

func TestVideo_SetMedia(t *testing.T) {
	v := New("test.mp4")

	v.SetMedia("/tmp/video.mp4", "/tmp/video.wav")

	if v.VideoPath != "/tmp/video.mp4" {
		t.Errorf("expected VideoPath /tmp/video.mp4, got %s", v.VideoPath)
	}
	if v.AudioPath != "/tmp/video.wav" {
		t.Errorf("expected AudioPath /tmp/video.wav, got %s", v.AudioPath)
	}
}

func TestVideo_ClearMedia(t *testing.T) {
	v := New("test.mp4")
	v.SetMedia("/tmp/video.mp4", "/tmp/video.wav")

	v.ClearMedia()

	if v.VideoPath != "" {
		t.Errorf("expected empty VideoPath, got %s", v.VideoPath)
	}
	if v.AudioPath != "" {
		t.Errorf("expected empty AudioPath, got %s", v.AudioPath)
	}
}

func TestVideo_SetResults(t *testing.T) {
	v := New("test.mp4")
	lines := transcript.Transcript{
		{Text: "hello", Start: 0, End: 5, Timestamp: 0},
	}
	segments := []timeline.Segment{
		{Topic: "Intro", StartTime: 0, EndTime: 5},
	}
	a := analysis.Empty()

	v.SetResults(lines, segments, a)

	if len(v.Transcript) != 1 {
		t.Errorf("expected 1 transcript line, got %d", len(v.Transcript))
	}
	if len(v.Segments) != 1 {
		t.Errorf("expected 1 segment, got %d", len(v.Segments))
	}
	if v.Analysis == nil {
		t.Error("expected analysis to be set")
	}
}

func TestVideo_Clone(t *testing.T) {
	v := New("test.mp4")
	v.Status = StatusProcessing
	v.SetDuration(240)
	v.SetResults(
		transcript.Transcript{{Text: "hello", Start: 0, End: 5}},
		[]timeline.Segment{{Topic: "Intro", StartTime: 0, EndTime: 5}},
		analysis.Empty(),
	)

	clone := v.Clone()

	// Verify clone has same values
	if clone.ID != v.ID {
		t.Errorf("expected ID %s, got %s", v.ID, clone.ID)
	}
	if clone.Status != v.Status {
		t.Errorf("expected Status %s, got %s", v.Status, clone.Status)
	}
	if clone.Duration != 240 {
		t.Errorf("expected Duration 240, got %f", clone.Duration)
	}

	// Verify clone is independent
	clone.Status = StatusCompleted
	if v.Status == StatusCompleted {
		t.Error("modifying clone should not affect original")
	}

	clone.Transcript[0].Text = "changed"
	if v.Transcript[0].Text == "changed" {
		t.Error("modifying clone transcript should not affect original")
	}

	clone.Segments[0].Topic = "changed"
	if v.Segments[0].Topic == "changed" {
		t.Error("modifying clone segments should not affect original")
	}

	clone.Analysis.Summary = "changed"
	if v.Analysis.Summary == "changed" {
		t.Error("modifying clone analysis should not affect original")
	}
}

func TestVideo_GetStatus_ThreadSafe(t *testing.T) {
	v := New("test.mp4")

	done := make(chan bool)
	go func() {
		for i := 0; i < 100; i++ {
			_ = v.GetStatus()
		}
		done <- true
	}()

	go func() {
		for i := 0; i < 100; i++ {
			_ = v.Start()
		}
		done <- true
	}()

	<-done
	<-done
	// If no race conditions, test passes
}
