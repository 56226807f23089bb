package video

import (
	"context"
	"testing"
)

func TestMemoryRepository_Save(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	v := New("test.mp4")

	err := repo.Save(ctx, v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Verify it was saved
	saved, err := repo.FindByID(ctx, v.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved.ID != v.ID {
		t.Errorf("expected ID %s, got %s", v.ID, saved.ID)
	}
}

func TestMemoryRepository_Save_Update(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	v := New("test.mp4")

	// Save initial
	_ = repo.Save(ctx, v)

	// Update video
	_ = v.Start()
	v.SetDuration(125.5)
	_ = repo.Save(ctx, v)

	// Verify update
	saved, _ := repo.FindByID(ctx, v.ID)
	if saved.Status != StatusProcessing {
		t.Errorf("expected status %s, got %s", StatusProcessing, saved.Status)
	}
	if saved.Duration != 125.5 {
		t.Errorf("expected duration 125.5, got %f", saved.Duration)
	}
}

func TestMemoryRepository_FindByID_NotFound(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	_, err := repo.FindByID(ctx, "nonexistent")
	if err != ErrVideoNotFound {
		t.Errorf("expected ErrVideoNotFound, got %v", err)
	}
}

func TestMemoryRepository_FindByID_ReturnsClone(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	v := New("test.mp4")
	_ = repo.Save(ctx, v)

	// Get video
	found, _ := repo.FindByID(ctx, v.ID)

	// Modify returned video
	found.SetDuration(99)
	_ = found.Start()

	// Original in repo should be unchanged
	original, _ := repo.FindByID(ctx, v.ID)
	if original.Duration != 0 {
		t.Error("modifying returned video should not affect repository")
	}
	if original.Status != StatusUploaded {
		t.Error("modifying returned video status should not affect repository")
	}
}

func TestMemoryRepository_List(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	// Empty list
	videos, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(videos) != 0 {
		t.Errorf("expected 0 videos, got %d", len(videos))
	}

	// Add videos
	v1 := New("a.mp4")
	v2 := New("b.mp4")
	_ = repo.Save(ctx, v1)
	_ = repo.Save(ctx, v2)

	videos, err = repo.List(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(videos) != 2 {
		t.Errorf("expected 2 videos, got %d", len(videos))
	}
}

func TestMemoryRepository_Delete(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	v := New("test.mp4")
	_ = repo.Save(ctx, v)

	err := repo.Delete(ctx, v.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Verify deleted
	_, err = repo.FindByID(ctx, v.ID)
	if err != ErrVideoNotFound {
		t.Errorf("expected ErrVideoNotFound, got %v", err)
	}
}

func TestMemoryRepository_Delete_NotFound(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	err := repo.Delete(ctx, "nonexistent")
	if err != ErrVideoNotFound {
		t.Errorf("expected ErrVideoNotFound, got %v", err)
	}
}

func TestMemoryRepository_ConcurrentAccess(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	done := make(chan bool)

	// Concurrent writes
	go func() {
		for i := 0; i < 100; i++ {
			v := New("test.mp4")
			_ = repo.Save(ctx, v)
		}
		done <- true
	}()

	// Concurrent reads
	go func() {
		for i := 0; i < 100; i++ {
			_, _ = repo.List(ctx)
		}
		done <- true
	}()

	<-done
	<-done
	// If no race conditions, test passes
}
