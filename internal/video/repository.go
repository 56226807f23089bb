package video

import (
	"context"
	"errors"
)

// ErrVideoNotFound is returned when a video cannot be found by ID.
var ErrVideoNotFound = errors.New("video not found")

// Repository defines the interface for video persistence.
// It acts as a port in the hexagonal architecture pattern.
type Repository interface {
	// Save persists a video to the storage.
	// If the video already exists, it should be updated.
	Save(ctx context.Context, v *Video) error

	// FindByID retrieves a video by its unique identifier.
	// Returns ErrVideoNotFound if the video does not exist.
	FindByID(ctx context.Context, id string) (*Video, error)

	// List returns all videos.
	List(ctx context.Context) ([]*Video, error)

	// Delete removes a video from storage.
	// Returns ErrVideoNotFound if the video does not exist.
	Delete(ctx context.Context, id string) error
}
