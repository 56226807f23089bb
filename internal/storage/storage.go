// Package storage provides file storage for uploaded videos and the
// intermediate artifacts of processing. It defines the Storage interface
// (port) with implementations for local disk and S3.
package storage

import (
	"context"
	"io"
)

// Storage defines the interface for video and working-file storage.
type Storage interface {
	// SaveUpload persists an uploaded stream to a working file and
	// returns the file path. The name parameter is a filename hint.
	SaveUpload(ctx context.Context, name string, data io.Reader) (path string, err error)

	// Open reads a stored file and returns a reader.
	// The caller is responsible for closing the returned ReadCloser.
	Open(ctx context.Context, path string) (io.ReadCloser, error)

	// Cleanup removes the specified working files.
	// It continues cleanup even if some files fail to delete.
	Cleanup(ctx context.Context, paths []string) error

	// UploadToS3 uploads data to S3 and returns the public URL.
	// Returns ErrS3NotConfigured if S3 is not configured.
	UploadToS3(ctx context.Context, key string, data io.Reader) (url string, err error)
}
