package storage

import "context"

//go:generate moq -out metadata_mock.go . MetadataStorage

// MetadataStorage defines interface for storing client metadata
// as simple key/value pairs (device id, etc.)
type MetadataStorage interface {
	// SaveMetadata stores value under key
	SaveMetadata(ctx context.Context, key, value string) error

	// GetMetadata retrieves value by key
	// Returns ErrMetadataNotFound if key doesn't exist
	GetMetadata(ctx context.Context, key string) (string, error)
}
