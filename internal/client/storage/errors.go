package storage

import "errors"

// Common client storage errors
var (
	// ErrRecordNotFound indicates that sync record was not found
	ErrRecordNotFound = errors.New("record not found")

	// ErrMetadataNotFound indicates that metadata key was not found
	ErrMetadataNotFound = errors.New("metadata not found")

	// ErrStorageClosed indicates that storage is closed
	ErrStorageClosed = errors.New("storage is closed")

	// ErrStorageLocked indicates that another process holds the database file
	ErrStorageLocked = errors.New("database is used by another devsync process")
)
