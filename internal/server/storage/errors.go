package storage

import "errors"

// Common storage errors
var (
	// ErrRecordNotFound indicates that record was not found in storage
	ErrRecordNotFound = errors.New("record not found")

	// ErrInvalidRecord indicates that record cannot be stored as is
	ErrInvalidRecord = errors.New("invalid record")
)
