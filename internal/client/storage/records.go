package storage

import (
	"context"

	"github.com/iudanet/devsync/internal/models"
)

//go:generate moq -out records_mock.go . RecordStorage

// RecordStorage defines interface for durable storage of the current
// record per id on client
type RecordStorage interface {
	// SaveRecord stores or overwrites the record with the same ID
	SaveRecord(ctx context.Context, rec *models.SyncRecord) error

	// GetRecord retrieves a record by ID
	// Returns ErrRecordNotFound if record doesn't exist
	GetRecord(ctx context.Context, id string) (*models.SyncRecord, error)

	// DeleteRecord physically removes a record
	// Deleting a missing record is not an error
	DeleteRecord(ctx context.Context, id string) error

	// ListRecords returns all records including tombstones
	ListRecords(ctx context.Context) ([]*models.SyncRecord, error)
}
