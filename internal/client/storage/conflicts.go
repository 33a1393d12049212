package storage

import (
	"context"

	"github.com/iudanet/devsync/internal/models"
)

//go:generate moq -out conflicts_mock.go . ConflictStorage

// ConflictStorage defines interface for storing active conflicts
// awaiting manual resolution
type ConflictStorage interface {
	// SaveConflict stores or replaces the active conflict for conflict.ID
	SaveConflict(ctx context.Context, conflict *models.SyncConflict) error

	// DeleteConflict removes the conflict for the record ID
	DeleteConflict(ctx context.Context, id string) error

	// ListConflicts returns all active conflicts
	ListConflicts(ctx context.Context) ([]*models.SyncConflict, error)
}
