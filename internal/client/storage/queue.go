package storage

import (
	"context"

	"github.com/iudanet/devsync/internal/models"
)

//go:generate moq -out queue_mock.go . QueueStorage

// QueuedRecord is an outbound queue entry with its enqueue sequence number
type QueuedRecord struct {
	Record *models.SyncRecord
	Seq    uint64
}

// QueueStorage defines interface for durable outbound queue on client
type QueueStorage interface {
	// AppendOutbound appends a record to the end of the queue
	// Returns the assigned sequence number (strictly increasing)
	AppendOutbound(ctx context.Context, rec *models.SyncRecord) (uint64, error)

	// RemoveOutbound removes entries by their sequence numbers
	RemoveOutbound(ctx context.Context, seqs ...uint64) error

	// ListOutbound returns all queued entries ordered by sequence number
	ListOutbound(ctx context.Context) ([]QueuedRecord, error)
}
