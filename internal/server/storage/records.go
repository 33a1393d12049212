package storage

import (
	"context"

	"github.com/iudanet/devsync/internal/models"
)

//go:generate moq -out records_mock.go . RecordStorage

// Outcome результат применения входящей записи к хранилищу relay
type Outcome int

const (
	// OutcomeAccepted запись новее сохраненной и заменила ее
	OutcomeAccepted Outcome = iota + 1
	// OutcomeDuplicate та же версия с тем же checksum уже сохранена
	OutcomeDuplicate
	// OutcomeConflict запись не может заменить сохраненную
	OutcomeConflict
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAccepted:
		return "accepted"
	case OutcomeDuplicate:
		return "duplicate"
	case OutcomeConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// ApplyResult результат ApplyRecord
type ApplyResult struct {
	// Stored копия relay после применения (для конфликта - прежняя копия)
	Stored *models.SyncRecord
	// Conflict заполнен только для OutcomeConflict
	Conflict *models.SyncConflict
	Outcome  Outcome
}

// RecordStorage defines interface for relay record persistence
type RecordStorage interface {
	// ApplyRecord atomically compares the incoming record with the stored copy
	// and stores it only when its version is greater than the stored one
	ApplyRecord(ctx context.Context, rec *models.SyncRecord) (*ApplyResult, error)

	// GetRecord retrieves the latest stored version of a record
	// Returns ErrRecordNotFound if record doesn't exist
	GetRecord(ctx context.Context, userID, id string) (*models.SyncRecord, error)

	// ListUserRecords retrieves all stored records (including tombstones) of a user ordered by id
	// Returns empty slice if no records found
	ListUserRecords(ctx context.Context, userID string) ([]*models.SyncRecord, error)
}
