package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iudanet/devsync/internal/conflict"
	"github.com/iudanet/devsync/internal/models"
	"github.com/iudanet/devsync/internal/server/storage"
)

const recordColumns = `id, owner_user_id, record_type, payload, origin_device_id, checksum, timestamp, version`

// ApplyRecord сравнивает входящую запись с сохраненной в одной транзакции.
// Сохраняется только запись с большей версией, равная версия с тем же
// checksum считается дубликатом, все остальное возвращается как конфликт.
func (s *Storage) ApplyRecord(ctx context.Context, rec *models.SyncRecord) (result *storage.ApplyResult, err error) {
	if rec == nil || rec.ID == "" || rec.OwnerUserID == "" {
		return nil, storage.ErrInvalidRecord
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stored, err := getRecord(ctx, tx, rec.OwnerUserID, rec.ID)
	if err != nil && !errors.Is(err, storage.ErrRecordNotFound) {
		return nil, err
	}

	switch {
	case stored == nil || rec.Version > stored.Version:
		if err := s.upsert(ctx, tx, rec); err != nil {
			return nil, err
		}
		result = &storage.ApplyResult{Outcome: storage.OutcomeAccepted, Stored: rec.Clone()}

	case stored.SameContent(rec):
		result = &storage.ApplyResult{Outcome: storage.OutcomeDuplicate, Stored: stored}

	default:
		// правила сравнения те же, что на клиенте: сохраненная копия
		// выступает локальной, входящая удаленной
		conflictType := conflict.Detect(stored, rec).Type
		if conflictType == "" {
			conflictType = models.ConflictVersionMismatch
		}
		result = &storage.ApplyResult{
			Outcome: storage.OutcomeConflict,
			Stored:  stored,
			Conflict: &models.SyncConflict{
				ID:           rec.ID,
				ConflictType: conflictType,
				LocalRecord:  rec.Clone(),
				RemoteRecord: stored.Clone(),
				DetectedAt:   s.now().UnixMilli(),
			},
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return result, nil
}

func (s *Storage) upsert(ctx context.Context, tx *sql.Tx, rec *models.SyncRecord) error {
	query := `
		INSERT INTO records (` + recordColumns + `, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (owner_user_id, id) DO UPDATE SET
			record_type = excluded.record_type,
			payload = excluded.payload,
			origin_device_id = excluded.origin_device_id,
			checksum = excluded.checksum,
			timestamp = excluded.timestamp,
			version = excluded.version,
			updated_at = excluded.updated_at
	`

	_, err := tx.ExecContext(ctx, query,
		rec.ID,
		rec.OwnerUserID,
		rec.RecordType,
		nullablePayload(rec),
		rec.OriginDeviceID,
		rec.Checksum,
		rec.Timestamp,
		rec.Version,
		s.now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}
	return nil
}

// GetRecord retrieves the latest stored version of a record.
// Tombstones are returned as is.
func (s *Storage) GetRecord(ctx context.Context, userID, id string) (*models.SyncRecord, error) {
	return getRecord(ctx, s.db, userID, id)
}

// ListUserRecords retrieves all records of a user, tombstones included, ordered by id
func (s *Storage) ListUserRecords(ctx context.Context, userID string) (records []*models.SyncRecord, err error) {
	query := `SELECT ` + recordColumns + ` FROM records WHERE owner_user_id = ? ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	records = []*models.SyncRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return records, nil
}

// querier общий интерфейс *sql.DB и *sql.Tx
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

func getRecord(ctx context.Context, q querier, userID, id string) (*models.SyncRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM records WHERE owner_user_id = ? AND id = ?`

	rec, err := scanRecord(q.QueryRowContext(ctx, query, userID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrRecordNotFound
		}
		return nil, err
	}
	return rec, nil
}

func scanRecord(row scanner) (*models.SyncRecord, error) {
	rec := &models.SyncRecord{}
	var payload []byte

	err := row.Scan(
		&rec.ID,
		&rec.OwnerUserID,
		&rec.RecordType,
		&payload,
		&rec.OriginDeviceID,
		&rec.Checksum,
		&rec.Timestamp,
		&rec.Version,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan record: %w", err)
	}

	if len(payload) > 0 {
		rec.Payload = payload
	}
	return rec, nil
}

// nullablePayload сохраняет tombstone без payload как NULL
func nullablePayload(rec *models.SyncRecord) any {
	if len(rec.Payload) == 0 {
		return nil
	}
	return []byte(rec.Payload)
}
