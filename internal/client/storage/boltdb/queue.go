package boltdb

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/devsync/internal/client/storage"
	"github.com/iudanet/devsync/internal/models"
)

// seqKey кодирует sequence number в big-endian, чтобы порядок ключей
// в bucket совпадал с порядком постановки в очередь
func seqKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}

// AppendOutbound appends a record to the outbound queue
func (s *Storage) AppendOutbound(ctx context.Context, rec *models.SyncRecord) (uint64, error) {
	if s.db == nil {
		return 0, storage.ErrStorageClosed
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal outbound record: %w", err)
	}

	var seq uint64
	err = s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketOutbound)
		if bucket == nil {
			return fmt.Errorf("outbound bucket not found")
		}

		seq, err = bucket.NextSequence()
		if err != nil {
			return fmt.Errorf("failed to allocate sequence: %w", err)
		}

		return bucket.Put(seqKey(seq), data)
	})

	if err != nil {
		return 0, fmt.Errorf("failed to append outbound record: %w", err)
	}

	return seq, nil
}

// RemoveOutbound removes queue entries by sequence numbers
func (s *Storage) RemoveOutbound(ctx context.Context, seqs ...uint64) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}
	if len(seqs) == 0 {
		return nil
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketOutbound)
		if bucket == nil {
			return nil
		}

		for _, seq := range seqs {
			if err := bucket.Delete(seqKey(seq)); err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return fmt.Errorf("failed to remove outbound records: %w", err)
	}

	return nil
}

// ListOutbound returns queue entries ordered by sequence number
func (s *Storage) ListOutbound(ctx context.Context) ([]storage.QueuedRecord, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var entries []storage.QueuedRecord

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketOutbound)
		if bucket == nil {
			return nil
		}

		// ForEach обходит ключи в порядке сортировки байтов
		return bucket.ForEach(func(k, v []byte) error {
			var rec models.SyncRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("failed to unmarshal outbound record: %w", err)
			}
			entries = append(entries, storage.QueuedRecord{
				Seq:    binary.BigEndian.Uint64(k),
				Record: &rec,
			})
			return nil
		})
	})

	if err != nil {
		return nil, fmt.Errorf("failed to list outbound records: %w", err)
	}

	return entries, nil
}
