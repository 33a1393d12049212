package boltdb

import (
	"context"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/devsync/internal/client/storage"
)

// SaveMetadata saves value under key in the metadata bucket
func (s *Storage) SaveMetadata(ctx context.Context, key, value string) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketMetadata)
		if bucket == nil {
			return fmt.Errorf("metadata bucket not found")
		}

		if err := bucket.Put([]byte(key), []byte(value)); err != nil {
			return fmt.Errorf("failed to save metadata %s: %w", key, err)
		}

		return nil
	})
}

// GetMetadata retrieves value by key
// Returns storage.ErrMetadataNotFound if key doesn't exist
func (s *Storage) GetMetadata(ctx context.Context, key string) (string, error) {
	if s.db == nil {
		return "", storage.ErrStorageClosed
	}

	var value string

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketMetadata)
		if bucket == nil {
			return fmt.Errorf("metadata bucket not found")
		}

		data := bucket.Get([]byte(key))
		if data == nil {
			return storage.ErrMetadataNotFound
		}

		// Копируем: срез валиден только внутри транзакции
		value = string(data)
		return nil
	})

	if err != nil {
		return "", err
	}

	return value, nil
}
