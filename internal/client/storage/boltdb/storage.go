// Package boltdb хранит состояние клиента в одном файле BoltDB:
// текущие записи, исходящую очередь, активные конфликты и метаданные устройства.
package boltdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/iudanet/devsync/internal/client/storage"
)

// schemaVersion формат значений в buckets
const schemaVersion = "1"

const (
	metaSchemaVersion = "schema_version"

	// openTimeout ожидание файловой блокировки, пока файл держит другой процесс
	openTimeout = time.Second
)

var (
	bucketRecords   = []byte("records")
	bucketOutbound  = []byte("outbound")
	bucketConflicts = []byte("conflicts")
	bucketMetadata  = []byte("metadata")

	allBuckets = [][]byte{bucketRecords, bucketOutbound, bucketConflicts, bucketMetadata}
)

// Storage реализует storage.RecordStorage, storage.QueueStorage,
// storage.ConflictStorage и storage.MetadataStorage поверх BoltDB
type Storage struct {
	db *bbolt.DB
}

// New открывает (или создает) файл dbPath.
// Если файл занят другим процессом дольше openTimeout, возвращает storage.ErrStorageLocked.
func New(ctx context.Context, dbPath string) (*Storage, error) {
	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: openTimeout})
	if err != nil {
		if errors.Is(err, bbolt.ErrTimeout) {
			return nil, fmt.Errorf("%w: %s", storage.ErrStorageLocked, dbPath)
		}
		return nil, fmt.Errorf("failed to open boltdb: %w", err)
	}

	s := &Storage{db: db}
	if err := s.migrate(); err != nil {
		return nil, errors.Join(err, db.Close())
	}
	return s, nil
}

// Close закрывает файл. Повторный вызов ничего не делает.
func (s *Storage) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// migrate создает buckets и проверяет версию схемы
func (s *Storage) migrate() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("failed to create %s bucket: %w", name, err)
			}
		}

		meta := tx.Bucket(bucketMetadata)
		switch current := meta.Get([]byte(metaSchemaVersion)); {
		case current == nil:
			return meta.Put([]byte(metaSchemaVersion), []byte(schemaVersion))
		case string(current) != schemaVersion:
			return fmt.Errorf("unsupported schema version %s, expected %s", current, schemaVersion)
		}
		return nil
	})
}
