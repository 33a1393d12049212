// Package store содержит локальный источник истины устройства:
// по одной текущей версии SyncRecord на каждый id.
package store

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sort"
	"sync"

	"github.com/iudanet/devsync/internal/client/storage"
	"github.com/iudanet/devsync/internal/models"
)

// ErrVersionRegression возвращается Put при попытке понизить версию записи
var ErrVersionRegression = errors.New("record version regression")

// Store представляет keyed map записей в памяти с опциональной
// сквозной записью в persistence backend.
type Store struct {
	records map[string]*models.SyncRecord // map[id]record
	backend storage.RecordStorage         // nil для чисто in-memory режима
	mu      sync.RWMutex                  // мьютекс для потокобезопасности
}

// New создает пустой in-memory Store
func New() *Store {
	return &Store{
		records: make(map[string]*models.SyncRecord),
	}
}

// Open создает Store поверх backend и загружает сохраненные записи
func Open(ctx context.Context, backend storage.RecordStorage) (*Store, error) {
	s := New()
	s.backend = backend

	records, err := backend.ListRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load records: %w", err)
	}
	for _, rec := range records {
		s.records[rec.ID] = rec.Clone()
	}

	return s, nil
}

// Get возвращает копию текущей записи по ID
func (s *Store) Get(id string) (*models.SyncRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, false
	}
	return rec.Clone(), true
}

// Put перезаписывает запись. Разрешение конфликтов выполняет вызывающий.
// Возвращает ErrVersionRegression, если версия меньше уже сохраненной.
func (s *Store) Put(ctx context.Context, rec *models.SyncRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.records[rec.ID]; ok && rec.Version < existing.Version {
		return fmt.Errorf("%w: %s v%d < stored v%d", ErrVersionRegression, rec.ID, rec.Version, existing.Version)
	}

	return s.writeLocked(ctx, rec)
}

// Rollback безусловно перезаписывает запись, в том числе с меньшей версией.
// Используется только при разрешении конфликта в пользу удаленной копии.
func (s *Store) Rollback(ctx context.Context, rec *models.SyncRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.writeLocked(ctx, rec)
}

func (s *Store) writeLocked(ctx context.Context, rec *models.SyncRecord) error {
	clone := rec.Clone()
	if s.backend != nil {
		if err := s.backend.SaveRecord(ctx, clone); err != nil {
			return fmt.Errorf("failed to persist record %s: %w", rec.ID, err)
		}
	}
	s.records[rec.ID] = clone
	return nil
}

// Delete физически удаляет локальную копию.
// Вызывается только после подтверждения доставки tombstone.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.backend != nil {
		if err := s.backend.DeleteRecord(ctx, id); err != nil {
			return fmt.Errorf("failed to delete record %s: %w", id, err)
		}
	}
	delete(s.records, id)
	return nil
}

// ListByType возвращает снимок записей указанного типа, упорядоченный по ID.
// Снимок берется в момент вызова; итерация ленивая и конечная.
func (s *Store) ListByType(recordType string) iter.Seq[*models.SyncRecord] {
	return s.snapshot(func(rec *models.SyncRecord) bool {
		return rec.RecordType == recordType
	})
}

// All возвращает снимок всех записей, включая tombstone
func (s *Store) All() iter.Seq[*models.SyncRecord] {
	return s.snapshot(func(*models.SyncRecord) bool { return true })
}

func (s *Store) snapshot(match func(*models.SyncRecord) bool) iter.Seq[*models.SyncRecord] {
	s.mu.RLock()
	snap := make([]*models.SyncRecord, 0, len(s.records))
	for _, rec := range s.records {
		if match(rec) {
			snap = append(snap, rec.Clone())
		}
	}
	s.mu.RUnlock()

	sort.Slice(snap, func(i, j int) bool { return snap[i].ID < snap[j].ID })

	return func(yield func(*models.SyncRecord) bool) {
		for _, rec := range snap {
			if !yield(rec) {
				return
			}
		}
	}
}

// Len возвращает количество записей, включая tombstone
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records)
}

// MaxTimestamp возвращает максимальный timestamp среди записей.
// Используется для восстановления нижней границы часов после перезапуска.
func (s *Store) MaxTimestamp() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var maxTS int64
	for _, rec := range s.records {
		if rec.Timestamp > maxTS {
			maxTS = rec.Timestamp
		}
	}
	return maxTS
}
