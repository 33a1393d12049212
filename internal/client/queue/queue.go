// Package queue буферизует исходящие записи до подтверждения доставки.
package queue

import (
	"context"
	"fmt"
	"sync"

	"github.com/iudanet/devsync/internal/client/storage"
	"github.com/iudanet/devsync/internal/models"
)

type entry struct {
	rec *models.SyncRecord
	seq uint64
}

// Queue представляет FIFO очередь исходящих записей.
// Записи не дедуплицируются при постановке: повторное изменение того же id
// создает вторую запись с большей версией, схлопывание выполняет Drain.
type Queue struct {
	backend storage.QueueStorage // nil для in-memory режима
	entries []entry
	nextSeq uint64
	mu      sync.Mutex
}

// New создает пустую in-memory очередь
func New() *Queue {
	return &Queue{}
}

// Open создает очередь поверх backend и загружает сохраненные записи
func Open(ctx context.Context, backend storage.QueueStorage) (*Queue, error) {
	stored, err := backend.ListOutbound(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load outbound queue: %w", err)
	}

	q := &Queue{backend: backend}
	for _, e := range stored {
		q.entries = append(q.entries, entry{seq: e.Seq, rec: e.Record.Clone()})
		if e.Seq > q.nextSeq {
			q.nextSeq = e.Seq
		}
	}

	return q, nil
}

// Enqueue добавляет запись в конец очереди
func (q *Queue) Enqueue(ctx context.Context, rec *models.SyncRecord) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	clone := rec.Clone()

	var seq uint64
	if q.backend != nil {
		var err error
		seq, err = q.backend.AppendOutbound(ctx, clone)
		if err != nil {
			return fmt.Errorf("failed to enqueue record %s: %w", rec.ID, err)
		}
	} else {
		seq = q.nextSeq + 1
	}
	q.nextSeq = max(q.nextSeq, seq)

	q.entries = append(q.entries, entry{seq: seq, rec: clone})
	return nil
}

// Drain схлопывает очередь по id, оставляя запись с максимальной версией,
// и возвращает оставшиеся записи в порядке постановки.
// Вытесненные записи удаляются; оставшиеся остаются в очереди до подтверждения.
func (q *Queue) Drain(ctx context.Context) ([]*models.SyncRecord, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	// Последняя позиция записи с максимальной версией для каждого id
	winner := make(map[string]int, len(q.entries))
	for i, e := range q.entries {
		cur, ok := winner[e.rec.ID]
		if !ok || e.rec.Version >= q.entries[cur].rec.Version {
			winner[e.rec.ID] = i
		}
	}

	kept := make([]entry, 0, len(winner))
	var dropped []uint64
	for i, e := range q.entries {
		if winner[e.rec.ID] == i {
			kept = append(kept, e)
			continue
		}
		dropped = append(dropped, e.seq)
	}

	if q.backend != nil && len(dropped) > 0 {
		if err := q.backend.RemoveOutbound(ctx, dropped...); err != nil {
			return nil, fmt.Errorf("failed to compact outbound queue: %w", err)
		}
	}
	q.entries = kept

	out := make([]*models.SyncRecord, 0, len(kept))
	for _, e := range kept {
		out = append(out, e.rec.Clone())
	}
	return out, nil
}

// RemoveAcknowledged удаляет все записи id с версией не больше version.
// version <= 0 удаляет все записи id. Возвращает количество удаленных записей.
func (q *Queue) RemoveAcknowledged(ctx context.Context, id string, version int64) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	kept := make([]entry, 0, len(q.entries))
	var removed []uint64
	for _, e := range q.entries {
		if e.rec.ID == id && (version <= 0 || e.rec.Version <= version) {
			removed = append(removed, e.seq)
			continue
		}
		kept = append(kept, e)
	}

	if len(removed) == 0 {
		return 0, nil
	}

	if q.backend != nil {
		if err := q.backend.RemoveOutbound(ctx, removed...); err != nil {
			return 0, fmt.Errorf("failed to remove acknowledged record %s: %w", id, err)
		}
	}
	q.entries = kept

	return len(removed), nil
}

// Len возвращает количество различных id, ожидающих доставки
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	ids := make(map[string]struct{}, len(q.entries))
	for _, e := range q.entries {
		ids[e.rec.ID] = struct{}{}
	}
	return len(ids)
}

// Pending возвращает максимальную версию id в очереди
func (q *Queue) Pending(id string) (int64, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var (
		version int64
		found   bool
	)
	for _, e := range q.entries {
		if e.rec.ID == id && e.rec.Version > version {
			version = e.rec.Version
			found = true
		}
	}
	return version, found
}
