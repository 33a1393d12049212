package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/iudanet/devsync/internal/models"
)

// provisionalMark запись, которая будет откачена, если ее версия
// не будет подтверждена до expiresAt
type provisionalMark struct {
	expiresAt time.Time
	previous  *models.SyncRecord // содержимое до первой provisional записи; nil если записи не было
	version   int64
}

// WriteProvisional записывает запись как Write и помечает ее provisional.
// Если подтверждение не придет за ttl, периодическая проверка вернет прежнее
// содержимое новой версией (или tombstone, если записи раньше не было).
func (e *Engine) WriteProvisional(ctx context.Context, id, recordType string, payload json.RawMessage, ttl time.Duration) (*models.SyncRecord, error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("provisional ttl must be positive, got %s", ttl)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkRunningLocked(); err != nil {
		return nil, err
	}

	before, existed := e.store.Get(id)

	rec, created, err := e.writeLocked(ctx, id, recordType, payload)
	if err != nil {
		return nil, err
	}
	if !created {
		return rec, nil
	}

	mark, ok := e.provisional[id]
	if !ok {
		// откат возвращает состояние до первой из подряд идущих provisional записей
		if existed && !before.IsTombstone() {
			mark.previous = before
		}
	}
	mark.version = rec.Version
	mark.expiresAt = e.now().Add(ttl)
	e.provisional[id] = mark

	e.logger.Debug("Provisional write", "id", id, "version", rec.Version, "ttl", ttl)
	e.publishLocked()
	return rec, nil
}

// expireProvisionalLocked откатывает provisional записи с истекшим сроком
func (e *Engine) expireProvisionalLocked(ctx context.Context) {
	now := e.now()
	for id, mark := range e.provisional {
		if now.Before(mark.expiresAt) {
			continue
		}
		delete(e.provisional, id)

		current, ok := e.store.Get(id)
		if !ok || current.Version != mark.version {
			// запись уже заменена другой версией
			continue
		}

		var err error
		if mark.previous == nil {
			err = e.removeLocked(ctx, id)
		} else {
			_, _, err = e.writeLocked(ctx, id, mark.previous.RecordType, mark.previous.Payload)
		}
		if err != nil {
			e.logger.Error("Failed to revert expired provisional record", "id", id, "error", err)
			e.addIssueLocked(IssueStorage, id, mark.version, err)
			continue
		}

		e.logger.Info("Provisional record expired, reverted", "id", id, "version", mark.version)
	}
}
