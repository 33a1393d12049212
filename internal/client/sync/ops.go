package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/iudanet/devsync/internal/checksum"
	"github.com/iudanet/devsync/internal/models"
	"github.com/iudanet/devsync/internal/validation"
)

// Write сохраняет новую версию записи локально и ставит ее в очередь.
// Если устройство online, запись сразу передается транспорту.
// Запись с тем же типом и payload не создает новой версии.
func (e *Engine) Write(ctx context.Context, id, recordType string, payload json.RawMessage) (*models.SyncRecord, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkRunningLocked(); err != nil {
		return nil, err
	}

	rec, _, err := e.writeLocked(ctx, id, recordType, payload)
	if err != nil {
		return nil, err
	}
	e.publishLocked()
	return rec, nil
}

// writeLocked возвращает сохраненную запись и признак того, что создана новая версия
func (e *Engine) writeLocked(ctx context.Context, id, recordType string, payload json.RawMessage) (*models.SyncRecord, bool, error) {
	if err := validation.ValidateIdentifier("record id", id); err != nil {
		return nil, false, err
	}
	if err := validation.ValidateRecordType(recordType); err != nil {
		return nil, false, err
	}
	if recordType == models.RecordTypeDelete {
		return nil, false, fmt.Errorf("%w: use Remove to delete %s", ErrReservedRecordType, id)
	}
	if len(payload) > validation.MaxPayloadSize {
		return nil, false, fmt.Errorf("payload must not exceed %d bytes", validation.MaxPayloadSize)
	}

	sum, err := checksum.Compute(payload)
	if err != nil {
		return nil, false, err
	}

	existing, ok := e.store.Get(id)
	if ok && !existing.IsTombstone() && existing.RecordType == recordType && existing.Checksum == sum {
		return existing, false, nil
	}

	rec := &models.SyncRecord{
		ID:         id,
		RecordType: recordType,
		Payload:    append(json.RawMessage(nil), payload...),
		Checksum:   sum,
	}
	if err := e.commitLocalLocked(ctx, rec, existing); err != nil {
		return nil, false, err
	}
	return rec.Clone(), true, nil
}

// commitLocalLocked присваивает локальной мутации версию и время,
// сохраняет ее, ставит в очередь и отправляет
func (e *Engine) commitLocalLocked(ctx context.Context, rec, existing *models.SyncRecord) error {
	if existing != nil {
		rec.Version = existing.Version + 1
	} else {
		floor, err := e.versionFloorLocked(ctx, rec.ID)
		if err != nil {
			return err
		}
		rec.Version = floor + 1
	}
	rec.Timestamp = e.clock.Now()
	rec.OriginDeviceID = e.cfg.DeviceID
	rec.OwnerUserID = e.cfg.UserID

	if err := e.store.Put(ctx, rec); err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}
	if err := e.queue.Enqueue(ctx, rec); err != nil {
		return fmt.Errorf("failed to enqueue record: %w", err)
	}

	e.logger.Debug("Local write", "id", rec.ID, "type", rec.RecordType, "version", rec.Version)
	e.sendLocked(ctx, rec)
	return nil
}

// Remove записывает tombstone. Удаление отсутствующей или уже удаленной
// записи возвращает ErrRecordNotFound.
func (e *Engine) Remove(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkRunningLocked(); err != nil {
		return err
	}
	if err := e.removeLocked(ctx, id); err != nil {
		return err
	}
	e.publishLocked()
	return nil
}

func (e *Engine) removeLocked(ctx context.Context, id string) error {
	existing, ok := e.store.Get(id)
	if !ok || existing.IsTombstone() {
		return fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}

	rec := &models.SyncRecord{
		ID:         id,
		RecordType: models.RecordTypeDelete,
	}
	if err := checksum.Seal(rec); err != nil {
		return err
	}
	return e.commitLocalLocked(ctx, rec, existing)
}

// Read возвращает текущую запись. Tombstone считается отсутствующей записью.
func (e *Engine) Read(id string) (*models.SyncRecord, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.store == nil {
		return nil, false
	}
	rec, ok := e.store.Get(id)
	if !ok || rec.IsTombstone() {
		return nil, false
	}
	return rec, true
}

// ReadAllByType возвращает записи указанного типа, упорядоченные по id.
// Tombstone не возвращаются, как и в Read.
func (e *Engine) ReadAllByType(recordType string) []*models.SyncRecord {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.store == nil {
		return nil
	}
	records := slices.Collect(e.store.ListByType(recordType))
	return slices.DeleteFunc(records, (*models.SyncRecord).IsTombstone)
}

// Conflicts возвращает активные конфликты
func (e *Engine) Conflicts() []*models.SyncConflict {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stateLocked().Conflicts
}

// Resolve разрешает один активный конфликт явно указанной политикой
func (e *Engine) Resolve(ctx context.Context, conflictID string, policy models.Policy) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkRunningLocked(); err != nil {
		return err
	}

	c, ok := e.conflicts[conflictID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrConflictNotFound, conflictID)
	}

	if err := e.resolveLocked(ctx, c, policy); err != nil {
		return err
	}
	e.publishLocked()
	return nil
}

// ForceSync передает транспорту каждую запись, чья версия или checksum
// отличаются от последней переданной. Записи с активным конфликтом ждут его
// разрешения. Возвращает число отправленных записей.
func (e *Engine) ForceSync(ctx context.Context) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkRunningLocked(); err != nil {
		return 0, err
	}
	if !e.online {
		return 0, ErrOffline
	}

	sent := 0
	for rec := range e.store.All() {
		if e.sent[rec.ID] == sentKey(rec) {
			continue
		}
		if _, blocked := e.conflicts[rec.ID]; blocked {
			continue
		}
		if e.sendLocked(ctx, rec) {
			sent++
		}
	}

	e.logger.Info("Force sync", "sent", sent)
	e.publishLocked()
	return sent, nil
}
