package sync

import (
	"context"
	"errors"
	"fmt"

	"github.com/iudanet/devsync/internal/checksum"
	"github.com/iudanet/devsync/internal/conflict"
	"github.com/iudanet/devsync/internal/models"
)

// ingestLocked применяет запись, пришедшую с другого устройства или от сервера
func (e *Engine) ingestLocked(ctx context.Context, remote *models.SyncRecord) {
	if remote == nil {
		return
	}

	if err := checksum.Verify(remote); err != nil {
		e.logger.Warn("Rejecting inbound record with invalid checksum",
			"id", remote.ID, "version", remote.Version, "origin", remote.OriginDeviceID, "error", err)
		e.addIssueLocked(IssueIntegrity, remote.ID, remote.Version, err)
		return
	}

	if remote.OwnerUserID != e.cfg.UserID {
		err := fmt.Errorf("record owner %q does not match user %q", remote.OwnerUserID, e.cfg.UserID)
		e.logger.Warn("Rejecting inbound record of another user", "id", remote.ID, "error", err)
		e.addIssueLocked(IssueRejected, remote.ID, remote.Version, err)
		return
	}

	local, _ := e.store.Get(remote.ID)
	decision := conflict.Detect(local, remote)

	switch decision.Outcome {
	case conflict.OutcomeAccept:
		e.acceptLocked(ctx, remote)

	case conflict.OutcomeNoop:
		e.sent[remote.ID] = sentKey(remote)
		if mark, ok := e.inflight[remote.ID]; ok && mark.version == remote.Version {
			e.ackLocked(ctx, remote.ID, remote.Version)
		}

	case conflict.OutcomeStale:
		e.logger.Debug("Discarding stale inbound record",
			"id", remote.ID, "remote_version", remote.Version, "local_version", local.Version)

	case conflict.OutcomeConflict:
		c := e.resolver.NewConflict(local, remote, decision.Type)
		e.registerConflictLocked(ctx, c)
		if e.cfg.Policy == models.PolicyManual {
			return
		}
		if err := e.resolveLocked(ctx, c, e.cfg.Policy); err != nil {
			e.logger.Error("Failed to resolve conflict", "id", c.ID, "policy", e.cfg.Policy, "error", err)
			e.addIssueLocked(IssueConflict, c.ID, remote.Version, err)
		}
	}
}

func (e *Engine) acceptLocked(ctx context.Context, remote *models.SyncRecord) {
	if err := e.store.Put(ctx, remote); err != nil {
		e.logger.Error("Failed to apply inbound record", "id", remote.ID, "error", err)
		e.addIssueLocked(IssueStorage, remote.ID, remote.Version, err)
		return
	}
	e.clock.Advance(remote.Timestamp)

	if _, err := e.queue.RemoveAcknowledged(ctx, remote.ID, remote.Version); err != nil {
		e.logger.Error("Failed to drop superseded outbound records", "id", remote.ID, "error", err)
		e.addIssueLocked(IssueStorage, remote.ID, remote.Version, err)
	}
	if mark, ok := e.inflight[remote.ID]; ok && mark.version <= remote.Version {
		delete(e.inflight, remote.ID)
	}
	// более новая удаленная версия отменяет provisional запись
	delete(e.provisional, remote.ID)
	e.sent[remote.ID] = sentKey(remote)

	e.logger.Debug("Applied inbound record",
		"id", remote.ID, "version", remote.Version, "origin", remote.OriginDeviceID)
}

// handleServerConflictLocked обрабатывает конфликт, обнаруженный сервером.
// RemoteRecord содержит копию сервера и проходит обычный путь приема.
func (e *Engine) handleServerConflictLocked(ctx context.Context, c *models.SyncConflict) {
	if c == nil || c.RemoteRecord == nil {
		e.logger.Warn("Ignoring server conflict without remote record")
		return
	}

	e.logger.Info("Server reported conflict",
		"id", c.ID, "type", c.ConflictType, "server_version", c.RemoteRecord.Version)

	if mark, ok := e.inflight[c.ID]; ok {
		delete(e.inflight, c.ID)
		// отправленная версия отклонена сервером
		if current, exists := e.store.Get(c.ID); exists && current.Version == mark.version {
			delete(e.sent, c.ID)
		}
	}
	e.ingestLocked(ctx, c.RemoteRecord)
}

// registerConflictLocked делает конфликт активным. Для одного id активен
// один конфликт: более новое обнаружение заменяет старое.
func (e *Engine) registerConflictLocked(ctx context.Context, c *models.SyncConflict) {
	if old, ok := e.conflicts[c.ID]; ok {
		e.logger.Debug("Replacing active conflict", "id", c.ID, "old_type", old.ConflictType)
	}
	e.conflicts[c.ID] = c

	e.logger.Info("Conflict detected",
		"id", c.ID,
		"type", c.ConflictType,
		"local_version", c.LocalRecord.Version,
		"remote_version", c.RemoteRecord.Version)

	if e.conflictStore != nil {
		if err := e.conflictStore.SaveConflict(ctx, c); err != nil {
			e.logger.Error("Failed to persist conflict", "id", c.ID, "error", err)
			e.addIssueLocked(IssueStorage, c.ID, c.RemoteRecord.Version, err)
		}
	}
}

// resolveLocked применяет политику к активному конфликту и рассылает результат
func (e *Engine) resolveLocked(ctx context.Context, c *models.SyncConflict, policy models.Policy) error {
	// локальная копия могла измениться с момента обнаружения
	target := c.Clone()
	if current, ok := e.store.Get(c.ID); ok {
		target.LocalRecord = current
	}

	res, err := e.resolver.Resolve(target, policy)
	if err != nil {
		if errors.Is(err, conflict.ErrManualResolution) {
			return err
		}
		return fmt.Errorf("failed to resolve conflict %s: %w", c.ID, err)
	}

	rec := res.Record
	if res.Rollback {
		err = e.store.Rollback(ctx, rec)
	} else {
		err = e.store.Put(ctx, rec)
	}
	if err != nil {
		return fmt.Errorf("failed to save resolved record %s: %w", c.ID, err)
	}
	e.clock.Advance(rec.Timestamp)

	delete(e.conflicts, c.ID)
	if e.conflictStore != nil {
		if err := e.conflictStore.DeleteConflict(ctx, c.ID); err != nil {
			e.logger.Error("Failed to delete resolved conflict", "id", c.ID, "error", err)
			e.addIssueLocked(IssueStorage, c.ID, rec.Version, err)
		}
	}

	e.logger.Info("Conflict resolved",
		"id", c.ID, "policy", policy, "version", rec.Version, "rollback", res.Rollback)

	if !res.Broadcast {
		return nil
	}

	// результат разрешения заменяет все ожидающие версии этого id
	if _, err := e.queue.RemoveAcknowledged(ctx, c.ID, 0); err != nil {
		return fmt.Errorf("failed to clear outbound records of %s: %w", c.ID, err)
	}
	delete(e.inflight, c.ID)
	if err := e.queue.Enqueue(ctx, rec); err != nil {
		return fmt.Errorf("failed to enqueue resolved record %s: %w", c.ID, err)
	}
	e.sendLocked(ctx, rec)
	return nil
}
