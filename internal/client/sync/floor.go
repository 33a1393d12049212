package sync

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/iudanet/devsync/internal/client/storage"
)

// floorKeyPrefix ключ метаданных с версией физически удаленного tombstone
const floorKeyPrefix = "version_floor/"

// versionFloorLocked возвращает версию последнего удаленного tombstone записи
// или 0. Новая запись с тем же id продолжает нумерацию с floor+1.
func (e *Engine) versionFloorLocked(ctx context.Context, id string) (int64, error) {
	if floor, ok := e.floors[id]; ok {
		return floor, nil
	}
	if e.metadata == nil {
		return 0, nil
	}

	value, err := e.metadata.GetMetadata(ctx, floorKeyPrefix+id)
	if err != nil {
		if errors.Is(err, storage.ErrMetadataNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to load version floor of %s: %w", id, err)
	}

	floor, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid version floor %q of %s: %w", value, id, err)
	}
	e.floors[id] = floor
	return floor, nil
}

// rememberFloorLocked запоминает версию tombstone, удаленного из store
func (e *Engine) rememberFloorLocked(ctx context.Context, id string, version int64) {
	if e.floors[id] >= version {
		return
	}
	e.floors[id] = version

	if e.metadata == nil {
		return
	}
	if err := e.metadata.SaveMetadata(ctx, floorKeyPrefix+id, strconv.FormatInt(version, 10)); err != nil {
		e.logger.Error("Failed to persist version floor", "id", id, "version", version, "error", err)
		e.addIssueLocked(IssueStorage, id, version, err)
	}
}
