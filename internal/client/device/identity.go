// Package device выдает стабильный идентификатор устройства,
// которым помечается каждая локальная версия записи.
package device

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/devsync/internal/client/storage"
)

// KeyDeviceID ключ metadata, под которым хранится идентификатор устройства
const KeyDeviceID = "device_id"

// GetOrCreateDeviceID возвращает сохраненный идентификатор устройства.
// При первом вызове генерирует новый (timestamp + случайный суффикс)
// и сохраняет его, так что после перезапуска используется тот же id.
func GetOrCreateDeviceID(ctx context.Context, meta storage.MetadataStorage) (string, error) {
	id, err := meta.GetMetadata(ctx, KeyDeviceID)
	if err == nil && id != "" {
		return id, nil
	}
	if err != nil && !errors.Is(err, storage.ErrMetadataNotFound) {
		return "", fmt.Errorf("failed to read device id: %w", err)
	}

	id = NewDeviceID(time.Now())
	if err := meta.SaveMetadata(ctx, KeyDeviceID, id); err != nil {
		return "", fmt.Errorf("failed to persist device id: %w", err)
	}

	return id, nil
}

// NewDeviceID генерирует идентификатор вида <base36 unix-ms>-<8 hex>
func NewDeviceID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return strconv.FormatInt(now.UnixMilli(), 36) + "-" + suffix
}
