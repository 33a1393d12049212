package sync

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/iudanet/devsync/internal/client/connectivity"
	"github.com/iudanet/devsync/internal/client/storage"
	"github.com/iudanet/devsync/internal/client/transport"
	"github.com/iudanet/devsync/internal/clock"
	"github.com/iudanet/devsync/internal/models"
	"github.com/iudanet/devsync/internal/validation"
)

// Значения по умолчанию
const (
	DefaultAutoSyncInterval = 5 * time.Second
	DefaultAckTimeout       = 15 * time.Second
	DefaultMaxErrorHistory  = 50
)

// Config параметры сессии синхронизации
type Config struct {
	UserID           string
	DeviceID         string
	Policy           models.Policy // политика автоматического разрешения конфликтов
	AutoSyncInterval time.Duration
	AckTimeout       time.Duration // после этого срока неподтвержденная запись отправляется повторно
	MaxErrorHistory  int
}

func (c Config) withDefaults() Config {
	if c.Policy == "" {
		c.Policy = models.PolicyRemote
	}
	if c.AutoSyncInterval <= 0 {
		c.AutoSyncInterval = DefaultAutoSyncInterval
	}
	if c.AckTimeout <= 0 {
		c.AckTimeout = DefaultAckTimeout
	}
	if c.MaxErrorHistory <= 0 {
		c.MaxErrorHistory = DefaultMaxErrorHistory
	}
	return c
}

func (c Config) validate() error {
	if err := validation.ValidateIdentifier("user id", c.UserID); err != nil {
		return err
	}
	if err := validation.ValidateIdentifier("device id", c.DeviceID); err != nil {
		return err
	}
	if _, err := models.ParsePolicy(string(c.Policy)); err != nil {
		return err
	}
	return nil
}

// Deps внешние зависимости движка.
// Хранилища необязательны: без них состояние живет только в памяти.
type Deps struct {
	Transport    transport.Transport     // обязателен
	Connectivity connectivity.Monitor    // nil означает "всегда online"
	Records      storage.RecordStorage   // nil для in-memory store
	Queue        storage.QueueStorage    // nil для in-memory очереди
	Conflicts    storage.ConflictStorage // nil: ручные конфликты не переживают перезапуск
	Metadata     storage.MetadataStorage // nil: нижние границы версий удаленных записей живут в памяти
	Clock        *clock.Monotonic        // nil: системное время
	Logger       *slog.Logger
	Now          func() time.Time // источник времени для сроков provisional и истории ошибок
}

func (d Deps) validate() error {
	if d.Transport == nil {
		return fmt.Errorf("transport is required")
	}
	return nil
}
