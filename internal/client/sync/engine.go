// Package sync реализует движок синхронизации записей между устройствами:
// локальная запись, очередь исходящих, прием входящих и разрешение конфликтов.
package sync

import (
	"context"
	"fmt"
	"log/slog"
	gosync "sync"
	"time"

	"github.com/iudanet/devsync/internal/client/connectivity"
	"github.com/iudanet/devsync/internal/client/queue"
	"github.com/iudanet/devsync/internal/client/storage"
	"github.com/iudanet/devsync/internal/client/store"
	"github.com/iudanet/devsync/internal/client/transport"
	"github.com/iudanet/devsync/internal/clock"
	"github.com/iudanet/devsync/internal/conflict"
	"github.com/iudanet/devsync/internal/models"
)

// inflight запись, переданная транспорту и ожидающая подтверждения
type inflight struct {
	sentAt  time.Time
	version int64
}

// Engine движок синхронизации одного устройства.
// Все мутации выполняются под mu: и публичные вызовы, и обработка событий в loop.
type Engine struct {
	transport     transport.Transport
	monitor       connectivity.Monitor
	conflictStore storage.ConflictStorage
	recordBackend storage.RecordStorage
	queueBackend  storage.QueueStorage
	metadata      storage.MetadataStorage
	logger        *slog.Logger
	clock         *clock.Monotonic
	now           func() time.Time
	store         *store.Store
	queue         *queue.Queue
	resolver      *conflict.Resolver
	cancel        context.CancelFunc
	sent          map[string]string // id -> version:checksum последней переданной транспорту версии
	inflight      map[string]inflight
	conflicts     map[string]*models.SyncConflict
	provisional   map[string]provisionalMark
	floors        map[string]int64 // id -> версия удаленного tombstone
	subscribers   map[int]chan State
	status        ConnectionStatus
	cfg           Config
	issues        []Issue
	wg            gosync.WaitGroup
	nextSubID     int
	mu            gosync.Mutex
	online        bool
	started       bool
	closed        bool
}

// New создает движок. Загрузка состояния и подключение выполняются в Start.
func New(cfg Config, deps Deps) (*Engine, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid sync config: %w", err)
	}
	if err := deps.validate(); err != nil {
		return nil, fmt.Errorf("invalid sync dependencies: %w", err)
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clk := deps.Clock
	if clk == nil {
		clk = clock.NewMonotonic()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	return &Engine{
		cfg:           cfg,
		transport:     deps.Transport,
		monitor:       deps.Connectivity,
		conflictStore: deps.Conflicts,
		recordBackend: deps.Records,
		queueBackend:  deps.Queue,
		metadata:      deps.Metadata,
		logger:        logger.With("device_id", cfg.DeviceID),
		clock:         clk,
		now:           now,
		resolver:      conflict.NewResolver(cfg.DeviceID, clk),
		sent:          make(map[string]string),
		inflight:      make(map[string]inflight),
		conflicts:     make(map[string]*models.SyncConflict),
		provisional:   make(map[string]provisionalMark),
		floors:        make(map[string]int64),
		subscribers:   make(map[int]chan State),
		status:        StatusOffline,
	}, nil
}

// DeviceID возвращает идентификатор устройства сессии
func (e *Engine) DeviceID() string {
	return e.cfg.DeviceID
}

// Start загружает сохраненное состояние, подключает транспорт и запускает цикл событий.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrClosed
	}
	if e.started {
		return nil
	}

	if err := e.loadLocked(ctx); err != nil {
		return err
	}
	e.clock.Advance(e.store.MaxTimestamp())

	e.online = e.monitor == nil || e.monitor.IsOnline()

	loopCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel

	if err := e.transport.Connect(loopCtx); err != nil {
		cancel()
		return fmt.Errorf("failed to connect transport: %w", err)
	}
	e.status = StatusConnecting
	e.started = true

	e.wg.Add(1)
	go e.loop(loopCtx)

	e.logger.Info("Sync engine started",
		"user_id", e.cfg.UserID,
		"policy", e.cfg.Policy,
		"records", e.store.Len(),
		"pending", e.queue.Len(),
		"conflicts", len(e.conflicts))

	e.flushLocked(ctx)
	e.publishLocked()
	return nil
}

func (e *Engine) loadLocked(ctx context.Context) error {
	var err error

	if e.recordBackend != nil {
		if e.store, err = store.Open(ctx, e.recordBackend); err != nil {
			return err
		}
	} else {
		e.store = store.New()
	}

	if e.queueBackend != nil {
		if e.queue, err = queue.Open(ctx, e.queueBackend); err != nil {
			return err
		}
	} else {
		e.queue = queue.New()
	}

	if e.conflictStore != nil {
		stored, err := e.conflictStore.ListConflicts(ctx)
		if err != nil {
			return fmt.Errorf("failed to load conflicts: %w", err)
		}
		for _, c := range stored {
			e.conflicts[c.ID] = c
		}
	}

	return nil
}

// Close останавливает цикл событий и транспорт. Подписки закрываются.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	started := e.started
	if e.cancel != nil {
		e.cancel()
	}
	e.mu.Unlock()

	e.wg.Wait()

	var err error
	if started {
		if err = e.transport.Close(); err != nil {
			err = fmt.Errorf("failed to close transport: %w", err)
		}
	}

	e.mu.Lock()
	e.status = StatusOffline
	for id, ch := range e.subscribers {
		delete(e.subscribers, id)
		close(ch)
	}
	e.mu.Unlock()

	e.logger.Info("Sync engine stopped")
	return err
}

func (e *Engine) checkRunningLocked() error {
	switch {
	case e.closed:
		return ErrClosed
	case !e.started:
		return ErrNotStarted
	default:
		return nil
	}
}

// loop единственная горутина, обрабатывающая события транспорта,
// смену подключения и периодическую синхронизацию
func (e *Engine) loop(ctx context.Context) {
	defer e.wg.Done()

	ticker := time.NewTicker(e.cfg.AutoSyncInterval)
	defer ticker.Stop()

	events := e.transport.Events()
	var changes <-chan bool
	if e.monitor != nil {
		changes = e.monitor.Changes()
	}

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			e.handleEvent(ctx, ev)
		case online := <-changes:
			e.handleConnectivity(ctx, online)
		case <-ticker.C:
			e.tick(ctx)
		}
	}
}

func (e *Engine) handleEvent(ctx context.Context, ev transport.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch ev.Kind {
	case transport.EventConnected:
		e.status = StatusConnected
		e.logger.Info("Sync channel connected")
		e.flushLocked(ctx)

	case transport.EventDisconnected:
		if e.status != StatusDisconnected {
			e.logger.Info("Sync channel disconnected", "error", ev.Err)
		}
		e.status = StatusDisconnected

	case transport.EventRecord:
		e.ingestLocked(ctx, ev.Record)

	case transport.EventConflict:
		e.handleServerConflictLocked(ctx, ev.Conflict)

	case transport.EventAck:
		e.ackLocked(ctx, ev.ID, ev.Version)

	case transport.EventDeliveryFailed:
		e.deliveryFailedLocked(ev)

	default:
		e.logger.Debug("Ignoring transport event", "kind", ev.Kind)
	}

	e.publishLocked()
}

func (e *Engine) handleConnectivity(ctx context.Context, online bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.online == online {
		return
	}
	e.online = online
	e.logger.Info("Connectivity changed", "online", online)

	if online {
		e.flushLocked(ctx)
	}
	e.publishLocked()
}

// tick периодическая синхронизация: повторная отправка зависших записей
// и проверка сроков provisional записей
func (e *Engine) tick(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.expireProvisionalLocked(ctx)
	e.flushLocked(ctx)
	e.publishLocked()
}

// flushLocked отправляет записи очереди, у которых нет свежей отметки об отправке
func (e *Engine) flushLocked(ctx context.Context) {
	if !e.online {
		return
	}

	records, err := e.queue.Drain(ctx)
	if err != nil {
		e.logger.Error("Failed to drain outbound queue", "error", err)
		e.addIssueLocked(IssueStorage, "", 0, err)
		return
	}

	now := e.now()
	for _, rec := range records {
		if mark, ok := e.inflight[rec.ID]; ok && mark.version >= rec.Version && now.Sub(mark.sentAt) < e.cfg.AckTimeout {
			continue
		}
		// отклоненная сервером версия ждет разрешения конфликта
		if _, blocked := e.conflicts[rec.ID]; blocked {
			continue
		}
		e.sendLocked(ctx, rec)
	}
}

// sendLocked передает запись транспорту, если устройство online.
// Иначе запись просто остается в очереди.
func (e *Engine) sendLocked(ctx context.Context, rec *models.SyncRecord) bool {
	if !e.online {
		return false
	}

	if err := e.transport.Send(ctx, rec); err != nil {
		e.logger.Warn("Failed to hand record to transport", "id", rec.ID, "version", rec.Version, "error", err)
		return false
	}

	e.inflight[rec.ID] = inflight{version: rec.Version, sentAt: e.now()}
	e.sent[rec.ID] = sentKey(rec)
	e.logger.Debug("Record sent", "id", rec.ID, "version", rec.Version)
	return true
}

func sentKey(rec *models.SyncRecord) string {
	return fmt.Sprintf("%d:%s", rec.Version, rec.Checksum)
}

// ackLocked обрабатывает подтверждение сервера
func (e *Engine) ackLocked(ctx context.Context, id string, version int64) {
	current, exists := e.store.Get(id)
	if version <= 0 && exists {
		version = current.Version
	}

	removed, err := e.queue.RemoveAcknowledged(ctx, id, version)
	if err != nil {
		e.logger.Error("Failed to remove acknowledged records", "id", id, "error", err)
		e.addIssueLocked(IssueStorage, id, version, err)
	}

	if mark, ok := e.inflight[id]; ok && mark.version <= version {
		delete(e.inflight, id)
	}
	if mark, ok := e.provisional[id]; ok && mark.version <= version {
		delete(e.provisional, id)
	}

	e.logger.Debug("Record acknowledged", "id", id, "version", version, "dequeued", removed)

	// tombstone удаляется физически, когда подтверждена его версия и очередь пуста
	if exists && current.IsTombstone() && current.Version <= version {
		if _, pending := e.queue.Pending(id); !pending {
			if err := e.store.Delete(ctx, id); err != nil {
				e.logger.Error("Failed to delete acknowledged tombstone", "id", id, "error", err)
				e.addIssueLocked(IssueStorage, id, version, err)
				return
			}
			delete(e.sent, id)
			e.rememberFloorLocked(ctx, id, current.Version)
			e.logger.Debug("Tombstone purged", "id", id, "version", current.Version)
		}
	}
}

func (e *Engine) deliveryFailedLocked(ev transport.Event) {
	if ev.Record == nil {
		return
	}
	rec := ev.Record

	// снимаем отметку, чтобы периодическая синхронизация повторила отправку
	if mark, ok := e.inflight[rec.ID]; ok && mark.version <= rec.Version {
		delete(e.inflight, rec.ID)
	}
	delete(e.sent, rec.ID)

	err := ev.Err
	if err == nil {
		err = &models.DeliveryError{RecordID: rec.ID, Version: rec.Version}
	}
	e.logger.Warn("Record delivery failed, keeping it queued", "id", rec.ID, "version", rec.Version, "error", err)
	e.addIssueLocked(IssueDelivery, rec.ID, rec.Version, err)
}
