package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sethvargo/go-retry"

	apiclient "github.com/iudanet/devsync/internal/client/api"
	"github.com/iudanet/devsync/internal/models"
	"github.com/iudanet/devsync/pkg/api"
)

// pending запись, отправленная по каналу и ожидающая подтверждения
type pending struct {
	timer    *time.Timer
	version  int64
	fallback bool // запущена доставка через POST /sync
}

// Client реализация Transport поверх gorilla/websocket с fallback на HTTP
type Client struct {
	ctx      context.Context
	logger   *slog.Logger
	api      *apiclient.Client
	dialer   *websocket.Dialer
	events   chan Event
	conn     *channel
	inflight map[string]*pending
	cancel   context.CancelFunc
	wsURL    string
	cfg      Config
	wg       sync.WaitGroup
	mu       sync.Mutex
	started  bool
	closed   bool
}

// New создает транспорт. Подключение начинается после Connect.
func New(cfg Config, logger *slog.Logger) (*Client, error) {
	cfg = cfg.withDefaults()

	wsURL, err := channelURL(cfg.ServerURL, cfg.UserID, cfg.DeviceID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		ctx:      ctx,
		cancel:   cancel,
		cfg:      cfg,
		logger:   logger,
		wsURL:    wsURL,
		api:      apiclient.NewClient(strings.TrimRight(cfg.ServerURL, "/"), cfg.Token),
		dialer:   &websocket.Dialer{HandshakeTimeout: 10 * time.Second, Proxy: http.ProxyFromEnvironment},
		events:   make(chan Event, cfg.EventBuffer),
		inflight: make(map[string]*pending),
	}, nil
}

// channelURL строит адрес websocket канала из базового адреса сервера
func channelURL(serverURL, userID, deviceID string) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse server url: %w", err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported server url scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("server url has no host")
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/sync"
	q := u.Query()
	q.Set("userId", userID)
	q.Set("deviceId", deviceID)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Connect запускает цикл подключения. Пока ctx не отменен,
// потерянный канал восстанавливается с экспоненциальной задержкой.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if c.started {
		return nil
	}
	c.started = true

	context.AfterFunc(ctx, c.cancel)
	c.wg.Add(1)
	go c.run()
	return nil
}

// Events возвращает канал событий транспорта
func (c *Client) Events() <-chan Event {
	return c.events
}

// Connected сообщает, открыт ли канал
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// Send отправляет запись по каналу. Если канал закрыт или подтверждение
// не пришло за AckTimeout, запись уходит через POST /sync.
func (c *Client) Send(ctx context.Context, rec *models.SyncRecord) error {
	if rec == nil {
		return fmt.Errorf("record is nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	ch := c.conn
	if ch != nil {
		c.trackLocked(rec)
	}
	c.mu.Unlock()

	if ch != nil && ch.enqueue(api.Message{Type: api.MessageSync, Data: rec.ToAPI()}) {
		return nil
	}

	c.logger.Debug("Channel unavailable, using fallback", "id", rec.ID, "version", rec.Version)
	c.startFallback(rec)
	return nil
}

// Close останавливает подключение и все фоновые доставки, затем закрывает Events
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	for id, p := range c.inflight {
		if p.timer != nil {
			p.timer.Stop()
		}
		delete(c.inflight, id)
	}
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
	close(c.events)
	return nil
}

// trackLocked запоминает запись как ожидающую подтверждения.
// Вызывается под c.mu.
func (c *Client) trackLocked(rec *models.SyncRecord) {
	if p, ok := c.inflight[rec.ID]; ok && p.timer != nil {
		p.timer.Stop()
	}
	snapshot := rec.Clone()
	p := &pending{version: rec.Version}
	p.timer = time.AfterFunc(c.cfg.AckTimeout, func() {
		c.logger.Debug("Ack timeout, using fallback", "id", snapshot.ID, "version", snapshot.Version)
		c.startFallback(snapshot)
	})
	c.inflight[rec.ID] = p
}

// settle снимает ожидание подтверждения для записи.
// version <= 0 снимает ожидание независимо от версии.
// Возвращает версию, которая ожидала подтверждения.
func (c *Client) settle(id string, version int64) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.inflight[id]
	if !ok {
		return version
	}
	if version > 0 && version < p.version {
		return version
	}
	if p.timer != nil {
		p.timer.Stop()
	}
	delete(c.inflight, id)
	if version <= 0 {
		return p.version
	}
	return version
}

func (c *Client) startFallback(rec *models.SyncRecord) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	p, ok := c.inflight[rec.ID]
	switch {
	case ok && p.version == rec.Version && p.fallback:
		c.mu.Unlock()
		return
	case ok && p.version > rec.Version:
		// уже отправлена более новая версия
		c.mu.Unlock()
		return
	case ok:
		if p.timer != nil {
			p.timer.Stop()
		}
	}
	c.inflight[rec.ID] = &pending{version: rec.Version, fallback: true}
	c.wg.Add(1)
	c.mu.Unlock()

	go c.fallback(rec.Clone())
}

// fallback доставляет запись через POST /sync с ограниченным числом повторов.
// 4xx ответы не повторяются.
func (c *Client) fallback(rec *models.SyncRecord) {
	defer c.wg.Done()

	var resp *api.SyncResponse
	err := retry.Do(c.ctx, newSendBackoff(c.cfg.RetryBase, c.cfg.SendRetries), func(ctx context.Context) error {
		r, err := c.api.PostRecord(ctx, rec.ToAPI())
		if err != nil {
			if apiclient.IsRetryable(err) {
				c.logger.Debug("Fallback send failed, retrying", "id", rec.ID, "version", rec.Version, "error", err)
				return retry.RetryableError(err)
			}
			return err
		}
		resp = r
		return nil
	})

	if c.ctx.Err() != nil {
		return
	}

	if err != nil {
		c.settle(rec.ID, rec.Version)
		c.logger.Warn("Record delivery failed", "id", rec.ID, "version", rec.Version, "error", err)
		c.emit(Event{
			Kind:     EventDeliveryFailed,
			Record:   rec,
			Err:      &models.DeliveryError{RecordID: rec.ID, Version: rec.Version, Err: err},
			Fallback: true,
		})
		return
	}

	if resp.Conflict != nil {
		c.settle(rec.ID, rec.Version)
		conflict := models.ConflictFromAPI(resp.Conflict)
		c.emit(Event{Kind: EventConflict, Conflict: conflict, ID: rec.ID, Fallback: true})
		return
	}

	version := resp.Version
	if version <= 0 {
		version = rec.Version
	}
	c.settle(rec.ID, version)
	c.emit(Event{Kind: EventAck, ID: rec.ID, Version: version, Fallback: true})
}

// emit передает событие движку. Блокируется, пока событие не будет принято
// или транспорт не будет закрыт.
func (c *Client) emit(ev Event) {
	select {
	case c.events <- ev:
	case <-c.ctx.Done():
	}
}

func (c *Client) run() {
	defer c.wg.Done()

	for {
		ws, err := c.dialWithBackoff()
		if err != nil {
			return
		}
		c.serve(ws)
		if c.ctx.Err() != nil {
			return
		}
	}
}

// dialWithBackoff подключается, пока не получится или не будет отменен контекст.
// О первой неудаче в серии сообщает событием EventDisconnected.
func (c *Client) dialWithBackoff() (*websocket.Conn, error) {
	var (
		ws       *websocket.Conn
		reported bool
	)
	err := retry.Do(c.ctx, newReconnectBackoff(c.cfg.ReconnectBase, c.cfg.ReconnectMax), func(ctx context.Context) error {
		conn, err := c.dial(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Debug("Failed to connect to server", "url", c.wsURL, "error", err)
			if !reported {
				reported = true
				c.emit(Event{Kind: EventDisconnected, Err: &models.ConnectivityError{Err: err}})
			}
			return retry.RetryableError(err)
		}
		ws = conn
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ws, nil
}

func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	header := http.Header{}
	if c.cfg.Token != "" {
		header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	ws, resp, err := c.dialer.DialContext(ctx, c.wsURL, header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("websocket handshake failed with status %d: %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("failed to dial server: %w", err)
	}
	return ws, nil
}

// serve обслуживает установленное соединение до его потери
func (c *Client) serve(ws *websocket.Conn) {
	ch := newChannel(ws, c.cfg.PongWait, c.logger)

	c.mu.Lock()
	c.conn = ch
	c.mu.Unlock()

	c.logger.Info("Connected to sync server", "url", c.wsURL)
	c.emit(Event{Kind: EventConnected})

	err := ch.run(c.ctx, c.handleMessage)

	c.mu.Lock()
	c.conn = nil
	c.mu.Unlock()

	if c.ctx.Err() != nil {
		return
	}
	if err == nil {
		err = errors.New("channel closed")
	}
	c.logger.Info("Disconnected from sync server", "error", err)
	c.emit(Event{Kind: EventDisconnected, Err: &models.ConnectivityError{Err: err}})
}

func (c *Client) handleMessage(msg api.Message) {
	switch msg.Type {
	case api.MessageSyncData:
		rec := models.RecordFromAPI(msg.Data)
		if rec == nil {
			c.logger.Warn("Dropping sync_data without record")
			return
		}
		c.emit(Event{Kind: EventRecord, Record: rec})

	case api.MessageSyncAck:
		if msg.ID == "" {
			c.logger.Warn("Dropping sync_ack without id")
			return
		}
		version := c.settle(msg.ID, msg.Version)
		c.emit(Event{Kind: EventAck, ID: msg.ID, Version: version})

	case api.MessageSyncConflict:
		conflict := models.ConflictFromAPI(msg.Conflict)
		if conflict == nil {
			c.logger.Warn("Dropping sync_conflict without conflict")
			return
		}
		id := msg.ID
		if id == "" {
			id = conflict.ID
		}
		c.settle(id, 0)
		c.emit(Event{Kind: EventConflict, Conflict: conflict, ID: id})

	default:
		c.logger.Debug("Ignoring unknown channel message", "type", msg.Type)
	}
}
