package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/iudanet/devsync/internal/models"
	"github.com/iudanet/devsync/internal/server/storage"
	"github.com/iudanet/devsync/internal/validation"
	"github.com/iudanet/devsync/pkg/api"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 2 << 20

	sendBuffer = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// клиенты не браузерные, origin не проверяется
	CheckOrigin: func(r *http.Request) bool { return true },
}

var pingMessage = []byte(`{"type":"ping"}`)

// wsClient одно real-time подключение устройства
type wsClient struct {
	conn      *websocket.Conn
	logger    *slog.Logger
	send      chan []byte
	done      chan struct{}
	userID    string
	deviceID  string
	closeOnce sync.Once
}

func newWSClient(conn *websocket.Conn, logger *slog.Logger, userID, deviceID string) *wsClient {
	return &wsClient{
		conn:     conn,
		logger:   logger,
		send:     make(chan []byte, sendBuffer),
		done:     make(chan struct{}),
		userID:   userID,
		deviceID: deviceID,
	}
}

// trySend ставит сообщение в очередь без ожидания
func (c *wsClient) trySend(msg []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// sendWait ждет места в очереди (используется для catch-up)
func (c *wsClient) sendWait(ctx context.Context, msg []byte) bool {
	select {
	case c.send <- msg:
		return true
	case <-c.done:
		return false
	case <-ctx.Done():
		return false
	}
}

func (c *wsClient) sendJSON(msg api.Message) bool {
	data, err := json.Marshal(msg)
	if err != nil {
		c.logger.Error("Failed to encode message", slog.String("type", msg.Type), slog.Any("error", err))
		return false
	}
	return c.trySend(data)
}

func (c *wsClient) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// readPump читает сообщения до ошибки или закрытия
func (c *wsClient) readPump(handle func(msg *api.Message)) {
	defer c.close()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Warn("WebSocket read error", slog.String("device_id", c.deviceID), slog.Any("error", err))
			}
			return
		}
		// любое сообщение подтверждает, что устройство живо
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))

		var msg api.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Warn("Dropping malformed message", slog.String("device_id", c.deviceID), slog.Any("error", err))
			continue
		}

		switch msg.Type {
		case api.MessagePing:
			c.sendJSON(api.Message{Type: api.MessagePong})
		case api.MessagePong:
		default:
			handle(&msg)
		}
	}
}

// writePump единственный писатель в соединение
func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
		c.close()
	}()

	write := func(messageType int, data []byte) error {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		return c.conn.WriteMessage(messageType, data)
	}

	for {
		select {
		case <-c.done:
			_ = write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case msg := <-c.send:
			if err := write(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := write(websocket.TextMessage, pingMessage); err != nil {
				return
			}
		}
	}
}

// ServeWS обрабатывает GET /sync?userId=&deviceId= (upgrade до websocket)
func (h *SyncHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()
	userID, deviceID := query.Get("userId"), query.Get("deviceId")

	if err := validation.ValidateIdentifier("user id", userID); err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validation.ValidateIdentifier("device id", deviceID); err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if authUser, ok := GetUserID(ctx); ok && authUser != userID {
		h.logger.WarnContext(ctx, "Channel user mismatch",
			slog.String("token_user", authUser), slog.String("user_id", userID))
		h.sendError(w, "user id does not match token", http.StatusForbidden)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade уже ответил клиенту
		h.logger.WarnContext(ctx, "WebSocket upgrade failed", slog.Any("error", err))
		return
	}

	client := newWSClient(conn, h.logger, userID, deviceID)
	h.hub.register(client)
	defer h.hub.unregister(client)

	go client.writePump()

	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-client.done:
			cancel()
		case <-connCtx.Done():
		}
	}()

	go h.catchUp(connCtx, client)

	client.readPump(func(msg *api.Message) {
		h.handleChannelMessage(connCtx, client, msg)
	})
}

// catchUp отправляет новому подключению все сохраненные записи пользователя
func (h *SyncHandler) catchUp(ctx context.Context, c *wsClient) {
	records, err := h.relay.CatchUp(ctx, c.userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "Catch-up failed", slog.String("user_id", c.userID), slog.Any("error", err))
		return
	}

	for _, rec := range records {
		data, err := json.Marshal(api.Message{Type: api.MessageSyncData, Data: rec.ToAPI()})
		if err != nil {
			h.logger.Error("Failed to encode catch-up record", slog.String("id", rec.ID), slog.Any("error", err))
			continue
		}
		if !c.sendWait(ctx, data) {
			return
		}
	}

	h.logger.DebugContext(ctx, "Catch-up sent",
		slog.String("device_id", c.deviceID), slog.Int("records", len(records)))
}

func (h *SyncHandler) handleChannelMessage(ctx context.Context, c *wsClient, msg *api.Message) {
	if msg.Type != api.MessageSync {
		h.logger.Debug("Ignoring unknown message type", slog.String("type", msg.Type), slog.String("device_id", c.deviceID))
		return
	}

	rec := models.RecordFromAPI(msg.Data)
	res, err := h.relay.Apply(ctx, c.userID, c.deviceID, rec)
	switch {
	case errors.Is(err, ErrInvalidRecord), errors.Is(err, ErrForbidden):
		h.logger.Warn("Dropping rejected record", slog.String("device_id", c.deviceID), slog.Any("error", err))
		return
	case err != nil:
		// без ack клиент повторит отправку
		h.logger.Error("Failed to apply record", slog.String("device_id", c.deviceID), slog.Any("error", err))
		return
	}

	if res.Outcome == storage.OutcomeConflict {
		c.sendJSON(api.Message{Type: api.MessageSyncConflict, ID: rec.ID, Conflict: res.Conflict.ToAPI()})
		return
	}
	c.sendJSON(api.Message{Type: api.MessageSyncAck, ID: rec.ID, Version: rec.Version})
}
