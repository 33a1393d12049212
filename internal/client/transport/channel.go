package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/iudanet/devsync/pkg/api"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Maximum message size allowed from peer.
	maxMessageSize = 2 << 20
)

var pingMessage = []byte(`{"type":"ping"}`)

// channel одно websocket соединение с сервером.
// Писать в соединение и закрывать его может только writePump.
type channel struct {
	ws        *websocket.Conn
	logger    *slog.Logger
	send      chan []byte
	done      chan struct{}
	pongWait  time.Duration
	closeOnce sync.Once
}

func newChannel(ws *websocket.Conn, pongWait time.Duration, logger *slog.Logger) *channel {
	return &channel{
		ws:       ws,
		logger:   logger,
		send:     make(chan []byte, defaultSendBufferSize),
		done:     make(chan struct{}),
		pongWait: pongWait,
	}
}

// run обслуживает соединение до его закрытия или отмены ctx.
// onMessage вызывается из читающей горутины.
func (ch *channel) run(ctx context.Context, onMessage func(api.Message)) error {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ch.writePump()
	}()

	stop := context.AfterFunc(ctx, ch.close)
	defer stop()

	err := ch.readPump(onMessage)
	ch.close()
	wg.Wait()
	return err
}

// enqueue ставит сообщение в очередь записи без блокировки.
// Возвращает false, если канал закрыт или буфер переполнен.
func (ch *channel) enqueue(msg api.Message) bool {
	data, err := json.Marshal(msg)
	if err != nil {
		ch.logger.Error("Failed to marshal channel message", "type", msg.Type, "error", err)
		return false
	}

	select {
	case <-ch.done:
		return false
	default:
	}

	select {
	case ch.send <- data:
		return true
	default:
		return false
	}
}

func (ch *channel) close() {
	ch.closeOnce.Do(func() {
		close(ch.done)
	})
}

func (ch *channel) readPump(onMessage func(api.Message)) error {
	ch.ws.SetReadLimit(maxMessageSize)
	_ = ch.ws.SetReadDeadline(time.Now().Add(ch.pongWait))
	ch.ws.SetPongHandler(func(string) error {
		return ch.ws.SetReadDeadline(time.Now().Add(ch.pongWait))
	})

	for {
		_, data, err := ch.ws.ReadMessage()
		if err != nil {
			select {
			case <-ch.done:
				return fmt.Errorf("channel closed: %w", err)
			default:
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				ch.logger.Warn("Websocket read failed", "error", err)
			}
			return fmt.Errorf("failed to read message: %w", err)
		}
		_ = ch.ws.SetReadDeadline(time.Now().Add(ch.pongWait))

		var msg api.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			ch.logger.Warn("Dropping malformed channel message", "error", err)
			continue
		}

		switch msg.Type {
		case api.MessagePing:
			ch.enqueue(api.Message{Type: api.MessagePong})
		case api.MessagePong:
		default:
			onMessage(msg)
		}
	}
}

func (ch *channel) writePump() {
	ticker := time.NewTicker(ch.pongWait * 9 / 10)
	defer func() {
		ticker.Stop()
		ch.close()
		_ = ch.ws.Close()
	}()

	for {
		select {
		case <-ch.done:
			_ = ch.ws.SetWriteDeadline(time.Now().Add(writeWait))
			_ = ch.ws.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case data := <-ch.send:
			_ = ch.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ch.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				ch.logger.Debug("Websocket write failed", "error", err)
				return
			}
		case <-ticker.C:
			_ = ch.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ch.ws.WriteMessage(websocket.TextMessage, pingMessage); err != nil {
				ch.logger.Debug("Websocket ping failed", "error", err)
				return
			}
		}
	}
}
