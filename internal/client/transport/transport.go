// Package transport доставляет записи на relay сервер и принимает записи других устройств.
// Основной путь: постоянный websocket канал /sync. Запасной путь: POST /sync с повторами.
package transport

import (
	"context"
	"errors"
	"time"

	"github.com/iudanet/devsync/internal/models"
)

// ErrClosed возвращается при отправке через закрытый транспорт
var ErrClosed = errors.New("transport is closed")

// EventKind тип события транспорта
type EventKind int

const (
	// EventConnected канал установлен
	EventConnected EventKind = iota + 1
	// EventDisconnected канал потерян или не удалось подключиться. Err: *models.ConnectivityError
	EventDisconnected
	// EventRecord запись с другого устройства. Record
	EventRecord
	// EventConflict конфликт, обнаруженный сервером. Conflict
	EventConflict
	// EventAck сервер принял запись. ID, Version
	EventAck
	// EventDeliveryFailed запись не доставлена ни одним путем. Record, Err: *models.DeliveryError
	EventDeliveryFailed
)

func (k EventKind) String() string {
	switch k {
	case EventConnected:
		return "connected"
	case EventDisconnected:
		return "disconnected"
	case EventRecord:
		return "record"
	case EventConflict:
		return "conflict"
	case EventAck:
		return "ack"
	case EventDeliveryFailed:
		return "delivery_failed"
	default:
		return "unknown"
	}
}

// Event событие, поступающее из транспорта в движок синхронизации
type Event struct {
	Err      error
	Record   *models.SyncRecord
	Conflict *models.SyncConflict
	ID       string
	Version  int64
	Kind     EventKind
	Fallback bool // событие получено через POST /sync
}

// Transport интерфейс доставки записей
//
//go:generate moq -out transport_mock.go . Transport
type Transport interface {
	// Connect запускает фоновое подключение с переподключением.
	// Возвращает ошибку только при неверной конфигурации.
	Connect(ctx context.Context) error
	// Send передает запись серверу. Не блокируется на сети:
	// результат приходит событием EventAck, EventConflict или EventDeliveryFailed.
	Send(ctx context.Context, rec *models.SyncRecord) error
	// Events канал событий. Закрывается после Close.
	Events() <-chan Event
	// Connected сообщает, открыт ли сейчас канал
	Connected() bool
	Close() error
}

// Параметры по умолчанию
const (
	DefaultAckTimeout     = 10 * time.Second
	DefaultReconnectBase  = 500 * time.Millisecond
	DefaultReconnectMax   = 30 * time.Second
	DefaultSendRetries    = 3
	DefaultRetryBase      = 200 * time.Millisecond
	DefaultEventBuffer    = 256
	DefaultPongWait       = 60 * time.Second
	defaultJitterPercent  = 10
	defaultSendBufferSize = 256
)

// Config параметры транспорта
type Config struct {
	ServerURL     string // базовый адрес сервера: http(s)://host:port
	UserID        string
	DeviceID      string
	Token         string // JWT, пустой если сервер без аутентификации
	AckTimeout    time.Duration
	ReconnectBase time.Duration
	ReconnectMax  time.Duration
	RetryBase     time.Duration
	PongWait      time.Duration
	SendRetries   uint64
	EventBuffer   int
}

func (c Config) withDefaults() Config {
	if c.AckTimeout <= 0 {
		c.AckTimeout = DefaultAckTimeout
	}
	if c.ReconnectBase <= 0 {
		c.ReconnectBase = DefaultReconnectBase
	}
	if c.ReconnectMax <= 0 {
		c.ReconnectMax = DefaultReconnectMax
	}
	if c.ReconnectMax < c.ReconnectBase {
		c.ReconnectMax = c.ReconnectBase
	}
	if c.RetryBase <= 0 {
		c.RetryBase = DefaultRetryBase
	}
	if c.PongWait <= 0 {
		c.PongWait = DefaultPongWait
	}
	if c.SendRetries == 0 {
		c.SendRetries = DefaultSendRetries
	}
	if c.EventBuffer <= 0 {
		c.EventBuffer = DefaultEventBuffer
	}
	return c
}
