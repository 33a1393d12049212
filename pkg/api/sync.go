package api

import "encoding/json"

// Типы сообщений real-time канала /sync
const (
	MessageSync         = "sync"          // клиент -> сервер: новая версия записи
	MessageSyncData     = "sync_data"     // сервер -> клиент: запись с другого устройства
	MessageSyncConflict = "sync_conflict" // сервер -> клиент: конфликт, обнаруженный сервером
	MessageSyncAck      = "sync_ack"      // сервер -> клиент: подтверждение получения записи
	MessagePing         = "ping"
	MessagePong         = "pong"
)

// StatusOK значение поля status в успешном ответе fallback запроса
const StatusOK = "ok"

// Record представляет SyncRecord на проводе
type Record struct {
	ID             string          `json:"id"`
	RecordType     string          `json:"recordType"`
	Payload        json.RawMessage `json:"payload,omitempty"`
	OriginDeviceID string          `json:"originDeviceId"`
	OwnerUserID    string          `json:"ownerUserId"`
	Checksum       string          `json:"checksum"`
	Timestamp      int64           `json:"timestamp"`
	Version        int64           `json:"version"`
}

// Conflict представляет SyncConflict на проводе
type Conflict struct {
	LocalRecord  *Record `json:"localRecord"`
	RemoteRecord *Record `json:"remoteRecord"`
	ID           string  `json:"id"`
	ConflictType string  `json:"conflictType"`
	DetectedAt   int64   `json:"detectedAt,omitempty"`
	Resolved     bool    `json:"resolved"`
}

// Message конверт всех сообщений real-time канала
type Message struct {
	Data     *Record   `json:"data,omitempty"`
	Conflict *Conflict `json:"conflict,omitempty"`
	Type     string    `json:"type"`
	ID       string    `json:"id,omitempty"`
	Version  int64     `json:"version,omitempty"`
}

// SyncResponse ответ на POST /sync.
// Содержит либо подтверждение (Status == "ok"), либо конфликт.
type SyncResponse struct {
	Conflict *Conflict `json:"conflict,omitempty"`
	Status   string    `json:"status,omitempty"`
	ID       string    `json:"id,omitempty"`
	Version  int64     `json:"version,omitempty"`
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`             // описание ошибки
	Message string `json:"message,omitempty"` // дополнительное сообщение
}

// HealthResponse ответ GET /health
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}
