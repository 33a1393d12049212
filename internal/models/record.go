package models

import (
	"bytes"
	"encoding/json"
)

// RecordTypeDelete тип tombstone записи: удаление распространяется
// через тот же конвейер синхронизации, что и обычные изменения.
const RecordTypeDelete = "delete"

// SyncRecord представляет одну синхронизируемую версию логической сущности.
type SyncRecord struct {
	ID             string          `json:"id"`                // ID стабильный идентификатор сущности в наборе данных пользователя
	RecordType     string          `json:"recordType"`        // RecordType тег формы payload, непрозрачен для движка
	Payload        json.RawMessage `json:"payload,omitempty"` // Payload произвольное JSON значение (nil у tombstone)
	OriginDeviceID string          `json:"originDeviceId"`    // OriginDeviceID устройство, создавшее эту версию
	OwnerUserID    string          `json:"ownerUserId"`       // OwnerUserID владелец записи (граница синхронизации)
	Checksum       string          `json:"checksum"`          // Checksum хеш payload
	Timestamp      int64           `json:"timestamp"`         // Timestamp миллисекунды на момент записи (tiebreaker)
	Version        int64           `json:"version"`           // Version увеличивается писателем при каждом изменении
}

// IsTombstone возвращает true, если запись помечает удаление
func (r *SyncRecord) IsTombstone() bool {
	return r.RecordType == RecordTypeDelete
}

// HasPayload возвращает true, если payload присутствует и не равен JSON null
func (r *SyncRecord) HasPayload() bool {
	trimmed := bytes.TrimSpace(r.Payload)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// SameContent сравнивает версию и checksum двух записей
func (r *SyncRecord) SameContent(other *SyncRecord) bool {
	return r.Version == other.Version && r.Checksum == other.Checksum
}

// Clone создает глубокую копию записи
func (r *SyncRecord) Clone() *SyncRecord {
	if r == nil {
		return nil
	}

	var payload json.RawMessage
	if r.Payload != nil {
		payload = make(json.RawMessage, len(r.Payload))
		copy(payload, r.Payload)
	}

	return &SyncRecord{
		ID:             r.ID,
		RecordType:     r.RecordType,
		Payload:        payload,
		OriginDeviceID: r.OriginDeviceID,
		OwnerUserID:    r.OwnerUserID,
		Checksum:       r.Checksum,
		Timestamp:      r.Timestamp,
		Version:        r.Version,
	}
}
