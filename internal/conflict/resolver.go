// Package conflict сравнивает входящую запись с локальной копией
// и выполняет выбранную политику разрешения конфликта.
package conflict

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/iudanet/devsync/internal/checksum"
	"github.com/iudanet/devsync/internal/clock"
	"github.com/iudanet/devsync/internal/models"
)

var (
	// ErrManualResolution политика manual не выполняет автоматических действий
	ErrManualResolution = errors.New("conflict requires manual resolution")

	// ErrUnknownPolicy неизвестная политика разрешения
	ErrUnknownPolicy = errors.New("unknown conflict policy")
)

// Outcome результат сравнения входящей записи с локальной
type Outcome int

const (
	// OutcomeAccept удаленная запись принимается как есть
	OutcomeAccept Outcome = iota
	// OutcomeNoop копии идентичны, удаленная отбрасывается
	OutcomeNoop
	// OutcomeStale удаленная запись устарела и отбрасывается без конфликта
	OutcomeStale
	// OutcomeConflict расхождение требует разрешения
	OutcomeConflict
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAccept:
		return "accept"
	case OutcomeNoop:
		return "noop"
	case OutcomeStale:
		return "stale"
	case OutcomeConflict:
		return "conflict"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Decision результат Detect
type Decision struct {
	Type    models.ConflictType // заполнен только для OutcomeConflict
	Outcome Outcome
}

// Detect классифицирует удаленную запись относительно локальной.
// Правила проверяются строго по порядку:
//
//  1. локальной нет                                    -> accept
//  2. версии равны, checksum равны                     -> noop
//  3. remote.version > local.version                   -> accept
//  4. remote.version < local.version, remote новее     -> version-mismatch
//  5. remote.version < local.version                   -> stale
//  6. версии равны, то же устройство, local новее      -> stale-timestamp
//  7. версии равны, checksum различаются               -> concurrent-write
func Detect(local, remote *models.SyncRecord) Decision {
	switch {
	case local == nil:
		return Decision{Outcome: OutcomeAccept}
	case local.SameContent(remote):
		return Decision{Outcome: OutcomeNoop}
	case remote.Version > local.Version:
		return Decision{Outcome: OutcomeAccept}
	case remote.Version < local.Version && remote.Timestamp > local.Timestamp:
		return Decision{Outcome: OutcomeConflict, Type: models.ConflictVersionMismatch}
	case remote.Version < local.Version:
		return Decision{Outcome: OutcomeStale}
	case remote.OriginDeviceID == local.OriginDeviceID && local.Timestamp > remote.Timestamp:
		return Decision{Outcome: OutcomeConflict, Type: models.ConflictStaleTimestamp}
	default:
		return Decision{Outcome: OutcomeConflict, Type: models.ConflictConcurrentWrite}
	}
}

// Resolution результат применения политики
type Resolution struct {
	Record    *models.SyncRecord // запись, которую нужно сохранить локально
	Rollback  bool               // запись понижает локальную версию (Store.Rollback)
	Broadcast bool               // запись нужно отправить остальным устройствам
}

// Resolver создает и разрешает конфликты от имени одного устройства
type Resolver struct {
	clock    clock.Clock
	deviceID string
}

// NewResolver создает Resolver для устройства deviceID
func NewResolver(deviceID string, clk clock.Clock) *Resolver {
	return &Resolver{
		clock:    clk,
		deviceID: deviceID,
	}
}

// NewConflict фиксирует копии обеих версий на момент обнаружения
func (r *Resolver) NewConflict(local, remote *models.SyncRecord, conflictType models.ConflictType) *models.SyncConflict {
	return &models.SyncConflict{
		ID:           remote.ID,
		LocalRecord:  local.Clone(),
		RemoteRecord: remote.Clone(),
		ConflictType: conflictType,
		DetectedAt:   r.clock.Now(),
	}
}

// Resolve применяет политику к конфликту
func (r *Resolver) Resolve(c *models.SyncConflict, policy models.Policy) (*Resolution, error) {
	if c == nil || c.LocalRecord == nil || c.RemoteRecord == nil {
		return nil, fmt.Errorf("conflict must carry both local and remote records")
	}

	local, remote := c.LocalRecord, c.RemoteRecord

	switch policy {
	case models.PolicyLocal:
		rec, err := r.successor(local, remote, local.RecordType, local.Payload)
		if err != nil {
			return nil, err
		}
		return &Resolution{Record: rec, Broadcast: true}, nil

	case models.PolicyRemote:
		return &Resolution{
			Record:    remote.Clone(),
			Rollback:  remote.Version < local.Version,
			Broadcast: true,
		}, nil

	case models.PolicyMerge:
		recordType, payload, err := Merge(local, remote)
		if err != nil {
			return nil, err
		}
		rec, err := r.successor(local, remote, recordType, payload)
		if err != nil {
			return nil, err
		}
		return &Resolution{Record: rec, Broadcast: true}, nil

	case models.PolicyManual:
		return nil, ErrManualResolution

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, policy)
	}
}

// successor создает новую версию max(local, remote)+1 от имени этого устройства
func (r *Resolver) successor(local, remote *models.SyncRecord, recordType string, payload json.RawMessage) (*models.SyncRecord, error) {
	rec := &models.SyncRecord{
		ID:             local.ID,
		RecordType:     recordType,
		OriginDeviceID: r.deviceID,
		OwnerUserID:    local.OwnerUserID,
		Timestamp:      r.clock.Now(),
		Version:        max(local.Version, remote.Version) + 1,
	}
	if recordType != models.RecordTypeDelete {
		rec.Payload = append(json.RawMessage(nil), payload...)
	}

	if err := checksum.Seal(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Merge выполняет поверхностное слияние remote поверх local:
// при совпадении ключей выигрывает remote. Если хотя бы одна сторона
// не является JSON объектом (или это tombstone), remote выигрывает целиком.
func Merge(local, remote *models.SyncRecord) (string, json.RawMessage, error) {
	if local.IsTombstone() || remote.IsTombstone() {
		return remote.RecordType, remote.Payload, nil
	}

	localFields, ok := asObject(local.Payload)
	if !ok {
		return remote.RecordType, remote.Payload, nil
	}
	remoteFields, ok := asObject(remote.Payload)
	if !ok {
		return remote.RecordType, remote.Payload, nil
	}

	for k, v := range remoteFields {
		localFields[k] = v
	}

	merged, err := json.Marshal(localFields)
	if err != nil {
		return "", nil, fmt.Errorf("failed to encode merged payload: %w", err)
	}

	return remote.RecordType, merged, nil
}

func asObject(payload json.RawMessage) (map[string]json.RawMessage, bool) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, false
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, false
	}
	return fields, true
}
