package models

import "fmt"

// ConflictType классифицирует расхождение локальной и удаленной копий
type ConflictType string

const (
	// ConflictVersionMismatch версии различаются, и ни одна не является строгим преемником
	ConflictVersionMismatch ConflictType = "version-mismatch"
	// ConflictStaleTimestamp удаленная копия отстает по времени при равной версии
	ConflictStaleTimestamp ConflictType = "stale-timestamp"
	// ConflictConcurrentWrite обе стороны изменили запись с последней общей версии
	ConflictConcurrentWrite ConflictType = "concurrent-write"
)

// SyncConflict обнаруженное расхождение, требующее разрешения по политике или вручную.
type SyncConflict struct {
	LocalRecord  *SyncRecord  `json:"localRecord"`
	RemoteRecord *SyncRecord  `json:"remoteRecord"`
	ID           string       `json:"id"`
	ConflictType ConflictType `json:"conflictType"`
	DetectedAt   int64        `json:"detectedAt,omitempty"`
	Resolved     bool         `json:"resolved"`
}

// Clone создает глубокую копию конфликта
func (c *SyncConflict) Clone() *SyncConflict {
	if c == nil {
		return nil
	}
	return &SyncConflict{
		LocalRecord:  c.LocalRecord.Clone(),
		RemoteRecord: c.RemoteRecord.Clone(),
		ID:           c.ID,
		ConflictType: c.ConflictType,
		DetectedAt:   c.DetectedAt,
		Resolved:     c.Resolved,
	}
}

// Policy стратегия разрешения конфликта
type Policy string

const (
	// PolicyLocal оставляет локальный payload и поднимает версию
	PolicyLocal Policy = "local"
	// PolicyRemote принимает удаленную запись как есть
	PolicyRemote Policy = "remote"
	// PolicyMerge поверхностно сливает поля, удаленные поля выигрывают
	PolicyMerge Policy = "merge"
	// PolicyManual оставляет конфликт активным до явного решения
	PolicyManual Policy = "manual"
)

// ParsePolicy разбирает строковое имя политики
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(s); p {
	case PolicyLocal, PolicyRemote, PolicyMerge, PolicyManual:
		return p, nil
	default:
		return "", fmt.Errorf("unknown conflict policy %q (expected local, remote, merge or manual)", s)
	}
}
