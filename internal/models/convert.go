package models

import "github.com/iudanet/devsync/pkg/api"

// ToAPI конвертирует запись в wire формат
func (r *SyncRecord) ToAPI() *api.Record {
	if r == nil {
		return nil
	}
	c := r.Clone()
	return &api.Record{
		ID:             c.ID,
		RecordType:     c.RecordType,
		Payload:        c.Payload,
		OriginDeviceID: c.OriginDeviceID,
		OwnerUserID:    c.OwnerUserID,
		Checksum:       c.Checksum,
		Timestamp:      c.Timestamp,
		Version:        c.Version,
	}
}

// RecordFromAPI конвертирует wire запись в модель
func RecordFromAPI(r *api.Record) *SyncRecord {
	if r == nil {
		return nil
	}
	rec := &SyncRecord{
		ID:             r.ID,
		RecordType:     r.RecordType,
		Payload:        r.Payload,
		OriginDeviceID: r.OriginDeviceID,
		OwnerUserID:    r.OwnerUserID,
		Checksum:       r.Checksum,
		Timestamp:      r.Timestamp,
		Version:        r.Version,
	}
	return rec.Clone()
}

// ToAPI конвертирует конфликт в wire формат
func (c *SyncConflict) ToAPI() *api.Conflict {
	if c == nil {
		return nil
	}
	return &api.Conflict{
		LocalRecord:  c.LocalRecord.ToAPI(),
		RemoteRecord: c.RemoteRecord.ToAPI(),
		ID:           c.ID,
		ConflictType: string(c.ConflictType),
		DetectedAt:   c.DetectedAt,
		Resolved:     c.Resolved,
	}
}

// ConflictFromAPI конвертирует wire конфликт в модель
func ConflictFromAPI(c *api.Conflict) *SyncConflict {
	if c == nil {
		return nil
	}
	return &SyncConflict{
		LocalRecord:  RecordFromAPI(c.LocalRecord),
		RemoteRecord: RecordFromAPI(c.RemoteRecord),
		ID:           c.ID,
		ConflictType: ConflictType(c.ConflictType),
		DetectedAt:   c.DetectedAt,
		Resolved:     c.Resolved,
	}
}
