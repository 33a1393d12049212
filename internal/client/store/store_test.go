package store

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/devsync/internal/client/storage"
	"github.com/iudanet/devsync/internal/models"
)

func createTestRecord(id, recordType string, version int64) *models.SyncRecord {
	return &models.SyncRecord{
		ID:             id,
		RecordType:     recordType,
		Payload:        json.RawMessage(`{"v":1}`),
		OriginDeviceID: "dev-a",
		OwnerUserID:    "user-1",
		Checksum:       "c",
		Timestamp:      1000 + version,
		Version:        version,
	}
}

func TestStore_PutGet(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, ok := s.Get("p1")
	assert.False(t, ok)

	rec := createTestRecord("p1", "preference", 1)
	require.NoError(t, s.Put(ctx, rec))

	got, ok := s.Get("p1")
	require.True(t, ok)
	assert.Equal(t, rec, got)

	// Изменение возвращенной копии не должно влиять на store
	got.Version = 99
	again, _ := s.Get("p1")
	assert.Equal(t, int64(1), again.Version)
}

func TestStore_PutMonotonic(t *testing.T) {
	tests := []struct {
		name    string
		stored  int64
		put     int64
		wantErr bool
	}{
		{name: "higher version", stored: 2, put: 3},
		{name: "equal version", stored: 2, put: 2},
		{name: "lower version", stored: 3, put: 2, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			ctx := context.Background()
			require.NoError(t, s.Put(ctx, createTestRecord("p1", "preference", tt.stored)))

			err := s.Put(ctx, createTestRecord("p1", "preference", tt.put))
			got, _ := s.Get("p1")
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrVersionRegression)
				assert.Equal(t, tt.stored, got.Version, "version must not decrease")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.put, got.Version)
		})
	}
}

func TestStore_Rollback(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, createTestRecord("p1", "preference", 5)))

	require.NoError(t, s.Rollback(ctx, createTestRecord("p1", "preference", 2)))

	got, _ := s.Get("p1")
	assert.Equal(t, int64(2), got.Version)
}

func TestStore_ListByTypeSnapshot(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, createTestRecord("b", "preference", 1)))
	require.NoError(t, s.Put(ctx, createTestRecord("a", "preference", 1)))
	require.NoError(t, s.Put(ctx, createTestRecord("c", "draft-booking", 1)))
	require.NoError(t, s.Put(ctx, &models.SyncRecord{ID: "d", RecordType: models.RecordTypeDelete, Version: 2}))

	seq := s.ListByType("preference")

	// Запись после взятия снимка не видна в нем
	require.NoError(t, s.Put(ctx, createTestRecord("e", "preference", 1)))

	var ids []string
	for rec := range seq {
		ids = append(ids, rec.ID)
	}
	assert.Equal(t, []string{"a", "b"}, ids)

	all := slices.Collect(s.All())
	assert.Len(t, all, 5)
	assert.Equal(t, 5, s.Len())
}

func TestStore_ListByTypeEarlyStop(t *testing.T) {
	s := New()
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, s.Put(ctx, createTestRecord(id, "preference", 1)))
	}

	count := 0
	for range s.ListByType("preference") {
		count++
		break
	}
	assert.Equal(t, 1, count)
}

func TestStore_Delete(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, createTestRecord("p1", "preference", 1)))

	require.NoError(t, s.Delete(ctx, "p1"))
	_, ok := s.Get("p1")
	assert.False(t, ok)
}

func TestStore_Backend(t *testing.T) {
	ctx := context.Background()
	persisted := map[string]*models.SyncRecord{
		"p1": createTestRecord("p1", "preference", 4),
	}

	backend := &storage.RecordStorageMock{
		ListRecordsFunc: func(ctx context.Context) ([]*models.SyncRecord, error) {
			var out []*models.SyncRecord
			for _, r := range persisted {
				out = append(out, r.Clone())
			}
			return out, nil
		},
		SaveRecordFunc: func(ctx context.Context, rec *models.SyncRecord) error {
			persisted[rec.ID] = rec.Clone()
			return nil
		},
		DeleteRecordFunc: func(ctx context.Context, id string) error {
			delete(persisted, id)
			return nil
		},
	}

	s, err := Open(ctx, backend)
	require.NoError(t, err)

	got, ok := s.Get("p1")
	require.True(t, ok)
	assert.Equal(t, int64(4), got.Version)
	assert.Equal(t, int64(1004), s.MaxTimestamp())

	require.NoError(t, s.Put(ctx, createTestRecord("p2", "preference", 1)))
	assert.Contains(t, persisted, "p2")
	assert.Len(t, backend.SaveRecordCalls(), 1)

	require.NoError(t, s.Delete(ctx, "p1"))
	assert.NotContains(t, persisted, "p1")
}

func TestStore_BackendFailureKeepsMemoryUnchanged(t *testing.T) {
	ctx := context.Background()
	backend := &storage.RecordStorageMock{
		ListRecordsFunc: func(ctx context.Context) ([]*models.SyncRecord, error) {
			return nil, nil
		},
		SaveRecordFunc: func(ctx context.Context, rec *models.SyncRecord) error {
			return errors.New("disk full")
		},
	}

	s, err := Open(ctx, backend)
	require.NoError(t, err)

	err = s.Put(ctx, createTestRecord("p1", "preference", 1))
	assert.ErrorContains(t, err, "disk full")
	_, ok := s.Get("p1")
	assert.False(t, ok)
}

func TestOpen_ListFailure(t *testing.T) {
	backend := &storage.RecordStorageMock{
		ListRecordsFunc: func(ctx context.Context) ([]*models.SyncRecord, error) {
			return nil, storage.ErrStorageClosed
		},
	}

	_, err := Open(context.Background(), backend)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}
