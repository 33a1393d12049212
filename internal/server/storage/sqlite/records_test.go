package sqlite

import (
	"context"
	"encoding/json"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/devsync/internal/models"
	"github.com/iudanet/devsync/internal/server/storage"
)

func setupTestStorage(t *testing.T) (*Storage, func()) {
	t.Helper()

	s, err := New(context.Background(), filepath.Join(t.TempDir(), "relay.db"))
	require.NoError(t, err)
	s.now = func() time.Time { return time.UnixMilli(5000) }

	cleanup := func() {
		_ = s.Close()
	}
	return s, cleanup
}

func testRecord(id string, version, ts int64, checksum, payload, origin string) *models.SyncRecord {
	rec := &models.SyncRecord{
		ID:             id,
		RecordType:     "note",
		OwnerUserID:    "user-1",
		OriginDeviceID: origin,
		Checksum:       checksum,
		Timestamp:      ts,
		Version:        version,
	}
	if payload != "" {
		rec.Payload = json.RawMessage(payload)
	}
	return rec
}

func TestNew_InvalidPath(t *testing.T) {
	_, err := New(context.Background(), filepath.Join(t.TempDir(), "missing", "dir", "relay.db"))
	require.Error(t, err)
}

func TestNew_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "relay.db")

	s, err := New(ctx, path)
	require.NoError(t, err)
	_, err = s.ApplyRecord(ctx, testRecord("r1", 1, 100, "c1", `{"a":1}`, "dev-a"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = New(ctx, path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.GetRecord(ctx, "user-1", "r1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Version)
	require.NoError(t, s.Ping(ctx))
}

func TestStorage_ApplyRecord(t *testing.T) {
	tests := []struct {
		stored       *models.SyncRecord
		incoming     *models.SyncRecord
		wantConflict models.ConflictType
		name         string
		wantVersion  int64
		wantOutcome  storage.Outcome
	}{
		{
			name:        "new record is accepted",
			incoming:    testRecord("r1", 1, 100, "c1", `{"a":1}`, "dev-a"),
			wantOutcome: storage.OutcomeAccepted,
			wantVersion: 1,
		},
		{
			name:        "greater version replaces stored",
			stored:      testRecord("r1", 1, 100, "c1", `{"a":1}`, "dev-a"),
			incoming:    testRecord("r1", 2, 90, "c2", `{"a":2}`, "dev-b"),
			wantOutcome: storage.OutcomeAccepted,
			wantVersion: 2,
		},
		{
			name:        "same version and checksum is duplicate",
			stored:      testRecord("r1", 2, 100, "c2", `{"a":2}`, "dev-a"),
			incoming:    testRecord("r1", 2, 100, "c2", `{"a":2}`, "dev-a"),
			wantOutcome: storage.OutcomeDuplicate,
			wantVersion: 2,
		},
		{
			name:         "same version different checksum is concurrent write",
			stored:       testRecord("r1", 2, 100, "c2", `{"a":2}`, "dev-a"),
			incoming:     testRecord("r1", 2, 110, "c3", `{"a":3}`, "dev-b"),
			wantOutcome:  storage.OutcomeConflict,
			wantConflict: models.ConflictConcurrentWrite,
			wantVersion:  2,
		},
		{
			name:         "older version with newer timestamp is version mismatch",
			stored:       testRecord("r1", 3, 100, "c3", `{"a":3}`, "dev-a"),
			incoming:     testRecord("r1", 2, 200, "c2", `{"a":2}`, "dev-b"),
			wantOutcome:  storage.OutcomeConflict,
			wantConflict: models.ConflictVersionMismatch,
			wantVersion:  3,
		},
		{
			name:         "stale version is reported as version mismatch",
			stored:       testRecord("r1", 3, 100, "c3", `{"a":3}`, "dev-a"),
			incoming:     testRecord("r1", 2, 50, "c2", `{"a":2}`, "dev-b"),
			wantOutcome:  storage.OutcomeConflict,
			wantConflict: models.ConflictVersionMismatch,
			wantVersion:  3,
		},
		{
			name:        "tombstone replaces record",
			stored:      testRecord("r1", 1, 100, "c1", `{"a":1}`, "dev-a"),
			incoming:    &models.SyncRecord{ID: "r1", RecordType: models.RecordTypeDelete, OwnerUserID: "user-1", OriginDeviceID: "dev-b", Checksum: "cn", Timestamp: 120, Version: 2},
			wantOutcome: storage.OutcomeAccepted,
			wantVersion: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			s, cleanup := setupTestStorage(t)
			defer cleanup()

			if tt.stored != nil {
				res, err := s.ApplyRecord(ctx, tt.stored)
				require.NoError(t, err)
				require.Equal(t, storage.OutcomeAccepted, res.Outcome)
			}

			res, err := s.ApplyRecord(ctx, tt.incoming)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOutcome, res.Outcome)

			got, err := s.GetRecord(ctx, "user-1", "r1")
			require.NoError(t, err)
			assert.Equal(t, tt.wantVersion, got.Version)
			assert.Equal(t, tt.wantVersion, res.Stored.Version)

			if tt.wantOutcome != storage.OutcomeConflict {
				assert.Nil(t, res.Conflict)
				return
			}
			require.NotNil(t, res.Conflict)
			assert.Equal(t, tt.wantConflict, res.Conflict.ConflictType)
			assert.Equal(t, tt.incoming.Checksum, res.Conflict.LocalRecord.Checksum)
			assert.Equal(t, tt.stored.Checksum, res.Conflict.RemoteRecord.Checksum)
			assert.Equal(t, int64(5000), res.Conflict.DetectedAt)
		})
	}
}

func TestStorage_ApplyRecord_Invalid(t *testing.T) {
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	_, err := s.ApplyRecord(context.Background(), nil)
	assert.ErrorIs(t, err, storage.ErrInvalidRecord)

	_, err = s.ApplyRecord(context.Background(), &models.SyncRecord{ID: "r1"})
	assert.ErrorIs(t, err, storage.ErrInvalidRecord)
}

func TestStorage_GetRecord(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	_, err := s.GetRecord(ctx, "user-1", "missing")
	assert.ErrorIs(t, err, storage.ErrRecordNotFound)

	rec := testRecord("r1", 1, 100, "c1", `{"text":"hello"}`, "dev-a")
	_, err = s.ApplyRecord(ctx, rec)
	require.NoError(t, err)

	got, err := s.GetRecord(ctx, "user-1", "r1")
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	// записи изолированы по пользователю
	_, err = s.GetRecord(ctx, "user-2", "r1")
	assert.ErrorIs(t, err, storage.ErrRecordNotFound)
}

func TestStorage_TombstoneWithoutPayload(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	tomb := &models.SyncRecord{ID: "r1", RecordType: models.RecordTypeDelete, OwnerUserID: "user-1", OriginDeviceID: "dev-a", Checksum: "cn", Timestamp: 1, Version: 1}
	_, err := s.ApplyRecord(ctx, tomb)
	require.NoError(t, err)

	got, err := s.GetRecord(ctx, "user-1", "r1")
	require.NoError(t, err)
	assert.True(t, got.IsTombstone())
	assert.Nil(t, got.Payload)
}

func TestStorage_ListUserRecords(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	empty, err := s.ListUserRecords(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, empty)
	assert.NotNil(t, empty)

	for _, id := range []string{"c", "a", "b"} {
		_, err := s.ApplyRecord(ctx, testRecord(id, 1, 100, "sum-"+id, `{}`, "dev-a"))
		require.NoError(t, err)
	}
	other := testRecord("z", 1, 100, "sum-z", `{}`, "dev-x")
	other.OwnerUserID = "user-2"
	_, err = s.ApplyRecord(ctx, other)
	require.NoError(t, err)

	records, err := s.ListUserRecords(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "a", records[0].ID)
	assert.Equal(t, "b", records[1].ID)
	assert.Equal(t, "c", records[2].ID)
}

func TestStorage_ApplyRecord_ConcurrentWritersOneWins(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	const writers = 8
	outcomes := make(chan storage.Outcome, writers)

	var wg sync.WaitGroup
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := testRecord("shared", 1, int64(100+i), "sum-"+string(rune('a'+i)), `{}`, "dev")
			res, err := s.ApplyRecord(ctx, rec)
			if err != nil {
				t.Error(err)
				return
			}
			outcomes <- res.Outcome
		}()
	}
	wg.Wait()
	close(outcomes)

	accepted := 0
	for o := range outcomes {
		if o == storage.OutcomeAccepted {
			accepted++
		}
	}
	assert.Equal(t, 1, accepted)
}
