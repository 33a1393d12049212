package boltdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/devsync/internal/client/storage"
	"github.com/iudanet/devsync/internal/models"
)

func TestRecords_SaveAndGet(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	rec := createTestRecord("p1", 1)
	require.NoError(t, store.SaveRecord(ctx, rec))

	got, err := store.GetRecord(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	// Перезапись тем же ID
	updated := createTestRecord("p1", 2)
	require.NoError(t, store.SaveRecord(ctx, updated))

	got, err = store.GetRecord(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Version)
}

func TestRecords_GetNotFound(t *testing.T) {
	store := createTestStorage(t)

	_, err := store.GetRecord(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrRecordNotFound)
}

func TestRecords_Tombstone(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	tombstone := &models.SyncRecord{
		ID:             "p1",
		RecordType:     models.RecordTypeDelete,
		OriginDeviceID: "dev-a",
		OwnerUserID:    "user-1",
		Checksum:       "null-checksum",
		Version:        3,
	}
	require.NoError(t, store.SaveRecord(ctx, tombstone))

	got, err := store.GetRecord(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, got.IsTombstone())
	assert.False(t, got.HasPayload())
}

func TestRecords_DeleteAndList(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.SaveRecord(ctx, createTestRecord(id, 1)))
	}

	require.NoError(t, store.DeleteRecord(ctx, "b"))
	// Повторное удаление не является ошибкой
	require.NoError(t, store.DeleteRecord(ctx, "b"))

	records, err := store.ListRecords(ctx)
	require.NoError(t, err)

	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ID)
	}
	assert.ElementsMatch(t, []string{"a", "c"}, ids)
}
