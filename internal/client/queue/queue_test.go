package queue

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/devsync/internal/client/storage"
	"github.com/iudanet/devsync/internal/models"
)

func rec(id string, version int64) *models.SyncRecord {
	return &models.SyncRecord{ID: id, RecordType: "preference", Version: version}
}

func versions(records []*models.SyncRecord) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, fmt.Sprintf("%s:%d", r.ID, r.Version))
	}
	return out
}

func TestQueue_DrainCoalesces(t *testing.T) {
	tests := []struct {
		name     string
		enqueue  []*models.SyncRecord
		expected []string
	}{
		{
			name:     "empty",
			expected: []string{},
		},
		{
			name:     "fifo across ids",
			enqueue:  []*models.SyncRecord{rec("a", 1), rec("b", 1), rec("c", 1)},
			expected: []string{"a:1", "b:1", "c:1"},
		},
		{
			name:     "offline edits of same id keep highest version",
			enqueue:  []*models.SyncRecord{rec("a", 1), rec("b", 1), rec("a", 2), rec("a", 3)},
			expected: []string{"b:1", "a:3"},
		},
		{
			name:     "lower version enqueued later does not win",
			enqueue:  []*models.SyncRecord{rec("a", 4), rec("a", 2)},
			expected: []string{"a:4"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := New()
			ctx := context.Background()
			for _, r := range tt.enqueue {
				require.NoError(t, q.Enqueue(ctx, r))
			}

			drained, err := q.Drain(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, versions(drained))

			// Drain не удаляет записи до подтверждения
			again, err := q.Drain(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, versions(again))
		})
	}
}

func TestQueue_RemoveAcknowledged(t *testing.T) {
	q := New()
	ctx := context.Background()
	for _, r := range []*models.SyncRecord{rec("a", 1), rec("a", 2), rec("b", 1), rec("a", 3)} {
		require.NoError(t, q.Enqueue(ctx, r))
	}
	assert.Equal(t, 2, q.Len())

	removed, err := q.RemoveAcknowledged(ctx, "a", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	v, ok := q.Pending("a")
	require.True(t, ok)
	assert.Equal(t, int64(3), v, "later version must stay queued")

	removed, err = q.RemoveAcknowledged(ctx, "a", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, ok = q.Pending("a")
	assert.False(t, ok)
	assert.Equal(t, 1, q.Len())

	removed, err = q.RemoveAcknowledged(ctx, "missing", 0)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestQueue_Backend(t *testing.T) {
	ctx := context.Background()
	var stored []storage.QueuedRecord
	var seq uint64

	backend := &storage.QueueStorageMock{
		ListOutboundFunc: func(ctx context.Context) ([]storage.QueuedRecord, error) {
			return stored, nil
		},
		AppendOutboundFunc: func(ctx context.Context, r *models.SyncRecord) (uint64, error) {
			seq++
			stored = append(stored, storage.QueuedRecord{Seq: seq, Record: r.Clone()})
			return seq, nil
		},
		RemoveOutboundFunc: func(ctx context.Context, seqs ...uint64) error {
			drop := make(map[uint64]bool)
			for _, s := range seqs {
				drop[s] = true
			}
			kept := stored[:0]
			for _, e := range stored {
				if !drop[e.Seq] {
					kept = append(kept, e)
				}
			}
			stored = kept
			return nil
		},
	}

	q, err := Open(ctx, backend)
	require.NoError(t, err)
	require.NoError(t, q.Enqueue(ctx, rec("a", 1)))
	require.NoError(t, q.Enqueue(ctx, rec("a", 2)))

	_, err = q.Drain(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 1, "superseded entry must be purged from backend")
	assert.Equal(t, int64(2), stored[0].Record.Version)

	// Перезапуск: очередь восстанавливается из backend
	restored, err := Open(ctx, backend)
	require.NoError(t, err)
	v, ok := restored.Pending("a")
	require.True(t, ok)
	assert.Equal(t, int64(2), v)

	_, err = restored.RemoveAcknowledged(ctx, "a", 2)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestQueue_BackendErrors(t *testing.T) {
	ctx := context.Background()

	_, err := Open(ctx, &storage.QueueStorageMock{
		ListOutboundFunc: func(ctx context.Context) ([]storage.QueuedRecord, error) {
			return nil, storage.ErrStorageClosed
		},
	})
	assert.ErrorIs(t, err, storage.ErrStorageClosed)

	q, err := Open(ctx, &storage.QueueStorageMock{
		ListOutboundFunc: func(ctx context.Context) ([]storage.QueuedRecord, error) {
			return nil, nil
		},
		AppendOutboundFunc: func(ctx context.Context, r *models.SyncRecord) (uint64, error) {
			return 0, errors.New("disk full")
		},
	})
	require.NoError(t, err)

	assert.ErrorContains(t, q.Enqueue(ctx, rec("a", 1)), "disk full")
	assert.Zero(t, q.Len(), "failed enqueue must not leave an in-memory entry")
}
