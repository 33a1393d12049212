package boltdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/devsync/internal/client/storage"
)

func TestMetadata(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "device id", key: "device_id", value: "lx2k3m9a-5f1c2b3d"},
		{name: "overwrite", key: "device_id", value: "other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, store.SaveMetadata(ctx, tt.key, tt.value))

			got, err := store.GetMetadata(ctx, tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.value, got)
		})
	}

	_, err := store.GetMetadata(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrMetadataNotFound)
}
