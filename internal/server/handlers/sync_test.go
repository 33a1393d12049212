package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/devsync/internal/checksum"
	"github.com/iudanet/devsync/internal/models"
	"github.com/iudanet/devsync/internal/server/storage"
	"github.com/iudanet/devsync/pkg/api"
)

func setupTestLogger() *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelError, // Only show errors in tests
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

// sealedRecord создает запись с корректным checksum
func sealedRecord(t *testing.T, owner, id string, version int64, payload string) *models.SyncRecord {
	t.Helper()
	rec := &models.SyncRecord{
		ID:             id,
		RecordType:     "note",
		Payload:        json.RawMessage(payload),
		OriginDeviceID: "dev-a",
		OwnerUserID:    owner,
		Timestamp:      100 + version,
		Version:        version,
	}
	require.NoError(t, checksum.Seal(rec))
	return rec
}

func postRecord(t *testing.T, h *SyncHandler, ctx context.Context, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/sync", bytes.NewReader(body))
	req = req.WithContext(ctx)
	w := httptest.NewRecorder()
	h.HandlePost(w, req)
	return w
}

func encode(t *testing.T, rec *models.SyncRecord) []byte {
	t.Helper()
	data, err := json.Marshal(rec.ToAPI())
	require.NoError(t, err)
	return data
}

func TestSyncHandler_HandlePost(t *testing.T) {
	valid := sealedRecord(t, "user-1", "r1", 2, `{"a":1}`)

	tampered := valid.Clone()
	tampered.Payload = json.RawMessage(`{"a":2}`)

	noVersion := valid.Clone()
	noVersion.Version = 0

	stored := sealedRecord(t, "user-1", "r1", 3, `{"a":3}`)
	conflictResult := &storage.ApplyResult{
		Outcome: storage.OutcomeConflict,
		Stored:  stored,
		Conflict: &models.SyncConflict{
			ID:           "r1",
			ConflictType: models.ConflictVersionMismatch,
			LocalRecord:  valid,
			RemoteRecord: stored,
		},
	}

	tests := []struct {
		applyErr     error
		applyResult  *storage.ApplyResult
		ctx          context.Context
		name         string
		body         []byte
		wantStatus   int
		wantApplied  bool
		wantConflict bool
	}{
		{
			name:        "accepted",
			body:        encode(t, valid),
			applyResult: &storage.ApplyResult{Outcome: storage.OutcomeAccepted, Stored: valid},
			wantStatus:  http.StatusOK,
			wantApplied: true,
		},
		{
			name:        "duplicate is acknowledged",
			body:        encode(t, valid),
			applyResult: &storage.ApplyResult{Outcome: storage.OutcomeDuplicate, Stored: valid},
			wantStatus:  http.StatusOK,
			wantApplied: true,
		},
		{
			name:         "conflict",
			body:         encode(t, valid),
			applyResult:  conflictResult,
			wantStatus:   http.StatusConflict,
			wantApplied:  true,
			wantConflict: true,
		},
		{
			name:       "malformed json",
			body:       []byte(`{"id":`),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "checksum mismatch",
			body:       encode(t, tampered),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid version",
			body:       encode(t, noVersion),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "owner differs from token user",
			body:       encode(t, valid),
			ctx:        WithUserID(context.Background(), "user-2"),
			wantStatus: http.StatusForbidden,
		},
		{
			name:        "owner matches token user",
			body:        encode(t, valid),
			ctx:         WithUserID(context.Background(), "user-1"),
			applyResult: &storage.ApplyResult{Outcome: storage.OutcomeAccepted, Stored: valid},
			wantStatus:  http.StatusOK,
			wantApplied: true,
		},
		{
			name:        "storage failure",
			body:        encode(t, valid),
			applyErr:    errors.New("disk full"),
			wantStatus:  http.StatusInternalServerError,
			wantApplied: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := &storage.RecordStorageMock{
				ApplyRecordFunc: func(ctx context.Context, rec *models.SyncRecord) (*storage.ApplyResult, error) {
					return tt.applyResult, tt.applyErr
				},
			}
			logger := setupTestLogger()
			hub := NewHub(logger)
			h := NewSyncHandler(logger, NewRelay(logger, records, hub), hub)

			ctx := tt.ctx
			if ctx == nil {
				ctx = context.Background()
			}
			w := postRecord(t, h, ctx, tt.body)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.Equal(t, tt.wantApplied, len(records.ApplyRecordCalls()) == 1)

			switch {
			case tt.wantStatus == http.StatusOK:
				var resp api.SyncResponse
				require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
				assert.Equal(t, api.StatusOK, resp.Status)
				assert.Equal(t, "r1", resp.ID)
				assert.Equal(t, int64(2), resp.Version)
			case tt.wantConflict:
				var resp api.SyncResponse
				require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
				require.NotNil(t, resp.Conflict)
				assert.Equal(t, string(models.ConflictVersionMismatch), resp.Conflict.ConflictType)
				assert.Equal(t, int64(3), resp.Conflict.RemoteRecord.Version)
				assert.Equal(t, int64(2), resp.Conflict.LocalRecord.Version)
			default:
				var resp api.ErrorResponse
				require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
				assert.Equal(t, http.StatusText(tt.wantStatus), resp.Error)
			}
		})
	}
}

func TestRelay_BroadcastsAcceptedRecords(t *testing.T) {
	logger := setupTestLogger()
	hub := NewHub(logger)

	sender := newWSClient(nil, logger, "user-1", "dev-a")
	peer := newWSClient(nil, logger, "user-1", "dev-b")
	stranger := newWSClient(nil, logger, "user-2", "dev-c")
	for _, c := range []*wsClient{sender, peer, stranger} {
		hub.register(c)
	}

	outcome := storage.OutcomeAccepted
	records := &storage.RecordStorageMock{
		ApplyRecordFunc: func(ctx context.Context, rec *models.SyncRecord) (*storage.ApplyResult, error) {
			return &storage.ApplyResult{Outcome: outcome, Stored: rec}, nil
		},
	}
	relay := NewRelay(logger, records, hub)

	rec := sealedRecord(t, "user-1", "r1", 1, `{"n":1}`)
	_, err := relay.Apply(context.Background(), "", "dev-a", rec)
	require.NoError(t, err)

	require.Len(t, peer.send, 1)
	assert.Empty(t, sender.send, "sender does not receive its own record")
	assert.Empty(t, stranger.send, "other users do not receive the record")

	var msg api.Message
	require.NoError(t, json.Unmarshal(<-peer.send, &msg))
	assert.Equal(t, api.MessageSyncData, msg.Type)
	assert.Equal(t, "r1", msg.Data.ID)

	outcome = storage.OutcomeDuplicate
	_, err = relay.Apply(context.Background(), "", "dev-a", rec)
	require.NoError(t, err)
	assert.Empty(t, peer.send, "duplicates are not broadcast")
}

func TestRelay_CatchUp(t *testing.T) {
	records := &storage.RecordStorageMock{
		ListUserRecordsFunc: func(ctx context.Context, userID string) ([]*models.SyncRecord, error) {
			if userID != "user-1" {
				return nil, errors.New("unexpected user")
			}
			return []*models.SyncRecord{sealedRecord(t, "user-1", "r1", 1, `{}`)}, nil
		},
	}
	logger := setupTestLogger()
	relay := NewRelay(logger, records, NewHub(logger))

	got, err := relay.CatchUp(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = relay.CatchUp(context.Background(), "user-2")
	require.Error(t, err)
}
