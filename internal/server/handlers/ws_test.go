package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/devsync/internal/models"
	"github.com/iudanet/devsync/internal/server/storage/sqlite"
	"github.com/iudanet/devsync/pkg/api"
)

type testRelay struct {
	server *httptest.Server
	hub    *Hub
	store  *sqlite.Storage
}

// newTestRelay поднимает /sync поверх настоящего SQLite хранилища.
// authUser имитирует пользователя из токена (пустой - без аутентификации).
func newTestRelay(t *testing.T, authUser string) *testRelay {
	t.Helper()

	store, err := sqlite.New(context.Background(), filepath.Join(t.TempDir(), "relay.db"))
	require.NoError(t, err)

	logger := setupTestLogger()
	hub := NewHub(logger)
	h := NewSyncHandler(logger, NewRelay(logger, store, hub), hub)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /sync", h.HandlePost)
	mux.HandleFunc("GET /sync", h.ServeWS)

	var handler http.Handler = mux
	if authUser != "" {
		handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mux.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), authUser)))
		})
	}

	srv := httptest.NewServer(handler)
	t.Cleanup(func() {
		hub.CloseAll()
		srv.Close()
		_ = store.Close()
	})
	return &testRelay{server: srv, hub: hub, store: store}
}

func (r *testRelay) dial(t *testing.T, userID, deviceID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(r.server.URL, "http") + "/sync?userId=" + userID + "&deviceId=" + deviceID
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	t.Cleanup(func() { _ = conn.Close() })

	require.Eventually(t, func() bool {
		for _, d := range r.hub.Devices(userID) {
			if d == deviceID {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)
	return conn
}

func sendMessage(t *testing.T, conn *websocket.Conn, msg api.Message) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(msg))
}

// readMessage читает следующее сообщение, пропуская ping сервера
func readMessage(t *testing.T, conn *websocket.Conn) api.Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		var msg api.Message
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type != api.MessagePing {
			return msg
		}
	}
}

func TestServeWS_AckAndBroadcast(t *testing.T) {
	relay := newTestRelay(t, "")
	a := relay.dial(t, "user-1", "dev-a")
	b := relay.dial(t, "user-1", "dev-b")

	rec := sealedRecord(t, "user-1", "r1", 1, `{"text":"hello"}`)
	sendMessage(t, a, api.Message{Type: api.MessageSync, Data: rec.ToAPI()})

	ack := readMessage(t, a)
	assert.Equal(t, api.MessageSyncAck, ack.Type)
	assert.Equal(t, "r1", ack.ID)
	assert.Equal(t, int64(1), ack.Version)

	data := readMessage(t, b)
	require.Equal(t, api.MessageSyncData, data.Type)
	assert.Equal(t, rec.Checksum, data.Data.Checksum)

	stored, err := relay.store.GetRecord(context.Background(), "user-1", "r1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.Version)

	// повтор той же версии подтверждается без рассылки
	sendMessage(t, a, api.Message{Type: api.MessageSync, Data: rec.ToAPI()})
	ack = readMessage(t, a)
	assert.Equal(t, api.MessageSyncAck, ack.Type)
}

func TestServeWS_Conflict(t *testing.T) {
	relay := newTestRelay(t, "")
	a := relay.dial(t, "user-1", "dev-a")

	first := sealedRecord(t, "user-1", "r1", 1, `{"by":"a"}`)
	sendMessage(t, a, api.Message{Type: api.MessageSync, Data: first.ToAPI()})
	require.Equal(t, api.MessageSyncAck, readMessage(t, a).Type)

	b := relay.dial(t, "user-1", "dev-b")
	// catch-up
	require.Equal(t, api.MessageSyncData, readMessage(t, b).Type)

	concurrent := sealedRecord(t, "user-1", "r1", 1, `{"by":"b"}`)
	concurrent.OriginDeviceID = "dev-b"
	sendMessage(t, b, api.Message{Type: api.MessageSync, Data: concurrent.ToAPI()})

	msg := readMessage(t, b)
	require.Equal(t, api.MessageSyncConflict, msg.Type)
	assert.Equal(t, "r1", msg.ID)
	c := models.ConflictFromAPI(msg.Conflict)
	assert.Equal(t, models.ConflictConcurrentWrite, c.ConflictType)
	assert.Equal(t, concurrent.Checksum, c.LocalRecord.Checksum)
	assert.Equal(t, first.Checksum, c.RemoteRecord.Checksum)
}

func TestServeWS_CatchUpOnConnect(t *testing.T) {
	relay := newTestRelay(t, "")

	for _, id := range []string{"a", "b"} {
		_, err := relay.store.ApplyRecord(context.Background(), sealedRecord(t, "user-1", id, 1, `{}`))
		require.NoError(t, err)
	}

	conn := relay.dial(t, "user-1", "dev-late")
	got := []string{readMessage(t, conn).Data.ID, readMessage(t, conn).Data.ID}
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestServeWS_PingPong(t *testing.T) {
	relay := newTestRelay(t, "")
	conn := relay.dial(t, "user-1", "dev-a")

	sendMessage(t, conn, api.Message{Type: api.MessagePing})
	assert.Equal(t, api.MessagePong, readMessage(t, conn).Type)
}

func TestServeWS_DropsInvalidRecords(t *testing.T) {
	relay := newTestRelay(t, "")
	conn := relay.dial(t, "user-1", "dev-a")

	tampered := sealedRecord(t, "user-1", "r1", 1, `{"a":1}`)
	tampered.Payload = json.RawMessage(`{"a":2}`)
	foreign := sealedRecord(t, "user-2", "r2", 1, `{}`)

	sendMessage(t, conn, api.Message{Type: api.MessageSync, Data: tampered.ToAPI()})
	sendMessage(t, conn, api.Message{Type: api.MessageSync})
	sendMessage(t, conn, api.Message{Type: api.MessageSync, Data: foreign.ToAPI()})
	sendMessage(t, conn, api.Message{Type: api.MessagePing})

	// отклоненные записи не получают ответа: первым приходит pong
	assert.Equal(t, api.MessagePong, readMessage(t, conn).Type)

	records, err := relay.store.ListUserRecords(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestServeWS_RejectsBadRequests(t *testing.T) {
	tests := []struct {
		name     string
		authUser string
		query    string
		wantCode int
	}{
		{name: "missing user", query: "deviceId=dev-a", wantCode: http.StatusBadRequest},
		{name: "missing device", query: "userId=user-1", wantCode: http.StatusBadRequest},
		{name: "invalid device", query: "userId=user-1&deviceId=bad%20id", wantCode: http.StatusBadRequest},
		{name: "token of another user", authUser: "user-2", query: "userId=user-1&deviceId=dev-a", wantCode: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			relay := newTestRelay(t, tt.authUser)
			url := "ws" + strings.TrimPrefix(relay.server.URL, "http") + "/sync?" + tt.query

			_, resp, err := websocket.DefaultDialer.Dial(url, nil)
			require.Error(t, err)
			require.NotNil(t, resp)
			defer resp.Body.Close()
			assert.Equal(t, tt.wantCode, resp.StatusCode)
		})
	}
}

func TestServeWS_ReconnectReplacesConnection(t *testing.T) {
	relay := newTestRelay(t, "")
	old := relay.dial(t, "user-1", "dev-a")
	_ = relay.dial(t, "user-1", "dev-a")

	require.NoError(t, old.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		_, _, err := old.ReadMessage()
		if err != nil {
			assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
			break
		}
	}
	assert.Equal(t, []string{"dev-a"}, relay.hub.Devices("user-1"))
}
