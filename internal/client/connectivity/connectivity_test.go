package connectivity

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManual(t *testing.T) {
	m := NewManual(false)
	assert.False(t, m.IsOnline())

	m.Set(true)
	assert.True(t, m.IsOnline())
	assert.True(t, <-m.Changes())

	// Повторная установка того же статуса не порождает уведомления
	m.Set(true)
	select {
	case v := <-m.Changes():
		t.Fatalf("unexpected change notification: %v", v)
	default:
	}
}

func TestManual_CoalescesUnreadChanges(t *testing.T) {
	m := NewManual(false)

	m.Set(true)
	m.Set(false)
	m.Set(true)

	// Получатель видит только последнее значение
	assert.True(t, <-m.Changes())
	select {
	case v := <-m.Changes():
		t.Fatalf("unexpected extra notification: %v", v)
	default:
	}
}

func TestHealthProbe(t *testing.T) {
	var healthy atomic.Bool
	healthy.Store(true)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		if !healthy.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"status":"ok","version":"test"}`))
	}))
	defer server.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	probe := NewHealthProbe(server.URL+"/", 10*time.Millisecond, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	probe.Start(ctx)
	defer probe.Stop()

	assert.True(t, probe.IsOnline(), "first check runs synchronously")
	require.True(t, <-probe.Changes())

	healthy.Store(false)
	select {
	case online := <-probe.Changes():
		assert.False(t, online)
	case <-time.After(2 * time.Second):
		t.Fatal("probe did not report outage")
	}
	assert.False(t, probe.IsOnline())
}

func TestHealthProbe_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	probe := NewHealthProbe(url, time.Hour, logger)
	probe.Start(context.Background())
	defer probe.Stop()

	assert.False(t, probe.IsOnline())
}
