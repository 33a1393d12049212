package sync

import (
	"context"
	"encoding/json"
	gosync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/devsync/internal/client/connectivity"
	"github.com/iudanet/devsync/internal/client/transport"
	"github.com/iudanet/devsync/internal/conflict"
	"github.com/iudanet/devsync/internal/models"
)

// memRelay in-process relay с теми же правилами приема, что и сервер
type memRelay struct {
	records map[string]*models.SyncRecord
	devices map[string]*memTransport
	mu      gosync.Mutex
}

func newMemRelay() *memRelay {
	return &memRelay{
		records: make(map[string]*models.SyncRecord),
		devices: make(map[string]*memTransport),
	}
}

func (r *memRelay) attach(tr *memTransport) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.devices[tr.deviceID] = tr
	tr.push(transport.Event{Kind: transport.EventConnected})
	for _, rec := range r.records {
		tr.push(transport.Event{Kind: transport.EventRecord, Record: rec.Clone()})
	}
}

func (r *memRelay) detach(deviceID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.devices, deviceID)
}

func (r *memRelay) apply(from string, rec *models.SyncRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sender := r.devices[from]
	stored := r.records[rec.ID]

	switch {
	case stored == nil || rec.Version > stored.Version:
		r.records[rec.ID] = rec.Clone()
		sender.push(transport.Event{Kind: transport.EventAck, ID: rec.ID, Version: rec.Version})
		for id, tr := range r.devices {
			if id != from {
				tr.push(transport.Event{Kind: transport.EventRecord, Record: rec.Clone()})
			}
		}
	case stored.SameContent(rec):
		sender.push(transport.Event{Kind: transport.EventAck, ID: rec.ID, Version: rec.Version})
	default:
		conflictType := conflict.Detect(stored, rec).Type
		if conflictType == "" {
			conflictType = models.ConflictVersionMismatch
		}
		sender.push(transport.Event{Kind: transport.EventConflict, ID: rec.ID, Conflict: &models.SyncConflict{
			ID:           rec.ID,
			ConflictType: conflictType,
			LocalRecord:  rec.Clone(),
			RemoteRecord: stored.Clone(),
		}})
	}
}

func (r *memRelay) get(id string) *models.SyncRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.records[id].Clone()
}

// memTransport транспорт устройства, подключенный к memRelay
type memTransport struct {
	relay    *memRelay
	events   chan transport.Event
	deviceID string
	once     gosync.Once
}

func newMemTransport(relay *memRelay, deviceID string) *memTransport {
	return &memTransport{relay: relay, deviceID: deviceID, events: make(chan transport.Event, 1024)}
}

func (m *memTransport) push(ev transport.Event) { m.events <- ev }

func (m *memTransport) Connect(ctx context.Context) error {
	m.relay.attach(m)
	return nil
}

func (m *memTransport) Send(ctx context.Context, rec *models.SyncRecord) error {
	m.relay.apply(m.deviceID, rec.Clone())
	return nil
}

func (m *memTransport) Events() <-chan transport.Event { return m.events }

func (m *memTransport) Connected() bool { return true }

func (m *memTransport) Close() error {
	m.once.Do(func() { m.relay.detach(m.deviceID) })
	return nil
}

type device struct {
	engine  *Engine
	monitor *connectivity.Manual
}

func newDevice(t *testing.T, relay *memRelay, deviceID string, online bool, policy models.Policy) *device {
	t.Helper()

	monitor := connectivity.NewManual(online)
	e, err := New(Config{
		UserID:           testUser,
		DeviceID:         deviceID,
		Policy:           policy,
		AutoSyncInterval: 20 * time.Millisecond,
		AckTimeout:       time.Minute,
	}, Deps{
		Transport:    newMemTransport(relay, deviceID),
		Connectivity: monitor,
		Logger:       testLogger(),
	})
	require.NoError(t, err)
	require.NoError(t, e.Start(context.Background()))
	t.Cleanup(func() { _ = e.Close() })

	return &device{engine: e, monitor: monitor}
}

func payloadOf(d *device, id string) string {
	rec, ok := d.engine.Read(id)
	if !ok {
		return ""
	}
	return string(rec.Payload)
}

func TestEngines_EventualConsistency(t *testing.T) {
	relay := newMemRelay()
	a := newDevice(t, relay, "dev-a", true, models.PolicyRemote)
	b := newDevice(t, relay, "dev-b", true, models.PolicyRemote)
	ctx := context.Background()

	_, err := a.engine.Write(ctx, "note-1", "note", json.RawMessage(`{"text":"from a"}`))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return payloadOf(b, "note-1") == `{"text":"from a"}`
	}, waitFor, pollEvery)

	_, err = b.engine.Write(ctx, "note-1", "note", json.RawMessage(`{"text":"from b"}`))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return payloadOf(a, "note-1") == `{"text":"from b"}`
	}, waitFor, pollEvery)

	require.NoError(t, a.engine.Remove(ctx, "note-1"))
	require.Eventually(t, func() bool {
		_, okA := a.engine.Read("note-1")
		_, okB := b.engine.Read("note-1")
		return !okA && !okB
	}, waitFor, pollEvery)

	require.Eventually(t, func() bool {
		return a.engine.State().Pending == 0 && b.engine.State().Pending == 0
	}, waitFor, pollEvery)
	assert.Empty(t, a.engine.Conflicts())
	assert.Empty(t, b.engine.Conflicts())
	assert.True(t, relay.get("note-1").IsTombstone())
}

func TestEngines_CatchUpOnConnect(t *testing.T) {
	relay := newMemRelay()
	a := newDevice(t, relay, "dev-a", true, models.PolicyRemote)
	ctx := context.Background()

	_, err := a.engine.Write(ctx, "note-1", "note", json.RawMessage(`{"early":true}`))
	require.NoError(t, err)
	require.Eventually(t, func() bool { return relay.get("note-1") != nil }, waitFor, pollEvery)

	late := newDevice(t, relay, "dev-late", true, models.PolicyRemote)
	require.Eventually(t, func() bool {
		return payloadOf(late, "note-1") == `{"early":true}`
	}, waitFor, pollEvery)
}

func TestEngines_ConcurrentOfflineWritesRaiseOneConflict(t *testing.T) {
	relay := newMemRelay()
	a := newDevice(t, relay, "dev-a", false, models.PolicyManual)
	b := newDevice(t, relay, "dev-b", false, models.PolicyManual)
	ctx := context.Background()

	_, err := a.engine.Write(ctx, "shared", "note", json.RawMessage(`{"by":"a"}`))
	require.NoError(t, err)
	_, err = b.engine.Write(ctx, "shared", "note", json.RawMessage(`{"by":"b"}`))
	require.NoError(t, err)

	a.monitor.Set(true)
	require.Eventually(t, func() bool { return relay.get("shared") != nil }, waitFor, pollEvery)

	b.monitor.Set(true)
	require.Eventually(t, func() bool { return len(b.engine.Conflicts()) == 1 }, waitFor, pollEvery)

	// даем движкам время обработать все события
	time.Sleep(100 * time.Millisecond)

	conflicts := b.engine.Conflicts()
	require.Len(t, conflicts, 1, "exactly one conflict is raised")
	assert.Equal(t, models.ConflictConcurrentWrite, conflicts[0].ConflictType)
	assert.Empty(t, a.engine.Conflicts())

	require.NoError(t, b.engine.Resolve(ctx, "shared", models.PolicyLocal))

	require.Eventually(t, func() bool {
		return payloadOf(a, "shared") == `{"by":"b"}` && payloadOf(b, "shared") == `{"by":"b"}`
	}, waitFor, pollEvery)

	recA, _ := a.engine.Read("shared")
	recB, _ := b.engine.Read("shared")
	assert.Equal(t, int64(2), recA.Version)
	assert.Equal(t, recA.Checksum, recB.Checksum)

	require.Eventually(t, func() bool {
		return a.engine.State().Pending == 0 && b.engine.State().Pending == 0
	}, waitFor, pollEvery)
	assert.Empty(t, b.engine.Conflicts())
}

func TestEngines_RecreateAfterPurgedTombstone(t *testing.T) {
	relay := newMemRelay()
	a := newDevice(t, relay, "dev-a", true, models.PolicyRemote)
	ctx := context.Background()

	_, err := a.engine.Write(ctx, "p1", "note", json.RawMessage(`{"v":1}`))
	require.NoError(t, err)
	require.NoError(t, a.engine.Remove(ctx, "p1"))

	require.Eventually(t, func() bool {
		a.engine.mu.Lock()
		defer a.engine.mu.Unlock()
		_, ok := a.engine.store.Get("p1")
		return !ok
	}, waitFor, pollEvery)
	tombstone := relay.get("p1")
	require.True(t, tombstone.IsTombstone())

	rec, err := a.engine.Write(ctx, "p1", "note", json.RawMessage(`{"v":2}`))
	require.NoError(t, err)
	assert.Greater(t, rec.Version, tombstone.Version)

	require.Eventually(t, func() bool {
		stored := relay.get("p1")
		return stored != nil && !stored.IsTombstone() && a.engine.State().Pending == 0
	}, waitFor, pollEvery)

	assert.Equal(t, `{"v":2}`, payloadOf(a, "p1"))
	assert.Empty(t, a.engine.Conflicts())
}
