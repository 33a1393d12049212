package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHub_RegisterReplacesDevice(t *testing.T) {
	hub := NewHub(setupTestLogger())

	first := newWSClient(nil, hub.logger, "user-1", "dev-a")
	second := newWSClient(nil, hub.logger, "user-1", "dev-a")

	hub.register(first)
	hub.register(second)

	select {
	case <-first.done:
	default:
		t.Fatal("previous connection of the device must be closed")
	}
	assert.Equal(t, []string{"dev-a"}, hub.Devices("user-1"))

	// устаревшее подключение не удаляет новое
	hub.unregister(first)
	assert.Equal(t, []string{"dev-a"}, hub.Devices("user-1"))
	assert.True(t, hub.SendToDevice("user-1", "dev-a", []byte("x")))

	hub.unregister(second)
	assert.Empty(t, hub.Devices("user-1"))
	assert.False(t, hub.SendToDevice("user-1", "dev-a", []byte("x")))
}

func TestHub_Broadcast(t *testing.T) {
	hub := NewHub(setupTestLogger())

	a := newWSClient(nil, hub.logger, "user-1", "dev-a")
	b := newWSClient(nil, hub.logger, "user-1", "dev-b")
	c := newWSClient(nil, hub.logger, "user-1", "dev-c")
	for _, cl := range []*wsClient{a, b, c} {
		hub.register(cl)
	}
	assert.Equal(t, []string{"dev-a", "dev-b", "dev-c"}, hub.Devices("user-1"))

	// заполняем очередь dev-c
	for range sendBuffer {
		c.send <- []byte("filler")
	}

	delivered, dropped := hub.Broadcast("user-1", "dev-a", []byte("msg"))
	assert.Equal(t, 1, delivered)
	assert.Equal(t, 1, dropped)
	assert.Empty(t, a.send)
	assert.Equal(t, []byte("msg"), <-b.send)

	b.close()
	delivered, _ = hub.Broadcast("user-1", "dev-a", []byte("msg"))
	assert.Equal(t, 0, delivered, "closed connections receive nothing")
}

func TestHub_CloseAll(t *testing.T) {
	hub := NewHub(setupTestLogger())
	a := newWSClient(nil, hub.logger, "user-1", "dev-a")
	b := newWSClient(nil, hub.logger, "user-2", "dev-b")
	hub.register(a)
	hub.register(b)

	hub.CloseAll()

	for _, cl := range []*wsClient{a, b} {
		select {
		case <-cl.done:
		default:
			t.Fatalf("connection %s not closed", cl.deviceID)
		}
	}
	assert.Empty(t, hub.Devices("user-1"))
	assert.Empty(t, hub.Devices("user-2"))

	// unregister после CloseAll безопасен
	hub.unregister(a)
}
