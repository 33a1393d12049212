package handlers

import (
	"log/slog"
	"slices"
	"sync"
)

// Hub хранит активные real-time подключения: userID -> deviceID -> client
type Hub struct {
	logger  *slog.Logger
	clients map[string]map[string]*wsClient
	mu      sync.RWMutex
}

// NewHub создает пустой Hub
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:  logger,
		clients: make(map[string]map[string]*wsClient),
	}
}

// register добавляет подключение. Повторное подключение устройства
// закрывает предыдущее.
func (h *Hub) register(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	devices, ok := h.clients[c.userID]
	if !ok {
		devices = make(map[string]*wsClient)
		h.clients[c.userID] = devices
	}
	if old, ok := devices[c.deviceID]; ok {
		h.logger.Info("Device reconnected, closing previous connection",
			slog.String("user_id", c.userID), slog.String("device_id", c.deviceID))
		old.close()
	}
	devices[c.deviceID] = c

	h.logger.Info("Device connected",
		slog.String("user_id", c.userID),
		slog.String("device_id", c.deviceID),
		slog.Int("devices", len(devices)))
}

// unregister удаляет подключение, если оно не было заменено более новым
func (h *Hub) unregister(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	devices := h.clients[c.userID]
	if devices[c.deviceID] != c {
		return
	}
	delete(devices, c.deviceID)
	if len(devices) == 0 {
		delete(h.clients, c.userID)
	}

	h.logger.Info("Device disconnected",
		slog.String("user_id", c.userID), slog.String("device_id", c.deviceID))
}

// Broadcast ставит сообщение в очередь всем устройствам пользователя, кроме exceptDevice.
// Не блокируется: устройство с переполненной очередью пропускается и
// получит запись при следующем подключении.
func (h *Hub) Broadcast(userID, exceptDevice string, msg []byte) (delivered, dropped int) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for deviceID, c := range h.clients[userID] {
		if deviceID == exceptDevice {
			continue
		}
		if c.trySend(msg) {
			delivered++
		} else {
			dropped++
		}
	}
	return delivered, dropped
}

// SendToDevice ставит сообщение в очередь одному устройству
func (h *Hub) SendToDevice(userID, deviceID string, msg []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	c, ok := h.clients[userID][deviceID]
	if !ok {
		return false
	}
	return c.trySend(msg)
}

// Devices возвращает отсортированный список подключенных устройств пользователя
func (h *Hub) Devices(userID string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	devices := make([]string, 0, len(h.clients[userID]))
	for deviceID := range h.clients[userID] {
		devices = append(devices, deviceID)
	}
	slices.Sort(devices)
	return devices
}

// CloseAll закрывает все подключения (при остановке сервера)
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for userID, devices := range h.clients {
		for _, c := range devices {
			c.close()
		}
		delete(h.clients, userID)
	}
}
