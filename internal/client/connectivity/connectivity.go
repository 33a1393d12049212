// Package connectivity сообщает движку синхронизации, доступна ли сеть.
package connectivity

import "sync"

//go:generate moq -out monitor_mock.go . Monitor

// Monitor источник статуса подключения
type Monitor interface {
	// IsOnline возвращает текущий статус
	IsOnline() bool
	// Changes уведомляет о смене статуса; получатель видит последнее значение
	Changes() <-chan bool
}

// notifier хранит статус и доставляет последнее изменение одному получателю
type notifier struct {
	changes chan bool
	mu      sync.Mutex
	online  bool
}

func newNotifier(online bool) *notifier {
	return &notifier{
		online:  online,
		changes: make(chan bool, 1),
	}
}

func (n *notifier) IsOnline() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.online
}

func (n *notifier) Changes() <-chan bool {
	return n.changes
}

// set обновляет статус; возвращает true, если статус изменился
func (n *notifier) set(online bool) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.online == online {
		return false
	}
	n.online = online

	// Заменяем непрочитанное уведомление актуальным
	select {
	case <-n.changes:
	default:
	}
	n.changes <- online
	return true
}

// Manual статус подключения, управляемый хост-приложением
type Manual struct {
	*notifier
}

// NewManual создает Manual с начальным статусом
func NewManual(online bool) *Manual {
	return &Manual{notifier: newNotifier(online)}
}

// Set устанавливает статус подключения
func (m *Manual) Set(online bool) {
	m.set(online)
}
