package clock

import (
	"sync"
	"time"
)

//go:generate moq -out clock_mock.go . Clock

// Clock источник timestamp для записей
type Clock interface {
	// Now возвращает текущее время в миллисекундах Unix, не меньше ранее выданного
	Now() int64
}

// Monotonic представляет часы настенного времени в миллисекундах,
// которые никогда не идут назад: если системное время отступает,
// возвращается последнее выданное значение.
type Monotonic struct {
	source func() time.Time // источник системного времени
	last   int64            // последнее выданное значение
	mu     sync.Mutex       // мьютекс для потокобезопасности
}

// NewMonotonic создает часы на основе time.Now
func NewMonotonic() *Monotonic {
	return NewMonotonicWithSource(time.Now)
}

// NewMonotonicWithSource создает часы с заданным источником времени.
// Используется для тестирования.
func NewMonotonicWithSource(source func() time.Time) *Monotonic {
	return &Monotonic{source: source}
}

// Now возвращает max(системное время, последнее выданное значение)
func (m *Monotonic) Now() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.source().UnixMilli()
	if now > m.last {
		m.last = now
	}
	return m.last
}

// Advance поднимает нижнюю границу часов до ts.
// Используется при восстановлении состояния после перезапуска,
// чтобы новые записи не получили timestamp меньше уже сохраненных.
func (m *Monotonic) Advance(ts int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ts > m.last {
		m.last = ts
	}
}

// Last возвращает последнее выданное значение без его изменения
func (m *Monotonic) Last() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.last
}
