package sync

import (
	"sort"
	"time"

	"github.com/iudanet/devsync/internal/models"
)

// ConnectionStatus статус real-time канала
type ConnectionStatus string

const (
	StatusOffline      ConnectionStatus = "offline"
	StatusConnecting   ConnectionStatus = "connecting"
	StatusConnected    ConnectionStatus = "connected"
	StatusDisconnected ConnectionStatus = "disconnected"
)

// IssueKind категория проблемы в истории ошибок
type IssueKind string

const (
	IssueDelivery  IssueKind = "delivery"  // запись не доставлена, остается в очереди
	IssueIntegrity IssueKind = "integrity" // входящая запись отклонена по checksum
	IssueRejected  IssueKind = "rejected"  // входящая запись чужого пользователя
	IssueStorage   IssueKind = "storage"   // ошибка локального хранилища
	IssueConflict  IssueKind = "conflict"  // конфликт не удалось разрешить политикой
)

// Issue элемент истории ошибок
type Issue struct {
	At       time.Time `json:"at"`
	Kind     IssueKind `json:"kind"`
	RecordID string    `json:"recordId,omitempty"`
	Message  string    `json:"message"`
	Version  int64     `json:"version,omitempty"`
}

// State наблюдаемое состояние движка
type State struct {
	Connection  ConnectionStatus       `json:"connection"`
	Conflicts   []*models.SyncConflict `json:"conflicts"`
	Errors      []Issue                `json:"errors"`
	Provisional []string               `json:"provisional"`
	Pending     int                    `json:"pending"`
	Online      bool                   `json:"online"`
}

// HasIssues true, если есть ошибки или неразрешенные конфликты
func (s State) HasIssues() bool {
	return len(s.Errors) > 0 || len(s.Conflicts) > 0
}

// stateLocked собирает снимок состояния. Вызывается под e.mu.
func (e *Engine) stateLocked() State {
	st := State{
		Connection:  e.status,
		Online:      e.online,
		Errors:      append([]Issue(nil), e.issues...),
		Conflicts:   make([]*models.SyncConflict, 0, len(e.conflicts)),
		Provisional: make([]string, 0, len(e.provisional)),
	}
	if e.queue != nil {
		st.Pending = e.queue.Len()
	}

	for _, c := range e.conflicts {
		st.Conflicts = append(st.Conflicts, c.Clone())
	}
	sort.Slice(st.Conflicts, func(i, j int) bool { return st.Conflicts[i].ID < st.Conflicts[j].ID })

	for id := range e.provisional {
		st.Provisional = append(st.Provisional, id)
	}
	sort.Strings(st.Provisional)

	return st
}

// State возвращает текущее состояние
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stateLocked()
}

// Subscribe возвращает канал состояний и функцию отписки.
// Подписчик сразу получает текущее состояние. Если он не успевает читать,
// промежуточные состояния заменяются последним.
func (e *Engine) Subscribe() (<-chan State, func()) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ch := make(chan State, 1)
	id := e.nextSubID
	e.nextSubID++
	ch <- e.stateLocked()

	if e.closed {
		close(ch)
		return ch, func() {}
	}
	e.subscribers[id] = ch

	return ch, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if sub, ok := e.subscribers[id]; ok {
			delete(e.subscribers, id)
			close(sub)
		}
	}
}

// publishLocked рассылает текущее состояние подписчикам. Вызывается под e.mu.
func (e *Engine) publishLocked() {
	if len(e.subscribers) == 0 {
		return
	}
	st := e.stateLocked()
	for _, ch := range e.subscribers {
		// отправитель единственный (под e.mu), поэтому после вычитывания место есть
		select {
		case <-ch:
		default:
		}
		ch <- st
	}
}

// addIssueLocked добавляет запись в ограниченную историю ошибок
func (e *Engine) addIssueLocked(kind IssueKind, recordID string, version int64, err error) {
	issue := Issue{
		At:       e.now(),
		Kind:     kind,
		RecordID: recordID,
		Version:  version,
		Message:  err.Error(),
	}
	e.issues = append(e.issues, issue)
	if over := len(e.issues) - e.cfg.MaxErrorHistory; over > 0 {
		e.issues = append([]Issue(nil), e.issues[over:]...)
	}
}
