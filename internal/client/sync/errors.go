package sync

import "errors"

var (
	// ErrNotStarted операция вызвана до Start
	ErrNotStarted = errors.New("sync engine is not started")

	// ErrClosed операция вызвана после Close
	ErrClosed = errors.New("sync engine is closed")

	// ErrRecordNotFound запись отсутствует или уже удалена
	ErrRecordNotFound = errors.New("record not found")

	// ErrConflictNotFound нет активного конфликта с таким id
	ErrConflictNotFound = errors.New("conflict not found")

	// ErrOffline синхронизация невозможна без подключения
	ErrOffline = errors.New("device is offline")

	// ErrReservedRecordType тип delete зарезервирован за tombstone
	ErrReservedRecordType = errors.New("record type is reserved")
)
