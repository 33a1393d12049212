package models

import (
	"errors"
	"fmt"
)

// Категории ошибок синхронизации
var (
	// ErrConnectivity канал недоступен; восстанавливается переподключением
	ErrConnectivity = errors.New("connectivity error")

	// ErrDelivery запись не подтверждена ни каналом, ни fallback запросом
	ErrDelivery = errors.New("delivery error")

	// ErrConflict обнаружен конфликт, требующий разрешения
	ErrConflict = errors.New("conflict detected")

	// ErrIntegrity checksum входящей записи не совпадает с payload
	ErrIntegrity = errors.New("integrity check failed")
)

// ConnectivityError описывает недоступность real-time канала
type ConnectivityError struct {
	Err error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("%s: %v", ErrConnectivity, e.Err)
}

func (e *ConnectivityError) Unwrap() error { return e.Err }

func (e *ConnectivityError) Is(target error) bool { return target == ErrConnectivity }

// DeliveryError описывает запись, доставка которой не подтверждена в рамках retry budget
type DeliveryError struct {
	Err      error
	RecordID string
	Version  int64
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("%s: record %s v%d: %v", ErrDelivery, e.RecordID, e.Version, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

func (e *DeliveryError) Is(target error) bool { return target == ErrDelivery }

// ConflictError несет обнаруженный конфликт.
// Это не сбой, а ожидаемый результат, требующий политики или ручного решения.
type ConflictError struct {
	Conflict *SyncConflict
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: record %s (%s)", ErrConflict, e.Conflict.ID, e.Conflict.ConflictType)
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// IntegrityError описывает входящую запись с несовпадающим checksum
type IntegrityError struct {
	RecordID string
	Expected string
	Actual   string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("%s: record %s checksum %s, computed %s", ErrIntegrity, e.RecordID, e.Expected, e.Actual)
}

func (e *IntegrityError) Is(target error) bool { return target == ErrIntegrity }
