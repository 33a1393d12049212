package validation

import (
	"fmt"
	"regexp"

	"github.com/iudanet/devsync/internal/models"
)

// IdentifierPattern определяет допустимый формат id записи, user id и device id
// Латинские буквы, цифры, а также . _ : -
// Длина: 1-128 символов
var IdentifierPattern = regexp.MustCompile(`^[a-zA-Z0-9._:-]{1,128}$`)

// RecordTypePattern определяет допустимый формат recordType
var RecordTypePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,64}$`)

const (
	// MaxIdentifierLen максимальная длина идентификатора
	MaxIdentifierLen = 128
	// MaxPayloadSize максимальный размер payload в байтах
	MaxPayloadSize = 1 << 20
)

// ValidateIdentifier проверяет id записи, пользователя или устройства
func ValidateIdentifier(kind, value string) error {
	if value == "" {
		return fmt.Errorf("%s cannot be empty", kind)
	}

	if len(value) > MaxIdentifierLen {
		return fmt.Errorf("%s must not exceed %d characters", kind, MaxIdentifierLen)
	}

	if !IdentifierPattern.MatchString(value) {
		return fmt.Errorf("%s can only contain letters, numbers, '.', '_', ':' and '-'", kind)
	}

	return nil
}

// ValidateRecordType проверяет тег типа записи
func ValidateRecordType(recordType string) error {
	if recordType == "" {
		return fmt.Errorf("record type cannot be empty")
	}

	if !RecordTypePattern.MatchString(recordType) {
		return fmt.Errorf("record type %q can only contain letters, numbers, '.', '_' and '-' (max 64)", recordType)
	}

	return nil
}

// ValidateRecord проверяет структуру записи, пришедшей извне
func ValidateRecord(rec *models.SyncRecord) error {
	if rec == nil {
		return fmt.Errorf("record cannot be empty")
	}
	if err := ValidateIdentifier("record id", rec.ID); err != nil {
		return err
	}
	if err := ValidateRecordType(rec.RecordType); err != nil {
		return err
	}
	if err := ValidateIdentifier("owner user id", rec.OwnerUserID); err != nil {
		return err
	}
	if err := ValidateIdentifier("origin device id", rec.OriginDeviceID); err != nil {
		return err
	}
	if rec.Version < 1 {
		return fmt.Errorf("record version must be positive, got %d", rec.Version)
	}
	if rec.Checksum == "" {
		return fmt.Errorf("record checksum cannot be empty")
	}
	if len(rec.Payload) > MaxPayloadSize {
		return fmt.Errorf("record payload must not exceed %d bytes", MaxPayloadSize)
	}
	if rec.IsTombstone() && rec.HasPayload() {
		return fmt.Errorf("tombstone record must not carry a payload")
	}

	return nil
}
