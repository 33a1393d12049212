// Package checksum вычисляет стабильный хеш содержимого записей.
//
// Payload приводится к канонической JSON форме (ключи объектов отсортированы
// на всех уровнях, числа сохраняются как литералы), поэтому порядок
// сериализации не дает ложных расхождений.
package checksum

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/blake2b"

	"github.com/iudanet/devsync/internal/models"
)

var canonicalNull = []byte("null")

// Canonicalize возвращает каноническую JSON форму payload.
// Пустой payload эквивалентен JSON null.
func Canonicalize(payload json.RawMessage) ([]byte, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return canonicalNull, nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()

	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, fmt.Errorf("failed to decode payload: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode payload: unexpected data after JSON value")
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return nil, fmt.Errorf("failed to encode canonical payload: %w", err)
	}

	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Compute возвращает hex-encoded BLAKE2b-256 хеш канонической формы payload
func Compute(payload json.RawMessage) (string, error) {
	canonical, err := Canonicalize(payload)
	if err != nil {
		return "", err
	}

	sum := blake2b.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// Verify проверяет, что checksum записи соответствует ее payload.
// При несовпадении возвращает *models.IntegrityError.
func Verify(rec *models.SyncRecord) error {
	actual, err := Compute(rec.Payload)
	if err != nil {
		return &models.IntegrityError{RecordID: rec.ID, Expected: rec.Checksum, Actual: err.Error()}
	}

	if actual != rec.Checksum {
		return &models.IntegrityError{RecordID: rec.ID, Expected: rec.Checksum, Actual: actual}
	}

	return nil
}

// Seal вычисляет и проставляет checksum записи
func Seal(rec *models.SyncRecord) error {
	sum, err := Compute(rec.Payload)
	if err != nil {
		return fmt.Errorf("failed to compute checksum for record %s: %w", rec.ID, err)
	}
	rec.Checksum = sum
	return nil
}
