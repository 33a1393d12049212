package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/iudanet/devsync/internal/checksum"
	"github.com/iudanet/devsync/internal/models"
	"github.com/iudanet/devsync/internal/server/storage"
	"github.com/iudanet/devsync/internal/validation"
	"github.com/iudanet/devsync/pkg/api"
)

var (
	// ErrInvalidRecord запись не прошла проверку структуры или checksum
	ErrInvalidRecord = errors.New("invalid record")

	// ErrForbidden запись принадлежит другому пользователю
	ErrForbidden = errors.New("record belongs to another user")
)

// Relay принимает записи от устройств, сохраняет последнюю версию и
// рассылает принятые записи остальным устройствам пользователя.
// Используется и real-time каналом, и fallback запросом.
type Relay struct {
	logger  *slog.Logger
	records storage.RecordStorage
	hub     *Hub
}

// NewRelay создает Relay
func NewRelay(logger *slog.Logger, records storage.RecordStorage, hub *Hub) *Relay {
	return &Relay{
		logger:  logger,
		records: records,
		hub:     hub,
	}
}

// Apply проверяет и применяет запись.
// userID пустой, если аутентификация отключена; fromDevice исключается из рассылки.
func (r *Relay) Apply(ctx context.Context, userID, fromDevice string, rec *models.SyncRecord) (*storage.ApplyResult, error) {
	if err := validation.ValidateRecord(rec); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	if err := checksum.Verify(rec); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	if userID != "" && rec.OwnerUserID != userID {
		return nil, fmt.Errorf("%w: record %s owned by %q", ErrForbidden, rec.ID, rec.OwnerUserID)
	}

	res, err := r.records.ApplyRecord(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("failed to apply record: %w", err)
	}

	r.logger.DebugContext(ctx, "Record applied",
		slog.String("id", rec.ID),
		slog.Int64("version", rec.Version),
		slog.String("user_id", rec.OwnerUserID),
		slog.String("from_device", fromDevice),
		slog.String("outcome", res.Outcome.String()))

	if res.Outcome == storage.OutcomeAccepted {
		r.broadcast(rec, fromDevice)
	}
	return res, nil
}

func (r *Relay) broadcast(rec *models.SyncRecord, fromDevice string) {
	msg, err := json.Marshal(api.Message{Type: api.MessageSyncData, Data: rec.ToAPI()})
	if err != nil {
		r.logger.Error("Failed to encode sync_data message", slog.String("id", rec.ID), slog.Any("error", err))
		return
	}

	delivered, dropped := r.hub.Broadcast(rec.OwnerUserID, fromDevice, msg)
	if dropped > 0 {
		r.logger.Warn("Broadcast dropped for slow devices",
			slog.String("id", rec.ID),
			slog.Int("delivered", delivered),
			slog.Int("dropped", dropped))
	}
}

// CatchUp возвращает сохраненные записи пользователя для нового подключения
func (r *Relay) CatchUp(ctx context.Context, userID string) ([]*models.SyncRecord, error) {
	records, err := r.records.ListUserRecords(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	return records, nil
}
