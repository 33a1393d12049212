package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/iudanet/devsync/internal/models"
	"github.com/iudanet/devsync/internal/server/storage"
	"github.com/iudanet/devsync/pkg/api"
)

// maxRequestBody ограничение тела fallback запроса (payload + поля записи)
const maxRequestBody = 2 << 20

// SyncHandler обслуживает /sync: websocket канал и fallback POST
type SyncHandler struct {
	logger *slog.Logger
	relay  *Relay
	hub    *Hub
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(logger *slog.Logger, relay *Relay, hub *Hub) *SyncHandler {
	return &SyncHandler{
		logger: logger,
		relay:  relay,
		hub:    hub,
	}
}

// HandlePost обрабатывает POST /sync с одной записью в теле.
// 200 - запись принята или уже есть, 409 - конфликт с копией сервера.
func (h *SyncHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.Record
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "Failed to decode sync request", slog.Any("error", err))
		h.sendError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	rec := models.RecordFromAPI(&req)
	userID, _ := GetUserID(ctx)
	fromDevice := r.URL.Query().Get("deviceId")
	if fromDevice == "" {
		fromDevice = rec.OriginDeviceID
	}

	res, err := h.relay.Apply(ctx, userID, fromDevice, rec)
	switch {
	case errors.Is(err, ErrInvalidRecord):
		h.logger.WarnContext(ctx, "Rejected invalid record", slog.String("id", rec.ID), slog.Any("error", err))
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, ErrForbidden):
		h.logger.WarnContext(ctx, "Rejected record of another user",
			slog.String("id", rec.ID), slog.String("user_id", userID), slog.String("owner", rec.OwnerUserID))
		h.sendError(w, err.Error(), http.StatusForbidden)
		return
	case err != nil:
		h.logger.ErrorContext(ctx, "Failed to apply record", slog.String("id", rec.ID), slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if res.Outcome == storage.OutcomeConflict {
		h.logger.InfoContext(ctx, "Fallback sync conflict",
			slog.String("id", rec.ID),
			slog.String("type", string(res.Conflict.ConflictType)),
			slog.Int64("version", rec.Version),
			slog.Int64("stored_version", res.Stored.Version))
		h.sendJSON(w, api.SyncResponse{Conflict: res.Conflict.ToAPI(), ID: rec.ID}, http.StatusConflict)
		return
	}

	h.sendJSON(w, api.SyncResponse{Status: api.StatusOK, ID: rec.ID, Version: rec.Version}, http.StatusOK)
}

// sendJSON отправляет JSON ответ
func (h *SyncHandler) sendJSON(w http.ResponseWriter, data any, statusCode int) {
	writeJSON(h.logger, w, data, statusCode)
}

// sendError отправляет JSON ответ с ошибкой
func (h *SyncHandler) sendError(w http.ResponseWriter, message string, statusCode int) {
	writeJSON(h.logger, w, api.ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	}, statusCode)
}

func writeJSON(logger *slog.Logger, w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode response", slog.Any("error", err))
	}
}
