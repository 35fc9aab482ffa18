package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/HardPulse/mazpan/internal/api/requestctx"
	"github.com/HardPulse/mazpan/internal/service"
	"github.com/HardPulse/mazpan/internal/support/i18n"
)

// Helper to respond with JSON
func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Warn("failed to encode response JSON", "error", err)
	}
}

func translate(ctx context.Context, i18nMgr *i18n.Manager, key string, args ...any) string {
	if i18nMgr == nil {
		return key
	}
	return i18nMgr.Translate(requestctx.GetLanguage(ctx), key, args...)
}

// RespondErrorI18n writes {"error": <translated>, "code": key}.
func RespondErrorI18n(ctx context.Context, w http.ResponseWriter, status int, key string, i18nMgr *i18n.Manager, args ...any) {
	respondJSON(w, status, map[string]any{
		"error": translate(ctx, i18nMgr, key, args...),
		"code":  key,
	})
}

// RespondSuccessI18n writes {"message": <translated>, "data": data}.
func RespondSuccessI18n(ctx context.Context, w http.ResponseWriter, key string, i18nMgr *i18n.Manager, data any, args ...any) {
	resp := map[string]any{
		"message": translate(ctx, i18nMgr, key, args...),
	}
	if data != nil {
		resp["data"] = data
	}
	respondJSON(w, http.StatusOK, resp)
}

// respondMessage merges a translated message into a resource-keyed payload.
func respondMessage(ctx context.Context, w http.ResponseWriter, status int, key string, i18nMgr *i18n.Manager, payload map[string]any, args ...any) {
	if payload == nil {
		payload = map[string]any{}
	}
	payload["message"] = translate(ctx, i18nMgr, key, args...)
	respondJSON(w, status, payload)
}

// respondServiceError maps a service error onto its HTTP status and translated message.
func respondServiceError(ctx context.Context, w http.ResponseWriter, logger *slog.Logger, i18nMgr *i18n.Manager, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		if logger == nil {
			logger = slog.Default()
		}
		logger.ErrorContext(ctx, "request failed", "error", err)
	}
	RespondErrorI18n(ctx, w, status, service.ErrorKey(err), i18nMgr)
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, service.ErrUnauthorized), errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func respondBadRequest(ctx context.Context, w http.ResponseWriter, i18nMgr *i18n.Manager) {
	RespondErrorI18n(ctx, w, http.StatusBadRequest, "error.bad_request", i18nMgr)
}
