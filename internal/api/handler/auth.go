package handler

import (
	"log/slog"
	"net/http"

	"github.com/HardPulse/mazpan/internal/service"
	"github.com/HardPulse/mazpan/internal/support/i18n"
)

// AuthHandler serves registration and login.
type AuthHandler struct {
	auth   service.AuthService
	i18n   *i18n.Manager
	logger *slog.Logger
}

func NewAuthHandler(auth service.AuthService, i18nMgr *i18n.Manager, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, i18n: i18nMgr, logger: logger}
}

// Register handles POST /api/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input service.RegisterInput
	if err := decodeJSON(r, &input); err != nil {
		respondBadRequest(r.Context(), w, h.i18n)
		return
	}
	user, err := h.auth.Register(r.Context(), input)
	if err != nil {
		respondServiceError(r.Context(), w, h.logger, h.i18n, err)
		return
	}
	respondMessage(r.Context(), w, http.StatusOK, "message.registered", h.i18n, map[string]any{"user_id": user.ID})
}

// Login handles POST /api/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input service.LoginInput
	if err := decodeJSON(r, &input); err != nil {
		respondBadRequest(r.Context(), w, h.i18n)
		return
	}
	input.IP = clientIP(r)
	result, err := h.auth.Login(r.Context(), input)
	if err != nil {
		respondServiceError(r.Context(), w, h.logger, h.i18n, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}
