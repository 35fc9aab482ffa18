// 文件路径: internal/api/handler/admin_user.go
// 模块说明: 员工（Admin / Support）的用户审核与管理接口。
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/HardPulse/mazpan/internal/service"
	"github.com/HardPulse/mazpan/internal/support/i18n"
)

// AdminUserHandler exposes staff user management.
type AdminUserHandler struct {
	users  service.AdminUserService
	i18n   *i18n.Manager
	logger *slog.Logger
}

// NewAdminUserHandler wires admin user service into HTTP surface.
func NewAdminUserHandler(users service.AdminUserService, i18nMgr *i18n.Manager, logger *slog.Logger) *AdminUserHandler {
	return &AdminUserHandler{users: users, i18n: i18nMgr, logger: logger}
}

// Pending handles GET /api/admin/pending-users.
func (h *AdminUserHandler) Pending(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListPending(r.Context(), principalOf(r))
	if err != nil {
		respondServiceError(r.Context(), w, h.logger, h.i18n, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"users": users})
}

// List handles GET /api/admin/users.
func (h *AdminUserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context(), principalOf(r))
	if err != nil {
		respondServiceError(r.Context(), w, h.logger, h.i18n, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"users": users})
}

// Action handles POST /api/admin/user-action.
func (h *AdminUserHandler) Action(w http.ResponseWriter, r *http.Request) {
	var input service.ActionInput
	if err := decodeJSON(r, &input); err != nil {
		respondBadRequest(r.Context(), w, h.i18n)
		return
	}
	user, err := h.users.Apply(r.Context(), principalOf(r), input)
	if err != nil {
		respondServiceError(r.Context(), w, h.logger, h.i18n, err)
		return
	}
	payload := map[string]any{}
	if user != nil {
		payload["user"] = user
	}
	respondMessage(r.Context(), w, http.StatusOK, "message.user_action", h.i18n, payload)
}

// Delete handles DELETE /api/admin/users/{id}.
func (h *AdminUserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.users.Delete(r.Context(), principalOf(r), chi.URLParam(r, "id")); err != nil {
		respondServiceError(r.Context(), w, h.logger, h.i18n, err)
		return
	}
	respondMessage(r.Context(), w, http.StatusOK, "message.user_deleted", h.i18n, nil)
}

// Edit handles PUT /api/admin/users/{id}.
func (h *AdminUserHandler) Edit(w http.ResponseWriter, r *http.Request) {
	var input service.EditUserInput
	if err := decodeJSON(r, &input); err != nil {
		respondBadRequest(r.Context(), w, h.i18n)
		return
	}
	user, err := h.users.Edit(r.Context(), principalOf(r), chi.URLParam(r, "id"), input)
	if err != nil {
		respondServiceError(r.Context(), w, h.logger, h.i18n, err)
		return
	}
	respondMessage(r.Context(), w, http.StatusOK, "message.user_updated", h.i18n, map[string]any{"user": user})
}
