// 文件路径: internal/api/handler/user.go
// 模块说明: 当前用户的资料、语言、设置与角色升级接口。
package handler

import (
	"log/slog"
	"net/http"

	"github.com/HardPulse/mazpan/internal/repository"
	"github.com/HardPulse/mazpan/internal/service"
	"github.com/HardPulse/mazpan/internal/support/i18n"
)

// UserHandler 处理用户自助接口。
type UserHandler struct {
	users        service.UserService
	entitlements service.EntitlementService
	i18n         *i18n.Manager
	logger       *slog.Logger
}

func NewUserHandler(users service.UserService, entitlements service.EntitlementService, i18nMgr *i18n.Manager, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, entitlements: entitlements, i18n: i18nMgr, logger: logger}
}

// Me handles GET /api/me.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Me(r.Context(), principalOf(r).ID)
	if err != nil {
		respondServiceError(r.Context(), w, h.logger, h.i18n, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

type languageRequest struct {
	Language string `json:"language"`
}

// SetLanguage handles POST /api/user/language.
func (h *UserHandler) SetLanguage(w http.ResponseWriter, r *http.Request) {
	var req languageRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(r.Context(), w, h.i18n)
		return
	}
	user, err := h.users.SetLanguage(r.Context(), principalOf(r).ID, req.Language)
	if err != nil {
		respondServiceError(r.Context(), w, h.logger, h.i18n, err)
		return
	}
	// 用新语言回复。
	ctx := withLanguage(r, user.Language)
	RespondSuccessI18n(ctx, w, "message.language_updated", h.i18n, user)
}

// UpdateSettings handles PUT /api/user/settings.
func (h *UserHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var input service.UpdateSettingsInput
	if err := decodeJSON(r, &input); err != nil {
		respondBadRequest(r.Context(), w, h.i18n)
		return
	}
	user, err := h.users.UpdateSettings(r.Context(), principalOf(r).ID, input)
	if err != nil {
		respondServiceError(r.Context(), w, h.logger, h.i18n, err)
		return
	}
	ctx := r.Context()
	if input.Language != nil {
		ctx = withLanguage(r, user.Language)
	}
	RespondSuccessI18n(ctx, w, "message.settings_updated", h.i18n, user)
}

// RoleInfo handles GET /api/user/role-info.
func (h *UserHandler) RoleInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.entitlements.RoleInfo(r.Context(), principalOf(r).ID)
	if err != nil {
		respondServiceError(r.Context(), w, h.logger, h.i18n, err)
		return
	}
	respondJSON(w, http.StatusOK, info)
}

type upgradeRequest struct {
	Role repository.Role `json:"role"`
}

// UpgradeRole handles POST /api/user/upgrade-role.
func (h *UserHandler) UpgradeRole(w http.ResponseWriter, r *http.Request) {
	var req upgradeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(r.Context(), w, h.i18n)
		return
	}
	result, err := h.entitlements.Upgrade(r.Context(), principalOf(r).ID, req.Role)
	if err != nil {
		respondServiceError(r.Context(), w, h.logger, h.i18n, err)
		return
	}
	RespondSuccessI18n(r.Context(), w, "message.role_upgraded", h.i18n, result)
}
