// 文件路径: internal/api/handler/account.go
// 模块说明: 账号上传、列表、选择、移动、删除与导出接口。
package handler

import (
	"log/slog"
	"net/http"

	"github.com/HardPulse/mazpan/internal/service"
	"github.com/HardPulse/mazpan/internal/support/i18n"
)

// AccountHandler exposes the caller's stored records.
type AccountHandler struct {
	accounts service.AccountService
	i18n     *i18n.Manager
	logger   *slog.Logger
}

func NewAccountHandler(accounts service.AccountService, i18nMgr *i18n.Manager, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{accounts: accounts, i18n: i18nMgr, logger: logger}
}

type uploadRequest struct {
	AccountsText string `json:"accounts_text"`
	FolderID     string `json:"folder_id"`
}

// Upload handles POST /api/accounts.
func (h *AccountHandler) Upload(w http.ResponseWriter, r *http.Request) {
	var req uploadRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(r.Context(), w, h.i18n)
		return
	}
	count, err := h.accounts.Upload(r.Context(), principalOf(r).ID, req.AccountsText, req.FolderID)
	if err != nil {
		respondServiceError(r.Context(), w, h.logger, h.i18n, err)
		return
	}
	respondMessage(r.Context(), w, http.StatusOK, "message.accounts_uploaded", h.i18n, map[string]any{"count": count}, count)
}

// List handles GET /api/accounts?folder_id=.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accounts.List(r.Context(), principalOf(r).ID, r.URL.Query().Get("folder_id"))
	if err != nil {
		respondServiceError(r.Context(), w, h.logger, h.i18n, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"accounts": accounts})
}

type accountIDsRequest struct {
	AccountIDs []string `json:"account_ids"`
	FolderID   string   `json:"folder_id"`
}

// Download handles POST /api/accounts/download.
func (h *AccountHandler) Download(w http.ResponseWriter, r *http.Request) {
	var req accountIDsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(r.Context(), w, h.i18n)
		return
	}
	file, err := h.accounts.Download(r.Context(), principalOf(r).ID, req.AccountIDs)
	if err != nil {
		respondServiceError(r.Context(), w, h.logger, h.i18n, err)
		return
	}
	respondJSON(w, http.StatusOK, file)
}

// Move handles POST /api/accounts/move.
func (h *AccountHandler) Move(w http.ResponseWriter, r *http.Request) {
	var req accountIDsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(r.Context(), w, h.i18n)
		return
	}
	moved, err := h.accounts.Move(r.Context(), principalOf(r).ID, req.AccountIDs, req.FolderID)
	if err != nil {
		respondServiceError(r.Context(), w, h.logger, h.i18n, err)
		return
	}
	respondMessage(r.Context(), w, http.StatusOK, "message.accounts_moved", h.i18n, map[string]any{"count": moved}, moved)
}

// Delete handles POST /api/accounts/delete.
func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req accountIDsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(r.Context(), w, h.i18n)
		return
	}
	deleted, err := h.accounts.Delete(r.Context(), principalOf(r).ID, req.AccountIDs)
	if err != nil {
		respondServiceError(r.Context(), w, h.logger, h.i18n, err)
		return
	}
	respondMessage(r.Context(), w, http.StatusOK, "message.accounts_deleted", h.i18n, map[string]any{"count": deleted}, deleted)
}

type selectRequest struct {
	service.SelectInput
	// Criteria is the legacy field name for Criterion.
	Criteria string `json:"criteria"`
}

// Select handles POST /api/accounts/select.
func (h *AccountHandler) Select(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(r.Context(), w, h.i18n)
		return
	}
	input := req.SelectInput
	if input.Criterion == "" {
		input.Criterion = req.Criteria
	}
	ids, err := h.accounts.Select(r.Context(), principalOf(r).ID, input)
	if err != nil {
		respondServiceError(r.Context(), w, h.logger, h.i18n, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"account_ids": ids})
}
