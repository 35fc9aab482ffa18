package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/HardPulse/mazpan/internal/service"
	"github.com/HardPulse/mazpan/internal/support/i18n"
)

// FolderHandler exposes the caller's folders.
type FolderHandler struct {
	folders service.FolderService
	i18n    *i18n.Manager
	logger  *slog.Logger
}

func NewFolderHandler(folders service.FolderService, i18nMgr *i18n.Manager, logger *slog.Logger) *FolderHandler {
	return &FolderHandler{folders: folders, i18n: i18nMgr, logger: logger}
}

func (h *FolderHandler) List(w http.ResponseWriter, r *http.Request) {
	folders, err := h.folders.List(r.Context(), principalOf(r).ID)
	if err != nil {
		respondServiceError(r.Context(), w, h.logger, h.i18n, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"folders": folders})
}

type folderCreateRequest struct {
	Name string `json:"name"`
}

func (h *FolderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req folderCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(r.Context(), w, h.i18n)
		return
	}
	folder, err := h.folders.Create(r.Context(), principalOf(r).ID, req.Name)
	if err != nil {
		respondServiceError(r.Context(), w, h.logger, h.i18n, err)
		return
	}
	respondMessage(r.Context(), w, http.StatusOK, "message.folder_created", h.i18n, map[string]any{"folder": folder})
}

func (h *FolderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	moved, err := h.folders.Delete(r.Context(), principalOf(r).ID, chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(r.Context(), w, h.logger, h.i18n, err)
		return
	}
	respondMessage(r.Context(), w, http.StatusOK, "message.folder_deleted", h.i18n, map[string]any{"moved": moved})
}

type cooldownRequest struct {
	Hours *int `json:"hours"`
}

func (h *FolderHandler) SetCooldown(w http.ResponseWriter, r *http.Request) {
	var req cooldownRequest
	if err := decodeJSON(r, &req); err != nil || req.Hours == nil {
		respondBadRequest(r.Context(), w, h.i18n)
		return
	}
	folder, err := h.folders.SetCooldown(r.Context(), principalOf(r).ID, chi.URLParam(r, "id"), *req.Hours)
	if err != nil {
		respondServiceError(r.Context(), w, h.logger, h.i18n, err)
		return
	}
	respondMessage(r.Context(), w, http.StatusOK, "message.cooldown_updated", h.i18n, map[string]any{"folder": folder})
}
