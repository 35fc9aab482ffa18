package handler

import (
	"net/http"

	"github.com/HardPulse/mazpan/internal/service"
)

// AdminStatHandler exposes analytics endpoints for staff.
type AdminStatHandler struct {
	stats service.AdminStatService
}

// NewAdminStatHandler wires the admin stat service.
func NewAdminStatHandler(stats service.AdminStatService) *AdminStatHandler {
	return &AdminStatHandler{stats: stats}
}

// ShopStatistics handles GET /api/admin/shop-statistics (today, UTC).
func (h *AdminStatHandler) ShopStatistics(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.stats.ShopToday(r.Context()))
}

// Statistics handles GET /api/admin/statistics?days=N (default 7, max 90).
func (h *AdminStatHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	days := clampQueryInt(r.URL.Query().Get("days"), service.DefaultOperationDays, 90)
	respondJSON(w, http.StatusOK, map[string]any{
		"operations": h.stats.Operations(r.Context(), days),
		"overview":   h.stats.Overview(r.Context()),
	})
}
