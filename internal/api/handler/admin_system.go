package handler

import (
	"net/http"

	"github.com/HardPulse/mazpan/internal/service"
)

// AdminSystemHandler 提供系统状态接口。
type AdminSystemHandler struct {
	system service.AdminSystemService
}

// NewAdminSystemHandler 绑定 service 实例。
func NewAdminSystemHandler(system service.AdminSystemService) *AdminSystemHandler {
	return &AdminSystemHandler{system: system}
}

// Status handles GET /api/admin/system/status.
func (h *AdminSystemHandler) Status(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.system.SystemStatus(r.Context()))
}
