// internal/handlers/dashboard/dashboard_handler.go
package dashboard

import (
	"net/http"

	"license-service/internal/pkg/response"
	dashboardservice "license-service/internal/service/dashboard"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type DashboardHandler struct {
	dashboardService *dashboardservice.DashboardService
	logger           *zap.Logger
}

func NewDashboardHandler(dashboardService *dashboardservice.DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService, logger: logger}
}

// Stats handles GET /api/v1/admin/dashboard.
func (h *DashboardHandler) Stats(c *gin.Context) {
	data, err := h.dashboardService.Stats(c.Request.Context())
	if err != nil {
		h.logger.Error("dashboard stats failed", zap.Error(err))
		response.FromError(c, err, "failed to load dashboard")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "stats": data})
}
