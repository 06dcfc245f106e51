// internal/handlers/pack/pack_handler.go
package pack

import (
	"net/http"
	"strconv"

	"license-service/internal/domain/pack"
	"license-service/internal/pkg/response"
	packservice "license-service/internal/service/pack"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PackHandler struct {
	packService *packservice.PackService
	logger      *zap.Logger
}

func NewPackHandler(packService *packservice.PackService, logger *zap.Logger) *PackHandler {
	return &PackHandler{packService: packService, logger: logger}
}

// Create handles POST /api/v1/admin/subscription-packs.
func (h *PackHandler) Create(c *gin.Context) {
	var req pack.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.packService.Create(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "pack": created})
}

// Get handles GET /api/v1/admin/subscription-packs/:id.
func (h *PackHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	found, err := h.packService.Get(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err, "subscription pack not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "pack": found})
}

// Update handles PUT /api/v1/admin/subscription-packs/:id.
func (h *PackHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req pack.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.packService.Update(c.Request.Context(), id, req)
	if err != nil {
		response.FromError(c, err, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "pack": updated})
}

// Delete handles DELETE /api/v1/admin/subscription-packs/:id. Packs with open
// subscriptions cannot be removed.
func (h *PackHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.packService.Delete(c.Request.Context(), id); err != nil {
		response.FromError(c, err, "")
		return
	}

	response.OK(c, http.StatusOK, "Subscription pack deleted successfully", nil)
}

// List handles GET /api/v1/admin/subscription-packs.
func (h *PackHandler) List(c *gin.Context) {
	page, limit := response.ParsePagination(c)
	filters := pack.ListFilters{
		Search: c.Query("search"),
		Page:   page,
		Limit:  limit,
	}

	packs, total, err := h.packService.List(c.Request.Context(), filters)
	if err != nil {
		h.logger.Error("list packs failed", zap.Error(err))
		response.FromError(c, err, "failed to list subscription packs")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"packs":   packs,
		"pagination": response.Pagination{
			Page:  page,
			Limit: limit,
			Total: total,
		},
	})
}

// ListActive handles GET /api/v1/customer/subscription-packs. Customers only
// see packs that are still offered.
func (h *PackHandler) ListActive(c *gin.Context) {
	packs, err := h.packService.ListActive(c.Request.Context())
	if err != nil {
		h.logger.Error("list active packs failed", zap.Error(err))
		response.FromError(c, err, "failed to list subscription packs")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "packs": packs})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		response.Error(c, http.StatusBadRequest, "invalid pack id")
		return 0, false
	}
	return id, true
}
