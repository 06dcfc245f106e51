// internal/handlers/customer/customer_handler.go
package customer

import (
	"fmt"
	"net/http"
	"strconv"

	"license-service/internal/domain/customer"
	"license-service/internal/pkg/response"
	customerservice "license-service/internal/service/customer"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CustomerHandler struct {
	customerService *customerservice.CustomerService
	logger          *zap.Logger
}

func NewCustomerHandler(customerService *customerservice.CustomerService, logger *zap.Logger) *CustomerHandler {
	return &CustomerHandler{customerService: customerService, logger: logger}
}

// Create handles POST /api/v1/admin/customers. The generated temporary
// password is returned once, in the message, and never stored in clear.
func (h *CustomerHandler) Create(c *gin.Context) {
	var req customer.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}

	created, tempPassword, err := h.customerService.Create(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"customer": created,
		"message":  fmt.Sprintf("Customer created. Temporary password: %s", tempPassword),
	})
}

// Get handles GET /api/v1/admin/customers/:id.
func (h *CustomerHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	found, err := h.customerService.Get(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err, "customer not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "customer": found})
}

// Update handles PUT /api/v1/admin/customers/:id.
func (h *CustomerHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req customer.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.customerService.Update(c.Request.Context(), id, req)
	if err != nil {
		response.FromError(c, err, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "customer": updated})
}

// Delete handles DELETE /api/v1/admin/customers/:id. The customer is
// deactivated, not removed, so subscription history stays intact.
func (h *CustomerHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.customerService.Delete(c.Request.Context(), id); err != nil {
		response.FromError(c, err, "customer not found")
		return
	}

	response.OK(c, http.StatusOK, "Customer deleted successfully", nil)
}

// List handles GET /api/v1/admin/customers with pagination and an optional
// search term matched against name and email.
func (h *CustomerHandler) List(c *gin.Context) {
	page, limit := response.ParsePagination(c)
	filters := customer.ListFilters{
		Search: c.Query("search"),
		Page:   page,
		Limit:  limit,
	}

	customers, total, err := h.customerService.List(c.Request.Context(), filters)
	if err != nil {
		h.logger.Error("list customers failed", zap.Error(err))
		response.FromError(c, err, "failed to list customers")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"customers": customers,
		"pagination": response.Pagination{
			Page:  page,
			Limit: limit,
			Total: total,
		},
	})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		response.Error(c, http.StatusBadRequest, "invalid customer id")
		return 0, false
	}
	return id, true
}
