// internal/handlers/subscription/subscription_handler.go
package subscription

import (
	"net/http"
	"strconv"

	"license-service/internal/domain/subscription"
	"license-service/internal/middleware"
	"license-service/internal/pkg/response"
	subscriptionservice "license-service/internal/service/subscription"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SubscriptionHandler struct {
	subscriptionService *subscriptionservice.Service
	logger              *zap.Logger
}

func NewSubscriptionHandler(subscriptionService *subscriptionservice.Service, logger *zap.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionService: subscriptionService, logger: logger}
}

// List handles GET /api/v1/admin/subscriptions with an optional status filter.
func (h *SubscriptionHandler) List(c *gin.Context) {
	page, limit := response.ParsePagination(c)
	filters := subscription.ListFilters{
		Status: subscription.Status(c.Query("status")),
		Page:   page,
		Limit:  limit,
	}

	subs, total, err := h.subscriptionService.List(c.Request.Context(), filters)
	if err != nil {
		response.FromError(c, err, "failed to list subscriptions")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"subscriptions": subs,
		"pagination": response.Pagination{
			Page:  page,
			Limit: limit,
			Total: total,
		},
	})
}

// Approve handles POST /api/v1/admin/subscriptions/:id/approve. Only a
// requested subscription can be approved, and the approval clock starts now.
func (h *SubscriptionHandler) Approve(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		response.Error(c, http.StatusBadRequest, "invalid subscription id")
		return
	}

	if err := h.subscriptionService.Approve(c.Request.Context(), id); err != nil {
		response.FromError(c, err, "")
		return
	}

	response.OK(c, http.StatusOK, "Subscription approved", nil)
}

// Assign handles POST /api/v1/admin/customers/:id/assign-subscription. The
// subscription is created already active, skipping the approval step.
func (h *SubscriptionHandler) Assign(c *gin.Context) {
	customerID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || customerID < 1 {
		response.Error(c, http.StatusBadRequest, "invalid customer id")
		return
	}

	var req subscription.AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}

	sub, err := h.subscriptionService.Assign(c.Request.Context(), customerID, req.PackID)
	if err != nil {
		response.FromError(c, err, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"message":      "Subscription assigned",
		"subscription": sub,
	})
}

// Current handles GET /api/v1/customer/subscription and
// GET /sdk/v1/subscription. The is_valid flag inside the subscription payload
// reflects the lazy expiry check performed on every read.
func (h *SubscriptionHandler) Current(c *gin.Context) {
	cust := middleware.CurrentCustomer(c)

	detail, _, err := h.subscriptionService.Current(c.Request.Context(), cust.ID)
	if err != nil {
		response.FromError(c, err, "no subscription found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "subscription": detail})
}

// Request handles POST /api/v1/customer/subscription. The new subscription
// starts in the requested state and waits for admin approval.
func (h *SubscriptionHandler) Request(c *gin.Context) {
	cust := middleware.CurrentCustomer(c)

	var req subscription.RequestBySKU
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}

	sub, p, err := h.subscriptionService.Request(c.Request.Context(), cust.ID, req.SKU)
	if err != nil {
		response.FromError(c, err, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"message":      "Subscription requested, pending approval",
		"subscription": sub,
		"pack":         p,
	})
}

// Deactivate handles DELETE /api/v1/customer/subscription.
func (h *SubscriptionHandler) Deactivate(c *gin.Context) {
	cust := middleware.CurrentCustomer(c)

	deactivatedAt, err := h.subscriptionService.Deactivate(c.Request.Context(), cust.ID)
	if err != nil {
		response.FromError(c, err, "no subscription to deactivate")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"message":        "Subscription deactivated",
		"deactivated_at": deactivatedAt,
	})
}

// History handles GET /api/v1/customer/subscription-history and
// GET /sdk/v1/subscription-history.
func (h *SubscriptionHandler) History(c *gin.Context) {
	cust := middleware.CurrentCustomer(c)

	page, limit := response.ParsePagination(c)
	filters := subscription.HistoryFilters{
		Page:     page,
		Limit:    limit,
		SortDesc: c.DefaultQuery("sort", "desc") != "asc",
	}

	subs, total, err := h.subscriptionService.History(c.Request.Context(), cust.ID, filters)
	if err != nil {
		response.FromError(c, err, "failed to load subscription history")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"subscriptions": subs,
		"pagination": response.Pagination{
			Page:  page,
			Limit: limit,
			Total: total,
		},
	})
}

// SDKRequest handles POST /sdk/v1/subscription.
func (h *SubscriptionHandler) SDKRequest(c *gin.Context) {
	cust := middleware.CurrentCustomer(c)

	var req subscription.SDKRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}

	sub, p, err := h.subscriptionService.Request(c.Request.Context(), cust.ID, req.PackSKU)
	if err != nil {
		response.FromError(c, err, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"message":      "Subscription requested, pending approval",
		"subscription": sub,
		"pack":         p,
	})
}
