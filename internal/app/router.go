// internal/app/router.go
package app

import (
	authHandler "license-service/internal/handlers/auth"
	customerHandler "license-service/internal/handlers/customer"
	dashboardHandler "license-service/internal/handlers/dashboard"
	packHandler "license-service/internal/handlers/pack"
	subscriptionHandler "license-service/internal/handlers/subscription"
	"license-service/internal/middleware"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	AuthHandler         *authHandler.AuthHandler
	CustomerHandler     *customerHandler.CustomerHandler
	PackHandler         *packHandler.PackHandler
	SubscriptionHandler *subscriptionHandler.SubscriptionHandler
	DashboardHandler    *dashboardHandler.DashboardHandler
	AuthMiddleware      *middleware.AuthMiddleware
}

func SetupRouter(r *gin.Engine, h *Handlers) {
	// ==================== Health Check ====================
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ==================== Public Auth Routes ====================
	r.POST("/api/login", h.AuthHandler.AdminLogin)
	r.POST("/api/customer/login", h.AuthHandler.CustomerLogin)
	r.POST("/api/customer/signup", h.AuthHandler.CustomerSignup)
	r.POST("/sdk/auth/login", h.AuthHandler.SDKLogin)

	// ==================== Admin ====================
	admin := r.Group("/api/v1/admin")
	admin.Use(h.AuthMiddleware.Authenticate(), h.AuthMiddleware.AdminOnly())
	{
		admin.GET("/dashboard", h.DashboardHandler.Stats)

		admin.GET("/customers", h.CustomerHandler.List)
		admin.POST("/customers", h.CustomerHandler.Create)
		admin.GET("/customers/:id", h.CustomerHandler.Get)
		admin.PUT("/customers/:id", h.CustomerHandler.Update)
		admin.DELETE("/customers/:id", h.CustomerHandler.Delete)
		admin.POST("/customers/:id/assign-subscription", h.SubscriptionHandler.Assign)

		admin.GET("/subscription-packs", h.PackHandler.List)
		admin.POST("/subscription-packs", h.PackHandler.Create)
		admin.GET("/subscription-packs/:id", h.PackHandler.Get)
		admin.PUT("/subscription-packs/:id", h.PackHandler.Update)
		admin.DELETE("/subscription-packs/:id", h.PackHandler.Delete)

		admin.GET("/subscriptions", h.SubscriptionHandler.List)
		admin.POST("/subscriptions/:id/approve", h.SubscriptionHandler.Approve)
	}

	// ==================== Customer Portal ====================
	portal := r.Group("/api/v1/customer")
	portal.Use(h.AuthMiddleware.Authenticate(), h.AuthMiddleware.CustomerOnly())
	{
		portal.GET("/subscription-packs", h.PackHandler.ListActive)
		portal.GET("/subscription", h.SubscriptionHandler.Current)
		portal.POST("/subscription", h.SubscriptionHandler.Request)
		portal.DELETE("/subscription", h.SubscriptionHandler.Deactivate)
		portal.GET("/subscription-history", h.SubscriptionHandler.History)
	}

	// ==================== SDK (API key) ====================
	sdk := r.Group("/sdk/v1")
	sdk.Use(h.AuthMiddleware.APIKeyAuth())
	{
		sdk.GET("/subscription", h.SubscriptionHandler.Current)
		sdk.POST("/subscription", h.SubscriptionHandler.SDKRequest)
		sdk.DELETE("/subscription", h.SubscriptionHandler.Deactivate)
		sdk.GET("/subscription-history", h.SubscriptionHandler.History)
	}
}
