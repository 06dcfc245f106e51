// internal/app/server.go
package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"license-service/internal/config"
	"license-service/internal/db"
	authHandler "license-service/internal/handlers/auth"
	customerHandler "license-service/internal/handlers/customer"
	dashboardHandler "license-service/internal/handlers/dashboard"
	packHandler "license-service/internal/handlers/pack"
	subscriptionHandler "license-service/internal/handlers/subscription"
	"license-service/internal/middleware"
	"license-service/internal/pkg/hash"
	"license-service/internal/pkg/ratelimit"
	"license-service/internal/pkg/token"
	"license-service/internal/repository/postgres"
	authUsecase "license-service/internal/service/auth"
	customersvc "license-service/internal/service/customer"
	dashboardUsecase "license-service/internal/service/dashboard"
	packUsecase "license-service/internal/service/pack"
	subscriptionUsecase "license-service/internal/service/subscription"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	cfg    config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
}

func NewServer() *Server {
	cfg := config.Load()
	engine := gin.New()
	return &Server{cfg: cfg, engine: engine}
}

func (s *Server) Start() error {
	ctx := context.Background()

	// ----- Logger -----
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync()
	s.logger = logger

	// ----- PostgreSQL -----
	pool, err := db.Connect(ctx, s.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	// ----- Redis (optional, used for login rate limiting) -----
	var redisClient *redis.Client
	if s.cfg.RedisAddr != "" {
		redisClient, err = db.NewRedisClient(db.RedisConfig{
			Addr:     s.cfg.RedisAddr,
			Password: s.cfg.RedisPass,
			DB:       0,
			PoolSize: 10,
		})
		if err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		log.Println("[REDIS] connected")
	} else {
		logger.Warn("REDIS_ADDR not set, login rate limiting disabled")
	}

	// ----- Token Manager -----
	tokens, err := token.NewManager(s.cfg.Token)
	if err != nil {
		return fmt.Errorf("failed to build token manager: %w", err)
	}

	// ----- Hashing & Rate Limiter -----
	hasher := hash.NewHasher()
	limiter := ratelimit.NewLoginLimiter(redisClient)

	// ----- Repositories -----
	userRepo := postgres.NewUserRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	packRepo := postgres.NewPackRepository(pool)
	subscriptionRepo := postgres.NewSubscriptionRepository(pool)
	apiKeyRepo := postgres.NewApiKeyRepository(pool)

	// ----- Services -----
	authService := authUsecase.NewAuthService(
		userRepo,
		customerRepo,
		apiKeyRepo,
		hasher,
		tokens,
		limiter,
		s.cfg.APIKeyPrefix,
		logger,
	)
	customerService := customersvc.NewCustomerService(customerRepo, userRepo, hasher, logger)
	packService := packUsecase.NewPackService(packRepo, subscriptionRepo, logger)
	subscriptionService := subscriptionUsecase.NewService(subscriptionRepo, packRepo, customerRepo, logger)
	dashboardService := dashboardUsecase.NewDashboardService(customerRepo, subscriptionRepo, logger)

	// ----- Seed Admin -----
	if err := s.seedAdmin(ctx, authService); err != nil {
		logger.Error("failed to seed admin account", zap.Error(err))
	}

	// ----- Handlers -----
	authHandlerInst := authHandler.NewAuthHandler(authService, logger)
	customerHandlerInst := customerHandler.NewCustomerHandler(customerService, logger)
	packHandlerInst := packHandler.NewPackHandler(packService, logger)
	subscriptionHandlerInst := subscriptionHandler.NewSubscriptionHandler(subscriptionService, logger)
	dashboardHandlerInst := dashboardHandler.NewDashboardHandler(dashboardService, logger)

	// ----- Middlewares -----
	authMiddleware := middleware.NewAuthMiddleware(authService)

	s.engine.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
		middleware.CORSMiddleware(),
	)

	// ----- Router -----
	handlers := &Handlers{
		AuthHandler:         authHandlerInst,
		CustomerHandler:     customerHandlerInst,
		PackHandler:         packHandlerInst,
		SubscriptionHandler: subscriptionHandlerInst,
		DashboardHandler:    dashboardHandlerInst,
		AuthMiddleware:      authMiddleware,
	}
	SetupRouter(s.engine, handlers)

	// ----- Start HTTP -----
	log.Printf("server running on %s", s.cfg.HTTPAddr)
	return s.engine.Run(s.cfg.HTTPAddr)
}

// seedAdmin makes sure the configured admin account exists before the API
// starts accepting logins.
func (s *Server) seedAdmin(ctx context.Context, authService *authUsecase.AuthService) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if len(s.cfg.AdminPassword) < 6 {
		return fmt.Errorf("admin password must be at least 6 characters")
	}
	return authService.EnsureAdminExists(ctx, s.cfg.AdminEmail, s.cfg.AdminPassword)
}
