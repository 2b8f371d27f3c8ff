package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"clinic-assistant/internal/api"
	"clinic-assistant/internal/api/handlers"
	"clinic-assistant/internal/cache"
	"clinic-assistant/internal/repository"
	"clinic-assistant/internal/service"
	"clinic-assistant/pkg/auth"
	"clinic-assistant/pkg/config"
	"clinic-assistant/pkg/logger"
	"clinic-assistant/pkg/postgres"

	"go.uber.org/zap"
)

// @title Clinic Assistant API
// @version 1.0
// @description Rule-based patient chatbot: menu shortcuts, keyword scopes and restricted topics
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@clinic-assistant.local

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	if err := logger.Init(cfg.Logger); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting clinic assistant")

	// Initialize database
	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Initialize repositories
	patientRepo := repository.NewPatientRepository(db, appLogger)
	scopeRepo := repository.NewScopeRepository(db, appLogger)
	restrictionRepo := repository.NewRestrictionRepository(db, appLogger)
	conversationRepo := repository.NewConversationRepository(db, appLogger)

	var (
		scopeStore       service.ScopeStore       = scopeRepo
		restrictionStore service.RestrictionStore = restrictionRepo
	)
	if cfg.Redis.Enabled() && cfg.Chat.RulesCacheTTL > 0 {
		client, err := cache.NewClient(ctx, &cfg.Redis)
		if err != nil {
			appLogger.Warn("Rule cache disabled", zap.Error(err))
		} else {
			defer client.Close()
			rules := cache.NewRuleCache(client, cfg.Chat.RulesCacheTTL, appLogger)
			scopeStore = rules.Scopes(scopeRepo)
			restrictionStore = rules.Restrictions(restrictionRepo)
			appLogger.Info("Rule cache enabled", zap.Duration("ttl", cfg.Chat.RulesCacheTTL))
		}
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Expiration, cfg.JWT.RefreshExp)

	// Initialize services
	authService := service.NewAuthService(patientRepo, jwtManager, appLogger)
	chatService := service.NewChatService(restrictionStore, scopeStore, conversationRepo, &cfg.Chat, appLogger)

	// Initialize handlers
	app := api.SetupRouter(api.Handlers{
		Auth:   handlers.NewAuthHandler(authService, appLogger),
		Chat:   handlers.NewChatHandler(chatService, conversationRepo, appLogger),
		Health: handlers.NewHealthHandler(db, appLogger),
	}, jwtManager, appLogger)

	// Start server
	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}
