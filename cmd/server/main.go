package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SAP-F-2025/examprep-service/internal/cache"
	"github.com/SAP-F-2025/examprep-service/internal/config"
	"github.com/SAP-F-2025/examprep-service/internal/events"
	"github.com/SAP-F-2025/examprep-service/internal/handlers"
	"github.com/SAP-F-2025/examprep-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/examprep-service/internal/services"
	"github.com/SAP-F-2025/examprep-service/internal/utils"
	"github.com/SAP-F-2025/examprep-service/internal/validator"
	"github.com/SAP-F-2025/examprep-service/pkg"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		utils.NewLogger("development").Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	logger := utils.NewLogger(cfg.Environment)
	slogger := logger.Slog()

	db, err := pkg.InitDatabase(cfg.Database, cfg.IsProduction(), slogger)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	if cfg.AutoMigrate {
		if err := postgres.AutoMigrate(db); err != nil {
			logger.Error("Failed to migrate database", "error", err)
			os.Exit(1)
		}
		logger.Info("Database migrated")
	}

	// redis is optional: without it payloads are not cached and generation runs are not serialised
	var cacheService cache.CacheService
	redisClient, err := pkg.NewRedisClient(context.Background(), cfg.Redis)
	if err != nil {
		logger.Warn("Redis unavailable, running without cache", "error", err)
	} else {
		defer redisClient.Close()
		cacheService = cache.NewRedisCache(redisClient, slogger)
	}

	publisher, err := cfg.Events.NewPublisher(slogger)
	if err != nil {
		logger.Warn("Failed to create event publisher, logging events instead", "error", err)
		publisher = events.NewLogPublisher(slogger)
	}
	defer publisher.Close()

	repo := postgres.NewRepository(db)
	serviceManager := services.NewServiceManager(repo, cacheService, publisher, slogger, validator.New(), services.Options{
		SessionCacheTTL:   cfg.SessionCacheTTL,
		GenerationLockTTL: cfg.GenerationLockTTL,
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), utils.RequestLogger(logger))

	handlerManager := handlers.NewHandlerManager(serviceManager, handlers.NewAuthenticator(cfg.JWTSecret), repo, logger)
	handlerManager.SetupRoutes(router)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}
}
