package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/SAP-F-2025/assessment-randomizer/internal/cache"
	"github.com/SAP-F-2025/assessment-randomizer/internal/config"
	"github.com/SAP-F-2025/assessment-randomizer/internal/events"
	"github.com/SAP-F-2025/assessment-randomizer/internal/handlers"
	"github.com/SAP-F-2025/assessment-randomizer/internal/repositories/postgres"
	"github.com/SAP-F-2025/assessment-randomizer/internal/services"
	"github.com/SAP-F-2025/assessment-randomizer/internal/utils"
	"github.com/SAP-F-2025/assessment-randomizer/internal/validator"
	"github.com/SAP-F-2025/assessment-randomizer/pkg"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	slogLogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	logger := utils.NewSlogLogger(slogLogger)

	// Initialize database
	db, err := pkg.InitDatabase(cfg, slogLogger)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Initialize Redis (optional, the service runs uncached without it)
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = pkg.NewRedisClient(cfg)
		if err != nil {
			logger.Warn("Redis unavailable, caching disabled", "error", err)
			redisClient = nil
		}
	}
	cacheManager := cache.NewCacheManager(redisClient, cfg.ShuffleCacheTTL)

	repo := postgres.NewPostgreSQLRepository(postgres.RepositoryConfig{
		DB:    db,
		Cache: cacheManager,
	})

	rootCtx, stopEvents := context.WithCancel(context.Background())
	defer stopEvents()

	publisher, err := newPublisher(rootCtx, cfg, slogLogger)
	if err != nil {
		log.Fatalf("Failed to initialize event publisher: %v", err)
	}

	validator := validator.New()

	// Initialize services
	serviceManager := services.NewServiceManager(services.ServiceManagerConfig{
		Repo:      repo,
		Cache:     cacheManager,
		Publisher: publisher,
		Logger:    slogLogger,
		Validator: validator,
	})
	if err := serviceManager.Initialize(rootCtx); err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}

	handlerManager := handlers.NewHandlerManager(serviceManager, validator, logger, handlers.HeaderIdentityResolver{})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handlers.SetupMiddleware(router, logger)
	handlerManager.SetupRoutes(router)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting server", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	// Drains cache writes and closes the publisher
	if err := serviceManager.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown services", "error", err)
	}
	stopEvents()

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}

	if redisClient != nil {
		redisClient.Close()
	}

	logger.Info("Server exited")
}

// newPublisher uses kafka when brokers are configured. Otherwise events go to an
// in-process channel and are logged.
func newPublisher(ctx context.Context, cfg *config.Config, logger *slog.Logger) (events.EventPublisher, error) {
	if len(cfg.KafkaBrokers) > 0 {
		return events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.EventsTopic, logger)
	}

	pubSub := events.NewInMemoryPubSub(logger)
	if err := events.LogEvents(ctx, pubSub, cfg.EventsTopic, logger); err != nil {
		return nil, err
	}
	logger.Info("KAFKA_BROKERS not set, logging events in-process", "topic", cfg.EventsTopic)
	return events.NewPublisher(pubSub, cfg.EventsTopic, logger), nil
}
