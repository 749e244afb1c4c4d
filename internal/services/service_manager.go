package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/SAP-F-2025/assessment-randomizer/internal/cache"
	"github.com/SAP-F-2025/assessment-randomizer/internal/events"
	"github.com/SAP-F-2025/assessment-randomizer/internal/repositories"
	"github.com/SAP-F-2025/assessment-randomizer/internal/validator"
)

// ServiceManagerConfig holds the collaborators shared by every service
type ServiceManagerConfig struct {
	Repo      repositories.Repository
	Cache     *cache.CacheManager
	Publisher events.EventPublisher
	Logger    *slog.Logger
	Validator *validator.Validator
}

type serviceManager struct {
	config ServiceManagerConfig

	attemptService     AttemptService
	diagnosticsService DiagnosticsService
	testService        TestService

	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

func NewServiceManager(config ServiceManagerConfig) ServiceManager {
	if config.Cache == nil {
		config.Cache = cache.NewCacheManager(nil, 0)
	}
	if config.Validator == nil {
		config.Validator = validator.New()
	}
	return &serviceManager{config: config}
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}
	if sm.config.Repo == nil || sm.config.Logger == nil {
		return errors.New("service manager requires a repository and a logger")
	}

	cfg := sm.config
	cfg.Logger.Info("Initializing service manager")

	store := NewShuffleConfigStore(cfg.Repo, cfg.Cache.Shuffle, cfg.Logger.With("component", "shuffle_config"))
	sm.attemptService = NewAttemptService(cfg.Repo, store, cfg.Publisher, cfg.Logger.With("component", "attempt"), cfg.Validator)
	sm.diagnosticsService = NewDiagnosticsService(cfg.Repo, cfg.Logger.With("component", "diagnostics"))
	sm.testService = NewTestService(cfg.Repo, cfg.Logger.With("component", "test"), cfg.Validator)

	sm.initialized = true
	cfg.Logger.Info("Service manager initialized successfully")
	return nil
}

func (sm *serviceManager) Attempt() AttemptService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.attemptService
}

func (sm *serviceManager) Diagnostics() DiagnosticsService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.diagnosticsService
}

func (sm *serviceManager) Test() TestService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.testService
}

// HealthCheck pings storage. The cache is optional, so its failure is only logged.
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}
	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if err := sm.config.Repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}
	if err := sm.config.Cache.HealthCheck(ctx); err != nil && !errors.Is(err, cache.ErrCacheNotAvailable) {
		sm.config.Logger.Warn("Cache health check failed", "error", err)
	}
	return nil
}

// Shutdown drains background cache writes and closes the event publisher.
func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}
	sm.shutdown = true

	var errs []error
	if err := sm.config.Cache.Drain(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to drain cache writes: %w", err))
	}
	if sm.config.Publisher != nil {
		if err := sm.config.Publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close event publisher: %w", err))
		}
	}

	sm.config.Logger.Info("Service manager shut down")
	return errors.Join(errs...)
}
