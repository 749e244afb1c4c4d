package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/assessment-randomizer/internal/cache"
	"github.com/SAP-F-2025/assessment-randomizer/internal/repositories"
)

// PostgreSQLRepository implements the main Repository interface
type PostgreSQLRepository struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager

	test          repositories.TestRepository
	question      repositories.QuestionRepository
	attempt       repositories.AttemptRepository
	answer        repositories.AnswerRepository
	shuffleConfig repositories.ShuffleConfigRepository
}

// RepositoryConfig holds configuration for repository initialization
type RepositoryConfig struct {
	DB    *gorm.DB
	Cache *cache.CacheManager
}

// NewPostgreSQLRepository creates the repository with all sub-repositories. A nil Cache
// disables caching.
func NewPostgreSQLRepository(config RepositoryConfig) repositories.Repository {
	cm := config.Cache
	if cm == nil {
		cm = cache.NewCacheManager(nil, 0)
	}
	return newRepository(config.DB, cm)
}

func newRepository(db *gorm.DB, cm *cache.CacheManager) *PostgreSQLRepository {
	return &PostgreSQLRepository{
		db:            db,
		cacheManager:  cm,
		test:          NewTestPostgreSQL(db),
		question:      NewQuestionPostgreSQL(db, cm),
		attempt:       NewAttemptPostgreSQL(db),
		answer:        NewAnswerPostgreSQL(db),
		shuffleConfig: NewShuffleConfigPostgreSQL(db),
	}
}

func (r *PostgreSQLRepository) Test() repositories.TestRepository {
	return r.test
}

func (r *PostgreSQLRepository) Question() repositories.QuestionRepository {
	return r.question
}

func (r *PostgreSQLRepository) Attempt() repositories.AttemptRepository {
	return r.attempt
}

func (r *PostgreSQLRepository) Answer() repositories.AnswerRepository {
	return r.answer
}

func (r *PostgreSQLRepository) ShuffleConfig() repositories.ShuffleConfigRepository {
	return r.shuffleConfig
}

// WithTransaction executes a function within a database transaction
func (r *PostgreSQLRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newRepository(tx, r.cacheManager))
	})
}

// Ping checks the health of database and cache connections
func (r *PostgreSQLRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	if r.cacheManager.Shuffle.Available() {
		if err := r.cacheManager.HealthCheck(ctx); err != nil {
			return fmt.Errorf("cache ping failed: %w", err)
		}
	}

	return nil
}

// Close closes the database connection. The redis client belongs to the caller.
func (r *PostgreSQLRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}
