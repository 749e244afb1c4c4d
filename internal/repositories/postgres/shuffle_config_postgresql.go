package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SAP-F-2025/assessment-randomizer/internal/models"
	"github.com/SAP-F-2025/assessment-randomizer/internal/repositories"
)

type ShuffleConfigPostgreSQL struct {
	db *gorm.DB
}

func NewShuffleConfigPostgreSQL(db *gorm.DB) repositories.ShuffleConfigRepository {
	return &ShuffleConfigPostgreSQL{db: db}
}

func (s *ShuffleConfigPostgreSQL) GetByAttempt(ctx context.Context, attemptID uint) (*models.AttemptShuffleConfig, error) {
	var cfg models.AttemptShuffleConfig
	if err := s.db.WithContext(ctx).Where("attempt_id = ?", attemptID).First(&cfg).Error; err != nil {
		return nil, wrapError(err, "shuffle config for attempt", attemptID)
	}
	return &cfg, nil
}

// CreateIfAbsent issues INSERT ... ON CONFLICT (attempt_id) DO NOTHING. Zero affected
// rows means another writer got there first.
func (s *ShuffleConfigPostgreSQL) CreateIfAbsent(ctx context.Context, cfg *models.AttemptShuffleConfig) (bool, error) {
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "attempt_id"}},
			DoNothing: true,
		}).
		Create(cfg)
	if result.Error != nil {
		return false, fmt.Errorf("failed to store shuffle config for attempt %d: %w", cfg.AttemptID, result.Error)
	}
	return result.RowsAffected == 1, nil
}
