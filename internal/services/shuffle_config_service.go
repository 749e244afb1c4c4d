package services

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"golang.org/x/sync/singleflight"

	"github.com/SAP-F-2025/assessment-randomizer/internal/cache"
	"github.com/SAP-F-2025/assessment-randomizer/internal/models"
	"github.com/SAP-F-2025/assessment-randomizer/internal/repositories"
	"github.com/SAP-F-2025/assessment-randomizer/internal/shuffle"
)

// ShuffleConfigStore is the only writer of shuffle configs. A config is created once
// per attempt and read unchanged afterwards.
type ShuffleConfigStore struct {
	repo   repositories.Repository
	cache  *cache.CacheHelper
	logger *slog.Logger

	group singleflight.Group
}

func NewShuffleConfigStore(repo repositories.Repository, helper *cache.CacheHelper, logger *slog.Logger) *ShuffleConfigStore {
	if helper == nil {
		helper = cache.NewCacheHelper(nil, cache.ShuffleCacheConfig)
	}
	return &ShuffleConfigStore{
		repo:   repo,
		cache:  helper,
		logger: logger,
	}
}

// GetOrCreate returns the stored config for the attempt, shuffling and persisting one
// when none exists yet. Concurrent callers in this process share one lookup; callers
// in other processes are serialized by the unique attempt_id constraint. A caller whose
// ctx ends stops waiting, but the shared lookup runs on for the others.
func (s *ShuffleConfigStore) GetOrCreate(ctx context.Context, attemptID uint, candidateID string, testID uint, questions []*models.Question) (*models.ShuffleConfig, error) {
	flightCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(strconv.FormatUint(uint64(attemptID), 10), func() (interface{}, error) {
		var cfg models.ShuffleConfig
		err := s.cache.CacheOrExecute(flightCtx, cache.AttemptShuffleKey(attemptID), &cfg, func() (interface{}, error) {
			return s.loadOrCreate(flightCtx, attemptID, candidateID, testID, questions)
		})
		if err != nil {
			return nil, err
		}
		return &cfg, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if res.Err != nil {
		return nil, res.Err
	}

	// callers sharing a flight get their own copy
	shared := res.Val.(*models.ShuffleConfig)
	return cloneConfig(shared), nil
}

func (s *ShuffleConfigStore) loadOrCreate(ctx context.Context, attemptID uint, candidateID string, testID uint, questions []*models.Question) (*models.ShuffleConfig, error) {
	stored, err := s.repo.ShuffleConfig().GetByAttempt(ctx, attemptID)
	if err == nil {
		cfg := stored.Config.Data()
		return &cfg, nil
	}
	if !repositories.IsNotFoundError(err) {
		return nil, retryable("failed to load shuffle config", err)
	}

	s.logger.Info("Generating shuffle config", "attempt_id", attemptID, "test_id", testID)
	return s.Create(ctx, s.repo, &models.Attempt{ID: attemptID, CandidateID: candidateID, TestID: testID}, questions)
}

// Create shuffles the questions for the attempt and persists the result through repo.
// Called with a transactional repo, the config commits together with the attempt. If
// another writer got there first, its config is returned instead.
func (s *ShuffleConfigStore) Create(ctx context.Context, repo repositories.Repository, attempt *models.Attempt, questions []*models.Question) (*models.ShuffleConfig, error) {
	result, err := shuffle.Shuffle(questions, attempt.CandidateID, attempt.TestID)
	if err != nil {
		return nil, err
	}

	created, err := repo.ShuffleConfig().CreateIfAbsent(ctx, models.NewAttemptShuffleConfig(attempt, result.Config))
	if err != nil {
		return nil, retryable("failed to persist shuffle config", err)
	}
	if created {
		return &result.Config, nil
	}

	s.logger.Warn("Shuffle config race lost, using stored config",
		"attempt_id", attempt.ID,
		"error", ErrConfigRace)

	winner, err := repo.ShuffleConfig().GetByAttempt(ctx, attempt.ID)
	if err != nil {
		return nil, retryable("failed to reload shuffle config", errors.Join(ErrConfigRace, err))
	}
	cfg := winner.Config.Data()
	return &cfg, nil
}

// Remember primes the cache with a config that was committed outside GetOrCreate.
func (s *ShuffleConfigStore) Remember(ctx context.Context, attemptID uint, cfg *models.ShuffleConfig) {
	if err := s.cache.Set(ctx, cache.AttemptShuffleKey(attemptID), cfg); err != nil && !errors.Is(err, cache.ErrCacheNotAvailable) {
		s.logger.Warn("Failed to cache shuffle config", "attempt_id", attemptID, "error", err)
	}
}

func cloneConfig(cfg *models.ShuffleConfig) *models.ShuffleConfig {
	out := &models.ShuffleConfig{
		QuestionOrder:   append([]uint(nil), cfg.QuestionOrder...),
		OptionLabelMaps: make(map[uint]models.LabelMap, len(cfg.OptionLabelMaps)),
	}
	for id, labels := range cfg.OptionLabelMaps {
		m := make(models.LabelMap, len(labels))
		for k, v := range labels {
			m[k] = v
		}
		out.OptionLabelMaps[id] = m
	}
	return out
}
