package services

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/SAP-F-2025/assessment-randomizer/internal/models"
	"github.com/SAP-F-2025/assessment-randomizer/internal/repositories"
	"github.com/SAP-F-2025/assessment-randomizer/internal/shuffle"
)

type diagnosticsService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewDiagnosticsService(repo repositories.Repository, logger *slog.Logger) DiagnosticsService {
	return &diagnosticsService{repo: repo, logger: logger}
}

// CollisionReport shuffles the test for every candidate and compares the papers. It
// writes nothing; stored configs are not consulted.
func (s *diagnosticsService) CollisionReport(ctx context.Context, testID uint, candidateIDs []string) (*shuffle.CollisionReport, error) {
	seen := make(map[string]struct{}, len(candidateIDs))
	for _, id := range candidateIDs {
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateCandidate, id)
		}
		seen[id] = struct{}{}
	}

	if _, err := s.repo.Test().GetByID(ctx, testID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, retryable("failed to get test", err)
	}

	questions, err := s.repo.Question().ListByTest(ctx, testID)
	if err != nil {
		return nil, retryable("failed to list questions", err)
	}

	papers, err := shufflePapers(ctx, questions, testID, candidateIDs)
	if err != nil {
		return nil, err
	}

	report := shuffle.VerifyAcrossCandidates(papers)
	s.logger.Info("Collision report built",
		"test_id", testID,
		"candidates", report.Candidates,
		"clean", report.Clean())

	return &report, nil
}

func shufflePapers(ctx context.Context, questions []*models.Question, testID uint, candidateIDs []string) (map[string][]shuffle.View, error) {
	var (
		mu     sync.Mutex
		papers = make(map[string][]shuffle.View, len(candidateIDs))
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for _, id := range candidateIDs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			result, err := shuffle.Shuffle(questions, id, testID)
			if err != nil {
				return fmt.Errorf("failed to shuffle for candidate %q: %w", id, err)
			}
			mu.Lock()
			papers[id] = result.Views
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return papers, nil
}
