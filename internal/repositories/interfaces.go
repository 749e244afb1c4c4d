package repositories

import (
	"context"

	"github.com/SAP-F-2025/assessment-randomizer/internal/models"
)

type TestRepository interface {
	Create(ctx context.Context, test *models.Test) error
	GetByID(ctx context.Context, id uint) (*models.Test, error)
}

type QuestionRepository interface {
	Create(ctx context.Context, question *models.Question) error
	GetByID(ctx context.Context, id uint) (*models.Question, error)

	// ListByTest returns the canonical question bank ordered by ID.
	ListByTest(ctx context.Context, testID uint) ([]*models.Question, error)
}

type AttemptRepository interface {
	Create(ctx context.Context, attempt *models.Attempt) error
	GetByID(ctx context.Context, id uint) (*models.Attempt, error)

	// GetForUpdate reads the attempt and holds a row lock until the surrounding
	// transaction ends. Submissions and completion serialize on it.
	GetForUpdate(ctx context.Context, id uint) (*models.Attempt, error)

	// GetActive returns the in-progress attempt of a candidate for a test.
	GetActive(ctx context.Context, candidateID string, testID uint) (*models.Attempt, error)

	// MarkCompleted stores the summary fields and flips the status, but only while the
	// attempt is still in progress. It reports whether a row changed.
	MarkCompleted(ctx context.Context, attempt *models.Attempt) (bool, error)
}

type AnswerRepository interface {
	// Upsert writes the answer keyed by (attempt_id, question_id). Finalized rows are
	// left untouched and reported as not written.
	Upsert(ctx context.Context, answer *models.AttemptAnswer) (bool, error)
	ListByAttempt(ctx context.Context, attemptID uint) ([]*models.AttemptAnswer, error)
	FinalizeByAttempt(ctx context.Context, attemptID uint) (int64, error)
}

type ShuffleConfigRepository interface {
	GetByAttempt(ctx context.Context, attemptID uint) (*models.AttemptShuffleConfig, error)

	// CreateIfAbsent inserts the config unless one already exists for the attempt. It
	// never overwrites and reports whether this call wrote the row.
	CreateIfAbsent(ctx context.Context, cfg *models.AttemptShuffleConfig) (bool, error)
}
