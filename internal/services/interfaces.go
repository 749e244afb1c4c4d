package services

import (
	"context"

	"github.com/SAP-F-2025/assessment-randomizer/internal/models"
	"github.com/SAP-F-2025/assessment-randomizer/internal/shuffle"
)

type AttemptService interface {
	// Start resumes the candidate's in-progress attempt for the test, or creates a new
	// attempt together with its shuffle config.
	Start(ctx context.Context, req *models.AttemptStartRequest, candidateID string) (*models.AttemptPaper, error)
	Resume(ctx context.Context, attemptID uint, candidateID string) (*models.AttemptPaper, error)

	SubmitAnswer(ctx context.Context, attemptID uint, req *models.SubmitAnswerRequest, candidateID string) (*models.AnswerResult, error)

	// Complete is idempotent: a completed attempt returns its stored summary.
	Complete(ctx context.Context, attemptID uint, candidateID string) (*models.AttemptSummary, error)
}

type DiagnosticsService interface {
	CollisionReport(ctx context.Context, testID uint, candidateIDs []string) (*shuffle.CollisionReport, error)
}

type TestService interface {
	CreateTest(ctx context.Context, req *models.TestCreateRequest) (*models.Test, error)
	AddQuestion(ctx context.Context, testID uint, req *models.QuestionCreateRequest) (*models.Question, error)
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	Attempt() AttemptService
	Diagnostics() DiagnosticsService
	Test() TestService

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
