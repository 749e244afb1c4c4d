package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/assessment-randomizer/internal/models"
	"github.com/SAP-F-2025/assessment-randomizer/internal/repositories"
	"github.com/SAP-F-2025/assessment-randomizer/internal/validator"
)

type testService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewTestService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) TestService {
	return &testService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

func (s *testService) CreateTest(ctx context.Context, req *models.TestCreateRequest) (*models.Test, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	test := &models.Test{
		Title:    strings.TrimSpace(req.Title),
		Duration: req.Duration,
	}
	if err := s.repo.Test().Create(ctx, test); err != nil {
		return nil, retryable("failed to create test", err)
	}

	s.logger.Info("Test created", "test_id", test.ID)
	return test, nil
}

// AddQuestion appends a question to the bank. Attempts already started keep their
// paper; the new question only reaches attempts started afterwards.
func (s *testService) AddQuestion(ctx context.Context, testID uint, req *models.QuestionCreateRequest) (*models.Question, error) {
	if err := s.validator.ValidateQuestionCreate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if _, err := s.repo.Test().GetByID(ctx, testID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, retryable("failed to get test", err)
	}

	question := &models.Question{
		TestID:        testID,
		Text:          req.Text,
		Type:          req.Type,
		Options:       req.Options,
		CorrectAnswer: strings.TrimSpace(req.CorrectAnswer),
		Marks:         req.Marks,
		NegativeMarks: req.NegativeMarks,
		Position:      req.Position,
	}
	if req.Type == models.MultiSelect {
		question.CorrectAnswer = models.JoinList(models.SplitList(req.CorrectAnswer))
	}

	if err := s.repo.Question().Create(ctx, question); err != nil {
		return nil, retryable("failed to create question", err)
	}

	s.logger.Info("Question added",
		"test_id", testID,
		"question_id", question.ID,
		"type", question.Type)
	return question, nil
}
