package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/datatypes"

	"github.com/SAP-F-2025/assessment-randomizer/internal/events"
	"github.com/SAP-F-2025/assessment-randomizer/internal/grading"
	"github.com/SAP-F-2025/assessment-randomizer/internal/models"
	"github.com/SAP-F-2025/assessment-randomizer/internal/repositories"
	"github.com/SAP-F-2025/assessment-randomizer/internal/shuffle"
	"github.com/SAP-F-2025/assessment-randomizer/internal/validator"
)

var errAlreadyCompleted = errors.New("attempt already completed")

type attemptService struct {
	repo      repositories.Repository
	store     *ShuffleConfigStore
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
	now       func() time.Time
}

func NewAttemptService(repo repositories.Repository, store *ShuffleConfigStore, publisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator) AttemptService {
	return &attemptService{
		repo:      repo,
		store:     store,
		publisher: publisher,
		logger:    logger,
		validator: validator,
		now:       time.Now,
	}
}

// ===== CORE ATTEMPT OPERATIONS =====

func (s *attemptService) Start(ctx context.Context, req *models.AttemptStartRequest, candidateID string) (*models.AttemptPaper, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	// fail on missing seed material before touching storage
	if _, err := shuffle.QuestionOrderSeed(candidateID, req.TestID); err != nil {
		return nil, err
	}

	s.logger.Info("Starting attempt", "test_id", req.TestID, "candidate_id", candidateID)

	if _, err := s.repo.Test().GetByID(ctx, req.TestID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, retryable("failed to get test", err)
	}

	questions, err := s.repo.Question().ListByTest(ctx, req.TestID)
	if err != nil {
		return nil, retryable("failed to list questions", err)
	}

	active, err := s.repo.Attempt().GetActive(ctx, candidateID, req.TestID)
	switch {
	case err == nil:
		s.logger.Info("Resuming existing attempt", "attempt_id", active.ID)
		return s.paper(ctx, active, questions, true)
	case !repositories.IsNotFoundError(err):
		return nil, retryable("failed to get active attempt", err)
	}

	attempt := &models.Attempt{
		TestID:      req.TestID,
		CandidateID: candidateID,
		Status:      models.AttemptInProgress,
		StartedAt:   s.now(),
	}

	var cfg *models.ShuffleConfig
	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.Attempt().Create(ctx, attempt); err != nil {
			return retryable("failed to create attempt", err)
		}
		created, err := s.store.Create(ctx, tx, attempt, questions)
		if err != nil {
			return err
		}
		cfg = created
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start attempt: %w", err)
	}
	s.store.Remember(ctx, attempt.ID, cfg)

	views, err := shuffle.Apply(questions, *cfg)
	if err != nil {
		return nil, err
	}
	s.checkUniqueness(attempt, views)

	s.logger.Info("Attempt started",
		"attempt_id", attempt.ID,
		"test_id", attempt.TestID,
		"questions", len(views))

	return toPaper(attempt, views, false), nil
}

func (s *attemptService) Resume(ctx context.Context, attemptID uint, candidateID string) (*models.AttemptPaper, error) {
	attempt, err := s.ownedAttempt(ctx, attemptID, candidateID, "resume")
	if err != nil {
		return nil, err
	}
	if !attempt.IsActive() {
		return nil, ErrAttemptNotActive
	}

	questions, err := s.repo.Question().ListByTest(ctx, attempt.TestID)
	if err != nil {
		return nil, retryable("failed to list questions", err)
	}
	return s.paper(ctx, attempt, questions, true)
}

func (s *attemptService) SubmitAnswer(ctx context.Context, attemptID uint, req *models.SubmitAnswerRequest, candidateID string) (*models.AnswerResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	attempt, err := s.ownedAttempt(ctx, attemptID, candidateID, "submit_answer")
	if err != nil {
		return nil, err
	}
	if !attempt.IsActive() {
		return nil, ErrAttemptNotActive
	}

	questions, err := s.repo.Question().ListByTest(ctx, attempt.TestID)
	if err != nil {
		return nil, retryable("failed to list questions", err)
	}
	question := findQuestion(questions, req.QuestionID)
	if question == nil {
		return nil, ErrQuestionNotFound
	}

	cfg, err := s.store.GetOrCreate(ctx, attempt.ID, attempt.CandidateID, attempt.TestID, questions)
	if err != nil {
		return nil, err
	}

	resp, err := grading.Reconcile(req.Value, question, *cfg)
	if err != nil {
		s.logger.Warn("Rejected submission",
			"attempt_id", attempt.ID,
			"question_id", question.ID,
			"error", err)
		return nil, err
	}

	outcome, err := grading.Grade(resp, question)
	if err != nil {
		s.logger.Error("Question cannot be graded", "question_id", question.ID, "error", err)
		return nil, err
	}

	raw := req.Value
	if len(raw) == 0 {
		raw = []byte("null")
	}
	answer := &models.AttemptAnswer{
		AttemptID:      attempt.ID,
		QuestionID:     question.ID,
		SubmittedValue: datatypes.JSON(raw),
		IsCorrect:      outcome.IsCorrect,
		MarksObtained:  outcome.MarksObtained,
		Answered:       outcome.Answered,
		AnsweredAt:     s.now(),
	}

	// the attempt row lock orders this write against Complete
	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		locked, err := tx.Attempt().GetForUpdate(ctx, attempt.ID)
		if err != nil {
			return retryable("failed to lock attempt", err)
		}
		if !locked.IsActive() {
			return ErrAttemptNotActive
		}
		written, err := tx.Answer().Upsert(ctx, answer)
		if err != nil {
			return retryable("failed to save answer", err)
		}
		if !written {
			return ErrAttemptNotActive
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrAttemptNotActive) {
			s.logger.Info("Late submission rejected", "attempt_id", attempt.ID, "question_id", question.ID)
		}
		return nil, err
	}

	result := &models.AnswerResult{
		AttemptID:     attempt.ID,
		QuestionID:    question.ID,
		Answered:      outcome.Answered,
		IsCorrect:     outcome.IsCorrect,
		MarksObtained: outcome.MarksObtained,
	}
	s.publish(ctx, events.NewAnswerGradedEvent(attempt.CandidateID, result))

	return result, nil
}

func (s *attemptService) Complete(ctx context.Context, attemptID uint, candidateID string) (*models.AttemptSummary, error) {
	attempt, err := s.ownedAttempt(ctx, attemptID, candidateID, "complete")
	if err != nil {
		return nil, err
	}
	if !attempt.IsActive() {
		return models.SummaryFromAttempt(attempt), nil
	}

	questions, err := s.repo.Question().ListByTest(ctx, attempt.TestID)
	if err != nil {
		return nil, retryable("failed to list questions", err)
	}
	cfg, err := s.store.GetOrCreate(ctx, attempt.ID, attempt.CandidateID, attempt.TestID, questions)
	if err != nil {
		return nil, err
	}
	paper := paperQuestions(questions, *cfg)

	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		locked, err := tx.Attempt().GetForUpdate(ctx, attempt.ID)
		if err != nil {
			return retryable("failed to lock attempt", err)
		}
		if !locked.IsActive() {
			return errAlreadyCompleted
		}
		if _, err := tx.Answer().FinalizeByAttempt(ctx, attempt.ID); err != nil {
			return retryable("failed to finalize answers", err)
		}
		answers, err := tx.Answer().ListByAttempt(ctx, attempt.ID)
		if err != nil {
			return retryable("failed to list answers", err)
		}

		summary := grading.Summarize(paper, outcomesFrom(answers))
		completedAt := s.now()
		attempt.CompletedAt = &completedAt
		attempt.TotalScore = summary.TotalScore
		attempt.TotalPossible = summary.TotalPossible
		attempt.CorrectCount = summary.CorrectCount
		attempt.IncorrectCount = summary.IncorrectCount
		attempt.UnansweredCount = summary.UnansweredCount

		changed, err := tx.Attempt().MarkCompleted(ctx, attempt)
		if err != nil {
			return retryable("failed to complete attempt", err)
		}
		if !changed {
			return errAlreadyCompleted
		}
		return nil
	})

	if errors.Is(err, errAlreadyCompleted) {
		stored, err := s.repo.Attempt().GetByID(ctx, attempt.ID)
		if err != nil {
			return nil, retryable("failed to reload attempt", err)
		}
		return models.SummaryFromAttempt(stored), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to complete attempt: %w", err)
	}

	attempt.Status = models.AttemptCompleted
	summary := models.SummaryFromAttempt(attempt)

	s.logger.Info("Attempt completed",
		"attempt_id", attempt.ID,
		"total_score", summary.TotalScore,
		"total_possible", summary.TotalPossible)
	s.publish(ctx, events.NewAttemptCompletedEvent(summary))

	return summary, nil
}

// ===== HELPERS =====

func (s *attemptService) ownedAttempt(ctx context.Context, attemptID uint, candidateID, action string) (*models.Attempt, error) {
	attempt, err := s.repo.Attempt().GetByID(ctx, attemptID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, retryable("failed to get attempt", err)
	}
	if attempt.CandidateID != candidateID {
		return nil, NewPermissionError(candidateID, attemptID, "attempt", action, "not owned by candidate")
	}
	return attempt, nil
}

// paper rebuilds the candidate's view from the stored config. Attempts created before
// configs were persisted get one generated here, once.
func (s *attemptService) paper(ctx context.Context, attempt *models.Attempt, questions []*models.Question, resumed bool) (*models.AttemptPaper, error) {
	cfg, err := s.store.GetOrCreate(ctx, attempt.ID, attempt.CandidateID, attempt.TestID, questions)
	if err != nil {
		return nil, err
	}
	views, err := shuffle.Apply(questions, *cfg)
	if err != nil {
		return nil, err
	}
	return toPaper(attempt, views, resumed), nil
}

func (s *attemptService) checkUniqueness(attempt *models.Attempt, views []shuffle.View) {
	ok, collisions := shuffle.Verify(views)
	if ok {
		return
	}
	for _, c := range collisions {
		s.logger.Warn("Identical option arrangement on one paper",
			"attempt_id", attempt.ID,
			"question_ids", c.QuestionIDs)
	}
}

func (s *attemptService) publish(ctx context.Context, event *events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish event", "event_type", event.Type, "error", err)
	}
}

func toPaper(attempt *models.Attempt, views []shuffle.View, resumed bool) *models.AttemptPaper {
	paper := &models.AttemptPaper{
		AttemptID: attempt.ID,
		TestID:    attempt.TestID,
		Status:    attempt.Status,
		StartedAt: attempt.StartedAt,
		Resumed:   resumed,
		Questions: make([]models.PaperQuestion, 0, len(views)),
	}
	for _, v := range views {
		paper.Questions = append(paper.Questions, models.PaperQuestion{
			QuestionID: v.QuestionID,
			Position:   v.Position,
			Text:       v.Text,
			Type:       v.Type,
			Marks:      v.Marks,
			Options:    v.Options,
		})
	}
	return paper
}

func findQuestion(questions []*models.Question, id uint) *models.Question {
	for _, q := range questions {
		if q != nil && q.ID == id {
			return q
		}
	}
	return nil
}

// paperQuestions returns the questions on the paper in display order, skipping any
// removed from the bank since the config was written.
func paperQuestions(questions []*models.Question, cfg models.ShuffleConfig) []*models.Question {
	out := make([]*models.Question, 0, len(cfg.QuestionOrder))
	for _, id := range cfg.QuestionOrder {
		if q := findQuestion(questions, id); q != nil {
			out = append(out, q)
		}
	}
	return out
}

func outcomesFrom(answers []*models.AttemptAnswer) map[uint]grading.Outcome {
	out := make(map[uint]grading.Outcome, len(answers))
	for _, a := range answers {
		out[a.QuestionID] = grading.Outcome{
			Answered:      a.Answered,
			IsCorrect:     a.IsCorrect,
			MarksObtained: a.MarksObtained,
		}
	}
	return out
}
