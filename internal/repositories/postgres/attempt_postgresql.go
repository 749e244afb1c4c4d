package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SAP-F-2025/assessment-randomizer/internal/models"
	"github.com/SAP-F-2025/assessment-randomizer/internal/repositories"
)

type AttemptPostgreSQL struct {
	db *gorm.DB
}

func NewAttemptPostgreSQL(db *gorm.DB) repositories.AttemptRepository {
	return &AttemptPostgreSQL{db: db}
}

func (a *AttemptPostgreSQL) Create(ctx context.Context, attempt *models.Attempt) error {
	if err := a.db.WithContext(ctx).Create(attempt).Error; err != nil {
		return fmt.Errorf("failed to create attempt: %w", err)
	}
	return nil
}

// Attempts are not cached; their status changes on completion.
func (a *AttemptPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Attempt, error) {
	var attempt models.Attempt
	if err := a.db.WithContext(ctx).First(&attempt, id).Error; err != nil {
		return nil, wrapError(err, "attempt", id)
	}
	return &attempt, nil
}

func (a *AttemptPostgreSQL) GetForUpdate(ctx context.Context, id uint) (*models.Attempt, error) {
	var attempt models.Attempt
	err := a.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&attempt, id).Error
	if err != nil {
		return nil, wrapError(err, "attempt", id)
	}
	return &attempt, nil
}

func (a *AttemptPostgreSQL) GetActive(ctx context.Context, candidateID string, testID uint) (*models.Attempt, error) {
	var attempt models.Attempt
	err := a.db.WithContext(ctx).
		Where("candidate_id = ? AND test_id = ? AND status = ?", candidateID, testID, models.AttemptInProgress).
		Order("id DESC").
		First(&attempt).Error
	if err != nil {
		return nil, wrapError(err, "active attempt for test", testID)
	}
	return &attempt, nil
}

func (a *AttemptPostgreSQL) MarkCompleted(ctx context.Context, attempt *models.Attempt) (bool, error) {
	result := a.db.WithContext(ctx).
		Model(&models.Attempt{}).
		Where("id = ? AND status = ?", attempt.ID, models.AttemptInProgress).
		Updates(map[string]interface{}{
			"status":           models.AttemptCompleted,
			"completed_at":     attempt.CompletedAt,
			"total_score":      attempt.TotalScore,
			"total_possible":   attempt.TotalPossible,
			"correct_count":    attempt.CorrectCount,
			"incorrect_count":  attempt.IncorrectCount,
			"unanswered_count": attempt.UnansweredCount,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to complete attempt %d: %w", attempt.ID, result.Error)
	}
	return result.RowsAffected == 1, nil
}

type AnswerPostgreSQL struct {
	db *gorm.DB
}

func NewAnswerPostgreSQL(db *gorm.DB) repositories.AnswerRepository {
	return &AnswerPostgreSQL{db: db}
}

// Upsert relies on the (attempt_id, question_id) unique index, so concurrent submissions
// for the same question serialize in the database and the last write wins.
func (a *AnswerPostgreSQL) Upsert(ctx context.Context, answer *models.AttemptAnswer) (bool, error) {
	result := a.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "attempt_id"}, {Name: "question_id"}},
			Where: clause.Where{Exprs: []clause.Expression{
				clause.Eq{Column: clause.Column{Table: "attempt_answers", Name: "finalized"}, Value: false},
			}},
			DoUpdates: clause.AssignmentColumns([]string{
				"submitted_value", "is_correct", "marks_obtained", "answered", "answered_at", "updated_at",
			}),
		}).
		Create(answer)
	if result.Error != nil {
		return false, fmt.Errorf("failed to save answer for question %d: %w", answer.QuestionID, result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (a *AnswerPostgreSQL) ListByAttempt(ctx context.Context, attemptID uint) ([]*models.AttemptAnswer, error) {
	var answers []*models.AttemptAnswer
	if err := a.db.WithContext(ctx).
		Where("attempt_id = ?", attemptID).
		Order("question_id ASC").
		Find(&answers).Error; err != nil {
		return nil, fmt.Errorf("failed to list answers for attempt %d: %w", attemptID, err)
	}
	return answers, nil
}

func (a *AnswerPostgreSQL) FinalizeByAttempt(ctx context.Context, attemptID uint) (int64, error) {
	result := a.db.WithContext(ctx).
		Model(&models.AttemptAnswer{}).
		Where("attempt_id = ? AND finalized = ?", attemptID, false).
		Update("finalized", true)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to finalize answers for attempt %d: %w", attemptID, result.Error)
	}
	return result.RowsAffected, nil
}
