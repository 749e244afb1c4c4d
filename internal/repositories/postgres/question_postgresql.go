package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/assessment-randomizer/internal/cache"
	"github.com/SAP-F-2025/assessment-randomizer/internal/models"
	"github.com/SAP-F-2025/assessment-randomizer/internal/repositories"
)

type TestPostgreSQL struct {
	db *gorm.DB
}

func NewTestPostgreSQL(db *gorm.DB) repositories.TestRepository {
	return &TestPostgreSQL{db: db}
}

func (t *TestPostgreSQL) Create(ctx context.Context, test *models.Test) error {
	if err := t.db.WithContext(ctx).Omit("Questions").Create(test).Error; err != nil {
		return fmt.Errorf("failed to create test: %w", err)
	}
	return nil
}

func (t *TestPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Test, error) {
	var test models.Test
	if err := t.db.WithContext(ctx).First(&test, id).Error; err != nil {
		return nil, wrapError(err, "test", id)
	}
	return &test, nil
}

type QuestionPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewQuestionPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.QuestionRepository {
	return &QuestionPostgreSQL{
		db:           db,
		cacheManager: cacheManager,
	}
}

// Create creates a new question and invalidates the cached bank
func (q *QuestionPostgreSQL) Create(ctx context.Context, question *models.Question) error {
	if err := q.db.WithContext(ctx).Create(question).Error; err != nil {
		return fmt.Errorf("failed to create question: %w", err)
	}

	cache.InvalidateQuestionCache(ctx, q.cacheManager, question.ID, question.TestID)
	return nil
}

// GetByID retrieves a question by ID with caching
func (q *QuestionPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	var question models.Question

	err := q.cacheManager.Question.CacheOrExecute(ctx, cache.QuestionKey(id), &question, func() (interface{}, error) {
		var dbQuestion models.Question
		if err := q.db.WithContext(ctx).First(&dbQuestion, id).Error; err != nil {
			return nil, wrapError(err, "question", id)
		}
		return &dbQuestion, nil
	})
	if err != nil {
		return nil, err
	}

	return &question, nil
}

func (q *QuestionPostgreSQL) ListByTest(ctx context.Context, testID uint) ([]*models.Question, error) {
	fetch := func() (interface{}, error) {
		var dbQuestions []*models.Question
		if err := q.db.WithContext(ctx).
			Where("test_id = ?", testID).
			Order("id ASC").
			Find(&dbQuestions).Error; err != nil {
			return nil, fmt.Errorf("failed to list questions for test %d: %w", testID, err)
		}
		return dbQuestions, nil
	}

	version, ok := cache.BankVersion(ctx, q.cacheManager, testID)
	if !ok {
		questions, err := fetch()
		if err != nil {
			return nil, err
		}
		return questions.([]*models.Question), nil
	}

	var questions []*models.Question
	if err := q.cacheManager.Question.CacheOrExecute(ctx, cache.TestQuestionsKey(testID, version), &questions, fetch); err != nil {
		return nil, err
	}
	return questions, nil
}
