package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// SafeDelete deletes cache keys and logs instead of failing
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

func QuestionKey(id uint) string {
	return fmt.Sprintf("id:%d", id)
}

// TestQuestionsKey names one generation of a test's cached bank. Writes that race an
// invalidation land under the old generation and are never read again.
func TestQuestionsKey(testID uint, version int64) string {
	return fmt.Sprintf("test:%d:v%d", testID, version)
}

func BankVersionKey(testID uint) string {
	return fmt.Sprintf("test:%d:version", testID)
}

func AttemptShuffleKey(attemptID uint) string {
	return fmt.Sprintf("attempt:%d", attemptID)
}

// BankVersion returns the current bank generation of a test. ok is false when the
// generation cannot be read, in which case the bank must not be served from cache.
func BankVersion(ctx context.Context, cm *CacheManager, testID uint) (version int64, ok bool) {
	err := cm.Question.Get(ctx, BankVersionKey(testID), &version)
	switch {
	case err == nil:
		return version, true
	case errors.Is(err, ErrCacheNotFound):
		return 0, true
	case errors.Is(err, ErrCacheNotAvailable):
		return 0, false
	default:
		slog.WarnContext(ctx, "Failed to read bank version", "error", err, "test_id", testID)
		return 0, false
	}
}

// InvalidateQuestionCache drops a question and moves the owning test to a new bank
// generation.
func InvalidateQuestionCache(ctx context.Context, cm *CacheManager, questionID, testID uint) {
	SafeDelete(ctx, cm.Question, QuestionKey(questionID))
	if _, err := cm.Question.Incr(ctx, BankVersionKey(testID)); err != nil && !errors.Is(err, ErrCacheNotAvailable) {
		slog.ErrorContext(ctx, "Failed to bump bank version", "error", err, "test_id", testID)
	}
}
