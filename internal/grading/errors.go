package grading

import (
	"errors"
	"fmt"
)

var (
	ErrReconciliationMismatch = errors.New("submitted answer does not match the candidate's paper")
	ErrGradingData            = errors.New("invalid grading data")
)

// ReconciliationError rejects a submission that cannot be mapped onto the canonical
// question. It is never scored.
type ReconciliationError struct {
	QuestionID uint
	Reason     string
	Err        error
}

func (e *ReconciliationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("question %d: %s: %v", e.QuestionID, e.Reason, e.Err)
	}
	return fmt.Sprintf("question %d: %s", e.QuestionID, e.Reason)
}

func (e *ReconciliationError) Is(target error) bool {
	return target == ErrReconciliationMismatch
}

func (e *ReconciliationError) Unwrap() error {
	return e.Err
}

// GradingDataError reports a canonical question whose answer key cannot be used.
type GradingDataError struct {
	QuestionID uint
	Err        error
}

func (e *GradingDataError) Error() string {
	return fmt.Sprintf("question %d has invalid grading data: %v", e.QuestionID, e.Err)
}

func (e *GradingDataError) Is(target error) bool {
	return target == ErrGradingData
}

func (e *GradingDataError) Unwrap() error {
	return e.Err
}

func mismatch(questionID uint, reason string, err error) error {
	return &ReconciliationError{QuestionID: questionID, Reason: reason, Err: err}
}
