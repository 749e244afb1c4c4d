package services

import (
	"errors"
	"fmt"
)

var (
	ErrTestNotFound       = errors.New("test not found")
	ErrQuestionNotFound   = errors.New("question not found")
	ErrAttemptNotFound    = errors.New("attempt not found")
	ErrAttemptNotActive   = errors.New("attempt is not in progress")
	ErrDuplicateCandidate = errors.New("candidate listed more than once")

	// ErrConfigRace marks a lost create-if-absent race on the shuffle config. It is
	// recovered by reading the winner and never returned to callers.
	ErrConfigRace = errors.New("shuffle config created concurrently")

	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrPermissionDenied   = errors.New("permission denied")
)

// RetryableError wraps a persistence failure the caller may retry.
type RetryableError struct {
	Op  string
	Err error
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RetryableError) Is(target error) bool {
	return target == ErrStorageUnavailable
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

func retryable(op string, err error) error {
	return &RetryableError{Op: op, Err: err}
}

type PermissionError struct {
	UserID       string
	ResourceID   uint
	ResourceType string
	Action       string
	Reason       string
}

func NewPermissionError(userID string, resourceID uint, resourceType, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:       userID,
		ResourceID:   resourceID,
		ResourceType: resourceType,
		Action:       action,
		Reason:       reason,
	}
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: %s cannot %s %s %d: %s", e.UserID, e.Action, e.ResourceType, e.ResourceID, e.Reason)
}

func (e *PermissionError) Is(target error) bool {
	return target == ErrPermissionDenied
}
