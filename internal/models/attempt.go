package models

import (
	"time"

	"gorm.io/datatypes"
)

type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "in_progress"
	AttemptCompleted  AttemptStatus = "completed"
)

type Attempt struct {
	ID          uint          `json:"id" gorm:"primaryKey"`
	TestID      uint          `json:"test_id" gorm:"not null;index:idx_candidate_test"`
	CandidateID string        `json:"candidate_id" gorm:"not null;size:255;index:idx_candidate_test"`
	Status      AttemptStatus `json:"status" gorm:"default:in_progress;index"`

	// Timing
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`

	// Scoring, filled on completion
	TotalScore      float64 `json:"total_score"`
	TotalPossible   float64 `json:"total_possible"`
	CorrectCount    int     `json:"correct_count"`
	IncorrectCount  int     `json:"incorrect_count"`
	UnansweredCount int     `json:"unanswered_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *Attempt) IsActive() bool {
	return a.Status == AttemptInProgress
}

// AttemptAnswer holds the latest graded submission for one question of one attempt.
// The (attempt_id, question_id) pair is unique; resubmissions overwrite in place.
type AttemptAnswer struct {
	ID         uint `json:"id" gorm:"primaryKey"`
	AttemptID  uint `json:"attempt_id" gorm:"not null;uniqueIndex:idx_attempt_question"`
	QuestionID uint `json:"question_id" gorm:"not null;uniqueIndex:idx_attempt_question"`

	// SubmittedValue is the raw value exactly as the client sent it.
	SubmittedValue datatypes.JSON `json:"submitted_value" gorm:"type:jsonb"`

	IsCorrect     bool      `json:"is_correct"`
	MarksObtained float64   `json:"marks_obtained"`
	Answered      bool      `json:"answered"`
	AnsweredAt    time.Time `json:"answered_at"`
	Finalized     bool      `json:"finalized" gorm:"default:false"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
