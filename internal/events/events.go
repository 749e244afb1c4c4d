package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/SAP-F-2025/assessment-randomizer/internal/models"
)

const Source = "assessment-randomizer"

const (
	AnswerGraded     = "answer.graded"
	AttemptCompleted = "attempt.completed"
)

// Event is the envelope written to the event topic
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// EventPublisher publishes domain events. Implementations must be safe for concurrent use.
type EventPublisher interface {
	Publish(ctx context.Context, event *Event) error
	Close() error
}

func NewEvent(eventType string, data interface{}) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    Source,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

type AnswerGradedData struct {
	AttemptID     uint    `json:"attempt_id"`
	CandidateID   string  `json:"candidate_id"`
	QuestionID    uint    `json:"question_id"`
	Answered      bool    `json:"answered"`
	IsCorrect     bool    `json:"is_correct"`
	MarksObtained float64 `json:"marks_obtained"`
}

func NewAnswerGradedEvent(candidateID string, result *models.AnswerResult) *Event {
	return NewEvent(AnswerGraded, AnswerGradedData{
		AttemptID:     result.AttemptID,
		CandidateID:   candidateID,
		QuestionID:    result.QuestionID,
		Answered:      result.Answered,
		IsCorrect:     result.IsCorrect,
		MarksObtained: result.MarksObtained,
	})
}

func NewAttemptCompletedEvent(summary *models.AttemptSummary) *Event {
	return NewEvent(AttemptCompleted, summary)
}
