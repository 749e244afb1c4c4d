package models

import (
	"encoding/json"
	"time"
)

// ===== REQUESTS =====

type TestCreateRequest struct {
	Title    string `json:"title" validate:"required,not_blank,max=200"`
	Duration int    `json:"duration" validate:"min=0,max=600"`
}

type QuestionCreateRequest struct {
	Text          string       `json:"text" validate:"required,not_blank"`
	Type          QuestionType `json:"type" validate:"required,oneof=single_select multi_select numeric"`
	Options       []string     `json:"options" validate:"omitempty,max=26,dive,required"`
	CorrectAnswer string       `json:"correct_answer" validate:"required"`
	Marks         float64      `json:"marks" validate:"gt=0"`
	NegativeMarks float64      `json:"negative_marks" validate:"min=0"`
	Position      int          `json:"position" validate:"min=0"`
}

type AttemptStartRequest struct {
	TestID uint `json:"test_id" validate:"required"`
}

// SubmitAnswerRequest carries the canonical option value(s) or a numeric string. Display
// labels are never accepted.
type SubmitAnswerRequest struct {
	QuestionID uint            `json:"question_id" validate:"required"`
	Value      json.RawMessage `json:"value"`
}

type ShuffleReportRequest struct {
	CandidateIDs []string `json:"candidate_ids" validate:"required,min=1,max=500,unique,dive,required,not_blank"`
}

// ===== RESPONSES =====

// PaperQuestion is the client view of one question. It never includes the correct answer.
type PaperQuestion struct {
	QuestionID uint         `json:"question_id"`
	Position   int          `json:"position"`
	Text       string       `json:"text"`
	Type       QuestionType `json:"type"`
	Marks      float64      `json:"marks"`
	Options    []string     `json:"options,omitempty"`
}

type AttemptPaper struct {
	AttemptID uint            `json:"attempt_id"`
	TestID    uint            `json:"test_id"`
	Status    AttemptStatus   `json:"status"`
	StartedAt time.Time       `json:"started_at"`
	Resumed   bool            `json:"resumed"`
	Questions []PaperQuestion `json:"questions"`
}

type AnswerResult struct {
	AttemptID     uint    `json:"attempt_id"`
	QuestionID    uint    `json:"question_id"`
	Answered      bool    `json:"answered"`
	IsCorrect     bool    `json:"is_correct"`
	MarksObtained float64 `json:"marks_obtained"`
}

type AttemptSummary struct {
	AttemptID       uint       `json:"attempt_id"`
	TestID          uint       `json:"test_id"`
	CandidateID     string     `json:"candidate_id"`
	TotalScore      float64    `json:"total_score"`
	TotalPossible   float64    `json:"total_possible"`
	CorrectCount    int        `json:"correct_count"`
	IncorrectCount  int        `json:"incorrect_count"`
	UnansweredCount int        `json:"unanswered_count"`
	CompletedAt     *time.Time `json:"completed_at"`
}

// SummaryFromAttempt rebuilds a summary from a completed attempt row.
func SummaryFromAttempt(a *Attempt) *AttemptSummary {
	return &AttemptSummary{
		AttemptID:       a.ID,
		TestID:          a.TestID,
		CandidateID:     a.CandidateID,
		TotalScore:      a.TotalScore,
		TotalPossible:   a.TotalPossible,
		CorrectCount:    a.CorrectCount,
		IncorrectCount:  a.IncorrectCount,
		UnansweredCount: a.UnansweredCount,
		CompletedAt:     a.CompletedAt,
	}
}
