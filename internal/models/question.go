package models

import (
	"time"

	"gorm.io/datatypes"
)

type QuestionType string

const (
	SingleSelect QuestionType = "single_select"
	MultiSelect  QuestionType = "multi_select"
	Numeric      QuestionType = "numeric"
)

// IsOptionBased reports whether answers for this type are drawn from an option list.
func (t QuestionType) IsOptionBased() bool {
	return t == SingleSelect || t == MultiSelect
}

// Test owns a canonical question bank. Shuffling never crosses tests.
type Test struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Title     string    `json:"title" gorm:"not null;size:200"`
	Duration  int       `json:"duration"` // minutes
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Questions []Question `json:"questions,omitempty" gorm:"foreignKey:TestID"`
}

// Question is the canonical, storage-of-record form of a question. Candidates only
// ever see permuted copies of it; grading always runs against this record.
type Question struct {
	ID     uint         `json:"id" gorm:"primaryKey"`
	TestID uint         `json:"test_id" gorm:"not null;index"`
	Text   string       `json:"text" gorm:"type:text;not null"`
	Type   QuestionType `json:"type" gorm:"not null;size:32"`

	// Options is empty for numeric questions.
	Options datatypes.JSONSlice[string] `json:"options,omitempty" gorm:"type:jsonb"`

	// CorrectAnswer keeps the legacy storage format: a single option value, a
	// comma-joined list of option values, or a number rendered as text. Candidates
	// receive PaperQuestion, which has no such field.
	CorrectAnswer string `json:"correct_answer" gorm:"type:text;not null"`

	Marks         float64 `json:"marks" gorm:"not null;default:1"`
	NegativeMarks float64 `json:"negative_marks" gorm:"not null;default:0"`

	// Position is the authoring order inside the test, not a display order.
	Position int `json:"position" gorm:"default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OptionList returns a copy of the canonical options.
func (q *Question) OptionList() []string {
	if len(q.Options) == 0 {
		return nil
	}
	out := make([]string, len(q.Options))
	copy(out, q.Options)
	return out
}

// HasOptions reports whether the question carries a shufflable option list.
func (q *Question) HasOptions() bool {
	return q.Type.IsOptionBased() && len(q.Options) > 0
}
