package models

import (
	"time"

	"gorm.io/datatypes"
)

// LabelMap maps a canonical option label to the label that option occupies on the
// candidate's paper, e.g. {"A": "C", "B": "A", "C": "B"}.
type LabelMap map[string]string

// ShuffleConfig records what one candidate saw for one attempt. It is created once and
// never regenerated.
type ShuffleConfig struct {
	QuestionOrder   []uint            `json:"question_order"`
	OptionLabelMaps map[uint]LabelMap `json:"option_label_maps"`
}

// Contains reports whether questionID is on the paper.
func (c ShuffleConfig) Contains(questionID uint) bool {
	for _, id := range c.QuestionOrder {
		if id == questionID {
			return true
		}
	}
	return false
}

// AttemptShuffleConfig is the single-row storage form of a ShuffleConfig. The whole
// config lives in one jsonb document so question order and label maps commit together.
type AttemptShuffleConfig struct {
	ID          uint                              `json:"id" gorm:"primaryKey"`
	AttemptID   uint                              `json:"attempt_id" gorm:"not null;uniqueIndex"`
	CandidateID string                            `json:"candidate_id" gorm:"not null;size:255"`
	TestID      uint                              `json:"test_id" gorm:"not null;index"`
	Config      datatypes.JSONType[ShuffleConfig] `json:"config" gorm:"type:jsonb;not null"`
	CreatedAt   time.Time                         `json:"created_at"`
}

func NewAttemptShuffleConfig(attempt *Attempt, cfg ShuffleConfig) *AttemptShuffleConfig {
	return &AttemptShuffleConfig{
		AttemptID:   attempt.ID,
		CandidateID: attempt.CandidateID,
		TestID:      attempt.TestID,
		Config:      datatypes.NewJSONType(cfg),
	}
}
