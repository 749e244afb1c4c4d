package grading

import "github.com/SAP-F-2025/assessment-randomizer/internal/models"

type Summary struct {
	TotalScore      float64 `json:"total_score"`
	TotalPossible   float64 `json:"total_possible"`
	CorrectCount    int     `json:"correct_count"`
	IncorrectCount  int     `json:"incorrect_count"`
	UnansweredCount int     `json:"unanswered_count"`
}

// Summarize aggregates outcomes over the questions on a paper. Questions with no outcome
// count as unanswered; outcomes for questions not on the paper are ignored.
func Summarize(paper []*models.Question, outcomes map[uint]Outcome) Summary {
	var s Summary
	for _, q := range paper {
		if q == nil {
			continue
		}
		s.TotalPossible += q.Marks

		o, ok := outcomes[q.ID]
		switch {
		case !ok || !o.Answered:
			s.UnansweredCount++
		case o.IsCorrect:
			s.CorrectCount++
		default:
			s.IncorrectCount++
		}
		if ok {
			s.TotalScore += o.MarksObtained
		}
	}
	return s
}
