package grading

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/SAP-F-2025/assessment-randomizer/internal/models"
)

// NumericTolerance is the absolute tolerance for numeric answers.
const NumericTolerance = 0.01

// floating point slack so answers exactly one tolerance away still match
const toleranceSlack = 1e-9

type Outcome struct {
	Answered      bool    `json:"answered"`
	IsCorrect     bool    `json:"is_correct"`
	MarksObtained float64 `json:"marks_obtained"`
}

// Grade scores a reconciled response against the canonical question. It has no side
// effects; grading the same input twice gives the same outcome.
func Grade(resp models.Response, q *models.Question) (Outcome, error) {
	key, err := q.AnswerKey()
	if err != nil {
		return Outcome{}, &GradingDataError{QuestionID: q.ID, Err: err}
	}
	if resp.Type != "" && resp.Type != q.Type {
		return Outcome{}, &GradingDataError{
			QuestionID: q.ID,
			Err:        fmt.Errorf("response type %q does not match question type %q", resp.Type, q.Type),
		}
	}
	if err := checkKeyAgainstOptions(key, q); err != nil {
		return Outcome{}, &GradingDataError{QuestionID: q.ID, Err: err}
	}

	switch k := key.(type) {
	case models.SingleKey:
		return gradeSingle(resp, k, q), nil
	case models.MultiKey:
		return gradeMulti(resp, k, q), nil
	case models.NumericKey:
		return gradeNumeric(resp, k, q), nil
	default:
		return Outcome{}, &GradingDataError{QuestionID: q.ID, Err: fmt.Errorf("unsupported answer key %T", key)}
	}
}

// wrong single-select answers lose negative marks; unanswered ones score zero
func gradeSingle(resp models.Response, key models.SingleKey, q *models.Question) Outcome {
	if !resp.Answered || len(resp.Selected) == 0 {
		return Outcome{}
	}
	if strings.TrimSpace(resp.Selected[0]) == key.Value {
		return Outcome{Answered: true, IsCorrect: true, MarksObtained: q.Marks}
	}
	return Outcome{Answered: true, MarksObtained: penalty(q.NegativeMarks)}
}

// multi-select needs an exact set match and is never negatively marked
func gradeMulti(resp models.Response, key models.MultiKey, q *models.Question) Outcome {
	if !resp.Answered || len(resp.Selected) == 0 {
		return Outcome{}
	}

	want := normalizedSet(key.Values)
	got := normalizedSet(resp.Selected)
	if len(want) != len(got) {
		return Outcome{Answered: true}
	}
	for v := range got {
		if _, ok := want[v]; !ok {
			return Outcome{Answered: true}
		}
	}
	return Outcome{Answered: true, IsCorrect: true, MarksObtained: q.Marks}
}

func gradeNumeric(resp models.Response, key models.NumericKey, q *models.Question) Outcome {
	raw := strings.TrimSpace(resp.Numeric)
	if !resp.Answered || raw == "" {
		return Outcome{}
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return Outcome{Answered: true}
	}
	if math.Abs(v-key.Value) <= NumericTolerance+toleranceSlack {
		return Outcome{Answered: true, IsCorrect: true, MarksObtained: q.Marks}
	}
	return Outcome{Answered: true}
}

// checkKeyAgainstOptions requires every correct value of an option-bearing question to
// be one of its options, compared the way that question type is graded.
func checkKeyAgainstOptions(key models.AnswerKey, q *models.Question) error {
	switch key.(type) {
	case models.SingleKey, models.MultiKey:
	default:
		return nil
	}

	if len(q.Options) == 0 {
		return fmt.Errorf("%s question has no options", q.Type)
	}

	switch k := key.(type) {
	case models.SingleKey:
		for _, opt := range q.OptionList() {
			if strings.TrimSpace(opt) == k.Value {
				return nil
			}
		}
		return fmt.Errorf("correct answer %q is not an option", k.Value)
	case models.MultiKey:
		options := normalizedSet(q.OptionList())
		nonBlank := 0
		for _, opt := range q.OptionList() {
			if strings.TrimSpace(opt) != "" {
				nonBlank++
			}
		}
		if len(options) != nonBlank {
			return fmt.Errorf("options are not distinct ignoring case")
		}
		for _, v := range k.Values {
			if _, ok := options[strings.ToLower(strings.TrimSpace(v))]; !ok {
				return fmt.Errorf("correct answer %q is not an option", v)
			}
		}
	}
	return nil
}

func normalizedSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
			set[v] = struct{}{}
		}
	}
	return set
}

func penalty(negativeMarks float64) float64 {
	if negativeMarks <= 0 {
		return 0
	}
	return -negativeMarks
}
