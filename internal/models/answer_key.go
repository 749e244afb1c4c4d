package models

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrMalformedAnswerKey is returned when a stored correct answer cannot be parsed for
// its question type.
var ErrMalformedAnswerKey = errors.New("malformed answer key")

// AnswerKey is the parsed correct answer of a question. Exactly one of SingleKey,
// MultiKey and NumericKey implements it, matching the question type.
type AnswerKey interface {
	QuestionType() QuestionType
}

type SingleKey struct {
	Value string
}

type MultiKey struct {
	Values []string
}

type NumericKey struct {
	Value float64
}

func (SingleKey) QuestionType() QuestionType  { return SingleSelect }
func (MultiKey) QuestionType() QuestionType   { return MultiSelect }
func (NumericKey) QuestionType() QuestionType { return Numeric }

// AnswerKey parses CorrectAnswer according to the question type.
func (q *Question) AnswerKey() (AnswerKey, error) {
	raw := strings.TrimSpace(q.CorrectAnswer)

	switch q.Type {
	case SingleSelect:
		if raw == "" {
			return nil, fmt.Errorf("%w: empty single-select answer", ErrMalformedAnswerKey)
		}
		return SingleKey{Value: raw}, nil
	case MultiSelect:
		values := SplitList(raw)
		if len(values) == 0 {
			return nil, fmt.Errorf("%w: empty multi-select answer", ErrMalformedAnswerKey)
		}
		return MultiKey{Values: values}, nil
	case Numeric:
		v, err := ParseFinite(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: numeric answer %q", ErrMalformedAnswerKey, raw)
		}
		return NumericKey{Value: v}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported question type %q", ErrMalformedAnswerKey, q.Type)
	}
}

// ParseFinite parses a float and rejects NaN and infinities.
func ParseFinite(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a finite number", s)
	}
	return v, nil
}

// SplitList splits a comma-joined list, trimming entries and dropping empty ones.
func SplitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// JoinList is the inverse of SplitList for values that contain no commas.
func JoinList(values []string) string {
	return strings.Join(values, ",")
}

// Response is a candidate answer after reconciliation, expressed in canonical form.
type Response struct {
	Type     QuestionType `json:"type"`
	Answered bool         `json:"answered"`
	Selected []string     `json:"selected,omitempty"` // canonical option values
	Numeric  string       `json:"numeric,omitempty"`  // raw numeric text
}

// Canonical renders the response in the storage format of Question.CorrectAnswer.
func (r Response) Canonical() string {
	if !r.Answered {
		return ""
	}
	if r.Type == Numeric {
		return r.Numeric
	}
	return JoinList(r.Selected)
}
