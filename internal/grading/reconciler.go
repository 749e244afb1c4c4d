package grading

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/SAP-F-2025/assessment-randomizer/internal/models"
	"github.com/SAP-F-2025/assessment-randomizer/internal/shuffle"
)

// Reconcile turns a submitted value into canonical form. Option-bearing questions are
// answered with option content, never display labels, so the canonical value is the
// submitted value itself; the label map is only checked for consistency.
func Reconcile(raw json.RawMessage, q *models.Question, cfg models.ShuffleConfig) (models.Response, error) {
	resp := models.Response{Type: q.Type}

	if !cfg.Contains(q.ID) {
		return resp, mismatch(q.ID, "question is not on this paper", nil)
	}

	values, err := decodeValues(raw, q.Type)
	if err != nil {
		return resp, mismatch(q.ID, "unreadable answer", err)
	}
	if len(values) == 0 {
		return resp, nil
	}

	if q.Type == models.Numeric {
		if len(values) != 1 {
			return resp, mismatch(q.ID, "numeric answer must be a single value", nil)
		}
		resp.Answered = true
		resp.Numeric = values[0]
		return resp, nil
	}

	if !q.HasOptions() {
		return resp, mismatch(q.ID, fmt.Sprintf("question type %q has no options", q.Type), nil)
	}
	if err := shuffle.CheckBijection(cfg.OptionLabelMaps[q.ID], len(q.Options)); err != nil {
		return resp, mismatch(q.ID, "label map out of sync", err)
	}
	if q.Type == models.SingleSelect && len(values) > 1 {
		return resp, mismatch(q.ID, "single-select answer has several values", nil)
	}

	canonical := make(map[string]string, len(q.Options))
	for _, opt := range q.Options {
		canonical[strings.TrimSpace(opt)] = opt
	}

	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		opt, ok := canonical[v]
		if !ok {
			return resp, mismatch(q.ID, fmt.Sprintf("value %q is not an option", v), nil)
		}
		if _, dup := seen[opt]; dup {
			continue
		}
		seen[opt] = struct{}{}
		resp.Selected = append(resp.Selected, opt)
	}
	resp.Answered = true
	return resp, nil
}

// decodeValues accepts a string list, a string or a number, in that order. Blank entries
// are dropped; an empty result means the question was left unanswered.
func decodeValues(raw json.RawMessage, t models.QuestionType) ([]string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	var list []string
	if err := json.Unmarshal(trimmed, &list); err == nil {
		return compact(list), nil
	}

	var single string
	if err := json.Unmarshal(trimmed, &single); err == nil {
		if t == models.MultiSelect {
			return models.SplitList(single), nil
		}
		return compact([]string{single}), nil
	}

	var number json.Number
	if err := json.Unmarshal(trimmed, &number); err == nil {
		return []string{number.String()}, nil
	}

	return nil, fmt.Errorf("expected string, list of strings or number")
}

func compact(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
