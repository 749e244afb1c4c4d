package shuffle

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/SAP-F-2025/assessment-randomizer/internal/models"
)

var (
	ErrMissingSeedMaterial = errors.New("missing seed material")
	ErrConfigMismatch      = errors.New("shuffle config does not match question bank")
)

// SeedError reports which piece of seed material was missing.
type SeedError struct {
	Field string
}

func (e *SeedError) Error() string {
	return fmt.Sprintf("missing seed material: %s", e.Field)
}

func (e *SeedError) Unwrap() error {
	return ErrMissingSeedMaterial
}

// View is one question as a single candidate sees it.
type View struct {
	QuestionID uint                `json:"question_id"`
	Position   int                 `json:"position"`
	Text       string              `json:"text"`
	Type       models.QuestionType `json:"type"`
	Marks      float64             `json:"marks"`
	Options    []string            `json:"options,omitempty"`

	// DisplayCorrectAnswer is recomputed from the permuted options and must never reach
	// a client.
	DisplayCorrectAnswer string `json:"-"`

	OptionLabelMap models.LabelMap `json:"option_label_map,omitempty"`
}

type Result struct {
	Views  []View
	Config models.ShuffleConfig
}

func QuestionOrderSeed(candidateID string, testID uint) (string, error) {
	if strings.TrimSpace(candidateID) == "" {
		return "", &SeedError{Field: "candidate_id"}
	}
	if testID == 0 {
		return "", &SeedError{Field: "test_id"}
	}
	return fmt.Sprintf("%s:%d", candidateID, testID), nil
}

// OptionOrderSeed includes the display position so two questions with identical option
// lists do not share a permutation by seed coincidence.
func OptionOrderSeed(candidateID string, questionID, testID uint, displayPosition int) string {
	return fmt.Sprintf("%s:%d:%d:%d", candidateID, questionID, testID, displayPosition)
}

// Shuffle builds the candidate's paper for a test. The result depends only on the
// candidate, the test and the set of question IDs, not on the order questions arrive in.
func Shuffle(questions []*models.Question, candidateID string, testID uint) (*Result, error) {
	seed, err := QuestionOrderSeed(candidateID, testID)
	if err != nil {
		return nil, err
	}
	src, err := NewSource(seed)
	if err != nil {
		return nil, fmt.Errorf("failed to seed question order: %w", err)
	}

	ordered := Permute(canonicalOrder(questions), src)

	result := &Result{
		Views: make([]View, 0, len(ordered)),
		Config: models.ShuffleConfig{
			QuestionOrder:   make([]uint, 0, len(ordered)),
			OptionLabelMaps: make(map[uint]models.LabelMap),
		},
	}

	for i, q := range ordered {
		position := i + 1
		result.Config.QuestionOrder = append(result.Config.QuestionOrder, q.ID)

		if !q.HasOptions() {
			result.Views = append(result.Views, buildView(q, position, nil))
			continue
		}

		optSrc, err := NewSource(OptionOrderSeed(candidateID, q.ID, testID, position))
		if err != nil {
			return nil, fmt.Errorf("failed to seed options for question %d: %w", q.ID, err)
		}

		// perm[display] is the canonical index shown at that display slot
		perm := Perm(len(q.Options), optSrc)
		labels := make(models.LabelMap, len(perm))
		for display, canonical := range perm {
			labels[Label(canonical)] = Label(display)
		}

		result.Config.OptionLabelMaps[q.ID] = labels
		result.Views = append(result.Views, buildView(q, position, labels))
	}

	return result, nil
}

// Apply rebuilds a paper from a stored config without reshuffling. Questions deleted
// since the config was written are skipped; questions added since are not served.
func Apply(questions []*models.Question, cfg models.ShuffleConfig) ([]View, error) {
	byID := make(map[uint]*models.Question, len(questions))
	for _, q := range questions {
		if q != nil {
			byID[q.ID] = q
		}
	}

	views := make([]View, 0, len(cfg.QuestionOrder))
	for _, id := range cfg.QuestionOrder {
		q, ok := byID[id]
		if !ok {
			continue
		}
		position := len(views) + 1

		if !q.HasOptions() {
			views = append(views, buildView(q, position, nil))
			continue
		}

		labels, ok := cfg.OptionLabelMaps[id]
		if !ok {
			return nil, fmt.Errorf("%w: no label map for question %d", ErrConfigMismatch, id)
		}
		if err := CheckBijection(labels, len(q.Options)); err != nil {
			return nil, fmt.Errorf("question %d: %w", id, err)
		}
		views = append(views, buildView(q, position, labels))
	}

	return views, nil
}

func canonicalOrder(questions []*models.Question) []*models.Question {
	out := make([]*models.Question, 0, len(questions))
	for _, q := range questions {
		if q != nil {
			out = append(out, q)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// buildView expects labels to be a valid bijection for option-bearing questions.
func buildView(q *models.Question, position int, labels models.LabelMap) View {
	v := View{
		QuestionID: q.ID,
		Position:   position,
		Text:       q.Text,
		Type:       q.Type,
		Marks:      q.Marks,
	}

	if labels == nil {
		if q.Type == models.Numeric {
			v.DisplayCorrectAnswer = strings.TrimSpace(q.CorrectAnswer)
		}
		return v
	}

	v.Options = make([]string, len(q.Options))
	for canonical, value := range q.Options {
		display, _ := LabelIndex(labels[Label(canonical)])
		v.Options[display] = value
	}
	v.OptionLabelMap = labels
	v.DisplayCorrectAnswer = displayCorrectAnswer(q, v.Options)
	return v
}

// displayCorrectAnswer locates the correct value(s) by content in the permuted options.
// Multi-select answers are comma-joined in display order to mirror storage.
func displayCorrectAnswer(q *models.Question, options []string) string {
	if q.Type == models.SingleSelect {
		want := strings.TrimSpace(q.CorrectAnswer)
		for _, opt := range options {
			if strings.TrimSpace(opt) == want {
				return opt
			}
		}
		return ""
	}

	want := make(map[string]struct{})
	for _, v := range models.SplitList(q.CorrectAnswer) {
		want[v] = struct{}{}
	}
	var found []string
	for _, opt := range options {
		if _, ok := want[strings.TrimSpace(opt)]; ok {
			found = append(found, opt)
		}
	}
	return models.JoinList(found)
}
