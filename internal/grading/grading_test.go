package grading

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/SAP-F-2025/assessment-randomizer/internal/models"
	"github.com/SAP-F-2025/assessment-randomizer/internal/shuffle"
)

func complexityQuestion() *models.Question {
	return &models.Question{
		ID: 1, TestID: 10, Type: models.SingleSelect,
		Options:       []string{"O(n)", "O(log n)", "O(n log n)", "O(1)"},
		CorrectAnswer: "O(log n)", Marks: 4, NegativeMarks: 1,
	}
}

func sortsQuestion() *models.Question {
	return &models.Question{
		ID: 2, TestID: 10, Type: models.MultiSelect,
		Options:       []string{"Bubble Sort", "Counting Sort", "Quick Sort", "Merge Sort"},
		CorrectAnswer: "Bubble Sort,Quick Sort,Merge Sort", Marks: 3, NegativeMarks: 1,
	}
}

func numericQuestion() *models.Question {
	return &models.Question{ID: 3, TestID: 10, Type: models.Numeric, CorrectAnswer: "101", Marks: 2, NegativeMarks: 1}
}

func paperConfig(t *testing.T, qs ...*models.Question) models.ShuffleConfig {
	t.Helper()
	res, err := shuffle.Shuffle(qs, "cand-1", 10)
	if err != nil {
		t.Fatal(err)
	}
	return res.Config
}

func TestGradeScenarios(t *testing.T) {
	single, multi, numeric := complexityQuestion(), sortsQuestion(), numericQuestion()
	cfg := paperConfig(t, single, multi, numeric)

	tests := []struct {
		name string
		q    *models.Question
		raw  string
		want Outcome
	}{
		{name: "single correct", q: single, raw: `"O(log n)"`, want: Outcome{Answered: true, IsCorrect: true, MarksObtained: 4}},
		{name: "single wrong is negatively marked", q: single, raw: `"O(n)"`, want: Outcome{Answered: true, MarksObtained: -1}},
		{name: "single as list", q: single, raw: `["O(log n)"]`, want: Outcome{Answered: true, IsCorrect: true, MarksObtained: 4}},
		{name: "single padded", q: single, raw: `"  O(log n) "`, want: Outcome{Answered: true, IsCorrect: true, MarksObtained: 4}},
		{name: "single unanswered", q: single, raw: `""`, want: Outcome{}},
		{name: "single null", q: single, raw: `null`, want: Outcome{}},
		{name: "multi partial scores zero", q: multi, raw: `["Quick Sort","Merge Sort"]`, want: Outcome{Answered: true}},
		{name: "multi exact", q: multi, raw: `["Merge Sort","Bubble Sort","Quick Sort"]`, want: Outcome{Answered: true, IsCorrect: true, MarksObtained: 3}},
		{name: "multi comma string", q: multi, raw: `"Quick Sort, Merge Sort,Bubble Sort"`, want: Outcome{Answered: true, IsCorrect: true, MarksObtained: 3}},
		{name: "multi duplicates collapse", q: multi, raw: `["Quick Sort","Quick Sort","Merge Sort","Bubble Sort"]`, want: Outcome{Answered: true, IsCorrect: true, MarksObtained: 3}},
		{name: "multi superset", q: multi, raw: `["Quick Sort","Merge Sort","Bubble Sort","Counting Sort"]`, want: Outcome{Answered: true}},
		{name: "multi empty list", q: multi, raw: `[]`, want: Outcome{}},
		{name: "numeric within tolerance", q: numeric, raw: `"101.0"`, want: Outcome{Answered: true, IsCorrect: true, MarksObtained: 2}},
		{name: "numeric json number", q: numeric, raw: `101.01`, want: Outcome{Answered: true, IsCorrect: true, MarksObtained: 2}},
		{name: "numeric outside tolerance", q: numeric, raw: `"101.02"`, want: Outcome{Answered: true}},
		{name: "numeric unparsable", q: numeric, raw: `"about a hundred"`, want: Outcome{Answered: true}},
		{name: "numeric unanswered", q: numeric, raw: ``, want: Outcome{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := Reconcile(json.RawMessage(tt.raw), tt.q, cfg)
			if err != nil {
				t.Fatalf("Reconcile() error = %v", err)
			}
			got, err := Grade(resp, tt.q)
			if err != nil {
				t.Fatalf("Grade() error = %v", err)
			}
			if got != tt.want {
				t.Fatalf("Grade() = %+v, want %+v", got, tt.want)
			}

			again, _ := Grade(resp, tt.q)
			if again != got {
				t.Fatalf("grading not idempotent: %+v then %+v", got, again)
			}
		})
	}
}

func TestGradeSingleWithoutNegativeMarks(t *testing.T) {
	q := complexityQuestion()
	q.NegativeMarks = 0
	got, err := Grade(models.Response{Type: q.Type, Answered: true, Selected: []string{"O(1)"}}, q)
	if err != nil {
		t.Fatal(err)
	}
	if got.MarksObtained != 0 || got.IsCorrect {
		t.Fatalf("Grade() = %+v", got)
	}
}

func TestGradeDataErrors(t *testing.T) {
	tests := []struct {
		name string
		q    *models.Question
		resp models.Response
	}{
		{
			name: "numeric key not a number",
			q:    &models.Question{ID: 7, Type: models.Numeric, CorrectAnswer: "n/a", Marks: 1},
			resp: models.Response{Type: models.Numeric, Answered: true, Numeric: "1"},
		},
		{
			name: "single key not an option",
			q:    &models.Question{ID: 8, Type: models.SingleSelect, Options: []string{"a", "b"}, CorrectAnswer: "c", Marks: 1},
			resp: models.Response{Type: models.SingleSelect, Answered: true, Selected: []string{"a"}},
		},
		{
			name: "multi key partly missing",
			q:    &models.Question{ID: 9, Type: models.MultiSelect, Options: []string{"a", "b"}, CorrectAnswer: "a,z", Marks: 1},
			resp: models.Response{Type: models.MultiSelect, Answered: true, Selected: []string{"a"}},
		},
		{
			name: "multi options equal ignoring case",
			q:    &models.Question{ID: 10, Type: models.MultiSelect, Options: []string{"Apple", "apple", "Pear"}, CorrectAnswer: "Apple", Marks: 2},
			resp: models.Response{Type: models.MultiSelect, Answered: true, Selected: []string{"apple"}},
		},
		{
			name: "single key differs from option by case",
			q:    &models.Question{ID: 11, Type: models.SingleSelect, Options: []string{"Stack", "Queue"}, CorrectAnswer: "stack", Marks: 1},
			resp: models.Response{Type: models.SingleSelect, Answered: true, Selected: []string{"Stack"}},
		},
		{
			name: "numeric key not finite",
			q:    &models.Question{ID: 12, Type: models.Numeric, CorrectAnswer: "NaN", Marks: 1},
			resp: models.Response{Type: models.Numeric, Answered: true, Numeric: "1"},
		},
		{
			name: "response type differs",
			q:    numericQuestion(),
			resp: models.Response{Type: models.SingleSelect, Answered: true, Selected: []string{"101"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Grade(tt.resp, tt.q)
			if !errors.Is(err, ErrGradingData) {
				t.Fatalf("Grade() error = %v, want ErrGradingData", err)
			}
			var gde *GradingDataError
			if !errors.As(err, &gde) || gde.QuestionID != tt.q.ID {
				t.Fatalf("error = %#v, want GradingDataError for question %d", err, tt.q.ID)
			}
		})
	}
}

func TestReconcileMismatch(t *testing.T) {
	single, multi := complexityQuestion(), sortsQuestion()
	cfg := paperConfig(t, single, multi)

	broken := paperConfig(t, single, multi)
	broken.OptionLabelMaps[single.ID] = models.LabelMap{"A": "A", "B": "A", "C": "C", "D": "D"}

	other := &models.Question{ID: 77, Type: models.SingleSelect, Options: []string{"x", "y"}, CorrectAnswer: "x", Marks: 1}

	tests := []struct {
		name string
		q    *models.Question
		cfg  models.ShuffleConfig
		raw  string
	}{
		{name: "value not an option", q: single, cfg: cfg, raw: `"O(n^2)"`},
		{name: "display label submitted", q: single, cfg: cfg, raw: `"B"`},
		{name: "one of several values unknown", q: multi, cfg: cfg, raw: `["Quick Sort","Heap Sort"]`},
		{name: "several values for single select", q: single, cfg: cfg, raw: `["O(n)","O(1)"]`},
		{name: "question not on paper", q: other, cfg: cfg, raw: `"x"`},
		{name: "label map not a bijection", q: single, cfg: broken, raw: `"O(n)"`},
		{name: "unreadable payload", q: single, cfg: cfg, raw: `{"value":"O(n)"}`},
		{name: "numeric list", q: numericQuestion(), cfg: paperConfig(t, numericQuestion()), raw: `["1","2"]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Reconcile(json.RawMessage(tt.raw), tt.q, tt.cfg)
			if !errors.Is(err, ErrReconciliationMismatch) {
				t.Fatalf("Reconcile() error = %v, want ErrReconciliationMismatch", err)
			}
			var re *ReconciliationError
			if !errors.As(err, &re) || re.QuestionID != tt.q.ID {
				t.Fatalf("error = %#v, want ReconciliationError for question %d", err, tt.q.ID)
			}
		})
	}
}

func TestReconcileLabelMapErrorUnwraps(t *testing.T) {
	q := complexityQuestion()
	cfg := paperConfig(t, q)
	delete(cfg.OptionLabelMaps, q.ID)

	_, err := Reconcile(json.RawMessage(`"O(n)"`), q, cfg)
	if !errors.Is(err, shuffle.ErrConfigMismatch) {
		t.Fatalf("error = %v, want wrapped ErrConfigMismatch", err)
	}
}

func TestReconcileReturnsCanonicalValues(t *testing.T) {
	q := &models.Question{
		ID: 5, Type: models.MultiSelect,
		Options:       []string{" padded ", "plain"},
		CorrectAnswer: "padded,plain", Marks: 1,
	}
	cfg := paperConfig(t, q)

	resp, err := Reconcile(json.RawMessage(`["padded","plain"]`), q, cfg)
	if err != nil {
		t.Fatal(err)
	}
	want := models.Response{Type: models.MultiSelect, Answered: true, Selected: []string{" padded ", "plain"}}
	if !reflect.DeepEqual(resp, want) {
		t.Fatalf("Reconcile() = %+v, want %+v", resp, want)
	}
	if got := resp.Canonical(); got != " padded ,plain" {
		t.Fatalf("Canonical() = %q", got)
	}
}

func TestReconcileIsShuffleInvariant(t *testing.T) {
	q := complexityQuestion()
	for _, candidate := range []string{"a", "b", "c", "d", "e"} {
		res, err := shuffle.Shuffle([]*models.Question{q}, candidate, 10)
		if err != nil {
			t.Fatal(err)
		}
		resp, err := Reconcile(json.RawMessage(`"O(log n)"`), q, res.Config)
		if err != nil {
			t.Fatal(err)
		}
		out, err := Grade(resp, q)
		if err != nil {
			t.Fatal(err)
		}
		if !out.IsCorrect {
			t.Fatalf("candidate %s: correct answer graded wrong", candidate)
		}
	}
}

func TestSummarize(t *testing.T) {
	paper := []*models.Question{complexityQuestion(), sortsQuestion(), numericQuestion(), {ID: 4, Marks: 1}}
	outcomes := map[uint]Outcome{
		1:  {Answered: true, MarksObtained: -1},
		2:  {Answered: true, IsCorrect: true, MarksObtained: 3},
		3:  {},
		99: {Answered: true, IsCorrect: true, MarksObtained: 50},
	}

	got := Summarize(paper, outcomes)
	want := Summary{TotalScore: 2, TotalPossible: 10, CorrectCount: 1, IncorrectCount: 1, UnansweredCount: 2}
	if got != want {
		t.Fatalf("Summarize() = %+v, want %+v", got, want)
	}
}
