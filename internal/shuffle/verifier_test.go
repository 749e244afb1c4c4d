package shuffle

import (
	"fmt"
	"testing"

	"github.com/SAP-F-2025/assessment-randomizer/internal/models"
)

func TestSignature(t *testing.T) {
	a := View{Options: []string{"x", "y"}, OptionLabelMap: models.LabelMap{"A": "B", "B": "A"}}
	b := View{Options: []string{"x", "y"}, OptionLabelMap: models.LabelMap{"A": "B", "B": "A"}}
	c := View{Options: []string{"x,y"}, OptionLabelMap: models.LabelMap{"A": "A"}}

	if Signature(a) != Signature(b) {
		t.Fatal("identical views produced different signatures")
	}
	if Signature(a) == Signature(c) {
		t.Fatal("option boundaries not preserved in signature")
	}
}

func TestVerify(t *testing.T) {
	same := models.LabelMap{"A": "B", "B": "A", "C": "C"}
	tests := []struct {
		name      string
		views     []View
		wantOK    bool
		wantPairs [][]uint
	}{
		{
			name: "distinct option sets",
			views: []View{
				{QuestionID: 1, Options: []string{"a", "b", "c"}, OptionLabelMap: same},
				{QuestionID: 2, Options: []string{"d", "e", "f"}, OptionLabelMap: same},
			},
			wantOK: true,
		},
		{
			name: "same options same permutation",
			views: []View{
				{QuestionID: 1, Options: []string{"b", "a", "c"}, OptionLabelMap: same},
				{QuestionID: 2, Options: []string{"b", "a", "c"}, OptionLabelMap: same},
				{QuestionID: 3, Options: []string{"x", "y", "z"}, OptionLabelMap: same},
			},
			wantOK:    false,
			wantPairs: [][]uint{{1, 2}},
		},
		{
			name: "numeric questions ignored",
			views: []View{
				{QuestionID: 1, Type: models.Numeric},
				{QuestionID: 2, Type: models.Numeric},
			},
			wantOK: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, collisions := Verify(tt.views)
			if ok != tt.wantOK {
				t.Fatalf("Verify() = %v, want %v", ok, tt.wantOK)
			}
			if len(collisions) != len(tt.wantPairs) {
				t.Fatalf("got %d collisions, want %d", len(collisions), len(tt.wantPairs))
			}
			for i, c := range collisions {
				if fmt.Sprint(c.QuestionIDs) != fmt.Sprint(tt.wantPairs[i]) {
					t.Fatalf("collision %d = %v, want %v", i, c.QuestionIDs, tt.wantPairs[i])
				}
			}
		})
	}
}

func TestVerifyRandomPapers(t *testing.T) {
	qs := []*models.Question{
		{ID: 1, Type: models.SingleSelect, Options: []string{"red", "green", "blue", "black"}, CorrectAnswer: "red", Marks: 1},
		{ID: 2, Type: models.SingleSelect, Options: []string{"cat", "dog", "cow"}, CorrectAnswer: "dog", Marks: 1},
		{ID: 3, Type: models.MultiSelect, Options: []string{"2", "3", "4", "5", "6"}, CorrectAnswer: "2,3,5", Marks: 1},
		{ID: 4, Type: models.Numeric, CorrectAnswer: "3.14", Marks: 1},
	}
	for i := 0; i < 150; i++ {
		candidate := fmt.Sprintf("c%03d", i)
		testID := uint(i%7 + 1)
		res, err := Shuffle(qs, candidate, testID)
		if err != nil {
			t.Fatal(err)
		}
		if ok, collisions := Verify(res.Views); !ok {
			t.Fatalf("%s/%d: unexpected collisions %+v", candidate, testID, collisions)
		}
	}
}

func TestVerifyAcrossCandidates(t *testing.T) {
	qs := []*models.Question{
		{ID: 1, Type: models.SingleSelect, Options: []string{"O(n)", "O(log n)", "O(n log n)", "O(1)"}, CorrectAnswer: "O(log n)", Marks: 1},
		{ID: 2, Type: models.Numeric, CorrectAnswer: "101", Marks: 1},
	}

	papers := map[string][]View{}
	for i := 0; i < 50; i++ {
		candidate := fmt.Sprintf("student-%d", i)
		res, err := Shuffle(qs, candidate, 3)
		if err != nil {
			t.Fatal(err)
		}
		papers[candidate] = res.Views
	}

	report := VerifyAcrossCandidates(papers)
	if report.Candidates != 50 {
		t.Fatalf("Candidates = %d, want 50", report.Candidates)
	}
	if len(report.Questions) != 1 {
		t.Fatalf("got %d question entries, want only the option-bearing one", len(report.Questions))
	}
	q := report.Questions[0]
	if q.QuestionID != 1 || q.Candidates != 50 {
		t.Fatalf("unexpected entry %+v", q)
	}
	if q.DistinctSignatures < 2 {
		t.Fatalf("all candidates saw the same arrangement")
	}
	// 50 candidates over 24 arrangements must share some
	if len(q.CollidingGroups) == 0 {
		t.Fatal("expected colliding groups for 50 candidates over 4 options")
	}
	grouped := 0
	for _, g := range q.CollidingGroups {
		grouped += len(g)
	}
	if grouped > q.Candidates {
		t.Fatalf("grouped %d of %d candidates", grouped, q.Candidates)
	}
	if report.Clean() {
		t.Fatal("report with colliding groups reported clean")
	}
}

func TestVerifyAcrossCandidatesIdenticalPapers(t *testing.T) {
	view := View{QuestionID: 1, Options: []string{"a", "b"}, OptionLabelMap: models.LabelMap{"A": "A", "B": "B"}}
	other := View{QuestionID: 1, Options: []string{"b", "a"}, OptionLabelMap: models.LabelMap{"A": "B", "B": "A"}}

	report := VerifyAcrossCandidates(map[string][]View{
		"zed":   {view},
		"alice": {view},
		"bob":   {other},
	})

	if len(report.IdenticalPapers) != 1 {
		t.Fatalf("IdenticalPapers = %v", report.IdenticalPapers)
	}
	if fmt.Sprint(report.IdenticalPapers[0]) != "[alice zed]" {
		t.Fatalf("group = %v, want [alice zed]", report.IdenticalPapers[0])
	}
	if report.Questions[0].DistinctSignatures != 2 {
		t.Fatalf("DistinctSignatures = %d, want 2", report.Questions[0].DistinctSignatures)
	}
}

func TestCollisionReportClean(t *testing.T) {
	report := VerifyAcrossCandidates(map[string][]View{
		"only": {{QuestionID: 1, Options: []string{"a", "b"}, OptionLabelMap: models.LabelMap{"A": "A", "B": "B"}}},
	})
	if !report.Clean() {
		t.Fatalf("single candidate report not clean: %+v", report)
	}
}
