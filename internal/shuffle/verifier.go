package shuffle

import (
	"sort"
	"strings"
)

const (
	unitSeparator   = "\x1f"
	recordSeparator = "\x1e"
)

// Collision lists option-bearing questions on one paper that share a signature.
type Collision struct {
	Signature   string `json:"-"`
	QuestionIDs []uint `json:"question_ids"`
}

// QuestionCollisions describes how one question was arranged across candidates.
type QuestionCollisions struct {
	QuestionID         uint       `json:"question_id"`
	Candidates         int        `json:"candidates"`
	DistinctSignatures int        `json:"distinct_signatures"`
	CollidingGroups    [][]string `json:"colliding_groups,omitempty"`
}

type CollisionReport struct {
	Candidates int                  `json:"candidates"`
	Questions  []QuestionCollisions `json:"questions"`

	// IdenticalPapers groups candidates whose entire paper looks the same.
	IdenticalPapers [][]string `json:"identical_papers,omitempty"`

	// PaperCollisions holds within-paper collisions keyed by candidate.
	PaperCollisions map[string][]Collision `json:"paper_collisions,omitempty"`
}

// Clean reports whether the report found no collision of any kind.
func (r CollisionReport) Clean() bool {
	if len(r.IdenticalPapers) > 0 || len(r.PaperCollisions) > 0 {
		return false
	}
	for _, q := range r.Questions {
		if len(q.CollidingGroups) > 0 {
			return false
		}
	}
	return true
}

// Signature is the displayed option values followed by the label permutation in
// canonical label order.
func Signature(v View) string {
	var b strings.Builder
	b.WriteString(strings.Join(v.Options, unitSeparator))
	b.WriteString(recordSeparator)
	for i := 0; i < len(v.Options); i++ {
		from := Label(i)
		b.WriteString(from)
		b.WriteByte('>')
		b.WriteString(v.OptionLabelMap[from])
		b.WriteString(unitSeparator)
	}
	return b.String()
}

// Verify returns false when two option-bearing questions on the same paper produce an
// identical signature.
func Verify(views []View) (bool, []Collision) {
	groups := make(map[string][]uint)
	var order []string
	for _, v := range views {
		if len(v.Options) == 0 {
			continue
		}
		sig := Signature(v)
		if _, ok := groups[sig]; !ok {
			order = append(order, sig)
		}
		groups[sig] = append(groups[sig], v.QuestionID)
	}

	var collisions []Collision
	for _, sig := range order {
		if ids := groups[sig]; len(ids) > 1 {
			collisions = append(collisions, Collision{Signature: sig, QuestionIDs: ids})
		}
	}
	return len(collisions) == 0, collisions
}

// VerifyAcrossCandidates compares papers of several candidates for the same test.
func VerifyAcrossCandidates(papers map[string][]View) CollisionReport {
	candidates := make([]string, 0, len(papers))
	for c := range papers {
		candidates = append(candidates, c)
	}
	sort.Strings(candidates)

	report := CollisionReport{Candidates: len(candidates)}

	perQuestion := make(map[uint]map[string][]string) // question -> signature -> candidates
	paperGroups := make(map[string][]string)

	for _, c := range candidates {
		views := papers[c]

		if ok, collisions := Verify(views); !ok {
			if report.PaperCollisions == nil {
				report.PaperCollisions = make(map[string][]Collision)
			}
			report.PaperCollisions[c] = collisions
		}

		var paper strings.Builder
		for _, v := range views {
			sig := Signature(v)
			paper.WriteString(sig)
			paper.WriteString(recordSeparator)

			if len(v.Options) == 0 {
				continue
			}
			bySig, ok := perQuestion[v.QuestionID]
			if !ok {
				bySig = make(map[string][]string)
				perQuestion[v.QuestionID] = bySig
			}
			bySig[sig] = append(bySig[sig], c)
		}
		paperGroups[paper.String()] = append(paperGroups[paper.String()], c)
	}

	questionIDs := make([]uint, 0, len(perQuestion))
	for id := range perQuestion {
		questionIDs = append(questionIDs, id)
	}
	sort.Slice(questionIDs, func(i, j int) bool { return questionIDs[i] < questionIDs[j] })

	for _, id := range questionIDs {
		bySig := perQuestion[id]
		qc := QuestionCollisions{QuestionID: id, DistinctSignatures: len(bySig)}
		for _, group := range bySig {
			qc.Candidates += len(group)
			if len(group) > 1 {
				qc.CollidingGroups = append(qc.CollidingGroups, group)
			}
		}
		sortGroups(qc.CollidingGroups)
		report.Questions = append(report.Questions, qc)
	}

	if len(candidates) > 1 {
		for _, group := range paperGroups {
			if len(group) > 1 {
				report.IdenticalPapers = append(report.IdenticalPapers, group)
			}
		}
		sortGroups(report.IdenticalPapers)
	}

	return report
}

// sortGroups orders groups by their first member. Members are already sorted.
func sortGroups(groups [][]string) {
	sort.Slice(groups, func(i, j int) bool { return groups[i][0] < groups[j][0] })
}
