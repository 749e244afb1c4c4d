package services

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/SAP-F-2025/assessment-randomizer/internal/models"
	"github.com/SAP-F-2025/assessment-randomizer/internal/repositories"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeRepository is an in-memory Repository. Transactions run inline without rollback.
type fakeRepository struct {
	mu sync.Mutex

	nextID    uint
	tests     map[uint]*models.Test
	questions map[uint]*models.Question
	attempts  map[uint]*models.Attempt
	answers   map[[2]uint]*models.AttemptAnswer
	configs   map[uint]*models.AttemptShuffleConfig

	configInserts int
	configReads   int
	// configDelay widens the window between a config read miss and the insert.
	configDelay time.Duration
	failWrites  error
	// beforeLock runs once, just before the next attempt row lock is taken.
	beforeLock func()
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		tests:     make(map[uint]*models.Test),
		questions: make(map[uint]*models.Question),
		attempts:  make(map[uint]*models.Attempt),
		answers:   make(map[[2]uint]*models.AttemptAnswer),
		configs:   make(map[uint]*models.AttemptShuffleConfig),
	}
}

func (f *fakeRepository) id() uint {
	f.nextID++
	return f.nextID
}

func (f *fakeRepository) Test() repositories.TestRepository                   { return fakeTests{f} }
func (f *fakeRepository) Question() repositories.QuestionRepository           { return fakeQuestions{f} }
func (f *fakeRepository) Attempt() repositories.AttemptRepository             { return fakeAttempts{f} }
func (f *fakeRepository) Answer() repositories.AnswerRepository               { return fakeAnswers{f} }
func (f *fakeRepository) ShuffleConfig() repositories.ShuffleConfigRepository { return fakeConfigs{f} }

func (f *fakeRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(f)
}

func (f *fakeRepository) Ping(ctx context.Context) error { return nil }
func (f *fakeRepository) Close() error                   { return nil }

type fakeTests struct{ f *fakeRepository }

func (r fakeTests) Create(ctx context.Context, test *models.Test) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	test.ID = r.f.id()
	cp := *test
	r.f.tests[test.ID] = &cp
	return nil
}

func (r fakeTests) GetByID(ctx context.Context, id uint) (*models.Test, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	t, ok := r.f.tests[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

type fakeQuestions struct{ f *fakeRepository }

func (r fakeQuestions) Create(ctx context.Context, q *models.Question) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if r.f.failWrites != nil {
		return r.f.failWrites
	}
	q.ID = r.f.id()
	cp := *q
	r.f.questions[q.ID] = &cp
	return nil
}

func (r fakeQuestions) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	q, ok := r.f.questions[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *q
	return &cp, nil
}

func (r fakeQuestions) ListByTest(ctx context.Context, testID uint) ([]*models.Question, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []*models.Question
	for _, q := range r.f.questions {
		if q.TestID == testID {
			cp := *q
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeAttempts struct{ f *fakeRepository }

func (r fakeAttempts) Create(ctx context.Context, a *models.Attempt) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if r.f.failWrites != nil {
		return r.f.failWrites
	}
	a.ID = r.f.id()
	cp := *a
	r.f.attempts[a.ID] = &cp
	return nil
}

func (r fakeAttempts) GetByID(ctx context.Context, id uint) (*models.Attempt, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	a, ok := r.f.attempts[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

// GetForUpdate has no real lock; the fake serializes every call on its mutex.
func (r fakeAttempts) GetForUpdate(ctx context.Context, id uint) (*models.Attempt, error) {
	r.f.mu.Lock()
	hook := r.f.beforeLock
	r.f.beforeLock = nil
	r.f.mu.Unlock()
	if hook != nil {
		hook()
	}
	return r.GetByID(ctx, id)
}

func (r fakeAttempts) GetActive(ctx context.Context, candidateID string, testID uint) (*models.Attempt, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var found *models.Attempt
	for _, a := range r.f.attempts {
		if a.CandidateID == candidateID && a.TestID == testID && a.IsActive() {
			if found == nil || a.ID > found.ID {
				found = a
			}
		}
	}
	if found == nil {
		return nil, repositories.ErrNotFound
	}
	cp := *found
	return &cp, nil
}

func (r fakeAttempts) MarkCompleted(ctx context.Context, a *models.Attempt) (bool, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	stored, ok := r.f.attempts[a.ID]
	if !ok || !stored.IsActive() {
		return false, nil
	}
	cp := *a
	cp.Status = models.AttemptCompleted
	r.f.attempts[a.ID] = &cp
	return true, nil
}

type fakeAnswers struct{ f *fakeRepository }

func (r fakeAnswers) Upsert(ctx context.Context, a *models.AttemptAnswer) (bool, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if r.f.failWrites != nil {
		return false, r.f.failWrites
	}
	key := [2]uint{a.AttemptID, a.QuestionID}
	if existing, ok := r.f.answers[key]; ok && existing.Finalized {
		return false, nil
	}
	cp := *a
	r.f.answers[key] = &cp
	return true, nil
}

func (r fakeAnswers) ListByAttempt(ctx context.Context, attemptID uint) ([]*models.AttemptAnswer, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []*models.AttemptAnswer
	for key, a := range r.f.answers {
		if key[0] == attemptID {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuestionID < out[j].QuestionID })
	return out, nil
}

func (r fakeAnswers) FinalizeByAttempt(ctx context.Context, attemptID uint) (int64, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var n int64
	for key, a := range r.f.answers {
		if key[0] == attemptID && !a.Finalized {
			a.Finalized = true
			n++
		}
	}
	return n, nil
}

type fakeConfigs struct{ f *fakeRepository }

func (r fakeConfigs) GetByAttempt(ctx context.Context, attemptID uint) (*models.AttemptShuffleConfig, error) {
	r.f.mu.Lock()
	r.f.configReads++
	c, ok := r.f.configs[attemptID]
	delay := r.f.configDelay
	r.f.mu.Unlock()

	if !ok {
		time.Sleep(delay)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, repositories.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r fakeConfigs) CreateIfAbsent(ctx context.Context, c *models.AttemptShuffleConfig) (bool, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if r.f.failWrites != nil {
		return false, r.f.failWrites
	}
	if _, ok := r.f.configs[c.AttemptID]; ok {
		return false, nil
	}
	r.f.configInserts++
	cp := *c
	r.f.configs[c.AttemptID] = &cp
	return true, nil
}

func (f *fakeRepository) configReadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.configReads
}

func (f *fakeRepository) insertCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.configInserts
}

// seedBank stores a test with one question of each type plus a second single select.
func seedBank(t testing.TB, repo *fakeRepository) (*models.Test, []*models.Question) {
	t.Helper()
	ctx := context.Background()
	test := &models.Test{Title: "Algorithms", Duration: 30}
	if err := repo.Test().Create(ctx, test); err != nil {
		t.Fatal(err)
	}
	questions := []*models.Question{
		{TestID: test.ID, Text: "Binary search?", Type: models.SingleSelect, Options: []string{"O(n)", "O(log n)", "O(n log n)", "O(1)"}, CorrectAnswer: "O(log n)", Marks: 4, NegativeMarks: 1},
		{TestID: test.ID, Text: "Comparison sorts?", Type: models.MultiSelect, Options: []string{"Bubble Sort", "Quick Sort", "Merge Sort", "Radix Sort"}, CorrectAnswer: "Bubble Sort,Quick Sort,Merge Sort", Marks: 3},
		{TestID: test.ID, Text: "0x65 in decimal?", Type: models.Numeric, CorrectAnswer: "101", Marks: 2},
		{TestID: test.ID, Text: "Stack order?", Type: models.SingleSelect, Options: []string{"FIFO", "LIFO", "Random"}, CorrectAnswer: "LIFO", Marks: 1},
	}
	for _, q := range questions {
		if err := repo.Question().Create(ctx, q); err != nil {
			t.Fatal(err)
		}
	}
	return test, questions
}
