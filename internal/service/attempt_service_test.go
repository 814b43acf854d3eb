package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/smartmlms/smartlms-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ─── In-Memory Fakes ────────────────────────────────────────────────

type fakeCatalog struct {
	exams map[uuid.UUID]*model.Exam
}

func (f *fakeCatalog) GetByID(_ context.Context, id uuid.UUID) (*model.Exam, error) {
	exam, ok := f.exams[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return exam, nil
}

// fakeAttemptStore mimics the database semantics the service relies on:
// at most one in-progress attempt per (exam, user), and a one-way submit
// transition. All methods are safe for concurrent use.
type fakeAttemptStore struct {
	mu       sync.Mutex
	attempts map[uuid.UUID]*model.ExamAttempt
}

func newFakeAttemptStore() *fakeAttemptStore {
	return &fakeAttemptStore{attempts: map[uuid.UUID]*model.ExamAttempt{}}
}

func (f *fakeAttemptStore) Create(_ context.Context, a *model.ExamAttempt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.attempts {
		if existing.ExamID == a.ExamID && existing.UserID == a.UserID &&
			existing.Status == model.AttemptStatusInProgress {
			// Partial unique index: the insert is a no-op.
			return pgx.ErrNoRows
		}
	}
	a.ID = uuid.New()
	a.StartedAt = time.Now()
	cp := *a
	f.attempts[a.ID] = &cp
	return nil
}

func (f *fakeAttemptStore) GetInProgress(_ context.Context, examID, userID uuid.UUID) (*model.ExamAttempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.attempts {
		if a.ExamID == examID && a.UserID == userID && a.Status == model.AttemptStatusInProgress {
			cp := *a
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeAttemptStore) CountByExamAndUser(_ context.Context, examID, userID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, a := range f.attempts {
		if a.ExamID == examID && a.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (f *fakeAttemptStore) GetByID(_ context.Context, id uuid.UUID) (*model.ExamAttempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.attempts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAttemptStore) AppendViolation(_ context.Context, v *model.Violation) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.attempts[v.AttemptID]
	if !ok {
		return 0, pgx.ErrNoRows
	}
	v.ID = int64(len(a.Violations) + 1)
	a.Violations = append(a.Violations, *v)
	a.ViolationCount++
	return a.ViolationCount, nil
}

func (f *fakeAttemptStore) Submit(_ context.Context, id uuid.UUID, score int, isPassed bool, answers []model.Answer) (time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.attempts[id]
	if !ok || a.Status != model.AttemptStatusInProgress {
		// Status guard matched zero rows.
		return time.Time{}, pgx.ErrNoRows
	}
	now := time.Now()
	a.Status = model.AttemptStatusSubmitted
	a.Score = &score
	a.IsPassed = &isPassed
	a.SubmittedAt = &now
	a.Answers = answers
	return now, nil
}

func (f *fakeAttemptStore) ListByExam(_ context.Context, examID uuid.UUID, userID *uuid.UUID, page, perPage int) ([]model.ExamAttempt, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.ExamAttempt
	for _, a := range f.attempts {
		if a.ExamID != examID {
			continue
		}
		if userID != nil && a.UserID != *userID {
			continue
		}
		out = append(out, *a)
	}
	return out, int64(len(out)), nil
}

// fakeLedger applies deltas with the same [0,100] clamp the database does.
type fakeLedger struct {
	mu     sync.Mutex
	scores map[uuid.UUID]int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{scores: map[uuid.UUID]int{}}
}

func (f *fakeLedger) ApplyTrustDelta(_ context.Context, id uuid.UUID, delta int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	score, ok := f.scores[id]
	if !ok {
		score = model.TrustScoreDefault
	}
	score += delta
	if score > model.TrustScoreMax {
		score = model.TrustScoreMax
	}
	if score < model.TrustScoreMin {
		score = model.TrustScoreMin
	}
	f.scores[id] = score
	return score, nil
}

// ─── Test Fixtures ──────────────────────────────────────────────────

func timePtr(t time.Time) *time.Time { return &t }

func newTestExam() *model.Exam {
	return &model.Exam{
		ID:               uuid.New(),
		CourseID:         uuid.New(),
		Title:            "Land Navigation Final",
		DurationMinutes:  60,
		TotalPoints:      20,
		PassScore:        10,
		ShuffleQuestions: true,
		MaxAttempts:      2,
		IsPublished:      true,
		Questions: []model.Question{
			{Type: model.QuestionTypeMultipleChoice, Content: "Q1", CorrectAnswer: "A", Points: 10},
			{Type: model.QuestionTypeTrueFalse, Content: "Q2", CorrectAnswer: "true", Points: 5},
			{Type: model.QuestionTypeShortAnswer, Content: "Q3", CorrectAnswer: "azimuth", Points: 5},
		},
	}
}

func newTestService(exam *model.Exam) (*AttemptService, *fakeAttemptStore, *fakeLedger) {
	catalog := &fakeCatalog{exams: map[uuid.UUID]*model.Exam{exam.ID: exam}}
	store := newFakeAttemptStore()
	ledger := newFakeLedger()
	return NewAttemptService(catalog, store, ledger), store, ledger
}

// ─── Start ──────────────────────────────────────────────────────────

func TestStartCreatesAttempt(t *testing.T) {
	exam := newTestExam()
	svc, _, _ := newTestService(exam)
	userID := uuid.New()

	attempt, err := svc.Start(context.Background(), exam.ID, userID, "10.0.0.1", "test-agent")
	require.NoError(t, err)

	assert.Equal(t, exam.ID, attempt.ExamID)
	assert.Equal(t, userID, attempt.UserID)
	assert.Equal(t, model.AttemptStatusInProgress, attempt.Status)
	assert.Len(t, attempt.QuestionOrder, len(exam.Questions))
	assert.NotEqual(t, uuid.Nil, attempt.ID)
}

func TestStartExamNotFound(t *testing.T) {
	exam := newTestExam()
	svc, _, _ := newTestService(exam)

	_, err := svc.Start(context.Background(), uuid.New(), uuid.New(), "", "")
	assert.ErrorIs(t, err, ErrExamNotFound)
}

func TestStartUnpublishedExam(t *testing.T) {
	exam := newTestExam()
	exam.IsPublished = false
	svc, _, _ := newTestService(exam)

	_, err := svc.Start(context.Background(), exam.ID, uuid.New(), "", "")
	assert.ErrorIs(t, err, ErrExamNotPublished)
}

func TestStartOutsideWindow(t *testing.T) {
	t.Run("before start", func(t *testing.T) {
		exam := newTestExam()
		exam.StartTime = timePtr(time.Now().Add(time.Hour))
		svc, _, _ := newTestService(exam)

		_, err := svc.Start(context.Background(), exam.ID, uuid.New(), "", "")
		assert.ErrorIs(t, err, ErrExamNotStarted)
	})

	t.Run("after end", func(t *testing.T) {
		exam := newTestExam()
		exam.StartTime = timePtr(time.Now().Add(-2 * time.Hour))
		exam.EndTime = timePtr(time.Now().Add(-time.Hour))
		svc, _, _ := newTestService(exam)

		_, err := svc.Start(context.Background(), exam.ID, uuid.New(), "", "")
		assert.ErrorIs(t, err, ErrExamEnded)
	})

	t.Run("inside window", func(t *testing.T) {
		exam := newTestExam()
		exam.StartTime = timePtr(time.Now().Add(-time.Hour))
		exam.EndTime = timePtr(time.Now().Add(time.Hour))
		svc, _, _ := newTestService(exam)

		_, err := svc.Start(context.Background(), exam.ID, uuid.New(), "", "")
		assert.NoError(t, err)
	})
}

func TestStartResumesInProgressAttempt(t *testing.T) {
	exam := newTestExam()
	svc, _, _ := newTestService(exam)
	userID := uuid.New()

	first, err := svc.Start(context.Background(), exam.ID, userID, "", "")
	require.NoError(t, err)

	second, err := svc.Start(context.Background(), exam.ID, userID, "", "")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.QuestionOrder, second.QuestionOrder, "resume must keep the frozen question order")
}

func TestStartResumesAtAttemptLimit(t *testing.T) {
	// With max_attempts=1 the single in-progress attempt fills the quota;
	// start must still resume it instead of rejecting.
	exam := newTestExam()
	exam.MaxAttempts = 1
	svc, _, _ := newTestService(exam)
	userID := uuid.New()

	first, err := svc.Start(context.Background(), exam.ID, userID, "", "")
	require.NoError(t, err)

	second, err := svc.Start(context.Background(), exam.ID, userID, "", "")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestStartAttemptLimitReached(t *testing.T) {
	exam := newTestExam()
	exam.MaxAttempts = 1
	svc, _, _ := newTestService(exam)
	userID := uuid.New()

	attempt, err := svc.Start(context.Background(), exam.ID, userID, "", "")
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), attempt.ID, userID, &model.SubmitAttemptRequest{})
	require.NoError(t, err)

	_, err = svc.Start(context.Background(), exam.ID, userID, "", "")
	assert.ErrorIs(t, err, ErrAttemptLimitReached)
}

func TestStartWithoutShuffleUsesCanonicalOrder(t *testing.T) {
	exam := newTestExam()
	exam.ShuffleQuestions = false
	svc, _, _ := newTestService(exam)

	attempt, err := svc.Start(context.Background(), exam.ID, uuid.New(), "", "")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, attempt.QuestionOrder)
}

func TestStartConcurrentSameUser(t *testing.T) {
	exam := newTestExam()
	svc, _, _ := newTestService(exam)
	userID := uuid.New()

	const workers = 8
	results := make([]*model.ExamAttempt, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.Start(context.Background(), exam.ID, userID, "", "")
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, results[0].ID, results[i].ID, "all concurrent starts must converge on one attempt")
	}
}

// ─── Violations ─────────────────────────────────────────────────────

func TestAddViolationAppliesTrustDelta(t *testing.T) {
	exam := newTestExam()
	svc, _, ledger := newTestService(exam)
	userID := uuid.New()

	attempt, err := svc.Start(context.Background(), exam.ID, userID, "", "")
	require.NoError(t, err)

	result, err := svc.AddViolation(context.Background(), attempt.ID, &model.ReportViolationRequest{
		Type: model.ViolationMultipleFaces,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.ViolationCount)
	assert.Equal(t, 90, result.TrustScore)
	assert.Equal(t, 90, ledger.scores[userID])
	assert.Equal(t, model.ViolationMultipleFaces, result.Violation.Type)
}

func TestAddViolationUnknownTypeDefaultsToMinusOne(t *testing.T) {
	exam := newTestExam()
	svc, _, _ := newTestService(exam)
	userID := uuid.New()

	attempt, err := svc.Start(context.Background(), exam.ID, userID, "", "")
	require.NoError(t, err)

	result, err := svc.AddViolation(context.Background(), attempt.ID, &model.ReportViolationRequest{
		Type: model.ViolationType("QUANTUM_ENTANGLEMENT"),
	})
	require.NoError(t, err)
	assert.Equal(t, 99, result.TrustScore)
}

func TestAddViolationClampsTrustAtZero(t *testing.T) {
	exam := newTestExam()
	svc, _, _ := newTestService(exam)
	userID := uuid.New()

	attempt, err := svc.Start(context.Background(), exam.ID, userID, "", "")
	require.NoError(t, err)

	var last *ReportViolationResult
	for i := 0; i < 15; i++ {
		var err error
		last, err = svc.AddViolation(context.Background(), attempt.ID, &model.ReportViolationRequest{
			Type: model.ViolationMultipleFaces,
		})
		require.NoError(t, err)
	}

	assert.Equal(t, 0, last.TrustScore)
	assert.Equal(t, 15, last.ViolationCount, "violations keep accumulating past the clamp")
}

func TestAddViolationDebitsAttemptOwner(t *testing.T) {
	// Detectors may report from outside the examinee's session; the penalty
	// must land on the attempt owner's trust score regardless.
	exam := newTestExam()
	svc, _, ledger := newTestService(exam)
	userID := uuid.New()

	attempt, err := svc.Start(context.Background(), exam.ID, userID, "", "")
	require.NoError(t, err)

	result, err := svc.AddViolation(context.Background(), attempt.ID, &model.ReportViolationRequest{
		Type: model.ViolationTabSwitch,
	})
	require.NoError(t, err)
	assert.Equal(t, 98, result.TrustScore)
	assert.Equal(t, 98, ledger.scores[userID])
}

func TestAddViolationAfterSubmitStillRecorded(t *testing.T) {
	// Proctoring events may land moments after submission; they are
	// accepted and still cost trust.
	exam := newTestExam()
	svc, _, _ := newTestService(exam)
	userID := uuid.New()

	attempt, err := svc.Start(context.Background(), exam.ID, userID, "", "")
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), attempt.ID, userID, &model.SubmitAttemptRequest{})
	require.NoError(t, err)

	result, err := svc.AddViolation(context.Background(), attempt.ID, &model.ReportViolationRequest{
		Type: model.ViolationTabSwitch,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.ViolationCount)
}

func TestAddViolationAttemptNotFound(t *testing.T) {
	exam := newTestExam()
	svc, _, _ := newTestService(exam)

	_, err := svc.AddViolation(context.Background(), uuid.New(), &model.ReportViolationRequest{
		Type: model.ViolationTabSwitch,
	})
	assert.ErrorIs(t, err, ErrAttemptNotFound)
}

// ─── Submit ─────────────────────────────────────────────────────────

func TestSubmitGradesAndPasses(t *testing.T) {
	exam := newTestExam()
	svc, store, ledger := newTestService(exam)
	userID := uuid.New()

	attempt, err := svc.Start(context.Background(), exam.ID, userID, "", "")
	require.NoError(t, err)

	result, err := svc.Submit(context.Background(), attempt.ID, userID, &model.SubmitAttemptRequest{
		Answers: []model.AnswerSubmission{
			{QuestionIndex: 0, Answer: "A"},
			{QuestionIndex: 1, Answer: "false"},
			{QuestionIndex: 2, Answer: "azimuth"},
		},
	})
	require.NoError(t, err)

	// 10 raw points against a pass_score of 10 → passed. The short answer
	// matches the key but still scores zero pending manual review.
	assert.Equal(t, 10, result.Score)
	assert.True(t, result.IsPassed)
	assert.Len(t, result.Answers, 3)
	assert.True(t, result.Answers[0].IsCorrect)
	assert.False(t, result.Answers[1].IsCorrect)
	assert.False(t, result.Answers[2].IsCorrect)

	// Pass bonus applied once.
	assert.Equal(t, 100, ledger.scores[userID], "bonus cannot push past the clamp")

	stored, err := store.GetByID(context.Background(), attempt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AttemptStatusSubmitted, stored.Status)
	require.NotNil(t, stored.Score)
	assert.Equal(t, 10, *stored.Score)
}

func TestSubmitScoreIsRawPointSum(t *testing.T) {
	// The score is the plain sum of earned points, never normalized to a
	// percentage: 20 earned points against a pass_score of 60 is a fail even
	// with every question answered correctly.
	exam := newTestExam()
	exam.PassScore = 60
	exam.TotalPoints = 20
	exam.Questions = []model.Question{
		{Type: model.QuestionTypeMultipleChoice, Content: "Q1", CorrectAnswer: "A", Points: 10},
		{Type: model.QuestionTypeMultipleChoice, Content: "Q2", CorrectAnswer: "C", Points: 10},
	}
	svc, _, ledger := newTestService(exam)
	userID := uuid.New()

	attempt, err := svc.Start(context.Background(), exam.ID, userID, "", "")
	require.NoError(t, err)

	result, err := svc.Submit(context.Background(), attempt.ID, userID, &model.SubmitAttemptRequest{
		Answers: []model.AnswerSubmission{
			{QuestionIndex: 0, Answer: "A"},
			{QuestionIndex: 1, Answer: "C"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 20, result.Score)
	assert.False(t, result.IsPassed)
	assert.Equal(t, model.TrustScoreDefault, ledger.scores[userID], "no bonus on fail")
}

func TestSubmitFailingScoreNoBonus(t *testing.T) {
	exam := newTestExam()
	svc, _, ledger := newTestService(exam)
	userID := uuid.New()

	// Drop trust first so a bonus would be visible.
	attempt, err := svc.Start(context.Background(), exam.ID, userID, "", "")
	require.NoError(t, err)
	_, err = svc.AddViolation(context.Background(), attempt.ID, &model.ReportViolationRequest{
		Type: model.ViolationPhoneDetected,
	})
	require.NoError(t, err)

	result, err := svc.Submit(context.Background(), attempt.ID, userID, &model.SubmitAttemptRequest{
		Answers: []model.AnswerSubmission{{QuestionIndex: 0, Answer: "B"}},
	})
	require.NoError(t, err)

	assert.Equal(t, 0, result.Score)
	assert.False(t, result.IsPassed)
	assert.Equal(t, 95, ledger.scores[userID], "no bonus on fail")
}

func TestSubmitTwiceRejected(t *testing.T) {
	exam := newTestExam()
	svc, _, _ := newTestService(exam)
	userID := uuid.New()

	attempt, err := svc.Start(context.Background(), exam.ID, userID, "", "")
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), attempt.ID, userID, &model.SubmitAttemptRequest{})
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), attempt.ID, userID, &model.SubmitAttemptRequest{})
	assert.ErrorIs(t, err, ErrAlreadySubmitted)
}

func TestSubmitConcurrentSingleWinner(t *testing.T) {
	exam := newTestExam()
	svc, _, ledger := newTestService(exam)
	userID := uuid.New()

	attempt, err := svc.Start(context.Background(), exam.ID, userID, "", "")
	require.NoError(t, err)

	// Drop trust to 90 first so a double bonus would be detectable.
	_, err = svc.AddViolation(context.Background(), attempt.ID, &model.ReportViolationRequest{
		Type: model.ViolationMultipleFaces,
	})
	require.NoError(t, err)

	req := &model.SubmitAttemptRequest{
		Answers: []model.AnswerSubmission{
			{QuestionIndex: 0, Answer: "A"},
			{QuestionIndex: 1, Answer: "true"},
		},
	}

	const workers = 8
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Submit(context.Background(), attempt.ID, userID, req)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrAlreadySubmitted)
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one concurrent submit may win")
	assert.Equal(t, 95, ledger.scores[userID], "pass bonus awarded exactly once")
}

func TestSubmitOwnershipEnforced(t *testing.T) {
	exam := newTestExam()
	svc, _, _ := newTestService(exam)
	userID := uuid.New()

	attempt, err := svc.Start(context.Background(), exam.ID, userID, "", "")
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), attempt.ID, uuid.New(), &model.SubmitAttemptRequest{})
	assert.ErrorIs(t, err, ErrAttemptNotOwned)
}

func TestSubmitOutOfRangeIndexKeptAsWrong(t *testing.T) {
	exam := newTestExam()
	svc, _, _ := newTestService(exam)
	userID := uuid.New()

	attempt, err := svc.Start(context.Background(), exam.ID, userID, "", "")
	require.NoError(t, err)

	result, err := svc.Submit(context.Background(), attempt.ID, userID, &model.SubmitAttemptRequest{
		Answers: []model.AnswerSubmission{{QuestionIndex: 99, Answer: "A"}},
	})
	require.NoError(t, err)

	require.Len(t, result.Answers, 1)
	assert.False(t, result.Answers[0].IsCorrect)
	assert.Equal(t, 0, result.Answers[0].Points)
	assert.Equal(t, 0, result.Score)
}

// ─── GetAttempt ─────────────────────────────────────────────────────

func TestGetAttemptAccess(t *testing.T) {
	exam := newTestExam()
	svc, _, _ := newTestService(exam)
	userID := uuid.New()

	attempt, err := svc.Start(context.Background(), exam.ID, userID, "", "")
	require.NoError(t, err)

	_, err = svc.GetAttempt(context.Background(), attempt.ID, userID, false)
	assert.NoError(t, err)

	_, err = svc.GetAttempt(context.Background(), attempt.ID, uuid.New(), false)
	assert.ErrorIs(t, err, ErrAttemptNotOwned)

	_, err = svc.GetAttempt(context.Background(), attempt.ID, uuid.New(), true)
	assert.NoError(t, err, "staff bypass the ownership check")
}
