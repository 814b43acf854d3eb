package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/smartmlms/smartlms-backend/internal/model"
)

// passBonus is the trust-score reward for passing an exam. It is applied
// only after the one-way submit transition succeeds, so a racing duplicate
// submit can never award it twice.
const passBonus = 5

type examCatalog interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error)
}

type attemptStore interface {
	Create(ctx context.Context, a *model.ExamAttempt) error
	GetInProgress(ctx context.Context, examID, userID uuid.UUID) (*model.ExamAttempt, error)
	CountByExamAndUser(ctx context.Context, examID, userID uuid.UUID) (int, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.ExamAttempt, error)
	AppendViolation(ctx context.Context, v *model.Violation) (int, error)
	Submit(ctx context.Context, id uuid.UUID, score int, isPassed bool, answers []model.Answer) (time.Time, error)
	ListByExam(ctx context.Context, examID uuid.UUID, userID *uuid.UUID, page, perPage int) ([]model.ExamAttempt, int64, error)
}

type trustLedger interface {
	ApplyTrustDelta(ctx context.Context, id uuid.UUID, delta int) (int, error)
}

// AttemptService drives the exam attempt lifecycle: start, proctoring
// violations, and submission with automatic grading.
type AttemptService struct {
	exams    examCatalog
	attempts attemptStore
	trust    trustLedger

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewAttemptService creates a new AttemptService.
func NewAttemptService(exams examCatalog, attempts attemptStore, trust trustLedger) *AttemptService {
	return &AttemptService{
		exams:    exams,
		attempts: attempts,
		trust:    trust,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Start begins an attempt for a user, or returns the existing in-progress
// attempt unchanged (same ID, same question order). Checks run in a fixed
// order: existence, publication, exam window, attempt limit, resume. The
// attempt limit counts every attempt regardless of status.
func (s *AttemptService) Start(ctx context.Context, examID, userID uuid.UUID, ip, userAgent string) (*model.ExamAttempt, error) {
	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("get exam: %w", err)
	}

	if !exam.IsPublished {
		return nil, ErrExamNotPublished
	}

	now := time.Now()
	if exam.StartTime != nil && now.Before(*exam.StartTime) {
		return nil, ErrExamNotStarted
	}
	if exam.EndTime != nil && now.After(*exam.EndTime) {
		return nil, ErrExamEnded
	}

	count, err := s.attempts.CountByExamAndUser(ctx, examID, userID)
	if err != nil {
		return nil, fmt.Errorf("count attempts: %w", err)
	}
	if count >= exam.MaxAttempts {
		// An in-progress attempt still counts toward the limit, so resume
		// before rejecting.
		existing, err := s.attempts.GetInProgress(ctx, examID, userID)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("check in-progress attempt: %w", err)
		}
		return nil, ErrAttemptLimitReached
	}

	existing, err := s.attempts.GetInProgress(ctx, examID, userID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("check in-progress attempt: %w", err)
	}

	attempt := &model.ExamAttempt{
		ExamID:        examID,
		UserID:        userID,
		Status:        model.AttemptStatusInProgress,
		QuestionOrder: s.questionOrder(exam),
		IPAddress:     ip,
		UserAgent:     userAgent,
	}

	if err := s.attempts.Create(ctx, attempt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Lost the race against a concurrent start by the same user;
			// the partial unique index let exactly one insert through.
			winner, fetchErr := s.attempts.GetInProgress(ctx, examID, userID)
			if fetchErr != nil {
				return nil, fmt.Errorf("concurrent start detected, fetch winner: %w", fetchErr)
			}
			return winner, nil
		}
		return nil, fmt.Errorf("create attempt: %w", err)
	}

	return attempt, nil
}

// questionOrder fixes the question permutation for a new attempt.
func (s *AttemptService) questionOrder(exam *model.Exam) []int {
	if !exam.ShuffleQuestions {
		return identityOrder(len(exam.Questions))
	}
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return ShuffleOrder(len(exam.Questions), s.rng)
}

// ReportViolationResult is the outcome of recording one proctoring
// violation.
type ReportViolationResult struct {
	Violation      model.Violation `json:"violation"`
	ViolationCount int             `json:"violation_count"`
	TrustScore     int             `json:"trust_score"`
}

// AddViolation records a proctoring violation against an attempt and
// applies the corresponding trust-score delta to the attempt's owner.
// The only failure mode is an unknown attempt: violations are accepted
// regardless of attempt status (proctoring events can legitimately arrive
// moments after submission) and regardless of who reports them, since
// detectors may run outside the examinee's own session.
func (s *AttemptService) AddViolation(ctx context.Context, attemptID uuid.UUID, req *model.ReportViolationRequest) (*ReportViolationResult, error) {
	attempt, err := s.attempts.GetByID(ctx, attemptID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("get attempt: %w", err)
	}

	violation := &model.Violation{
		AttemptID:  attemptID,
		Type:       req.Type,
		OccurredAt: time.Now(),
		Screenshot: req.Screenshot,
		Confidence: req.Confidence,
	}

	count, err := s.attempts.AppendViolation(ctx, violation)
	if err != nil {
		return nil, fmt.Errorf("append violation: %w", err)
	}

	trustScore, err := s.trust.ApplyTrustDelta(ctx, attempt.UserID, req.Type.TrustDelta())
	if err != nil {
		return nil, fmt.Errorf("apply trust delta: %w", err)
	}

	return &ReportViolationResult{
		Violation:      *violation,
		ViolationCount: count,
		TrustScore:     trustScore,
	}, nil
}

// SubmitResult is the graded outcome of an attempt submission.
type SubmitResult struct {
	AttemptID   uuid.UUID      `json:"attempt_id"`
	Score       int            `json:"score"`
	IsPassed    bool           `json:"is_passed"`
	SubmittedAt time.Time      `json:"submitted_at"`
	Answers     []model.Answer `json:"answers"`
}

// Submit grades an attempt's answers and transitions it to SUBMITTED. The
// transition is one-way: a duplicate submit, concurrent or late, fails with
// ErrAlreadySubmitted and never re-grades. Passing awards a trust bonus.
func (s *AttemptService) Submit(ctx context.Context, attemptID, requesterID uuid.UUID, req *model.SubmitAttemptRequest) (*SubmitResult, error) {
	attempt, err := s.attempts.GetByID(ctx, attemptID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("get attempt: %w", err)
	}

	if attempt.UserID != requesterID {
		return nil, ErrAttemptNotOwned
	}
	if attempt.Status == model.AttemptStatusSubmitted {
		return nil, ErrAlreadySubmitted
	}

	exam, err := s.exams.GetByID(ctx, attempt.ExamID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("get exam: %w", err)
	}

	// Score is the raw point sum, compared directly against PassScore on
	// the same scale. No normalization.
	answers, score := gradeAnswers(exam, req.Answers)
	isPassed := score >= exam.PassScore

	submittedAt, err := s.attempts.Submit(ctx, attemptID, score, isPassed, answers)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Lost a race against a concurrent submit of the same attempt.
			return nil, ErrAlreadySubmitted
		}
		return nil, fmt.Errorf("submit attempt: %w", err)
	}

	// Trust bonus only after the transition is committed, so exactly one
	// submit per attempt can award it.
	if isPassed {
		if _, err := s.trust.ApplyTrustDelta(ctx, attempt.UserID, passBonus); err != nil {
			return nil, fmt.Errorf("apply pass bonus: %w", err)
		}
	}

	return &SubmitResult{
		AttemptID:   attemptID,
		Score:       score,
		IsPassed:    isPassed,
		SubmittedAt: submittedAt,
		Answers:     answers,
	}, nil
}

// GetAttempt retrieves one attempt with its violations and answers. Owners
// see their own attempts; staff callers pass admin=true to bypass the
// ownership check.
func (s *AttemptService) GetAttempt(ctx context.Context, attemptID, requesterID uuid.UUID, admin bool) (*model.ExamAttempt, error) {
	attempt, err := s.attempts.GetByID(ctx, attemptID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("get attempt: %w", err)
	}
	if !admin && attempt.UserID != requesterID {
		return nil, ErrAttemptNotOwned
	}
	return attempt, nil
}

// ListAttempts retrieves attempts for an exam, optionally filtered to one
// user.
func (s *AttemptService) ListAttempts(ctx context.Context, examID uuid.UUID, userID *uuid.UUID, page, perPage int) ([]model.ExamAttempt, int64, error) {
	return s.attempts.ListByExam(ctx, examID, userID, page, perPage)
}
