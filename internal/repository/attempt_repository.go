package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/smartmlms/smartlms-backend/internal/model"
)

// AttemptRepository handles exam attempt data access. The schema enforces
// the single in-progress attempt invariant with a partial unique index on
// (exam_id, user_id) WHERE status = 'IN_PROGRESS'.
type AttemptRepository struct {
	pool *pgxpool.Pool
}

// NewAttemptRepository creates a new AttemptRepository.
func NewAttemptRepository(pool *pgxpool.Pool) *AttemptRepository {
	return &AttemptRepository{pool: pool}
}

// Create inserts a new in-progress attempt. If another in-progress attempt
// for the same exam and user already exists, the partial unique index makes
// the insert a no-op and pgx.ErrNoRows is returned; the caller should
// re-read the winner with GetInProgress.
func (r *AttemptRepository) Create(ctx context.Context, a *model.ExamAttempt) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO exam_attempts (exam_id, user_id, status, question_order, ip_address, user_agent)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (exam_id, user_id) WHERE status = 'IN_PROGRESS' DO NOTHING
		 RETURNING id, started_at`,
		a.ExamID, a.UserID, model.AttemptStatusInProgress, a.QuestionOrder, a.IPAddress, a.UserAgent,
	).Scan(&a.ID, &a.StartedAt)
}

// GetInProgress retrieves the single in-progress attempt for an exam-user
// combination, if any.
func (r *AttemptRepository) GetInProgress(ctx context.Context, examID, userID uuid.UUID) (*model.ExamAttempt, error) {
	a := &model.ExamAttempt{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, exam_id, user_id, started_at, submitted_at, status, question_order,
		        violation_count, score, is_passed, ip_address, user_agent
		 FROM exam_attempts
		 WHERE exam_id = $1 AND user_id = $2 AND status = $3`,
		examID, userID, model.AttemptStatusInProgress,
	).Scan(&a.ID, &a.ExamID, &a.UserID, &a.StartedAt, &a.SubmittedAt, &a.Status,
		&a.QuestionOrder, &a.ViolationCount, &a.Score, &a.IsPassed, &a.IPAddress, &a.UserAgent)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// CountByExamAndUser counts attempts in any status. Attempt limits count
// started attempts, not just finished ones.
func (r *AttemptRepository) CountByExamAndUser(ctx context.Context, examID, userID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM exam_attempts WHERE exam_id = $1 AND user_id = $2`,
		examID, userID,
	).Scan(&count)
	return count, err
}

// GetByID retrieves a full attempt including its violations and, once
// submitted, its graded answers.
func (r *AttemptRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ExamAttempt, error) {
	a := &model.ExamAttempt{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, exam_id, user_id, started_at, submitted_at, status, question_order,
		        violation_count, score, is_passed, ip_address, user_agent
		 FROM exam_attempts WHERE id = $1`, id,
	).Scan(&a.ID, &a.ExamID, &a.UserID, &a.StartedAt, &a.SubmittedAt, &a.Status,
		&a.QuestionOrder, &a.ViolationCount, &a.Score, &a.IsPassed, &a.IPAddress, &a.UserAgent)
	if err != nil {
		return nil, err
	}

	violations, err := r.listViolations(ctx, id)
	if err != nil {
		return nil, err
	}
	a.Violations = violations

	answers, err := r.listAnswers(ctx, id)
	if err != nil {
		return nil, err
	}
	a.Answers = answers

	return a, nil
}

func (r *AttemptRepository) listViolations(ctx context.Context, attemptID uuid.UUID) ([]model.Violation, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, attempt_id, type, occurred_at, screenshot, confidence, reviewed
		 FROM attempt_violations
		 WHERE attempt_id = $1
		 ORDER BY occurred_at ASC, id ASC`, attemptID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var violations []model.Violation
	for rows.Next() {
		var v model.Violation
		if err := rows.Scan(&v.ID, &v.AttemptID, &v.Type, &v.OccurredAt,
			&v.Screenshot, &v.Confidence, &v.Reviewed); err != nil {
			return nil, err
		}
		violations = append(violations, v)
	}
	return violations, rows.Err()
}

func (r *AttemptRepository) listAnswers(ctx context.Context, attemptID uuid.UUID) ([]model.Answer, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT question_index, answer, is_correct, points
		 FROM attempt_answers
		 WHERE attempt_id = $1
		 ORDER BY question_index ASC`, attemptID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var answers []model.Answer
	for rows.Next() {
		var ans model.Answer
		if err := rows.Scan(&ans.QuestionIndex, &ans.Answer, &ans.IsCorrect, &ans.Points); err != nil {
			return nil, err
		}
		answers = append(answers, ans)
	}
	return answers, rows.Err()
}

// AppendViolation records one violation and bumps the attempt's running
// count in the same transaction.
func (r *AttemptRepository) AppendViolation(ctx context.Context, v *model.Violation) (int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO attempt_violations (attempt_id, type, occurred_at, screenshot, confidence)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		v.AttemptID, v.Type, v.OccurredAt, v.Screenshot, v.Confidence,
	).Scan(&v.ID)
	if err != nil {
		return 0, err
	}

	var count int
	err = tx.QueryRow(ctx,
		`UPDATE exam_attempts
		 SET violation_count = violation_count + 1
		 WHERE id = $1
		 RETURNING violation_count`,
		v.AttemptID,
	).Scan(&count)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return count, nil
}

// Submit transitions an attempt from IN_PROGRESS to SUBMITTED and persists
// the graded answers, all in one transaction. The status guard on the
// UPDATE makes the transition one-way: a second concurrent submit matches
// zero rows and gets pgx.ErrNoRows.
func (r *AttemptRepository) Submit(ctx context.Context, id uuid.UUID, score int, isPassed bool, answers []model.Answer) (time.Time, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return time.Time{}, err
	}
	defer tx.Rollback(ctx)

	var submittedAt time.Time
	err = tx.QueryRow(ctx,
		`UPDATE exam_attempts
		 SET status = $1, score = $2, is_passed = $3, submitted_at = NOW()
		 WHERE id = $4 AND status = $5
		 RETURNING submitted_at`,
		model.AttemptStatusSubmitted, score, isPassed, id, model.AttemptStatusInProgress,
	).Scan(&submittedAt)
	if err != nil {
		return time.Time{}, err
	}

	if len(answers) > 0 {
		rows := make([][]any, len(answers))
		for i, ans := range answers {
			rows[i] = []any{id, ans.QuestionIndex, ans.Answer, ans.IsCorrect, ans.Points}
		}
		_, err = tx.CopyFrom(ctx,
			pgx.Identifier{"attempt_answers"},
			[]string{"attempt_id", "question_index", "answer", "is_correct", "points"},
			pgx.CopyFromRows(rows))
		if err != nil {
			return time.Time{}, fmt.Errorf("copy answers: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return time.Time{}, err
	}
	return submittedAt, nil
}

// ListByExam retrieves attempts for an exam, optionally filtered to one
// user, newest first with pagination.
func (r *AttemptRepository) ListByExam(ctx context.Context, examID uuid.UUID, userID *uuid.UUID, page, perPage int) ([]model.ExamAttempt, int64, error) {
	baseQuery := ` FROM exam_attempts WHERE exam_id = $1`
	args := []any{examID}

	if userID != nil {
		args = append(args, *userID)
		baseQuery += fmt.Sprintf(" AND user_id = $%d", len(args))
	}

	var total int64
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*)"+baseQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, exam_id, user_id, started_at, submitted_at, status, question_order,
	        violation_count, score, is_passed, ip_address, user_agent` + baseQuery +
		fmt.Sprintf(" ORDER BY started_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, perPage, (page-1)*perPage)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var attempts []model.ExamAttempt
	for rows.Next() {
		var a model.ExamAttempt
		if err := rows.Scan(&a.ID, &a.ExamID, &a.UserID, &a.StartedAt, &a.SubmittedAt, &a.Status,
			&a.QuestionOrder, &a.ViolationCount, &a.Score, &a.IsPassed, &a.IPAddress, &a.UserAgent); err != nil {
			return nil, 0, err
		}
		attempts = append(attempts, a)
	}
	return attempts, total, rows.Err()
}

// ListByUser retrieves all attempts a user has made, newest first.
func (r *AttemptRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.ExamAttempt, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, exam_id, user_id, started_at, submitted_at, status, question_order,
		        violation_count, score, is_passed, ip_address, user_agent
		 FROM exam_attempts
		 WHERE user_id = $1
		 ORDER BY started_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []model.ExamAttempt
	for rows.Next() {
		var a model.ExamAttempt
		if err := rows.Scan(&a.ID, &a.ExamID, &a.UserID, &a.StartedAt, &a.SubmittedAt, &a.Status,
			&a.QuestionOrder, &a.ViolationCount, &a.Score, &a.IsPassed, &a.IPAddress, &a.UserAgent); err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}
