package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/smartmlms/smartlms-backend/internal/model"
)

// ExamRepository handles exam catalog data access. Questions are stored as
// a jsonb document on the exam row; the catalog is never mutated by the
// attempt lifecycle.
type ExamRepository struct {
	pool *pgxpool.Pool
}

// NewExamRepository creates a new ExamRepository.
func NewExamRepository(pool *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{pool: pool}
}

const examColumns = `id, course_id, title, description, duration_minutes, total_points, pass_score,
	 shuffle_questions, shuffle_options, max_attempts, start_time, end_time,
	 is_published, require_proctoring, questions, created_at, updated_at`

func scanExam(row interface{ Scan(...any) error }) (*model.Exam, error) {
	e := &model.Exam{}
	var questions []byte
	err := row.Scan(&e.ID, &e.CourseID, &e.Title, &e.Description, &e.DurationMinutes,
		&e.TotalPoints, &e.PassScore, &e.ShuffleQuestions, &e.ShuffleOptions,
		&e.MaxAttempts, &e.StartTime, &e.EndTime, &e.IsPublished, &e.RequireProctoring,
		&questions, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(questions) > 0 {
		if err := json.Unmarshal(questions, &e.Questions); err != nil {
			return nil, fmt.Errorf("unmarshal questions: %w", err)
		}
	}
	return e, nil
}

// Create inserts a new exam definition.
func (r *ExamRepository) Create(ctx context.Context, e *model.Exam) error {
	questions, err := json.Marshal(e.Questions)
	if err != nil {
		return fmt.Errorf("marshal questions: %w", err)
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO exams (course_id, title, description, duration_minutes, total_points, pass_score,
		                    shuffle_questions, shuffle_options, max_attempts, start_time, end_time,
		                    is_published, require_proctoring, questions)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		 RETURNING id, created_at, updated_at`,
		e.CourseID, e.Title, e.Description, e.DurationMinutes, e.TotalPoints, e.PassScore,
		e.ShuffleQuestions, e.ShuffleOptions, e.MaxAttempts, e.StartTime, e.EndTime,
		e.IsPublished, e.RequireProctoring, questions,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

// GetByID retrieves a full exam definition, correct answers included.
// Redaction for examinee display happens in the service layer.
func (r *ExamRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	return scanExam(r.pool.QueryRow(ctx,
		`SELECT `+examColumns+` FROM exams WHERE id = $1`, id))
}

// List retrieves exams with optional course and published filters, newest
// first.
func (r *ExamRepository) List(ctx context.Context, courseID *uuid.UUID, published *bool) ([]model.Exam, error) {
	query := `SELECT ` + examColumns + ` FROM exams WHERE 1=1`
	args := []any{}

	if courseID != nil {
		args = append(args, *courseID)
		query += fmt.Sprintf(" AND course_id = $%d", len(args))
	}
	if published != nil {
		args = append(args, *published)
		query += fmt.Sprintf(" AND is_published = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exams []model.Exam
	for rows.Next() {
		e, err := scanExam(rows)
		if err != nil {
			return nil, err
		}
		exams = append(exams, *e)
	}
	return exams, rows.Err()
}

// Update overwrites an exam definition, including the question document.
func (r *ExamRepository) Update(ctx context.Context, e *model.Exam) error {
	questions, err := json.Marshal(e.Questions)
	if err != nil {
		return fmt.Errorf("marshal questions: %w", err)
	}
	_, err = r.pool.Exec(ctx,
		`UPDATE exams
		 SET title = $1, description = $2, duration_minutes = $3, total_points = $4, pass_score = $5,
		     shuffle_questions = $6, shuffle_options = $7, max_attempts = $8, start_time = $9,
		     end_time = $10, is_published = $11, require_proctoring = $12, questions = $13,
		     updated_at = NOW()
		 WHERE id = $14`,
		e.Title, e.Description, e.DurationMinutes, e.TotalPoints, e.PassScore,
		e.ShuffleQuestions, e.ShuffleOptions, e.MaxAttempts, e.StartTime, e.EndTime,
		e.IsPublished, e.RequireProctoring, questions, e.ID)
	return err
}

// Delete removes an exam definition. Past attempts are retained.
func (r *ExamRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM exams WHERE id = $1`, id)
	return err
}
