package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/smartmlms/smartlms-backend/internal/model"
)

// CourseRepository handles course data access. Chapters and lessons are
// stored as a jsonb document on the course row.
type CourseRepository struct {
	pool *pgxpool.Pool
}

// NewCourseRepository creates a new CourseRepository.
func NewCourseRepository(pool *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{pool: pool}
}

func scanCourse(row interface{ Scan(...any) error }) (*model.Course, error) {
	c := &model.Course{}
	var chapters []byte
	err := row.Scan(&c.ID, &c.Title, &c.Description, &c.InstructorID, &chapters,
		&c.TotalLessons, &c.TotalDuration, &c.IsPublished, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(chapters) > 0 {
		if err := json.Unmarshal(chapters, &c.Chapters); err != nil {
			return nil, fmt.Errorf("unmarshal chapters: %w", err)
		}
	}
	return c, nil
}

// Create inserts a new course.
func (r *CourseRepository) Create(ctx context.Context, c *model.Course) error {
	chapters, err := json.Marshal(c.Chapters)
	if err != nil {
		return fmt.Errorf("marshal chapters: %w", err)
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO courses (title, description, instructor_id, chapters, total_lessons, total_duration, is_published)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`,
		c.Title, c.Description, c.InstructorID, chapters, c.TotalLessons, c.TotalDuration, c.IsPublished,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

// GetByID retrieves a course by ID.
func (r *CourseRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Course, error) {
	return scanCourse(r.pool.QueryRow(ctx,
		`SELECT id, title, description, instructor_id, chapters, total_lessons, total_duration,
		        is_published, created_at, updated_at
		 FROM courses WHERE id = $1`, id))
}

// List retrieves courses with optional title search and published filter,
// paginated, newest first.
func (r *CourseRepository) List(ctx context.Context, search string, published *bool, page, perPage int) ([]model.Course, int64, error) {
	baseQuery := ` FROM courses WHERE 1=1`
	args := []any{}

	if search != "" {
		args = append(args, "%"+search+"%")
		baseQuery += fmt.Sprintf(" AND title ILIKE $%d", len(args))
	}
	if published != nil {
		args = append(args, *published)
		baseQuery += fmt.Sprintf(" AND is_published = $%d", len(args))
	}

	var total int64
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*)"+baseQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, title, description, instructor_id, chapters, total_lessons, total_duration,
	        is_published, created_at, updated_at` + baseQuery +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, perPage, (page-1)*perPage)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var courses []model.Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, 0, err
		}
		courses = append(courses, *c)
	}
	return courses, total, rows.Err()
}

// Update overwrites the mutable fields of a course, including the chapter
// document and the derived totals.
func (r *CourseRepository) Update(ctx context.Context, c *model.Course) error {
	chapters, err := json.Marshal(c.Chapters)
	if err != nil {
		return fmt.Errorf("marshal chapters: %w", err)
	}
	_, err = r.pool.Exec(ctx,
		`UPDATE courses
		 SET title = $1, description = $2, chapters = $3, total_lessons = $4,
		     total_duration = $5, is_published = $6, updated_at = NOW()
		 WHERE id = $7`,
		c.Title, c.Description, chapters, c.TotalLessons, c.TotalDuration, c.IsPublished, c.ID)
	return err
}

// Delete removes a course.
func (r *CourseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	return err
}
