package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/smartmlms/smartlms-backend/internal/model"
	"github.com/smartmlms/smartlms-backend/internal/repository"
)

// ErrCourseNotFound indicates no course matched the given ID.
var ErrCourseNotFound = errors.New("course not found")

// CourseService handles course content management.
type CourseService struct {
	courseRepo *repository.CourseRepository
}

// NewCourseService creates a new CourseService.
func NewCourseService(courseRepo *repository.CourseRepository) *CourseService {
	return &CourseService{courseRepo: courseRepo}
}

// Create inserts a course. Lesson and duration totals are derived from the
// chapter document.
func (s *CourseService) Create(ctx context.Context, instructorID uuid.UUID, req *model.CreateCourseRequest) (*model.Course, error) {
	course := &model.Course{
		Title:        req.Title,
		Description:  req.Description,
		InstructorID: instructorID,
		Chapters:     req.Chapters,
	}
	course.TotalLessons, course.TotalDuration = courseTotals(course.Chapters)

	if err := s.courseRepo.Create(ctx, course); err != nil {
		return nil, fmt.Errorf("create course: %w", err)
	}
	return course, nil
}

// GetByID retrieves a course.
func (s *CourseService) GetByID(ctx context.Context, id uuid.UUID) (*model.Course, error) {
	course, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	return course, nil
}

// List retrieves courses with optional title search and published filter.
func (s *CourseService) List(ctx context.Context, search string, published *bool, page, perPage int) ([]model.Course, int64, error) {
	courses, total, err := s.courseRepo.List(ctx, search, published, page, perPage)
	if err != nil {
		return nil, 0, err
	}
	if courses == nil {
		courses = []model.Course{}
	}
	return courses, total, nil
}

// Update applies a partial update. Replacing the chapter document recomputes
// the totals.
func (s *CourseService) Update(ctx context.Context, id uuid.UUID, req *model.UpdateCourseRequest) (*model.Course, error) {
	course, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		course.Title = *req.Title
	}
	if req.Description != nil {
		course.Description = *req.Description
	}
	if req.Chapters != nil {
		course.Chapters = req.Chapters
		course.TotalLessons, course.TotalDuration = courseTotals(course.Chapters)
	}
	if req.IsPublished != nil {
		course.IsPublished = *req.IsPublished
	}

	if err := s.courseRepo.Update(ctx, course); err != nil {
		return nil, fmt.Errorf("update course: %w", err)
	}
	return course, nil
}

// Delete removes a course.
func (s *CourseService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.courseRepo.Delete(ctx, id)
}

func courseTotals(chapters []model.Chapter) (lessons, duration int) {
	for _, ch := range chapters {
		lessons += len(ch.Lessons)
		for _, l := range ch.Lessons {
			duration += l.DurationMinutes
		}
	}
	return lessons, duration
}
