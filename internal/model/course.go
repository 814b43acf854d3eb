package model

import (
	"time"

	"github.com/google/uuid"
)

// LessonType enumerates the kinds of lesson content.
type LessonType string

const (
	LessonTypeVideo    LessonType = "VIDEO"
	LessonTypeDocument LessonType = "DOCUMENT"
	LessonTypeSlide    LessonType = "SLIDE"
	LessonTypeText     LessonType = "TEXT"
)

// Lesson is a single unit of course content within a chapter.
type Lesson struct {
	Title           string     `json:"title" binding:"required,min=1,max=255"`
	Type            LessonType `json:"type" binding:"omitempty,oneof=VIDEO DOCUMENT SLIDE TEXT"`
	Content         string     `json:"content,omitempty"`
	VideoURL        string     `json:"video_url,omitempty" binding:"omitempty,max=500"`
	FileURL         string     `json:"file_url,omitempty" binding:"omitempty,max=500"`
	DurationMinutes int        `json:"duration_minutes" binding:"min=0"`
	Position        int        `json:"position" binding:"min=0"`
	IsPublished     bool       `json:"is_published"`
}

// Chapter groups an ordered set of lessons.
type Chapter struct {
	Title       string   `json:"title" binding:"required,min=1,max=255"`
	Description string   `json:"description,omitempty" binding:"omitempty,max=2000"`
	Position    int      `json:"position" binding:"min=0"`
	Lessons     []Lesson `json:"lessons" binding:"dive"`
}

// Course represents a course with its embedded chapter/lesson document.
// TotalLessons and TotalDuration are derived from the chapters and never
// set directly by clients.
type Course struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	InstructorID  uuid.UUID `json:"instructor_id"`
	Chapters      []Chapter `json:"chapters"`
	TotalLessons  int       `json:"total_lessons"`
	TotalDuration int       `json:"total_duration"`
	IsPublished   bool      `json:"is_published"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CreateCourseRequest is the payload for creating a course.
type CreateCourseRequest struct {
	Title       string    `json:"title" binding:"required,min=3,max=255"`
	Description string    `json:"description" binding:"omitempty,max=5000"`
	Chapters    []Chapter `json:"chapters" binding:"dive"`
}

// UpdateCourseRequest is the payload for updating a course. A nil Chapters
// field leaves the chapter document unchanged.
type UpdateCourseRequest struct {
	Title       *string   `json:"title" binding:"omitempty,min=3,max=255"`
	Description *string   `json:"description" binding:"omitempty,max=5000"`
	Chapters    []Chapter `json:"chapters" binding:"omitempty,dive"`
	IsPublished *bool     `json:"is_published" binding:"omitempty"`
}
