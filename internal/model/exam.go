package model

import (
	"time"

	"github.com/google/uuid"
)

// QuestionType enumerates the supported question kinds. Choice types are
// graded automatically; SHORT_ANSWER and ESSAY require manual review and
// score zero at submission time.
type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "MULTIPLE_CHOICE"
	QuestionTypeTrueFalse      QuestionType = "TRUE_FALSE"
	QuestionTypeShortAnswer    QuestionType = "SHORT_ANSWER"
	QuestionTypeEssay          QuestionType = "ESSAY"
)

// Difficulty is informational only; it never affects grading.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

// Question is a single exam question. CorrectAnswer is the exact-match
// grading target for choice types. Points defaults to 1 when omitted.
type Question struct {
	Type          QuestionType `json:"type" binding:"required,oneof=MULTIPLE_CHOICE TRUE_FALSE SHORT_ANSWER ESSAY"`
	Content       string       `json:"content" binding:"required,min=1,max=5000"`
	Options       []string     `json:"options,omitempty"`
	CorrectAnswer string       `json:"correct_answer" binding:"required,max=2000"`
	Explanation   string       `json:"explanation,omitempty" binding:"omitempty,max=5000"`
	Points        int          `json:"points" binding:"min=0"`
	Difficulty    Difficulty   `json:"difficulty" binding:"omitempty,oneof=EASY MEDIUM HARD"`
}

// Exam is an exam definition: the catalog entry consumed (read-only) by the
// attempt lifecycle. TotalPoints is recomputed from the questions on every
// create/update and is never client-settable.
type Exam struct {
	ID                uuid.UUID  `json:"id"`
	CourseID          uuid.UUID  `json:"course_id"`
	Title             string     `json:"title"`
	Description       string     `json:"description,omitempty"`
	DurationMinutes   int        `json:"duration_minutes"`
	TotalPoints       int        `json:"total_points"`
	PassScore         int        `json:"pass_score"`
	ShuffleQuestions  bool       `json:"shuffle_questions"`
	ShuffleOptions    bool       `json:"shuffle_options"`
	MaxAttempts       int        `json:"max_attempts"`
	StartTime         *time.Time `json:"start_time,omitempty"`
	EndTime           *time.Time `json:"end_time,omitempty"`
	IsPublished       bool       `json:"is_published"`
	RequireProctoring bool       `json:"require_proctoring"`
	Questions         []Question `json:"questions"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// PaperQuestion is a question as served to an examinee: no correct answer,
// no explanation. Index refers to the canonical (unshuffled) position and is
// what submissions must reference.
type PaperQuestion struct {
	Index      int          `json:"index"`
	Type       QuestionType `json:"type"`
	Content    string       `json:"content"`
	Options    []string     `json:"options,omitempty"`
	Points     int          `json:"points"`
	Difficulty Difficulty   `json:"difficulty,omitempty"`
}

// CreateExamRequest is the payload for creating an exam.
type CreateExamRequest struct {
	CourseID          uuid.UUID  `json:"course_id" binding:"required"`
	Title             string     `json:"title" binding:"required,min=3,max=255"`
	Description       string     `json:"description" binding:"omitempty,max=5000"`
	DurationMinutes   int        `json:"duration_minutes" binding:"required,min=1,max=480"`
	PassScore         int        `json:"pass_score" binding:"min=0"`
	ShuffleQuestions  *bool      `json:"shuffle_questions" binding:"omitempty"`
	ShuffleOptions    *bool      `json:"shuffle_options" binding:"omitempty"`
	MaxAttempts       int        `json:"max_attempts" binding:"omitempty,min=1"`
	StartTime         *time.Time `json:"start_time" binding:"omitempty"`
	EndTime           *time.Time `json:"end_time" binding:"omitempty,gtfield=StartTime"`
	RequireProctoring *bool      `json:"require_proctoring" binding:"omitempty"`
	Questions         []Question `json:"questions" binding:"dive"`
}

// UpdateExamRequest is the payload for updating an exam. A nil Questions
// field leaves the question list (and TotalPoints) unchanged.
type UpdateExamRequest struct {
	Title             *string    `json:"title" binding:"omitempty,min=3,max=255"`
	Description       *string    `json:"description" binding:"omitempty,max=5000"`
	DurationMinutes   *int       `json:"duration_minutes" binding:"omitempty,min=1,max=480"`
	PassScore         *int       `json:"pass_score" binding:"omitempty,min=0"`
	ShuffleQuestions  *bool      `json:"shuffle_questions" binding:"omitempty"`
	ShuffleOptions    *bool      `json:"shuffle_options" binding:"omitempty"`
	MaxAttempts       *int       `json:"max_attempts" binding:"omitempty,min=1"`
	StartTime         *time.Time `json:"start_time" binding:"omitempty"`
	EndTime           *time.Time `json:"end_time" binding:"omitempty"`
	IsPublished       *bool      `json:"is_published" binding:"omitempty"`
	RequireProctoring *bool      `json:"require_proctoring" binding:"omitempty"`
	Questions         []Question `json:"questions" binding:"omitempty,dive"`
}
