package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/smartmlms/smartlms-backend/internal/config"
	"github.com/smartmlms/smartlms-backend/internal/model"
	"github.com/smartmlms/smartlms-backend/internal/repository"
)

// ErrNoQuestions rejects publishing an exam without questions.
var ErrNoQuestions = errors.New("exam has no questions, cannot publish")

// paperCacheTTL bounds staleness of the cached examinee paper. Edits to a
// published exam invalidate the cache explicitly; the TTL only covers
// invalidation failures.
const paperCacheTTL = 10 * time.Minute

// ExamService handles exam catalog business logic and the Redis paper
// cache.
type ExamService struct {
	examRepo *repository.ExamRepository
	rdb      *redis.Client
	log      zerolog.Logger
}

// NewExamService creates a new ExamService.
func NewExamService(examRepo *repository.ExamRepository, rdb *redis.Client, log zerolog.Logger) *ExamService {
	return &ExamService{
		examRepo: examRepo,
		rdb:      rdb,
		log:      log.With().Str("component", "exam_service").Logger(),
	}
}

// GetByID retrieves a full exam definition, answers included. For examinee
// display use Paper.
func (s *ExamService) GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	return s.examRepo.GetByID(ctx, id)
}

// List retrieves exams with optional course and published filters.
func (s *ExamService) List(ctx context.Context, courseID *uuid.UUID, published *bool) ([]model.Exam, error) {
	exams, err := s.examRepo.List(ctx, courseID, published)
	if err != nil {
		return nil, err
	}
	if exams == nil {
		exams = []model.Exam{}
	}
	return exams, nil
}

// Create inserts a new exam. TotalPoints is derived from the questions;
// MaxAttempts defaults to 1 and the shuffle/proctoring flags default on.
func (s *ExamService) Create(ctx context.Context, req *model.CreateExamRequest) (*model.Exam, error) {
	exam := &model.Exam{
		CourseID:          req.CourseID,
		Title:             req.Title,
		Description:       req.Description,
		DurationMinutes:   req.DurationMinutes,
		PassScore:         req.PassScore,
		ShuffleQuestions:  true,
		ShuffleOptions:    true,
		MaxAttempts:       1,
		StartTime:         req.StartTime,
		EndTime:           req.EndTime,
		RequireProctoring: true,
		Questions:         req.Questions,
	}
	if req.ShuffleQuestions != nil {
		exam.ShuffleQuestions = *req.ShuffleQuestions
	}
	if req.ShuffleOptions != nil {
		exam.ShuffleOptions = *req.ShuffleOptions
	}
	if req.MaxAttempts > 0 {
		exam.MaxAttempts = req.MaxAttempts
	}
	if req.RequireProctoring != nil {
		exam.RequireProctoring = *req.RequireProctoring
	}
	defaultQuestionPoints(exam.Questions)
	exam.TotalPoints = sumPoints(exam.Questions)

	if err := s.examRepo.Create(ctx, exam); err != nil {
		return nil, fmt.Errorf("create exam: %w", err)
	}
	return exam, nil
}

// Update applies a partial update. Changing the question list recomputes
// TotalPoints and invalidates the cached paper.
func (s *ExamService) Update(ctx context.Context, id uuid.UUID, req *model.UpdateExamRequest) (*model.Exam, error) {
	exam, err := s.examRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		exam.Title = *req.Title
	}
	if req.Description != nil {
		exam.Description = *req.Description
	}
	if req.DurationMinutes != nil {
		exam.DurationMinutes = *req.DurationMinutes
	}
	if req.PassScore != nil {
		exam.PassScore = *req.PassScore
	}
	if req.ShuffleQuestions != nil {
		exam.ShuffleQuestions = *req.ShuffleQuestions
	}
	if req.ShuffleOptions != nil {
		exam.ShuffleOptions = *req.ShuffleOptions
	}
	if req.MaxAttempts != nil {
		exam.MaxAttempts = *req.MaxAttempts
	}
	if req.StartTime != nil {
		exam.StartTime = req.StartTime
	}
	if req.EndTime != nil {
		exam.EndTime = req.EndTime
	}
	if req.RequireProctoring != nil {
		exam.RequireProctoring = *req.RequireProctoring
	}
	if req.Questions != nil {
		exam.Questions = req.Questions
		defaultQuestionPoints(exam.Questions)
		exam.TotalPoints = sumPoints(exam.Questions)
	}
	if req.IsPublished != nil {
		if *req.IsPublished && len(exam.Questions) == 0 {
			return nil, ErrNoQuestions
		}
		exam.IsPublished = *req.IsPublished
	}

	if err := s.examRepo.Update(ctx, exam); err != nil {
		return nil, fmt.Errorf("update exam: %w", err)
	}
	s.invalidatePaper(ctx, id)
	return exam, nil
}

// Delete removes an exam and its cached paper. Past attempts survive.
func (s *ExamService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.examRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidatePaper(ctx, id)
	return nil
}

// Paper returns the examinee-facing question list in canonical order, with
// correct answers and explanations stripped. Served from Redis when warm.
func (s *ExamService) Paper(ctx context.Context, examID uuid.UUID) ([]model.PaperQuestion, error) {
	key := config.CacheKey.ExamPaperKey(examID.String())

	if data, err := s.rdb.Get(ctx, key).Bytes(); err == nil {
		var paper []model.PaperQuestion
		if err := json.Unmarshal(data, &paper); err == nil {
			return paper, nil
		}
		s.log.Warn().Str("exam_id", examID.String()).Msg("Discarding corrupt cached paper")
	} else if !errors.Is(err, redis.Nil) {
		s.log.Warn().Err(err).Msg("Paper cache read failed, falling back to database")
	}

	exam, err := s.examRepo.GetByID(ctx, examID)
	if err != nil {
		return nil, err
	}

	paper := make([]model.PaperQuestion, len(exam.Questions))
	for i, q := range exam.Questions {
		paper[i] = model.PaperQuestion{
			Index:      i,
			Type:       q.Type,
			Content:    q.Content,
			Options:    q.Options,
			Points:     q.Points,
			Difficulty: q.Difficulty,
		}
	}

	if data, err := json.Marshal(paper); err == nil {
		if err := s.rdb.Set(ctx, key, data, paperCacheTTL).Err(); err != nil {
			s.log.Warn().Err(err).Msg("Paper cache write failed")
		}
	}

	return paper, nil
}

func (s *ExamService) invalidatePaper(ctx context.Context, examID uuid.UUID) {
	key := config.CacheKey.ExamPaperKey(examID.String())
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		s.log.Warn().Err(err).Str("exam_id", examID.String()).Msg("Paper cache invalidation failed")
	}
}

// defaultQuestionPoints gives questions submitted without a point value the
// default weight of 1, so no question is ever worth nothing.
func defaultQuestionPoints(questions []model.Question) {
	for i := range questions {
		if questions[i].Points <= 0 {
			questions[i].Points = 1
		}
	}
}

func sumPoints(questions []model.Question) int {
	total := 0
	for _, q := range questions {
		total += q.Points
	}
	return total
}
