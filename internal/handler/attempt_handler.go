package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/smartmlms/smartlms-backend/internal/middleware"
	"github.com/smartmlms/smartlms-backend/internal/model"
	"github.com/smartmlms/smartlms-backend/internal/response"
	"github.com/smartmlms/smartlms-backend/internal/service"
	"github.com/smartmlms/smartlms-backend/internal/validator"
)

// AttemptHandler handles the exam attempt lifecycle endpoints.
type AttemptHandler struct {
	attemptService *service.AttemptService
	examService    *service.ExamService
	auditService   *service.AuditService
}

// NewAttemptHandler creates a new AttemptHandler.
func NewAttemptHandler(attemptService *service.AttemptService, examService *service.ExamService, auditService *service.AuditService) *AttemptHandler {
	return &AttemptHandler{
		attemptService: attemptService,
		examService:    examService,
		auditService:   auditService,
	}
}

// Start godoc
// POST /api/v1/exams/:id/attempts
// Starts an attempt, or returns the caller's existing in-progress attempt
// unchanged.
func (h *AttemptHandler) Start(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	examID, ok := uuidParam(c, "id")
	if !ok {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	attempt, err := h.attemptService.Start(c.Request.Context(), examID, claims.UserID, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		h.failAttemptError(c, err)
		return
	}

	h.auditService.Enqueue(c.Request.Context(), &model.AuditEntry{
		UserID:     &claims.UserID,
		Action:     model.AuditActionExamStart,
		Resource:   "attempt",
		ResourceID: attempt.ID.String(),
		IPAddress:  c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
	})

	response.Success(c, http.StatusCreated, gin.H{"attempt": attempt})
}

// Get godoc
// GET /api/v1/attempts/:id
// Owners see their own attempts; staff see any.
func (h *AttemptHandler) Get(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	attemptID, ok := uuidParam(c, "id")
	if !ok {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	admin := claims.Role != model.RoleStudent
	attempt, err := h.attemptService.GetAttempt(c.Request.Context(), attemptID, claims.UserID, admin)
	if err != nil {
		h.failAttemptError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attempt": attempt})
}

// Paper godoc
// GET /api/v1/attempts/:id/paper
// Returns the sanitized questions arranged in this attempt's fixed order.
func (h *AttemptHandler) Paper(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	attemptID, ok := uuidParam(c, "id")
	if !ok {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	attempt, err := h.attemptService.GetAttempt(c.Request.Context(), attemptID, claims.UserID, false)
	if err != nil {
		h.failAttemptError(c, err)
		return
	}

	paper, err := h.examService.Paper(c.Request.Context(), attempt.ExamID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	// Arrange canonical questions into the attempt's permutation. Indices
	// outside the current paper (the exam shrank after the attempt began)
	// are skipped.
	ordered := make([]model.PaperQuestion, 0, len(attempt.QuestionOrder))
	for _, idx := range attempt.QuestionOrder {
		if idx >= 0 && idx < len(paper) {
			ordered = append(ordered, paper[idx])
		}
	}

	response.Success(c, http.StatusOK, gin.H{
		"attempt_id": attempt.ID,
		"questions":  ordered,
	})
}

// Submit godoc
// POST /api/v1/attempts/:id/submit
// Grades the answers and finalizes the attempt. One-way: repeat submissions
// are rejected.
func (h *AttemptHandler) Submit(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	attemptID, ok := uuidParam(c, "id")
	if !ok {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.SubmitAttemptRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.attemptService.Submit(c.Request.Context(), attemptID, claims.UserID, &req)
	if err != nil {
		h.failAttemptError(c, err)
		return
	}

	h.auditService.Enqueue(c.Request.Context(), &model.AuditEntry{
		UserID:     &claims.UserID,
		Action:     model.AuditActionExamSubmit,
		Resource:   "attempt",
		ResourceID: attemptID.String(),
		IPAddress:  c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
	})

	response.Success(c, http.StatusOK, gin.H{"result": result})
}

// ReportViolation godoc
// POST /api/v1/attempts/:id/violations
// Records a proctoring violation and applies its trust-score penalty.
func (h *AttemptHandler) ReportViolation(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	attemptID, ok := uuidParam(c, "id")
	if !ok {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.ReportViolationRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.attemptService.AddViolation(c.Request.Context(), attemptID, &req)
	if err != nil {
		h.failAttemptError(c, err)
		return
	}

	h.auditService.Enqueue(c.Request.Context(), &model.AuditEntry{
		UserID:     &claims.UserID,
		Action:     model.AuditActionViolation,
		Resource:   "attempt",
		ResourceID: attemptID.String(),
		IPAddress:  c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
	})

	response.Success(c, http.StatusOK, result)
}

// ListByExam godoc
// GET /api/v1/exams/:id/attempts?user_id=&page=&per_page=
// Staff see all attempts for the exam; students see only their own.
func (h *AttemptHandler) ListByExam(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	examID, ok := uuidParam(c, "id")
	if !ok {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	page, perPage := paginationParams(c)

	var userID *uuid.UUID
	if claims.Role == model.RoleStudent {
		userID = &claims.UserID
	} else if v := c.Query("user_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
			return
		}
		userID = &id
	}

	attempts, total, err := h.attemptService.ListAttempts(c.Request.Context(), examID, userID, page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if attempts == nil {
		attempts = []model.ExamAttempt{}
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"attempts": attempts}, buildPagination(page, perPage, total))
}

// failAttemptError maps attempt lifecycle sentinels to response codes.
func (h *AttemptHandler) failAttemptError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExamNotFound), errors.Is(err, service.ErrAttemptNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrExamNotPublished):
		response.Fail(c, http.StatusForbidden, response.ErrExamNotPublished)
	case errors.Is(err, service.ErrExamNotStarted):
		response.Fail(c, http.StatusForbidden, response.ErrExamNotStarted)
	case errors.Is(err, service.ErrExamEnded):
		response.Fail(c, http.StatusForbidden, response.ErrExamEnded)
	case errors.Is(err, service.ErrAttemptLimitReached):
		response.Fail(c, http.StatusForbidden, response.ErrAttemptLimitReached)
	case errors.Is(err, service.ErrAttemptNotOwned):
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
	case errors.Is(err, service.ErrAlreadySubmitted):
		response.Fail(c, http.StatusConflict, response.ErrAlreadySubmitted)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
