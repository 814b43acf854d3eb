package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/smartmlms/smartlms-backend/internal/middleware"
	"github.com/smartmlms/smartlms-backend/internal/model"
	"github.com/smartmlms/smartlms-backend/internal/response"
	"github.com/smartmlms/smartlms-backend/internal/service"
)

const (
	refreshInterval = 15 * time.Second
	refreshTimeout  = 5 * time.Second // prevent slow queries from blocking the SSE loop
)

// MonitorHandler streams live proctoring state for an exam to staff via
// SSE: who is in progress, violation counts, and submitted scores.
type MonitorHandler struct {
	attemptService *service.AttemptService
	log            zerolog.Logger
}

// NewMonitorHandler creates a new MonitorHandler.
func NewMonitorHandler(attemptService *service.AttemptService, log zerolog.Logger) *MonitorHandler {
	return &MonitorHandler{
		attemptService: attemptService,
		log:            log.With().Str("component", "monitor_handler").Logger(),
	}
}

type monitorSnapshot struct {
	Timestamp  int64               `json:"timestamp"`
	InProgress int                 `json:"in_progress"`
	Submitted  int                 `json:"submitted"`
	Attempts   []model.ExamAttempt `json:"attempts"`
}

// MonitorExamSSE godoc
// GET /api/v1/exams/:id/monitor
// Streams attempt snapshots for an exam every 15 seconds.
func (h *MonitorHandler) MonitorExamSSE(c *gin.Context) {
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

	reqCtx := c.Request.Context()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	monLog := h.log.With().Str("exam_id", examID.String()).Logger()
	monLog.Info().Msg("Staff connected to exam monitor SSE")

	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()

	// Send immediately on connect, then every tick.
	h.writeSnapshot(c, examID)

	for {
		select {
		case <-reqCtx.Done():
			monLog.Info().Msg("Staff disconnected from exam monitor SSE")
			return
		case <-ticker.C:
			h.writeSnapshot(c, examID)
		}
	}
}

func (h *MonitorHandler) writeSnapshot(c *gin.Context, examID uuid.UUID) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), refreshTimeout)
	defer cancel()

	attempts, _, err := h.attemptService.ListAttempts(ctx, examID, nil, 1, 100)
	if err != nil {
		h.log.Error().Err(err).Msg("Monitor snapshot query failed")
		return
	}
	if attempts == nil {
		attempts = []model.ExamAttempt{}
	}

	snap := monitorSnapshot{
		Timestamp: time.Now().Unix(),
		Attempts:  attempts,
	}
	for _, a := range attempts {
		switch a.Status {
		case model.AttemptStatusInProgress:
			snap.InProgress++
		case model.AttemptStatusSubmitted:
			snap.Submitted++
		}
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return
	}
	c.Writer.Write([]byte("data: "))
	c.Writer.Write(data)
	c.Writer.Write([]byte("\n\n"))
	c.Writer.Flush()
}
