package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/smartmlms/smartlms-backend/internal/model"
	"github.com/smartmlms/smartlms-backend/internal/response"
	"github.com/smartmlms/smartlms-backend/internal/service"
)

// AuditHandler handles audit trail endpoints (admin only).
type AuditHandler struct {
	auditService *service.AuditService
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(auditService *service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// List godoc
// GET /api/v1/audit-logs?user_id=&action=&resource=&page=&per_page=
func (h *AuditHandler) List(c *gin.Context) {
	page, perPage := paginationParams(c)

	var userID *uuid.UUID
	if v := c.Query("user_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
			return
		}
		userID = &id
	}
	var action *model.AuditAction
	if v := c.Query("action"); v != "" {
		a := model.AuditAction(v)
		action = &a
	}

	entries, total, err := h.auditService.List(c.Request.Context(), userID, action, c.Query("resource"), page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"entries": entries}, buildPagination(page, perPage, total))
}
