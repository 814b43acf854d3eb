package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smartmlms/smartlms-backend/internal/middleware"
	"github.com/smartmlms/smartlms-backend/internal/model"
	"github.com/smartmlms/smartlms-backend/internal/response"
	"github.com/smartmlms/smartlms-backend/internal/service"
	"github.com/smartmlms/smartlms-backend/internal/validator"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService  *service.AuthService
	userService  *service.UserService
	auditService *service.AuditService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService, userService *service.UserService, auditService *service.AuditService) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		userService:  userService,
		auditService: auditService,
	}
}

// Register godoc
// POST /api/v1/auth/register
// Creates an account. The role defaults to STUDENT.
func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	user, err := h.userService.Register(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			response.Fail(c, http.StatusConflict, response.ErrConflict)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	h.auditService.Enqueue(c.Request.Context(), &model.AuditEntry{
		UserID:     &user.ID,
		Action:     model.AuditActionCreate,
		Resource:   "user",
		ResourceID: user.ID.String(),
		IPAddress:  c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
	})

	response.Success(c, http.StatusCreated, gin.H{"user": user})
}

// Login godoc
// POST /api/v1/auth/login
// Validates email + password and returns a JWT. A student login invalidates
// any earlier session for the same account.
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	token, user, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
		case errors.Is(err, service.ErrAccountDisabled):
			response.Fail(c, http.StatusForbidden, response.ErrAccountDisabled)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	h.auditService.Enqueue(c.Request.Context(), &model.AuditEntry{
		UserID:     &user.ID,
		Action:     model.AuditActionLogin,
		Resource:   "user",
		ResourceID: user.ID.String(),
		IPAddress:  c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
	})

	response.Success(c, http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	})
}

// Me godoc
// GET /api/v1/auth/me
// Returns the profile of the authenticated user.
func (h *AuthHandler) Me(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": user})
}

// Logout godoc
// POST /api/v1/auth/logout
// Drops the active session, invalidating outstanding student tokens.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	if err := h.authService.Logout(c.Request.Context(), claims.UserID); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	h.auditService.Enqueue(c.Request.Context(), &model.AuditEntry{
		UserID:     &claims.UserID,
		Action:     model.AuditActionLogout,
		Resource:   "user",
		ResourceID: claims.UserID.String(),
		IPAddress:  c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
	})

	response.Success(c, http.StatusOK, gin.H{})
}
