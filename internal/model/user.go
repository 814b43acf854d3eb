package model

import (
	"time"

	"github.com/google/uuid"
)

// Role enumerates user roles.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleTeacher Role = "TEACHER"
	RoleStudent Role = "STUDENT"
)

// Trust score bounds. Every user starts at TrustScoreMax and the score is
// clamped to [TrustScoreMin, TrustScoreMax] on every mutation.
const (
	TrustScoreMin     = 0
	TrustScoreMax     = 100
	TrustScoreDefault = 100
)

// User represents an account: a cadet, an instructor, or an administrator.
type User struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	FullName     string     `json:"full_name"`
	MilitaryID   string     `json:"military_id,omitempty"`
	Rank         string     `json:"rank,omitempty"`
	Role         Role       `json:"role"`
	UnitID       *uuid.UUID `json:"unit_id,omitempty"`
	TrustScore   int        `json:"trust_score"`
	IsActive     bool       `json:"is_active"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	Avatar       string     `json:"avatar,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// RegisterRequest is the payload for self-registration.
type RegisterRequest struct {
	Email    string     `json:"email" binding:"required,email"`
	Password string     `json:"password" binding:"required,min=6,max=72"`
	FullName string     `json:"full_name" binding:"required,min=2,max=255"`
	Role     Role       `json:"role" binding:"omitempty,oneof=ADMIN TEACHER STUDENT"`
	UnitID   *uuid.UUID `json:"unit_id" binding:"omitempty"`
}

// LoginRequest is the payload for logging in.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// CreateUserRequest is the payload for creating a user via admin management.
type CreateUserRequest struct {
	Email      string     `json:"email" binding:"required,email"`
	Password   string     `json:"password" binding:"required,min=6,max=72"`
	FullName   string     `json:"full_name" binding:"required,min=2,max=255"`
	MilitaryID string     `json:"military_id" binding:"omitempty,max=50"`
	Rank       string     `json:"rank" binding:"omitempty,max=100"`
	Role       Role       `json:"role" binding:"omitempty,oneof=ADMIN TEACHER STUDENT"`
	UnitID     *uuid.UUID `json:"unit_id" binding:"omitempty"`
}

// UpdateUserRequest is the payload for updating a user. Nil fields are
// left unchanged.
type UpdateUserRequest struct {
	Email      *string    `json:"email" binding:"omitempty,email"`
	Password   *string    `json:"password" binding:"omitempty,min=6,max=72"`
	FullName   *string    `json:"full_name" binding:"omitempty,min=2,max=255"`
	MilitaryID *string    `json:"military_id" binding:"omitempty,max=50"`
	Rank       *string    `json:"rank" binding:"omitempty,max=100"`
	Role       *Role      `json:"role" binding:"omitempty,oneof=ADMIN TEACHER STUDENT"`
	UnitID     *uuid.UUID `json:"unit_id" binding:"omitempty"`
	Avatar     *string    `json:"avatar" binding:"omitempty,max=500"`
}
