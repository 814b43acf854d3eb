package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/smartmlms/smartlms-backend/internal/model"
	"github.com/smartmlms/smartlms-backend/internal/repository"
)

// ErrEmailTaken rejects registration with a duplicate email.
var ErrEmailTaken = errors.New("email is already registered")

// ErrUserNotFound indicates no user matched the given ID.
var ErrUserNotFound = errors.New("user not found")

// UserService handles account management.
type UserService struct {
	userRepo *repository.UserRepository
	auth     *AuthService
}

// NewUserService creates a new UserService.
func NewUserService(userRepo *repository.UserRepository, auth *AuthService) *UserService {
	return &UserService{userRepo: userRepo, auth: auth}
}

// Register creates a new account from a self-registration request. The role
// defaults to STUDENT.
func (s *UserService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	role := req.Role
	if role == "" {
		role = model.RoleStudent
	}

	user := &model.User{
		Email:        req.Email,
		PasswordHash: hash,
		FullName:     req.FullName,
		Role:         role,
		UnitID:       req.UnitID,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Create creates an account via admin management, allowing military fields.
func (s *UserService) Create(ctx context.Context, req *model.CreateUserRequest) (*model.User, error) {
	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	role := req.Role
	if role == "" {
		role = model.RoleStudent
	}

	user := &model.User{
		Email:        req.Email,
		PasswordHash: hash,
		FullName:     req.FullName,
		MilitaryID:   req.MilitaryID,
		Rank:         req.Rank,
		Role:         role,
		UnitID:       req.UnitID,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// GetByID retrieves a user.
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// List retrieves users with optional filters and pagination.
func (s *UserService) List(ctx context.Context, role *model.Role, unitID *uuid.UUID, search string, page, perPage int) ([]model.User, int64, error) {
	users, total, err := s.userRepo.List(ctx, role, unitID, search, page, perPage)
	if err != nil {
		return nil, 0, err
	}
	if users == nil {
		users = []model.User{}
	}
	return users, total, nil
}

// Update applies a partial update to a user.
func (s *UserService) Update(ctx context.Context, id uuid.UUID, req *model.UpdateUserRequest) (*model.User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Password != nil {
		hash, err := s.auth.HashPassword(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = hash
	}
	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.MilitaryID != nil {
		user.MilitaryID = *req.MilitaryID
	}
	if req.Rank != nil {
		user.Rank = *req.Rank
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.UnitID != nil {
		user.UnitID = req.UnitID
	}
	if req.Avatar != nil {
		user.Avatar = *req.Avatar
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// SetActive enables or disables an account. Disabling also drops the active
// session, so outstanding tokens die immediately.
func (s *UserService) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	if err := s.userRepo.SetActive(ctx, id, active); err != nil {
		return err
	}
	if !active {
		return s.auth.Logout(ctx, id)
	}
	return nil
}

// Delete removes a user.
func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.userRepo.Delete(ctx, id)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
