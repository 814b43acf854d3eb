package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/smartmlms/smartlms-backend/internal/model"
)

const userColumns = `id, email, password_hash, full_name, military_id, rank, role, unit_id,
	 trust_score, is_active, last_login, avatar, created_at, updated_at`

// UserRepository handles user data access, including the trust-score ledger.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.MilitaryID, &u.Rank,
		&u.Role, &u.UnitID, &u.TrustScore, &u.IsActive, &u.LastLogin, &u.Avatar,
		&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Create inserts a new user with the default trust score.
func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO users (email, password_hash, full_name, military_id, rank, role, unit_id, avatar)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, trust_score, is_active, created_at, updated_at`,
		u.Email, u.PasswordHash, u.FullName, u.MilitaryID, u.Rank, u.Role, u.UnitID, u.Avatar,
	).Scan(&u.ID, &u.TrustScore, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetByEmail retrieves a user by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

// List retrieves users with optional role/unit filters, a name/email search,
// and pagination.
func (r *UserRepository) List(ctx context.Context, role *model.Role, unitID *uuid.UUID, search string, page, perPage int) ([]model.User, int64, error) {
	baseQuery := ` FROM users WHERE 1=1`
	args := []any{}

	if role != nil {
		args = append(args, *role)
		baseQuery += fmt.Sprintf(" AND role = $%d", len(args))
	}
	if unitID != nil {
		args = append(args, *unitID)
		baseQuery += fmt.Sprintf(" AND unit_id = $%d", len(args))
	}
	if search != "" {
		args = append(args, "%"+search+"%")
		baseQuery += fmt.Sprintf(" AND (full_name ILIKE $%d OR email ILIKE $%d)", len(args), len(args))
	}

	var total int64
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*)"+baseQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := "SELECT " + userColumns + baseQuery +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, perPage, (page-1)*perPage)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, *u)
	}
	return users, total, rows.Err()
}

// Update overwrites the mutable fields of a user.
func (r *UserRepository) Update(ctx context.Context, u *model.User) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users
		 SET email = $1, password_hash = $2, full_name = $3, military_id = $4, rank = $5,
		     role = $6, unit_id = $7, avatar = $8, updated_at = NOW()
		 WHERE id = $9`,
		u.Email, u.PasswordHash, u.FullName, u.MilitaryID, u.Rank, u.Role, u.UnitID, u.Avatar, u.ID)
	return err
}

// Delete removes a user.
func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	return err
}

// SetActive toggles the active flag.
func (r *UserRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET is_active = $1, updated_at = NOW() WHERE id = $2`, active, id)
	return err
}

// TouchLastLogin stamps the last successful login time.
func (r *UserRepository) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET last_login = $1 WHERE id = $2`, at, id)
	return err
}

// ApplyTrustDelta atomically applies a bounded delta to a user's trust score
// and returns the new value. The clamp to [0,100] happens inside a single
// UPDATE, so concurrent callers for the same user cannot lose updates.
// Returns pgx.ErrNoRows if the user does not exist.
func (r *UserRepository) ApplyTrustDelta(ctx context.Context, id uuid.UUID, delta int) (int, error) {
	var newScore int
	err := r.pool.QueryRow(ctx,
		`UPDATE users
		 SET trust_score = LEAST($1, GREATEST($2, trust_score + $3))
		 WHERE id = $4
		 RETURNING trust_score`,
		model.TrustScoreMax, model.TrustScoreMin, delta, id,
	).Scan(&newScore)
	if err != nil {
		return 0, err
	}
	return newScore, nil
}
