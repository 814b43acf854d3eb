package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/smartmlms/smartlms-backend/internal/model"
)

const unitColumns = `id, name, code, description, type, category, parent_id, level,
	 sort_order, is_active, created_at, updated_at`

// UnitRepository handles organizational unit data access.
type UnitRepository struct {
	pool *pgxpool.Pool
}

// NewUnitRepository creates a new UnitRepository.
func NewUnitRepository(pool *pgxpool.Pool) *UnitRepository {
	return &UnitRepository{pool: pool}
}

func scanUnit(row interface{ Scan(...any) error }) (*model.Unit, error) {
	u := &model.Unit{}
	err := row.Scan(&u.ID, &u.Name, &u.Code, &u.Description, &u.Type, &u.Category,
		&u.ParentID, &u.Level, &u.Order, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Create inserts a new unit. Level must already be derived from the parent.
func (r *UnitRepository) Create(ctx context.Context, u *model.Unit) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO units (name, code, description, type, category, parent_id, level, sort_order)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, is_active, created_at, updated_at`,
		u.Name, u.Code, u.Description, u.Type, u.Category, u.ParentID, u.Level, u.Order,
	).Scan(&u.ID, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
}

// GetByID retrieves a unit by ID.
func (r *UnitRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Unit, error) {
	return scanUnit(r.pool.QueryRow(ctx,
		`SELECT `+unitColumns+` FROM units WHERE id = $1`, id))
}

// ListAll retrieves every unit ordered for display (level, then sort order,
// then name). The tree endpoint builds the hierarchy from this flat list.
func (r *UnitRepository) ListAll(ctx context.Context) ([]model.Unit, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+unitColumns+` FROM units ORDER BY level ASC, sort_order ASC, name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var units []model.Unit
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, err
		}
		units = append(units, *u)
	}
	return units, rows.Err()
}

// Update overwrites the mutable fields of a unit.
func (r *UnitRepository) Update(ctx context.Context, u *model.Unit) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE units
		 SET name = $1, code = $2, description = $3, type = $4, category = $5,
		     sort_order = $6, is_active = $7, updated_at = NOW()
		 WHERE id = $8`,
		u.Name, u.Code, u.Description, u.Type, u.Category, u.Order, u.IsActive, u.ID)
	return err
}

// Delete removes a unit.
func (r *UnitRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM units WHERE id = $1`, id)
	return err
}
