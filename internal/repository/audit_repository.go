package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/smartmlms/smartlms-backend/internal/model"
)

// AuditRepository persists audit trail entries. Writes normally arrive in
// batches from the audit worker; Insert exists as the row-by-row fallback.
type AuditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

// BulkInsert writes a batch of entries with COPY.
func (r *AuditRepository) BulkInsert(ctx context.Context, entries []*model.AuditEntry) error {
	rows := make([][]any, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []any{
			e.UserID, e.Action, e.Resource, e.ResourceID,
			[]byte(e.Details), e.IPAddress, e.UserAgent, e.CreatedAt,
		})
	}

	_, err := r.pool.CopyFrom(ctx,
		pgx.Identifier{"audit_logs"},
		[]string{"user_id", "action", "resource", "resource_id", "details", "ip_address", "user_agent", "created_at"},
		pgx.CopyFromRows(rows))
	return err
}

// Insert writes a single entry.
func (r *AuditRepository) Insert(ctx context.Context, e *model.AuditEntry) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO audit_logs (user_id, action, resource, resource_id, details, ip_address, user_agent, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.UserID, e.Action, e.Resource, e.ResourceID,
		[]byte(e.Details), e.IPAddress, e.UserAgent, e.CreatedAt)
	return err
}

// List retrieves audit entries with optional user/action/resource filters,
// newest first with pagination.
func (r *AuditRepository) List(ctx context.Context, userID *uuid.UUID, action *model.AuditAction, resource string, page, perPage int) ([]model.AuditEntry, int64, error) {
	baseQuery := ` FROM audit_logs WHERE 1=1`
	args := []any{}

	if userID != nil {
		args = append(args, *userID)
		baseQuery += fmt.Sprintf(" AND user_id = $%d", len(args))
	}
	if action != nil {
		args = append(args, *action)
		baseQuery += fmt.Sprintf(" AND action = $%d", len(args))
	}
	if resource != "" {
		args = append(args, resource)
		baseQuery += fmt.Sprintf(" AND resource = $%d", len(args))
	}

	var total int64
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*)"+baseQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, user_id, action, resource, resource_id, details, ip_address, user_agent, created_at` +
		baseQuery +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, perPage, (page-1)*perPage)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var entries []model.AuditEntry
	for rows.Next() {
		var e model.AuditEntry
		var details []byte
		if err := rows.Scan(&e.ID, &e.UserID, &e.Action, &e.Resource, &e.ResourceID,
			&details, &e.IPAddress, &e.UserAgent, &e.CreatedAt); err != nil {
			return nil, 0, err
		}
		e.Details = details
		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}
