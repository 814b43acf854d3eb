package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/smartmlms/smartlms-backend/internal/config"
	"github.com/smartmlms/smartlms-backend/internal/model"
	"github.com/smartmlms/smartlms-backend/internal/repository"
)

// AuditService records audit trail entries. Writes go through a Redis queue
// drained by the audit worker, so the request path never blocks on the
// database for auditing.
type AuditService struct {
	auditRepo *repository.AuditRepository
	rdb       *redis.Client
	log       zerolog.Logger
}

// NewAuditService creates a new AuditService.
func NewAuditService(auditRepo *repository.AuditRepository, rdb *redis.Client, log zerolog.Logger) *AuditService {
	return &AuditService{
		auditRepo: auditRepo,
		rdb:       rdb,
		log:       log.With().Str("component", "audit_service").Logger(),
	}
}

// Enqueue pushes one entry onto the persistence queue. Audit failures are
// logged, never propagated: auditing must not fail the audited request.
func (s *AuditService) Enqueue(ctx context.Context, e *model.AuditEntry) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	data, err := json.Marshal(e)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to marshal audit entry")
		return
	}
	if err := s.rdb.RPush(ctx, config.WorkerKey.PersistAuditQueue, data).Err(); err != nil {
		s.log.Error().Err(err).Str("action", string(e.Action)).Msg("Failed to enqueue audit entry")
	}
}

// List retrieves persisted audit entries with optional filters.
func (s *AuditService) List(ctx context.Context, userID *uuid.UUID, action *model.AuditAction, resource string, page, perPage int) ([]model.AuditEntry, int64, error) {
	entries, total, err := s.auditRepo.List(ctx, userID, action, resource, page, perPage)
	if err != nil {
		return nil, 0, err
	}
	if entries == nil {
		entries = []model.AuditEntry{}
	}
	return entries, total, nil
}
