package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/smartmlms/smartlms-backend/internal/config"
	"github.com/smartmlms/smartlms-backend/internal/model"
	"github.com/smartmlms/smartlms-backend/internal/repository"
)

const (
	BatchSize    = 50
	BatchTimeout = 2 * time.Second
	PollTimeout  = 1 * time.Second // Must be >= 1s to satisfy Redis
)

// AuditWorker drains the audit queue from Redis and batch-persists entries
// to PostgreSQL. Entries that fail to persist are requeued so a database
// outage delays the trail instead of losing it.
type AuditWorker struct {
	repo *repository.AuditRepository
	rdb  *redis.Client
	log  zerolog.Logger
}

func NewAuditWorker(repo *repository.AuditRepository, rdb *redis.Client, log zerolog.Logger) *AuditWorker {
	return &AuditWorker{
		repo: repo,
		rdb:  rdb,
		log:  log.With().Str("component", "audit_worker").Logger(),
	}
}

func (w *AuditWorker) Start(ctx context.Context) {
	w.log.Info().Msg("AuditWorker started")

	buffer := make([]*model.AuditEntry, 0, BatchSize)
	lastFlushTime := time.Now()

	for {
		// Flush on size or age.
		if len(buffer) > 0 {
			if len(buffer) >= BatchSize || time.Since(lastFlushTime) >= BatchTimeout {
				w.flushSafe(ctx, buffer)
				buffer = buffer[:0]
				lastFlushTime = time.Now()
			}
		}

		select {
		case <-ctx.Done():
			w.shutdown(buffer)
			return
		default:
		}

		result, err := w.rdb.BLPop(ctx, PollTimeout, config.WorkerKey.PersistAuditQueue).Result()
		if err != nil {
			if err == redis.Nil {
				continue // Queue empty, loop back to check the flush timer
			}
			if ctx.Err() != nil {
				return
			}
			w.log.Error().Err(err).Msg("Redis connection error, sleeping 3s")
			time.Sleep(3 * time.Second)
			continue
		}

		if len(result) < 2 {
			continue
		}

		var entry model.AuditEntry
		if err := json.Unmarshal([]byte(result[1]), &entry); err != nil {
			// Malformed JSON cannot be retried. Log and discard.
			w.log.Error().Err(err).Str("data", result[1]).Msg("Discarding malformed audit entry")
			continue
		}

		buffer = append(buffer, &entry)
	}
}

// flushSafe attempts a bulk insert, falling back to row-by-row persistence
// with requeue on failure.
func (w *AuditWorker) flushSafe(ctx context.Context, batch []*model.AuditEntry) {
	if err := w.repo.BulkInsert(ctx, batch); err != nil {
		w.log.Warn().Err(err).Int("count", len(batch)).Msg("Bulk insert failed, attempting row-by-row recovery")
		w.fallbackInsert(ctx, batch)
	}
}

func (w *AuditWorker) fallbackInsert(ctx context.Context, batch []*model.AuditEntry) {
	requeueList := make([]*model.AuditEntry, 0)

	for _, e := range batch {
		if err := w.repo.Insert(ctx, e); err != nil {
			w.log.Error().Err(err).Str("action", string(e.Action)).Msg("Insert failed, requeueing")
			requeueList = append(requeueList, e)
		}
	}

	if len(requeueList) > 0 {
		w.requeue(ctx, requeueList)
	}
}

func (w *AuditWorker) requeue(ctx context.Context, items []*model.AuditEntry) {
	pipe := w.rdb.Pipeline()
	for _, e := range items {
		data, _ := json.Marshal(e)
		pipe.RPush(ctx, config.WorkerKey.PersistAuditQueue, data)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		w.log.Error().Err(err).Msg("CRITICAL: Failed to requeue audit entries. Data loss occurred.")
	} else {
		w.log.Info().Int("count", len(items)).Msg("Requeued failed audit entries")
		// Back off so a hard-down database is not hammered.
		time.Sleep(2 * time.Second)
	}
}

func (w *AuditWorker) shutdown(buffer []*model.AuditEntry) {
	w.log.Info().Msg("Worker stopping, flushing remaining buffer...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if len(buffer) > 0 {
		w.flushSafe(shutdownCtx, buffer)
	}
}
