package persistence

import (
	"context"
	"time"

	"github.com/daffahilmyf/creature-catalog/internal/domain/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OutboxRepository struct {
	db *DB
}

func NewOutboxRepository(db *DB) *OutboxRepository {
	return &OutboxRepository{db: db}
}

// Claim locks up to limit unprocessed events for this worker. Events whose lock
// is older than lockTimeout are reclaimed; events past maxAttempts are left alone.
func (r *OutboxRepository) Claim(ctx context.Context, limit int, lockTimeout time.Duration, maxAttempts int) ([]entity.OutboxEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	if lockTimeout <= 0 {
		lockTimeout = time.Minute
	}
	if maxAttempts <= 0 {
		maxAttempts = 10
	}

	var events []entity.OutboxEvent
	err := r.db.WithTx(ctx, func(txCtx context.Context) error {
		now := time.Now().UTC()
		query := r.db.Write(txCtx).
			Model(&entity.OutboxEvent{}).
			Where("processed_at IS NULL").
			Where("attempts < ?", maxAttempts).
			Where("locked_at IS NULL OR locked_at < ?", now.Add(-lockTimeout)).
			Order("created_at").
			Limit(limit)
		if r.db.Dialect() == "postgres" {
			query = query.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"})
		}

		var ids []uuid.UUID
		if err := query.Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}

		if err := r.db.Write(txCtx).
			Model(&entity.OutboxEvent{}).
			Where("id IN ?", ids).
			Updates(map[string]any{
				"locked_at": now,
				"attempts":  gorm.Expr("attempts + 1"),
			}).Error; err != nil {
			return err
		}
		return r.db.Write(txCtx).Where("id IN ?", ids).Order("created_at").Find(&events).Error
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *OutboxRepository) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	return r.db.Write(ctx).
		Model(&entity.OutboxEvent{}).
		Where("id = ?", id).
		Updates(map[string]any{"processed_at": time.Now().UTC(), "locked_at": nil}).
		Error
}

func (r *OutboxRepository) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	return r.db.Write(ctx).
		Model(&entity.OutboxEvent{}).
		Where("id = ?", id).
		Updates(map[string]any{"last_error": errMsg, "locked_at": nil}).
		Error
}
