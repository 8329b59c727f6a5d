package worker

import (
	"context"
	"time"

	"github.com/daffahilmyf/creature-catalog/internal/config"
	"github.com/daffahilmyf/creature-catalog/internal/domain/entity"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type OutboxStore interface {
	Claim(ctx context.Context, limit int, lockTimeout time.Duration, maxAttempts int) ([]entity.OutboxEvent, error)
	MarkProcessed(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error
}

type EventPublisher interface {
	PublishEvent(ctx context.Context, event entity.OutboxEvent) error
}

// OutboxRelay moves claimed outbox rows onto the message bus.
type OutboxRelay struct {
	store     OutboxStore
	publisher EventPublisher
	cfg       config.Outbox
	log       *logrus.Logger
}

func NewOutboxRelay(store OutboxStore, publisher EventPublisher, cfg config.Outbox, log *logrus.Logger) *OutboxRelay {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	return &OutboxRelay{store: store, publisher: publisher, cfg: cfg, log: log}
}

// Run polls until ctx is done.
func (r *OutboxRelay) Run(ctx context.Context) {
	r.log.Infof("outbox-worker: started (batch=%d, interval=%s)", r.cfg.BatchSize, r.cfg.PollInterval)
	ticker := time.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if _, err := r.ProcessBatch(ctx); err != nil {
			r.log.WithError(err).Warn("outbox-worker: process failed")
		}
		select {
		case <-ctx.Done():
			r.log.Info("outbox-worker: stopped")
			return
		case <-ticker.C:
		}
	}
}

// ProcessBatch publishes one claimed batch and returns how many events went out.
func (r *OutboxRelay) ProcessBatch(ctx context.Context) (int, error) {
	events, err := r.store.Claim(ctx, r.cfg.BatchSize, r.cfg.LockTimeout, r.cfg.MaxAttempts)
	if err != nil {
		return 0, err
	}
	published := 0
	for _, event := range events {
		entry := r.log.WithFields(logrus.Fields{
			"event_id":   event.ID.String(),
			"event_type": event.EventType,
			"attempt":    event.Attempts,
		})
		if err := r.publisher.PublishEvent(ctx, event); err != nil {
			entry.WithError(err).Warn("outbox-worker: publish failed")
			if err := r.store.MarkFailed(ctx, event.ID, err.Error()); err != nil {
				entry.WithError(err).Warn("outbox-worker: mark failed")
			}
			continue
		}
		if err := r.store.MarkProcessed(ctx, event.ID); err != nil {
			entry.WithError(err).Warn("outbox-worker: mark processed")
			continue
		}
		published++
	}
	return published, nil
}
