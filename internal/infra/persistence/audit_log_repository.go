package persistence

import (
	"context"
	"encoding/json"
	"time"

	"github.com/daffahilmyf/creature-catalog/internal/domain/entity"
	"gorm.io/datatypes"
)

type AuditLogRepository struct {
	db *DB
}

func NewAuditLogRepository(db *DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

// Record stores one delivered creature event. Payloads that are not valid JSON
// are kept as a JSON string so the row is never lost.
func (r *AuditLogRepository) Record(ctx context.Context, subject string, payload []byte) error {
	doc := payload
	if !json.Valid(payload) {
		quoted, err := json.Marshal(string(payload))
		if err != nil {
			return err
		}
		doc = quoted
	}

	eventType := subject
	var envelope struct {
		Event string `json:"event"`
	}
	if err := json.Unmarshal(doc, &envelope); err == nil && envelope.Event != "" {
		eventType = envelope.Event
	}

	row := entity.AuditLog{
		EventType: eventType,
		Payload:   datatypes.JSON(doc),
		CreatedAt: time.Now().UTC(),
	}
	return r.db.Write(ctx).Create(&row).Error
}

func (r *AuditLogRepository) ListByEventType(ctx context.Context, eventType string, limit int) ([]entity.AuditLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []entity.AuditLog
	if err := r.db.Read(ctx).
		Where("event_type = ?", eventType).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
