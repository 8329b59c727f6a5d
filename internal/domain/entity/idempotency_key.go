package entity

import (
	"time"

	"github.com/google/uuid"
)

// IdempotencyKey remembers which creature a keyed create request produced.
type IdempotencyKey struct {
	Key         string    `gorm:"primaryKey"`
	RequestHash string    `gorm:"not null"`
	CreatureID  uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt   time.Time `gorm:"not null"`
}

func (IdempotencyKey) TableName() string {
	return "idempotency_keys"
}
