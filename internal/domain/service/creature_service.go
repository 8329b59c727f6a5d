package service

import (
	"context"

	"github.com/daffahilmyf/creature-catalog/internal/domain/entity"
)

// Idempotency carries the optional Idempotency-Key of a create request.
// An empty Key disables replay detection.
type Idempotency struct {
	Key         string
	RequestHash string
}

type CreatureService interface {
	Create(ctx context.Context, key string, idem Idempotency) (entity.Creature, bool, error)
	FindAll(ctx context.Context) ([]entity.Creature, error)
	FindByID(ctx context.Context, id string) (entity.Creature, error)
	Update(ctx context.Context, id, key string) (entity.Creature, error)
	Delete(ctx context.Context, id string) error
}
