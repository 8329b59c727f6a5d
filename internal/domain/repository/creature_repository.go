package repository

import (
	"context"

	"github.com/daffahilmyf/creature-catalog/internal/domain/entity"
	"gorm.io/datatypes"
)

// IdempotencyRecord ties a create request to the creature it produced.
type IdempotencyRecord struct {
	Key         string
	RequestHash string
}

type CreatureRepository interface {
	Exists(ctx context.Context, name string) (bool, error)
	FindByName(ctx context.Context, name string) (entity.Creature, error)
	Insert(ctx context.Context, name string, payload datatypes.JSON, idem *IdempotencyRecord) (entity.Creature, error)
	FindAll(ctx context.Context) ([]entity.Creature, error)
	FindByID(ctx context.Context, id string) (entity.Creature, error)
	Replace(ctx context.Context, id, name string, payload datatypes.JSON) (entity.Creature, error)
	Delete(ctx context.Context, id string) error
	FindIdempotencyKey(ctx context.Context, key string) (entity.IdempotencyKey, error)
}
