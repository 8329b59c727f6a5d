package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/daffahilmyf/creature-catalog/internal/domain/entity"
	"github.com/daffahilmyf/creature-catalog/internal/domain/repository"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Creatures with a numeric payload id come first, ascending; the rest follow by name.
const (
	postgresCreatureOrder = `CASE WHEN json_typeof(payload->'id') = 'number' THEN (payload->>'id')::numeric END ASC NULLS LAST, name ASC`
	sqliteCreatureOrder   = `CASE WHEN json_type(payload, '$.id') IN ('integer', 'real') THEN 0 ELSE 1 END, CASE WHEN json_type(payload, '$.id') IN ('integer', 'real') THEN CAST(json_extract(payload, '$.id') AS REAL) END, name`
	defaultCreatureOrder  = `name ASC`
)

type CreatureRepository struct {
	db *DB
}

var _ repository.CreatureRepository = (*CreatureRepository)(nil)

func NewCreatureRepository(db *DB) *CreatureRepository {
	return &CreatureRepository{db: db}
}

func (r *CreatureRepository) Exists(ctx context.Context, name string) (bool, error) {
	var count int64
	if err := r.db.Read(ctx).Model(&entity.Creature{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *CreatureRepository) FindByName(ctx context.Context, name string) (entity.Creature, error) {
	var creature entity.Creature
	if err := r.db.Read(ctx).First(&creature, "name = ?", name).Error; err != nil {
		return entity.Creature{}, translate(err)
	}
	return creature, nil
}

func (r *CreatureRepository) Insert(ctx context.Context, name string, payload datatypes.JSON, idem *repository.IdempotencyRecord) (entity.Creature, error) {
	var creature entity.Creature
	err := r.db.WithTx(ctx, func(txCtx context.Context) error {
		created := entity.Creature{Name: name, Payload: payload}
		if err := r.db.Write(txCtx).Create(&created).Error; err != nil {
			return translate(err)
		}
		if idem != nil && idem.Key != "" {
			keyRow := entity.IdempotencyKey{
				Key:         idem.Key,
				RequestHash: idem.RequestHash,
				CreatureID:  created.ID,
				CreatedAt:   time.Now().UTC(),
			}
			if err := r.db.Write(txCtx).Create(&keyRow).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return repository.ErrIdempotencyKeyConflict
				}
				return err
			}
		}
		if err := r.writeOutbox(txCtx, entity.EventCreatureCreated, created); err != nil {
			return err
		}
		creature = created
		return nil
	})
	if err != nil {
		return entity.Creature{}, err
	}
	return creature, nil
}

func (r *CreatureRepository) FindAll(ctx context.Context) ([]entity.Creature, error) {
	creatures := make([]entity.Creature, 0)
	if err := r.db.Read(ctx).Order(r.orderClause()).Find(&creatures).Error; err != nil {
		return nil, err
	}
	return creatures, nil
}

func (r *CreatureRepository) FindByID(ctx context.Context, id string) (entity.Creature, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return entity.Creature{}, repository.ErrInvalidID
	}
	var creature entity.Creature
	if err := r.db.Read(ctx).First(&creature, "id = ?", uid).Error; err != nil {
		return entity.Creature{}, translate(err)
	}
	return creature, nil
}

func (r *CreatureRepository) Replace(ctx context.Context, id, name string, payload datatypes.JSON) (entity.Creature, error) {
	var creature entity.Creature
	err := r.db.WithTx(ctx, func(txCtx context.Context) error {
		existing, err := r.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		if err := r.db.Write(txCtx).
			Model(&existing).
			Updates(map[string]any{"name": name, "payload": payload}).Error; err != nil {
			return translate(err)
		}
		updated, err := r.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		if err := r.writeOutbox(txCtx, entity.EventCreatureUpdated, updated); err != nil {
			return err
		}
		creature = updated
		return nil
	})
	if err != nil {
		return entity.Creature{}, err
	}
	return creature, nil
}

func (r *CreatureRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithTx(ctx, func(txCtx context.Context) error {
		existing, err := r.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		res := r.db.Write(txCtx).Delete(&entity.Creature{}, "id = ?", existing.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repository.ErrDeleteFailed
		}
		if err := r.db.Write(txCtx).Delete(&entity.IdempotencyKey{}, "creature_id = ?", existing.ID).Error; err != nil {
			return err
		}
		return r.writeOutbox(txCtx, entity.EventCreatureDeleted, existing)
	})
}

func (r *CreatureRepository) FindIdempotencyKey(ctx context.Context, key string) (entity.IdempotencyKey, error) {
	var row entity.IdempotencyKey
	if err := r.db.Read(ctx).First(&row, "key = ?", key).Error; err != nil {
		return entity.IdempotencyKey{}, translate(err)
	}
	return row, nil
}

func (r *CreatureRepository) writeOutbox(ctx context.Context, eventType string, creature entity.Creature) error {
	payload := struct {
		ID         string    `json:"id"`
		Name       string    `json:"name"`
		Event      string    `json:"event"`
		OccurredAt time.Time `json:"occurred_at"`
	}{
		ID:         creature.ID.String(),
		Name:       creature.Name,
		Event:      eventType,
		OccurredAt: time.Now().UTC(),
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	outbox := entity.OutboxEvent{
		AggregateType: "creature",
		AggregateID:   creature.ID,
		EventType:     eventType,
		Payload:       datatypes.JSON(data),
		CreatedAt:     time.Now().UTC(),
	}
	return r.db.Write(ctx).Create(&outbox).Error
}

func (r *CreatureRepository) orderClause() string {
	switch r.db.Dialect() {
	case "postgres":
		return postgresCreatureOrder
	case "sqlite":
		return sqliteCreatureOrder
	default:
		return defaultCreatureOrder
	}
}

func translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return repository.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return repository.ErrConstraintViolation
	default:
		return err
	}
}
