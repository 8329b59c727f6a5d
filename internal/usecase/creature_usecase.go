package usecase

import (
	"context"
	"errors"

	"github.com/daffahilmyf/creature-catalog/internal/domain/entity"
	"github.com/daffahilmyf/creature-catalog/internal/domain/repository"
	"github.com/daffahilmyf/creature-catalog/internal/domain/service"
	"github.com/daffahilmyf/creature-catalog/internal/infra/provider"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// Provider looks up creature documents upstream by name or numeric id.
type Provider interface {
	FetchByKey(ctx context.Context, key string) (datatypes.JSON, error)
}

type Creature struct {
	repo     repository.CreatureRepository
	provider Provider
	log      *logrus.Logger
}

var _ service.CreatureService = (*Creature)(nil)

func NewCreature(repo repository.CreatureRepository, provider Provider, log *logrus.Logger) *Creature {
	return &Creature{repo: repo, provider: provider, log: log}
}

func (u *Creature) Create(ctx context.Context, key string, idem service.Idempotency) (entity.Creature, bool, error) {
	if idem.Key != "" {
		replayed, ok, err := u.replay(ctx, idem)
		if err != nil {
			return entity.Creature{}, false, err
		}
		if ok {
			return replayed, true, nil
		}
	}

	payload, err := u.fetch(ctx, key)
	if err != nil {
		return entity.Creature{}, false, err
	}
	name, err := u.canonicalName(key, payload)
	if err != nil {
		return entity.Creature{}, false, err
	}

	exists, err := u.repo.Exists(ctx, name)
	if err != nil {
		u.log.WithError(err).WithField("name", name).Error("create creature: exists check failed")
		return entity.Creature{}, false, service.Internal("create creature", err)
	}
	if exists {
		return entity.Creature{}, false, service.AlreadyExists(name, nil)
	}

	var record *repository.IdempotencyRecord
	if idem.Key != "" {
		record = &repository.IdempotencyRecord{Key: idem.Key, RequestHash: idem.RequestHash}
	}
	creature, err := u.repo.Insert(ctx, name, payload, record)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrConstraintViolation):
			return entity.Creature{}, false, service.AlreadyExists(name, err)
		case errors.Is(err, repository.ErrIdempotencyKeyConflict):
			return entity.Creature{}, false, service.IdempotencyConflict(idem.Key, err)
		}
		u.log.WithError(err).WithField("name", name).Error("create creature failed")
		return entity.Creature{}, false, service.Internal("create creature", err)
	}
	u.log.WithFields(logrus.Fields{"id": creature.ID, "name": creature.Name}).Info("creature created")
	return creature, false, nil
}

func (u *Creature) FindAll(ctx context.Context) ([]entity.Creature, error) {
	creatures, err := u.repo.FindAll(ctx)
	if err != nil {
		u.log.WithError(err).Error("list creatures failed")
		return nil, service.Internal("list creatures", err)
	}
	return creatures, nil
}

func (u *Creature) FindByID(ctx context.Context, id string) (entity.Creature, error) {
	creature, err := u.repo.FindByID(ctx, id)
	if err != nil {
		return entity.Creature{}, u.lookupError("get creature", id, err)
	}
	return creature, nil
}

func (u *Creature) Update(ctx context.Context, id, key string) (entity.Creature, error) {
	current, err := u.repo.FindByID(ctx, id)
	if err != nil {
		return entity.Creature{}, u.lookupError("update creature", id, err)
	}

	payload, err := u.fetch(ctx, key)
	if err != nil {
		return entity.Creature{}, err
	}
	name, err := u.canonicalName(key, payload)
	if err != nil {
		return entity.Creature{}, err
	}

	holder, err := u.repo.FindByName(ctx, name)
	switch {
	case err == nil && holder.ID != current.ID:
		return entity.Creature{}, service.AlreadyExistsConflict(name, holder.ID.String())
	case err != nil && !errors.Is(err, repository.ErrNotFound):
		u.log.WithError(err).WithField("name", name).Error("update creature: conflict check failed")
		return entity.Creature{}, service.Internal("update creature", err)
	}

	updated, err := u.repo.Replace(ctx, id, name, payload)
	if err != nil {
		if errors.Is(err, repository.ErrConstraintViolation) {
			return entity.Creature{}, service.AlreadyExists(name, err)
		}
		return entity.Creature{}, u.lookupError("update creature", id, err)
	}
	u.log.WithFields(logrus.Fields{"id": updated.ID, "name": updated.Name}).Info("creature updated")
	return updated, nil
}

func (u *Creature) Delete(ctx context.Context, id string) error {
	if _, err := u.repo.FindByID(ctx, id); err != nil {
		return u.lookupError("delete creature", id, err)
	}
	if err := u.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrDeleteFailed) {
			u.log.WithError(err).WithField("id", id).Error("delete creature affected no rows")
			return service.DeleteFailed(id, err)
		}
		return u.lookupError("delete creature", id, err)
	}
	u.log.WithField("id", id).Info("creature deleted")
	return nil
}

func (u *Creature) replay(ctx context.Context, idem service.Idempotency) (entity.Creature, bool, error) {
	row, err := u.repo.FindIdempotencyKey(ctx, idem.Key)
	if errors.Is(err, repository.ErrNotFound) {
		return entity.Creature{}, false, nil
	}
	if err != nil {
		u.log.WithError(err).Error("create creature: idempotency lookup failed")
		return entity.Creature{}, false, service.Internal("create creature", err)
	}
	if row.RequestHash != idem.RequestHash {
		return entity.Creature{}, false, service.IdempotencyConflict(idem.Key, repository.ErrIdempotencyKeyConflict)
	}
	creature, err := u.repo.FindByID(ctx, row.CreatureID.String())
	if err != nil {
		return entity.Creature{}, false, u.lookupError("create creature", row.CreatureID.String(), err)
	}
	return creature, true, nil
}

func (u *Creature) fetch(ctx context.Context, key string) (datatypes.JSON, error) {
	payload, err := u.provider.FetchByKey(ctx, key)
	if err == nil {
		return payload, nil
	}
	if errors.Is(err, provider.ErrNotFound) {
		return nil, service.UpstreamNotFound(key, err)
	}
	u.log.WithError(err).WithField("key", key).Error("upstream lookup failed")
	return nil, service.Upstream(key, err)
}

func (u *Creature) canonicalName(key string, payload datatypes.JSON) (string, error) {
	name, ok := entity.PayloadName(payload)
	if !ok {
		u.log.WithField("key", key).Error("upstream payload has no name")
		return "", service.Upstream(key, errors.New("payload has no name field"))
	}
	return name, nil
}

// lookupError keeps NotFound and InvalidID visible to callers and hides everything else.
func (u *Creature) lookupError(op, id string, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return service.NotFound(id, err)
	case errors.Is(err, repository.ErrInvalidID):
		return service.InvalidID(id, err)
	}
	u.log.WithError(err).WithField("id", id).Errorf("%s failed", op)
	return service.Internal(op, err)
}
