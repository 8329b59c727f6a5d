package bootstrap

import (
	"context"
	"strconv"

	"github.com/daffahilmyf/creature-catalog/internal/config"
	"github.com/daffahilmyf/creature-catalog/internal/domain/service"
	"github.com/daffahilmyf/creature-catalog/internal/infra/persistence"
	"github.com/daffahilmyf/creature-catalog/internal/infra/provider"
	"github.com/daffahilmyf/creature-catalog/internal/usecase"
	"github.com/sirupsen/logrus"
)

// SeedResult counts what a seed run did with each upstream id.
type SeedResult struct {
	Created int
	Skipped int
	Failed  int
}

func Seed(ctx context.Context, cfg config.Config, count, startID int) error {
	log, err := buildLogger(cfg)
	if err != nil {
		return err
	}

	conn, err := OpenDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	repo := persistence.NewCreatureRepository(conn)
	upstream := provider.New(cfg.Upstream.BaseURL, cfg.Upstream.Timeout)
	result, err := SeedCreatures(ctx, usecase.NewCreature(repo, upstream, log), log, count, startID)
	if err != nil {
		return err
	}

	log.Infof("bootstrap: seeded %d creatures (%d already present, %d failed)", result.Created, result.Skipped, result.Failed)
	return nil
}

// SeedCreatures registers upstream ids startID..startID+count-1 through the
// normal create path. Already registered creatures are skipped; a cancelled
// context stops the run.
func SeedCreatures(ctx context.Context, creatures service.CreatureService, log *logrus.Logger, count, startID int) (SeedResult, error) {
	if count <= 0 {
		count = 10
	}
	if startID <= 0 {
		startID = 1
	}

	var result SeedResult
	for id := startID; id < startID+count; id++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		key := strconv.Itoa(id)
		creature, _, err := creatures.Create(ctx, key, service.Idempotency{})
		switch {
		case err == nil:
			result.Created++
			log.WithField("name", creature.Name).Debug("seed: creature registered")
		case service.KindOf(err) == service.KindAlreadyExists:
			result.Skipped++
		default:
			result.Failed++
			log.WithError(err).WithField("key", key).Warn("seed: creature import failed")
		}
	}
	return result, nil
}
