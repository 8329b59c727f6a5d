package bootstrap

import (
	"context"
	"testing"

	"github.com/daffahilmyf/creature-catalog/internal/domain/mocks"
	"github.com/daffahilmyf/creature-catalog/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedCreatures(t *testing.T) {
	log := discardLogger()
	repo := mocks.NewCreatureRepository()
	prov := mocks.NewProvider().
		Add(1, "bulbasaur", "").
		Add(2, "ivysaur", "").
		Add(4, "charmander", "")
	uc := usecase.NewCreature(repo, prov, log)

	result, err := SeedCreatures(context.Background(), uc, log, 4, 1)
	require.NoError(t, err)
	assert.Equal(t, SeedResult{Created: 3, Failed: 1}, result)
	assert.Equal(t, []string{"1", "2", "3", "4"}, prov.Calls)

	// A second run finds everything already registered.
	result, err = SeedCreatures(context.Background(), uc, log, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, SeedResult{Skipped: 2}, result)
	assert.Equal(t, 3, repo.Count())
}

func TestSeedCreatures_StopsOnCancel(t *testing.T) {
	log := discardLogger()
	uc := usecase.NewCreature(mocks.NewCreatureRepository(), mocks.NewProvider().Add(1, "bulbasaur", ""), log)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result, err := SeedCreatures(ctx, uc, log, 5, 1)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, result.Created)
}
