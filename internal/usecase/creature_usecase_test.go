package usecase

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/daffahilmyf/creature-catalog/internal/domain/mocks"
	"github.com/daffahilmyf/creature-catalog/internal/domain/repository"
	"github.com/daffahilmyf/creature-catalog/internal/domain/service"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUsecase(t *testing.T) (*Creature, *mocks.CreatureRepository, *mocks.Provider) {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	repo := mocks.NewCreatureRepository()
	prov := mocks.NewProvider().
		Add(25, "Pikachu", `"types":[{"slot":1,"type":{"name":"electric"}}]`).
		Add(26, "raichu", "").
		Add(4, "charmander", "").
		Add(1, "bulbasaur", "")
	return NewCreature(repo, prov, log), repo, prov
}

func TestCreature_Create(t *testing.T) {
	ctx := context.Background()

	for _, key := range []string{"pikachu", "PIKACHU", " Pikachu ", "25"} {
		t.Run(key, func(t *testing.T) {
			uc, _, _ := newTestUsecase(t)

			created, replayed, err := uc.Create(ctx, key, service.Idempotency{})
			require.NoError(t, err)
			assert.False(t, replayed)
			assert.Equal(t, "pikachu", created.Name)

			got, err := uc.FindByID(ctx, created.ID.String())
			require.NoError(t, err)
			assert.Equal(t, "pikachu", got.Name)
			assert.JSONEq(t, string(created.Payload), string(got.Payload))
		})
	}
}

func TestCreature_Create_AlreadyExists(t *testing.T) {
	ctx := context.Background()
	uc, repo, _ := newTestUsecase(t)

	_, _, err := uc.Create(ctx, "pikachu", service.Idempotency{})
	require.NoError(t, err)

	_, _, err = uc.Create(ctx, "25", service.Idempotency{})
	require.Error(t, err)
	assert.Equal(t, service.KindAlreadyExists, service.KindOf(err))
	assert.Contains(t, err.Error(), "pikachu")
	assert.Equal(t, 1, repo.Count())
	assert.Equal(t, 1, repo.Inserts)
}

type racingRepo struct {
	*mocks.CreatureRepository
}

// Exists always answers false so the insert hits the storage constraint.
func (r racingRepo) Exists(context.Context, string) (bool, error) { return false, nil }

func TestCreature_Create_ConstraintViolationMapsToAlreadyExists(t *testing.T) {
	ctx := context.Background()
	_, repo, prov := newTestUsecase(t)
	log := logrus.New()
	log.SetOutput(io.Discard)
	uc := NewCreature(racingRepo{repo}, prov, log)

	_, _, err := uc.Create(ctx, "pikachu", service.Idempotency{})
	require.NoError(t, err)

	_, _, err = uc.Create(ctx, "pikachu", service.Idempotency{})
	assert.Equal(t, service.KindAlreadyExists, service.KindOf(err))
	assert.ErrorIs(t, err, repository.ErrConstraintViolation)
	assert.Equal(t, 1, repo.Count())
}

func TestCreature_Create_UpstreamFailures(t *testing.T) {
	ctx := context.Background()
	uc, repo, prov := newTestUsecase(t)

	_, _, err := uc.Create(ctx, "mewtwo123", service.Idempotency{})
	assert.Equal(t, service.KindUpstreamNotFound, service.KindOf(err))
	assert.Contains(t, err.Error(), "mewtwo123")

	prov.Err = errors.New("connection refused")
	_, _, err = uc.Create(ctx, "pikachu", service.Idempotency{})
	assert.Equal(t, service.KindUpstream, service.KindOf(err))
	assert.Equal(t, 0, repo.Count())
}

func TestCreature_Create_RepositoryFailureIsInternal(t *testing.T) {
	ctx := context.Background()
	uc, repo, _ := newTestUsecase(t)
	repo.Err = errors.New("db down")

	_, _, err := uc.Create(ctx, "pikachu", service.Idempotency{})
	assert.Equal(t, service.KindInternal, service.KindOf(err))
}

func TestCreature_Create_Idempotency(t *testing.T) {
	ctx := context.Background()
	uc, repo, prov := newTestUsecase(t)
	idem := service.Idempotency{Key: "req-1", RequestHash: "hash-a"}

	first, replayed, err := uc.Create(ctx, "pikachu", idem)
	require.NoError(t, err)
	assert.False(t, replayed)

	again, replayed, err := uc.Create(ctx, "pikachu", idem)
	require.NoError(t, err)
	assert.True(t, replayed)
	assert.Equal(t, first.ID, again.ID)
	assert.Len(t, prov.Calls, 1, "a replay must not hit the upstream")

	_, _, err = uc.Create(ctx, "raichu", service.Idempotency{Key: "req-1", RequestHash: "hash-b"})
	assert.Equal(t, service.KindIdempotencyConflict, service.KindOf(err))
	assert.Equal(t, 1, repo.Count())
}

func TestCreature_FindAll(t *testing.T) {
	ctx := context.Background()
	uc, repo, _ := newTestUsecase(t)

	for _, key := range []string{"pikachu", "bulbasaur", "charmander"} {
		_, _, err := uc.Create(ctx, key, service.Idempotency{})
		require.NoError(t, err)
	}

	all, err := uc.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "bulbasaur", all[0].Name)
	assert.Equal(t, "charmander", all[1].Name)
	assert.Equal(t, "pikachu", all[2].Name)

	repo.Err = errors.New("db down")
	_, err = uc.FindAll(ctx)
	assert.Equal(t, service.KindInternal, service.KindOf(err))
}

func TestCreature_FindByID_Errors(t *testing.T) {
	ctx := context.Background()
	uc, repo, _ := newTestUsecase(t)

	_, err := uc.FindByID(ctx, "not-an-id")
	assert.Equal(t, service.KindInvalidID, service.KindOf(err))

	_, err = uc.FindByID(ctx, uuid.NewString())
	assert.Equal(t, service.KindNotFound, service.KindOf(err))

	repo.Err = errors.New("db down")
	_, err = uc.FindByID(ctx, uuid.NewString())
	assert.Equal(t, service.KindInternal, service.KindOf(err))
}

func TestCreature_Update(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := newTestUsecase(t)

	created, _, err := uc.Create(ctx, "pikachu", service.Idempotency{})
	require.NoError(t, err)

	// same canonical name through an alternate key is not a conflict
	same, err := uc.Update(ctx, created.ID.String(), "25")
	require.NoError(t, err)
	assert.Equal(t, created.ID, same.ID)
	assert.Equal(t, "pikachu", same.Name)

	evolved, err := uc.Update(ctx, created.ID.String(), "RAICHU")
	require.NoError(t, err)
	assert.Equal(t, created.ID, evolved.ID)
	assert.Equal(t, "raichu", evolved.Name)
	assert.Contains(t, string(evolved.Payload), `"raichu"`)
}

func TestCreature_Update_ConflictLeavesOriginalUntouched(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := newTestUsecase(t)

	pikachu, _, err := uc.Create(ctx, "pikachu", service.Idempotency{})
	require.NoError(t, err)
	raichu, _, err := uc.Create(ctx, "raichu", service.Idempotency{})
	require.NoError(t, err)

	_, err = uc.Update(ctx, pikachu.ID.String(), "26")
	require.Error(t, err)
	assert.Equal(t, service.KindAlreadyExists, service.KindOf(err))
	assert.Contains(t, err.Error(), raichu.ID.String())

	unchanged, err := uc.FindByID(ctx, pikachu.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "pikachu", unchanged.Name)
	assert.JSONEq(t, string(pikachu.Payload), string(unchanged.Payload))
}

func TestCreature_Update_Errors(t *testing.T) {
	ctx := context.Background()
	uc, _, prov := newTestUsecase(t)

	_, err := uc.Update(ctx, "bad-id", "pikachu")
	assert.Equal(t, service.KindInvalidID, service.KindOf(err))

	_, err = uc.Update(ctx, uuid.NewString(), "pikachu")
	assert.Equal(t, service.KindNotFound, service.KindOf(err))
	assert.Empty(t, prov.Calls, "missing records are rejected before the upstream call")

	created, _, err := uc.Create(ctx, "pikachu", service.Idempotency{})
	require.NoError(t, err)
	_, err = uc.Update(ctx, created.ID.String(), "missingno")
	assert.Equal(t, service.KindUpstreamNotFound, service.KindOf(err))
}

func TestCreature_Delete(t *testing.T) {
	ctx := context.Background()
	uc, repo, _ := newTestUsecase(t)

	created, _, err := uc.Create(ctx, "pikachu", service.Idempotency{})
	require.NoError(t, err)

	require.NoError(t, uc.Delete(ctx, created.ID.String()))
	_, err = uc.FindByID(ctx, created.ID.String())
	assert.Equal(t, service.KindNotFound, service.KindOf(err))

	assert.Equal(t, service.KindNotFound, service.KindOf(uc.Delete(ctx, created.ID.String())))
	assert.Equal(t, service.KindInvalidID, service.KindOf(uc.Delete(ctx, "x")))

	again, _, err := uc.Create(ctx, "pikachu", service.Idempotency{})
	require.NoError(t, err)
	repo.DeleteErr = repository.ErrDeleteFailed
	err = uc.Delete(ctx, again.ID.String())
	assert.Equal(t, service.KindDeleteFailed, service.KindOf(err))
}
