package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/daffahilmyf/creature-catalog/internal/domain/mocks"
	"github.com/daffahilmyf/creature-catalog/internal/domain/repository"
	"github.com/daffahilmyf/creature-catalog/internal/transport/http/handlers"
	"github.com/daffahilmyf/creature-catalog/internal/transport/http/middleware"
	"github.com/daffahilmyf/creature-catalog/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type okStore struct{}

func (okStore) Ping(context.Context) error { return nil }
func (okStore) Close()                     {}
func (okStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

var _ repository.Store = okStore{}

func silentLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// newCatalogServer serves the real handlers over in-memory doubles.
func newCatalogServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := silentLogger()
	prov := mocks.NewProvider().
		Add(25, "pikachu", `"sprites":{"front_default":"https://img/25.png"}`).
		Add(26, "raichu", "")
	uc := usecase.NewCreature(mocks.NewCreatureRepository(), prov, log)

	engine := gin.New()
	handlers.NewRouter(handlers.NewHandler(uc, okStore{}, false)).RegisterRoutes(engine, middleware.Idempotency(false))
	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)
	return srv
}

func TestAPI_RoundTrip(t *testing.T) {
	srv := newCatalogServer(t)
	api := NewAPI(srv.URL, 5*time.Second)
	ctx := context.Background()

	list, err := api.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	created, err := api.Create(ctx, "PIKACHU")
	require.NoError(t, err)
	assert.Equal(t, "pikachu", created.Creature.Name)
	assert.Equal(t, "creature pikachu registered", created.Message)

	got, err := api.Get(ctx, created.Creature.ID)
	require.NoError(t, err)
	assert.JSONEq(t, `{"front_default":"https://img/25.png"}`, string(got.Sprites))

	updated, err := api.Update(ctx, created.Creature.ID, "raichu")
	require.NoError(t, err)
	assert.Equal(t, "raichu", updated.Creature.Name)

	require.NoError(t, api.Delete(ctx, created.Creature.ID))
	list, err = api.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestAPI_SurfacesServerMessage(t *testing.T) {
	srv := newCatalogServer(t)
	api := NewAPI(srv.URL, 5*time.Second)
	ctx := context.Background()

	_, err := api.Create(ctx, "pikachu")
	require.NoError(t, err)

	_, err = api.Create(ctx, "25")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "creature pikachu is already registered", apiErr.Message)

	_, err = api.Get(ctx, "not-a-uuid")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "invalid id: not-a-uuid", apiErr.Message)
}

func TestEnvelopeMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "nested", body: `{"error":{"code":404,"message":"creature x not found upstream"}}`, want: "creature x not found upstream"},
		{name: "plain string", body: `{"error":"boom"}`, want: "boom"},
		{name: "no error field", body: `{"status":"down"}`, want: "fallback"},
		{name: "not json", body: `<html>bad gateway</html>`, want: "fallback"},
		{name: "empty message", body: `{"error":{"code":500,"message":""}}`, want: "fallback"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, envelopeMessage([]byte(tt.body), "fallback"))
		})
	}
}

func TestAPI_TransportFailureUsesFallback(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	_, err := NewAPI(srv.URL, time.Second).List(context.Background())
	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
	assert.Contains(t, err.Error(), "failed to fetch creatures")
}

func TestEnrichment_Describe(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got = string(body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"output":"Pikachu stores electricity in its cheeks."}`))
	}))
	defer srv.Close()

	text, err := NewEnrichment(srv.URL).Describe(context.Background(), "pikachu")
	require.NoError(t, err)
	assert.JSONEq(t, `{"pokemon":"pikachu"}`, got)
	assert.Equal(t, "Pikachu stores electricity in its cheeks.", text)
}

func TestEnrichment_DescribeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewEnrichment(srv.URL).Describe(context.Background(), "pikachu")
	assert.ErrorContains(t, err, "502")
}
