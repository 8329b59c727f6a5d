package bootstrap

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/daffahilmyf/creature-catalog/internal/config"
	"github.com/daffahilmyf/creature-catalog/internal/domain/mocks"
	"github.com/daffahilmyf/creature-catalog/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingStore struct{}

func (pingStore) Ping(context.Context) error { return nil }
func (pingStore) Close()                     {}
func (pingStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func discardLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestNewEngine_ServesMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log := discardLogger()
	registry, err := newRegistry()
	require.NoError(t, err)

	uc := usecase.NewCreature(mocks.NewCreatureRepository(), mocks.NewProvider().Add(25, "pikachu", ""), log)
	engine := NewEngine(config.Config{Env: "prod"}, log, uc, pingStore{}, registry)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/creatures", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "creature_http_requests_total")
	assert.Contains(t, rec.Body.String(), `route="/api/creatures"`)
}

func TestNewEngine_RequireIdempotencyKey(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log := discardLogger()
	registry, err := newRegistry()
	require.NoError(t, err)

	cfg := config.Config{Server: config.Server{RequireIdempotencyKey: true}}
	uc := usecase.NewCreature(mocks.NewCreatureRepository(), mocks.NewProvider().Add(25, "pikachu", ""), log)
	engine := NewEngine(cfg, log, uc, pingStore{}, registry)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/creatures", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "idempotency key is required")
}

func TestBuildLogger(t *testing.T) {
	log, err := buildLogger(config.Config{Log: config.Log{Level: "debug", Format: "json"}})
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)

	log, err = BuildLogger(config.Config{Log: config.Log{Level: "info"}})
	require.NoError(t, err)
	assert.IsType(t, &logrus.TextFormatter{}, log.Formatter)

	_, err = buildLogger(config.Config{Log: config.Log{Level: "loud"}})
	assert.Error(t, err)
	_, err = buildLogger(config.Config{Log: config.Log{Level: "info", Format: "xml"}})
	assert.Error(t, err)
}

func TestMigrate_RejectsUnknownAction(t *testing.T) {
	cfg := config.Config{Database: config.Database{WriteDSN: "postgres://localhost:5432/catalog"}}
	err := Migrate(context.Background(), cfg, "sideways", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sideways")

	err = Migrate(context.Background(), config.Config{}, "up", 0)
	assert.EqualError(t, err, "db: WriteDSN is required")
}
