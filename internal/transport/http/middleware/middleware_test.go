package middleware

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(RequestIDKey))
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, w.Body.String())
	assert.Equal(t, w.Body.String(), w.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Body.String())
}

func TestIdempotency(t *testing.T) {
	handler := func(c *gin.Context) {
		body, _ := io.ReadAll(c.Request.Body)
		c.JSON(http.StatusOK, gin.H{
			"key":  c.GetString(IdempotencyKeyCtx),
			"hash": c.GetString(IdempotencyHashCtx),
			"body": string(body),
		})
	}

	t.Run("optional without key", func(t *testing.T) {
		router := gin.New()
		router.POST("/", Idempotency(false), handler)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"pikachu"}`)))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"key":"","hash":"","body":"{\"name\":\"pikachu\"}"}`, w.Body.String())
	})

	t.Run("required without key", func(t *testing.T) {
		router := gin.New()
		router.POST("/", Idempotency(true), handler)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":{"code":400,"message":"idempotency key is required"}}`, w.Body.String())
	})

	t.Run("hashes body and keeps it readable", func(t *testing.T) {
		router := gin.New()
		router.POST("/", Idempotency(true), handler)
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"name":"pikachu"}`))
		req.Header.Set("Idempotency-Key", "k-1")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"key":"k-1"`)
		assert.Contains(t, w.Body.String(), `"body":"{\"name\":\"pikachu\"}"`)
		assert.NotContains(t, w.Body.String(), `"hash":""`)
	})
}

func TestRecovery(t *testing.T) {
	log, hook := test.NewNullLogger()

	for _, tt := range []struct {
		name    string
		expose  bool
		message string
	}{
		{name: "production hides panic", expose: false, message: "internal server error"},
		{name: "development shows panic", expose: true, message: "kaboom"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(Recovery(log, tt.expose))
			router.GET("/", func(*gin.Context) { panic("kaboom") })

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Equal(t, http.StatusInternalServerError, w.Code)
			assert.JSONEq(t, `{"error":{"code":500,"message":"`+tt.message+`"}}`, w.Body.String())
		})
	}
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}

func TestLogger_LevelsFollowStatus(t *testing.T) {
	log, hook := test.NewNullLogger()
	router := gin.New()
	router.Use(RequestID(), Logger(log))
	router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	router.GET("/fail", func(c *gin.Context) {
		_ = c.Error(assert.AnError)
		c.Status(http.StatusInternalServerError)
	})

	cases := map[string]logrus.Level{
		"/ok":   logrus.InfoLevel,
		"/bad":  logrus.WarnLevel,
		"/fail": logrus.ErrorLevel,
	}
	for path, level := range cases {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
		entry := hook.LastEntry()
		require.NotNil(t, entry)
		assert.Equal(t, level, entry.Level, path)
		assert.Equal(t, path, entry.Data["path"])
		assert.NotEmpty(t, entry.Data["request_id"])
	}
	assert.Contains(t, hook.LastEntry().Data["error"], assert.AnError.Error())
}
