package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"trivai/internal/config"
	"trivai/internal/models"
	"trivai/internal/store"
	"trivai/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenStore struct{}

func (brokenStore) SampleRandom(context.Context) (*models.TriviaFact, error) {
	return nil, models.ErrStoreUnavailable
}

func (brokenStore) Count(context.Context) (int64, error) { return 0, models.ErrStoreUnavailable }

type fakeTrivia struct{}

func (fakeTrivia) Random(context.Context, *logger.Logger) (*models.TriviaFact, error) {
	return &models.TriviaFact{ArticleTitle: "Random", Text: "A random fact.", Origin: models.OriginLive}, nil
}

func (fakeTrivia) Forced(_ context.Context, topic string) (*models.TriviaFact, error) {
	if topic == "Berlin" {
		return &models.TriviaFact{ArticleTitle: "Berlin", Text: "Berlin became the capital of Prussia in 1701.", Origin: models.OriginLive}, nil
	}
	return nil, errors.New("not found")
}

func serve(t *testing.T, router *gin.Engine, path string) (int, map[string]interface{}) {
	t.Helper()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func newTestRouter(facts FactReader, limit config.RateLimiterConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(NewAPI(facts, fakeTrivia{}, logger.Discard()), limit)
}

func TestFactEndpoints(t *testing.T) {
	facts := store.NewMemoryFactStore(func(int) int { return 0 })
	router := newTestRouter(facts, config.RateLimiterConfig{})

	code, body := serve(t, router, "/healthz")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])

	code, _ = serve(t, router, "/api/v1/facts/random")
	assert.Equal(t, http.StatusNotFound, code)

	_, err := facts.InsertIfAbsent(t.Context(), &models.TriviaFact{ArticleTitle: "Paris", Text: "Paris is old.", SourceURL: "https://en.wikipedia.org/wiki/Paris"})
	require.NoError(t, err)

	code, body = serve(t, router, "/api/v1/facts/random")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Paris", body["article_name"])
	assert.Equal(t, "Paris is old.", body["result"])

	code, body = serve(t, router, "/api/v1/facts/count")
	assert.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, body["count"])
}

func TestTriviaEndpoint(t *testing.T) {
	router := newTestRouter(store.NewMemoryFactStore(func(int) int { return 0 }), config.RateLimiterConfig{})

	code, body := serve(t, router, "/api/v1/trivia?topic=Berlin")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Berlin", body["article_name"])

	code, body = serve(t, router, "/api/v1/trivia")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Random", body["article_name"])

	code, _ = serve(t, router, "/api/v1/trivia?topic=Qwxzvy")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestHealthUnavailable(t *testing.T) {
	router := newTestRouter(brokenStore{}, config.RateLimiterConfig{})
	code, body := serve(t, router, "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "unavailable", body["status"])
}

func TestHealthDependencyCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)
	a := NewAPI(store.NewMemoryFactStore(func(int) int { return 0 }), fakeTrivia{}, logger.Discard())
	a.AddCheck("redis", func(context.Context) error { return errors.New("connection refused") })
	router := NewRouter(a, config.RateLimiterConfig{})

	code, body := serve(t, router, "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "redis", body["failed"])
}

func TestRateLimitedRouter(t *testing.T) {
	router := newTestRouter(store.NewMemoryFactStore(func(int) int { return 0 }), config.RateLimiterConfig{Enabled: true, Rate: 0.001, Capacity: 1})

	code, _ := serve(t, router, "/healthz")
	assert.Equal(t, http.StatusOK, code)
	code, _ = serve(t, router, "/healthz")
	assert.Equal(t, http.StatusTooManyRequests, code)
}
