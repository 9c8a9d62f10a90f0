package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"bookmarket.backend/internal/domain/authz"
	"bookmarket.backend/pkg/logger"
	"bookmarket.backend/pkg/redis"
	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func useMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	orig := redis.GetClient()
	redis.SetClient(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { redis.SetClient(orig) })
	return mr
}

func withPrincipal(p authz.Principal) gin.HandlerFunc {
	return func(c *gin.Context) {
		setPrincipal(c, p)
		c.Next()
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) {
		id, _ := c.Request.Context().Value(logger.RequestIDKey).(string)
		c.String(http.StatusOK, id)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Body.String()
	_, err := uuid.Parse(generated)
	assert.NoError(t, err)
	assert.Equal(t, generated, w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "client-supplied")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "client-supplied", w.Body.String())
}

func TestLoggerAndMetricsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware(), LoggerMiddleware(), MetricsMiddleware())
	r.GET("/books/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/books/1?x=1", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

type countingLimiter struct {
	allowed int
	keys    []string
}

func (l *countingLimiter) Allow(_ context.Context, key string) bool {
	l.keys = append(l.keys, key)
	if l.allowed <= 0 {
		return false
	}
	l.allowed--
	return true
}

func TestRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := &countingLimiter{allowed: 1}
	r := gin.New()
	r.POST("/auth/login", RateLimit("auth", limiter), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/login", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/login", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, limiter.keys[0], "|/auth/login")
}

func TestRateLimit_NilLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", RateLimit("auth", nil), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func newIdempotentRouter(p authz.Principal, status *int, calls *int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/reservations", withPrincipal(p), IdempotencyMiddleware(), func(c *gin.Context) {
		*calls++
		c.JSON(*status, gin.H{"call": *calls})
	})
	return r
}

func postWithKey(r *gin.Engine, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/reservations", nil)
	if key != "" {
		req.Header.Set(IdempotencyHeader, key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdempotency_ReplaysSuccessfulResponse(t *testing.T) {
	useMiniredis(t)
	status, calls := http.StatusCreated, 0
	r := newIdempotentRouter(authz.Principal{UserID: uuid.New()}, &status, &calls)

	first := postWithKey(r, "k1")
	second := postWithKey(r, "k1")

	assert.Equal(t, 1, calls)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "true", second.Header().Get("X-Idempotency-Hit"))

	postWithKey(r, "")
	assert.Equal(t, 2, calls)
}

func TestIdempotency_KeysArePerPrincipal(t *testing.T) {
	useMiniredis(t)
	status, callsA, callsB := http.StatusCreated, 0, 0
	a := newIdempotentRouter(authz.Principal{UserID: uuid.New()}, &status, &callsA)
	b := newIdempotentRouter(authz.Principal{UserID: uuid.New()}, &status, &callsB)

	postWithKey(a, "shared")
	postWithKey(b, "shared")
	assert.Equal(t, 1, callsA)
	assert.Equal(t, 1, callsB)
}

func TestIdempotency_FailureReleasesKey(t *testing.T) {
	useMiniredis(t)
	status, calls := http.StatusBadRequest, 0
	r := newIdempotentRouter(authz.Principal{UserID: uuid.New()}, &status, &calls)

	postWithKey(r, "k")
	status = http.StatusCreated
	w := postWithKey(r, "k")

	assert.Equal(t, 2, calls)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestIdempotency_InProgress(t *testing.T) {
	mr := useMiniredis(t)
	p := authz.Principal{UserID: uuid.New()}
	status, calls := http.StatusCreated, 0
	r := newIdempotentRouter(p, &status, &calls)

	assert.NoError(t, mr.Set("bookmarket:idempotency:"+p.UserID.String()+":/reservations:busy", processingMarker))
	w := postWithKey(r, "busy")

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Zero(t, calls)
}

func TestIdempotency_RedisDownStillServes(t *testing.T) {
	mr := useMiniredis(t)
	mr.Close()
	status, calls := http.StatusCreated, 0
	r := newIdempotentRouter(authz.Principal{UserID: uuid.New()}, &status, &calls)

	w := postWithKey(r, "k")
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1, calls)
}
