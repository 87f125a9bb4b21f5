package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/SscSPs/gestion_caisse/internal/core/domain"
	"github.com/SscSPs/gestion_caisse/internal/utils"
	pkgredis "github.com/SscSPs/gestion_caisse/pkg/redis"
	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type idempotencyFixture struct {
	router *gin.Engine
	calls  *atomic.Int32
	status *atomic.Int32
	redis  *miniredis.Miniredis
}

func newIdempotencyFixture(t *testing.T) idempotencyFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	store, err := pkgredis.New(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	calls := &atomic.Int32{}
	status := &atomic.Int32{}
	status.Store(http.StatusCreated)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		actor := domain.Actor{ID: c.GetHeader("X-Test-User"), Role: domain.RoleDepositSubmitter, Approved: true}
		c.Request = c.Request.WithContext(WithActor(c.Request.Context(), actor))
		c.Next()
	})
	router.POST("/api/v1/operations", Idempotency(store, time.Hour), func(c *gin.Context) {
		n := calls.Add(1)
		c.JSON(int(status.Load()), gin.H{"call": n})
	})
	router.POST("/api/v1/operations/:id/decide", Idempotency(store, time.Hour), func(c *gin.Context) {
		calls.Add(1)
		c.JSON(http.StatusOK, gin.H{"id": c.Param("id")})
	})

	return idempotencyFixture{router: router, calls: calls, status: status, redis: mr}
}

func (f idempotencyFixture) post(user, key, body string) *httptest.ResponseRecorder {
	return f.postTo("/api/v1/operations", user, key, body)
}

func (f idempotencyFixture) postTo(path, user, key, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-User", user)
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestIdempotencyReplaysFirstSuccessfulResponse(t *testing.T) {
	f := newIdempotencyFixture(t)

	first := f.post("u1", "key-1", `{"amountMinor":100}`)
	require.Equal(t, http.StatusCreated, first.Code)

	second := f.post("u1", "key-1", `{"amountMinor":100}`)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "true", second.Header().Get(IdempotentReplayedHeader))
	assert.Equal(t, int32(1), f.calls.Load())
}

func TestIdempotencyWithoutKeyPassesThrough(t *testing.T) {
	f := newIdempotencyFixture(t)

	f.post("u1", "", `{}`)
	f.post("u1", "", `{}`)
	assert.Equal(t, int32(2), f.calls.Load())
}

func TestIdempotencyRejectsDifferentBody(t *testing.T) {
	f := newIdempotencyFixture(t)

	require.Equal(t, http.StatusCreated, f.post("u1", "key-1", `{"amountMinor":100}`).Code)
	w := f.post("u1", "key-1", `{"amountMinor":200}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, int32(1), f.calls.Load())
}

func TestIdempotencyKeyInFlightConflicts(t *testing.T) {
	f := newIdempotencyFixture(t)
	body := `{"amountMinor":100}`

	// Simulate a first request that claimed the key and has not finished yet.
	client := &pkgredis.Client{}
	userKey := client.IdempotencyKey("u1|POST|/api/v1/operations", "key-1")
	marker := `{"inFlight":true,"requestHash":"` + utils.Fingerprint("/api/v1/operations", body) + `"}`
	require.NoError(t, f.redis.Set(userKey, marker))

	w := f.post("u1", "key-1", body)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, int32(0), f.calls.Load())
}

func TestIdempotencyReleasesKeyOnFailure(t *testing.T) {
	f := newIdempotencyFixture(t)
	f.status.Store(http.StatusUnprocessableEntity)

	require.Equal(t, http.StatusUnprocessableEntity, f.post("u1", "key-1", `{}`).Code)

	f.status.Store(http.StatusCreated)
	w := f.post("u1", "key-1", `{}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, int32(2), f.calls.Load())
}

func TestIdempotencyKeysAreScopedPerUser(t *testing.T) {
	f := newIdempotencyFixture(t)

	f.post("u1", "key-1", `{}`)
	f.post("u2", "key-1", `{}`)
	assert.Equal(t, int32(2), f.calls.Load())
}

func TestIdempotencyRecordExpires(t *testing.T) {
	f := newIdempotencyFixture(t)

	f.post("u1", "key-1", `{}`)
	f.redis.FastForward(2 * time.Hour)
	f.post("u1", "key-1", `{}`)
	assert.Equal(t, int32(2), f.calls.Load())
}

func TestIdempotencyKeyReusedOnAnotherOperationIsRejected(t *testing.T) {
	f := newIdempotencyFixture(t)
	body := `{"decision":"APPROUVE"}`

	first := f.postTo("/api/v1/operations/op-a/decide", "manager", "key-1", body)
	require.Equal(t, http.StatusOK, first.Code)
	assert.JSONEq(t, `{"id":"op-a"}`, first.Body.String())

	second := f.postTo("/api/v1/operations/op-b/decide", "manager", "key-1", body)
	assert.Equal(t, http.StatusUnprocessableEntity, second.Code)
	assert.Empty(t, second.Header().Get(IdempotentReplayedHeader))
	assert.Equal(t, int32(1), f.calls.Load())

	replay := f.postTo("/api/v1/operations/op-a/decide", "manager", "key-1", body)
	assert.Equal(t, http.StatusOK, replay.Code)
	assert.Equal(t, "true", replay.Header().Get(IdempotentReplayedHeader))
	assert.Equal(t, int32(1), f.calls.Load())
}
