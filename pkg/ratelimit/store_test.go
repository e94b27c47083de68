package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreBurst(t *testing.T) {
	s := NewStore(0.001, 2)

	assert.True(t, s.Allow("1.1.1.1"))
	assert.True(t, s.Allow("1.1.1.1"))
	assert.False(t, s.Allow("1.1.1.1"))

	// other keys have their own bucket
	assert.True(t, s.Allow("2.2.2.2"))
	assert.Equal(t, 2, s.Len())
}

func TestStoreCleanup(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewStore(1, 1, WithIdleTTL(time.Minute))
	s.now = func() time.Time { return now }

	s.Allow("old")
	now = now.Add(2 * time.Minute)
	s.Allow("fresh")

	s.Cleanup()
	assert.Equal(t, 1, s.Len())
	_, ok := s.entries["fresh"]
	assert.True(t, ok)
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware(NewStore(0.5, 1)))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "3", w.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"ok":false,"error":"too many requests"}`, w.Body.String())
}
