package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/surveylens/surveylens/internal/monitoring"
)

func TestAllowIPWithinBurst(t *testing.T) {
	rl := NewRateLimiter(Config{IPLimitPerMin: 10, BurstMultiplier: 2}, nil)

	for i := 0; i < 20; i++ {
		result := rl.AllowIP("10.0.0.1")
		assert.True(t, result.Allowed, "request %d within burst", i)
	}
}

func TestAllowIPBlocksPastBurst(t *testing.T) {
	metrics := monitoring.NewMetrics()
	rl := NewRateLimiter(Config{IPLimitPerMin: 2, BurstMultiplier: 1}, metrics)

	blocked := false
	for i := 0; i < 10; i++ {
		if !rl.AllowIP("10.0.0.2").Allowed {
			blocked = true
			break
		}
	}

	require.True(t, blocked, "bucket must run out of tokens")
	assert.Positive(t, metrics.GetStats()["rate_limit_blocks"])
}

func TestSeparateKeysHaveSeparateBuckets(t *testing.T) {
	rl := NewRateLimiter(Config{IPLimitPerMin: 1, BurstMultiplier: 1}, nil)

	for i := 0; i < 5; i++ {
		rl.AllowIP("10.0.0.3")
	}
	assert.True(t, rl.AllowIP("10.0.0.4").Allowed, "fresh IP gets a fresh bucket")
	assert.Equal(t, 2, rl.GetStats()["active_limiters"])
}

func TestIPRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rl := NewRateLimiter(Config{IPLimitPerMin: 1, BurstMultiplier: 1}, nil)
	router := gin.New()
	router.Use(rl.IPRateLimitMiddleware())
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	var last *httptest.ResponseRecorder
	for i := 0; i < 10; i++ {
		last = httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "192.168.1.1:1234"
		router.ServeHTTP(last, req)
		if last.Code == http.StatusTooManyRequests {
			break
		}
	}

	require.Equal(t, http.StatusTooManyRequests, last.Code)
	assert.NotEmpty(t, last.Header().Get("Retry-After"))
	assert.NotEmpty(t, last.Header().Get("X-RateLimit-Limit"))
}
