package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/twelve-week-sync/internal/adapters/cache"
	"github.com/comitanigiacomo/twelve-week-sync/internal/config"
)

func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)

	rdb, err := cache.NewRedisClient(context.Background(), cache.Options{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       1,
	})
	if err != nil {
		t.Skipf("Skipping integration test (Redis down): %v", err)
	}
	t.Cleanup(func() { _ = rdb.Close() })

	rdb.FlushDB(context.Background())
	return rdb
}

// limitedRouter trusts an X-Test-User header as the authenticated user.
func limitedRouter(rdb *redis.Client, limit int) *gin.Engine {
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if user := c.GetHeader("X-Test-User"); user != "" {
			c.Set(ContextUserIDKey, user)
		}
		c.Next()
	})
	router.Use(RateLimiterMiddleware(rdb, limit, time.Minute))
	router.GET("/dashboard", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return router
}

func hit(router *gin.Engine, ip, user string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set("X-Forwarded-For", ip)
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimiterMiddleware_Integration(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rdb := setupTestRedis(t)
	ctx := context.Background()

	t.Run("Success: Headers Count Down", func(t *testing.T) {
		rdb.FlushDB(ctx)
		router := limitedRouter(rdb, 3)

		for _, remaining := range []string{"2", "1", "0"} {
			w := hit(router, "192.168.1.100", "")
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "3", w.Header().Get("X-RateLimit-Limit"))
			assert.Equal(t, remaining, w.Header().Get("X-RateLimit-Remaining"))
			assert.NotEmpty(t, w.Header().Get("X-RateLimit-Reset"))
		}

		ttl, err := rdb.TTL(ctx, "rate_limit:ip:192.168.1.100").Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, time.Duration(0))
	})

	t.Run("Fail: Over The Limit", func(t *testing.T) {
		rdb.FlushDB(ctx)
		router := limitedRouter(rdb, 1)

		assert.Equal(t, http.StatusOK, hit(router, "192.168.1.101", "").Code)

		w := hit(router, "192.168.1.101", "")
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Contains(t, w.Body.String(), "rate limit exceeded")
		assert.NotEmpty(t, w.Header().Get("Retry-After"))
	})

	t.Run("Success: Users Behind One Address Have Separate Budgets", func(t *testing.T) {
		rdb.FlushDB(ctx)
		router := limitedRouter(rdb, 1)

		assert.Equal(t, http.StatusOK, hit(router, "10.0.0.7", "alice").Code)
		assert.Equal(t, http.StatusOK, hit(router, "10.0.0.7", "bob").Code)
		assert.Equal(t, http.StatusTooManyRequests, hit(router, "10.0.0.7", "alice").Code)

		exists, err := rdb.Exists(ctx, "rate_limit:user:alice").Result()
		require.NoError(t, err)
		assert.Equal(t, int64(1), exists)
	})

	t.Run("Success: Counter Without Expiry Gets One", func(t *testing.T) {
		rdb.FlushDB(ctx)
		require.NoError(t, rdb.Set(ctx, "rate_limit:ip:10.0.0.9", 0, 0).Err())

		router := limitedRouter(rdb, 5)
		assert.Equal(t, http.StatusOK, hit(router, "10.0.0.9", "").Code)

		ttl, err := rdb.TTL(ctx, "rate_limit:ip:10.0.0.9").Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, time.Duration(0))
	})
}

func TestRateLimiterMiddleware_FailsOpen(t *testing.T) {
	gin.SetMode(gin.TestMode)
	down := redis.NewClient(&redis.Options{Addr: "localhost:9999", DialTimeout: 200 * time.Millisecond})
	defer down.Close()

	w := hit(limitedRouter(down, 1), "192.168.1.102", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}
