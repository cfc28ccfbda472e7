package httpmiddleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func TestTokenBucketExhausts(t *testing.T) {
	l := NewTokenBucket(3, 3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if !l.Allow(ctx, "1.2.3.4") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if l.Allow(ctx, "1.2.3.4") {
		t.Fatal("request over capacity should be denied")
	}
	if !l.Allow(ctx, "5.6.7.8") {
		t.Fatal("other keys must be unaffected")
	}
}

func TestRedisLimiter(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	l := NewRedisLimiter(rdb, "test:rl", 2)
	ctx := context.Background()

	if !l.Allow(ctx, "1.2.3.4") || !l.Allow(ctx, "1.2.3.4") {
		t.Fatal("first two requests should be allowed")
	}
	if l.Allow(ctx, "1.2.3.4") {
		t.Fatal("third request in window should be denied")
	}

	// Window expiry resets the count.
	mr.FastForward(2 * time.Minute)
	if !l.Allow(ctx, "1.2.3.4") {
		t.Fatal("request after window expiry should be allowed")
	}
}

func TestRedisLimiterFailsOpen(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	mr.Close()

	l := NewRedisLimiter(rdb, "test:rl", 1)
	if !l.Allow(context.Background(), "1.2.3.4") {
		t.Fatal("redis outage must not block requests")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimit(NewTokenBucket(1, 1)))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if first.Code != http.StatusOK {
		t.Fatalf("first request: %d", first.Code)
	}

	second := httptest.NewRecorder()
	r.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: %d, want 429", second.Code)
	}
}
