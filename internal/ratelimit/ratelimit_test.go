package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/ignite/newsletter/internal/pkg/logger"
)

func setupLimiter(t *testing.T, perMinute int) (*Limiter, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewLimiter(client, perMinute), mr
}

func TestAllowUnderLimit(t *testing.T) {
	limiter, _ := setupLimiter(t, 3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := limiter.Allow(ctx, "203.0.113.7")
		if err != nil {
			t.Fatalf("allow: %v", err)
		}
		if !allowed {
			t.Fatalf("request %d denied under the limit", i+1)
		}
	}

	allowed, err := limiter.Allow(ctx, "203.0.113.7")
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if allowed {
		t.Error("request over the limit was allowed")
	}
}

func TestLimitIsPerClient(t *testing.T) {
	limiter, _ := setupLimiter(t, 1)
	ctx := context.Background()

	if allowed, _ := limiter.Allow(ctx, "203.0.113.7"); !allowed {
		t.Fatal("first client denied its first request")
	}
	if allowed, _ := limiter.Allow(ctx, "203.0.113.8"); !allowed {
		t.Error("second client denied despite a fresh counter")
	}
}

func TestAllowFailsOpenOnRedisOutage(t *testing.T) {
	limiter, mr := setupLimiter(t, 1)
	mr.Close()

	allowed, err := limiter.Allow(context.Background(), "203.0.113.7")
	if err == nil {
		t.Error("expected an error when redis is down")
	}
	if !allowed {
		t.Error("redis outage must not block requests")
	}
}

func TestMiddleware(t *testing.T) {
	limiter, _ := setupLimiter(t, 1)
	log := logger.New(&strings.Builder{}, logger.ERROR)

	handler := limiter.Middleware(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/subscriptions", nil)
	req.RemoteAddr = "203.0.113.7:51234"

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("first request status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", rec.Code)
	}
}
