// Package ratelimit provides per-client request limiting backed by
// Redis, with an HTTP middleware for the intake endpoint.
package ratelimit

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/newsletter/internal/pkg/httputil"
	"github.com/ignite/newsletter/internal/pkg/logger"
)

// Lua keeps the check-and-increment atomic. A GET then INCR pair races
// under concurrent requests from the same client.
const minuteLimitLuaScript = `
local key = KEYS[1]
local limit = tonumber(ARGV[1])
local ttl = tonumber(ARGV[2])

local current = tonumber(redis.call("GET", key) or "0")

if current + 1 > limit then
    return {0, current}
end

local newVal = redis.call("INCR", key)
if newVal == 1 then
    redis.call("EXPIRE", key, ttl)
end

return {1, newVal}
`

// Limiter counts requests per client per minute bucket.
type Limiter struct {
	redis     *redis.Client
	perMinute int
	script    *redis.Script
}

// NewLimiter creates a limiter allowing perMinute requests per client.
func NewLimiter(redisClient *redis.Client, perMinute int) *Limiter {
	return &Limiter{
		redis:     redisClient,
		perMinute: perMinute,
		script:    redis.NewScript(minuteLimitLuaScript),
	}
}

// Allow reports whether the client may proceed. Redis failures fail
// open: limiting protects capacity, it must not take intake down.
func (l *Limiter) Allow(ctx context.Context, client string) (bool, error) {
	now := time.Now()
	key := fmt.Sprintf("ratelimit:subscribe:%s:%d", client, now.Unix()/60)

	result, err := l.script.Run(ctx, l.redis,
		[]string{key},
		l.perMinute,
		120, // 2 minute TTL
	).Slice()
	if err != nil {
		return true, fmt.Errorf("rate limit check: %w", err)
	}

	return result[0].(int64) == 1, nil
}

// Middleware rejects over-limit clients with 429. The client identity
// is the remote IP, which assumes RealIP ran earlier in the chain.
func (l *Limiter) Middleware(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client := r.RemoteAddr
			if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
				client = host
			}

			allowed, err := l.Allow(r.Context(), client)
			if err != nil {
				log.Warn("rate limit check failed, allowing request", "err", err.Error())
			}
			if !allowed {
				log.Info("rate limited", "client", client)
				httputil.TooManyRequests(w, "too many requests, slow down")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
