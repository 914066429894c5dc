package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/GSMS-B/ProjectQR/internal/constants"
	redisStorage "github.com/GSMS-B/ProjectQR/internal/storage/redis"
	"github.com/GSMS-B/ProjectQR/pkg/httputils"
)

// RedisFixedWindowLimiter enforces a counter per caller per fixed time window.
type RedisFixedWindowLimiter struct {
	store *redisStorage.FixedWindowLimiter
	limit int64
}

func NewRedisFixedWindowLimiter(store *redisStorage.FixedWindowLimiter, limitPerMinute int) *RedisFixedWindowLimiter {
	if limitPerMinute <= 0 {
		limitPerMinute = 60
	}
	return &RedisFixedWindowLimiter{
		store: store,
		limit: int64(limitPerMinute),
	}
}

func RateLimitMiddleware(limiter *RedisFixedWindowLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := rateLimitKey(r)
			ctx, cancel := context.WithTimeout(r.Context(), 200*time.Millisecond)
			defer cancel()

			count, err := limiter.store.Incr(ctx, key)
			if err != nil {
				// Fail open: do not block writes if Redis is temporarily unavailable.
				next.ServeHTTP(w, r)
				return
			}
			if count > limiter.limit {
				httputils.WriteAPIError(w, r, constants.ErrRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func rateLimitKey(r *http.Request) string {
	if apiKey := strings.TrimSpace(r.Header.Get(APIKeyHeader)); apiKey != "" {
		return "api_key:" + apiKey
	}

	// Fallback: use client IP (best-effort).
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return "ip:" + host
	}
	return "ip:unknown"
}
