package server

import (
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

// rateLimit caps requests per client IP per second using a Redis
// fixed-window counter (INCR + one-second EXPIRE). Redis being down
// fails open: the game stays playable without the limiter.
func rateLimit(logger *slog.Logger, rdb *redis.Client, maxPerSecond int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := "ratelimit:" + clientIP(r)

			count, err := rdb.Incr(r.Context(), key).Result()
			if err != nil {
				logger.Debug("rate limiter unavailable", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if count == 1 {
				rdb.Expire(r.Context(), key, time.Second)
			}
			if count > int64(maxPerSecond) {
				writeError(w, http.StatusTooManyRequests, "too many requests")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP strips the port left on RemoteAddr when no proxy header
// rewrote it (chi's RealIP runs earlier in the chain).
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
