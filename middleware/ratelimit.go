package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var fixedWindowScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return count
`)

// RateLimiter counts requests per client in fixed windows stored in Redis.
type RateLimiter struct {
	client *redis.Client
	prefix string
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewRateLimiter(client *redis.Client, prefix string, limit int, window time.Duration) (*RateLimiter, error) {
	if client == nil {
		return nil, errors.New("rate limiter requires a redis client")
	}
	if limit <= 0 {
		return nil, errors.New("rate limiter requires a positive limit")
	}
	if window < time.Millisecond {
		return nil, errors.New("rate limiter window must be at least 1ms")
	}
	if prefix = strings.TrimSpace(prefix); prefix == "" {
		prefix = "bookstore:ratelimit"
	}
	return &RateLimiter{client: client, prefix: prefix, limit: limit, window: window, now: time.Now}, nil
}

// Allow reports whether key is within quota and how many requests remain.
// Redis errors are returned with allowed set to true.
func (l *RateLimiter) Allow(ctx context.Context, key string) (bool, int, error) {
	windowMs := l.window.Milliseconds()
	slot := l.now().UTC().UnixMilli() / windowMs
	redisKey := fmt.Sprintf("%s:%s:%d", l.prefix, key, slot)

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	count, err := fixedWindowScript.Run(ctx, l.client, []string{redisKey}, windowMs).Int64()
	if err != nil {
		return true, l.limit, err
	}
	return count <= int64(l.limit), max(l.limit-int(count), 0), nil
}

// Middleware answers 429 once a client exceeds its quota. When Redis is
// unreachable requests pass through.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, remaining, err := l.Allow(r.Context(), clientIP(r))
		if err != nil {
			slog.WarnContext(r.Context(), "rate limiter unavailable", "error", err)
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		if !allowed {
			w.Header().Set("Retry-After", strconv.Itoa(int(l.window.Seconds())))
			WriteMessage(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP relies on chimw.RealIP having rewritten RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if host = strings.TrimSpace(host); host == "" {
		return "unknown"
	}
	return host
}
