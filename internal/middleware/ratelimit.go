package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/AnshRaj112/pinvent-backend/pkg/clientip"
)

const (
	// DefaultAuthWindow is the fixed window for credential endpoints.
	DefaultAuthWindow = 120 * time.Second
	// DefaultAuthMaxRequests is how many credential requests an IP may make per window.
	DefaultAuthMaxRequests = 25
	// DefaultBlockDuration is how long an IP stays blocked after exceeding the limit.
	DefaultBlockDuration = 15 * time.Minute
)

// RedisRateLimiter is a fixed-window per-IP limiter backed by Redis. Clients
// that exceed the limit are blocked for a while. Redis errors fail open.
type RedisRateLimiter struct {
	client      *redis.Client
	prefix      string
	maxRequests int
	window      time.Duration
	blockFor    time.Duration
	log         *zap.Logger
}

func NewRedisRateLimiter(client *redis.Client, prefix string, maxRequests int, window, blockFor time.Duration, log *zap.Logger) *RedisRateLimiter {
	if prefix == "" {
		prefix = "ratelimit"
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisRateLimiter{
		client:      client,
		prefix:      prefix,
		maxRequests: maxRequests,
		window:      window,
		blockFor:    blockFor,
		log:         log,
	}
}

func (l *RedisRateLimiter) counterKey(ip string) string { return l.prefix + ":count:" + ip }
func (l *RedisRateLimiter) blockedKey(ip string) string { return l.prefix + ":blocked:" + ip }

// Allow counts one request for ip and reports whether it may proceed along
// with the requests left in the current window.
func (l *RedisRateLimiter) Allow(ctx context.Context, ip string) (bool, int, error) {
	blocked, err := l.client.Exists(ctx, l.blockedKey(ip)).Result()
	if err != nil {
		return true, 0, err
	}
	if blocked > 0 {
		return false, 0, nil
	}

	key := l.counterKey(ip)
	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return true, 0, err
	}
	if count == 1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			return true, 0, err
		}
	}

	if count > int64(l.maxRequests) {
		if l.blockFor > 0 {
			if err := l.client.Set(ctx, l.blockedKey(ip), "1", l.blockFor).Err(); err != nil {
				l.log.Warn("Failed to block IP", zap.String("ip", ip), zap.Error(err))
			}
		}
		return false, 0, nil
	}
	return true, l.maxRequests - int(count), nil
}

// Unblock clears the block and the counter for ip.
func (l *RedisRateLimiter) Unblock(ctx context.Context, ip string) error {
	return l.client.Del(ctx, l.blockedKey(ip), l.counterKey(ip)).Err()
}

// Middleware applies the limiter to every request.
func (l *RedisRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientip.RealClientIP(r)

		allowed, remaining, err := l.Allow(r.Context(), ip)
		if err != nil {
			l.log.Warn("Rate limiter unavailable, allowing request", zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}
		if !allowed {
			writeJSONError(w, http.StatusTooManyRequests, errorBody{
				Message:    "Too many requests. Your IP has been temporarily blocked, please try again later.",
				RetryAfter: int(l.window.Seconds()),
			})
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.maxRequests))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(l.window).Unix(), 10))
		next.ServeHTTP(w, r)
	})
}
