package api

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// Rate limit defaults, matching the original deployment: 100 requests per
// client per 15 minutes.
const (
	rateLimitMax    = 100
	rateLimitWindow = 15 * time.Minute
)

// Limiter implements sliding-window rate limiting on Redis sorted sets.
type Limiter struct {
	client    *redis.Client
	keyPrefix string
}

// NewLimiter creates a limiter on the given client.
func NewLimiter(client *redis.Client, keyPrefix string) *Limiter {
	return &Limiter{client: client, keyPrefix: keyPrefix}
}

// slidingWindow atomically trims expired entries, counts the window and
// records the request when under the limit. Returns {allowed, remaining}.
var slidingWindow = redis.NewScript(`
	local key = KEYS[1]
	local now = tonumber(ARGV[1])
	local window_start = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])
	local window_ms = tonumber(ARGV[4])

	redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)
	local current = redis.call('ZCARD', key)

	if current < limit then
		local counter = redis.call('INCR', key .. ':seq')
		redis.call('ZADD', key, now, now .. ':' .. counter)
		local expire = math.ceil(window_ms / 1000)
		redis.call('EXPIRE', key, expire)
		redis.call('EXPIRE', key .. ':seq', expire)
		return {1, limit - current - 1}
	end
	return {0, 0}
`)

// Allow checks whether one more request from key fits in the window.
func (l *Limiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (allowed bool, remaining int, err error) {
	now := time.Now()
	res, err := slidingWindow.Run(ctx, l.client,
		[]string{l.keyPrefix + key},
		now.UnixMilli(),
		now.Add(-window).UnixMilli(),
		limit,
		window.Milliseconds(),
	).Int64Slice()
	if err != nil {
		return false, 0, fmt.Errorf("redis script error: %w", err)
	}
	if len(res) != 2 {
		return false, 0, fmt.Errorf("unexpected redis response length: %d", len(res))
	}
	return res[0] == 1, int(res[1]), nil
}

// RateLimitMiddleware limits requests per client IP. A nil limiter disables
// limiting; limiter failures fail open so Redis outages do not take the API
// down with them.
func RateLimitMiddleware(limiter *Limiter, limit int, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if limiter == nil {
			return c.Next()
		}

		allowed, remaining, err := limiter.Allow(c.UserContext(), c.IP(), limit, window)
		if err != nil {
			slog.Warn("rate limiter unavailable, allowing request", "error", err)
			return c.Next()
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			return c.Status(fiber.StatusTooManyRequests).JSON(ErrorResponse{
				Error:   "rate_limited",
				Message: "Too many requests, try again later",
			})
		}
		return c.Next()
	}
}
