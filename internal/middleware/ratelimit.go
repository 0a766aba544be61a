// Package middleware provides request pipeline middleware for the application.
package middleware

import (
	"context"
	"errors"
	"strconv"
	"time"

	"patisson-users/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// FailPolicy defines the behavior when the rate limit store (Redis) is unavailable.
type FailPolicy int

const (
	// FailOpen allows the request to proceed if Redis is unavailable.
	FailOpen FailPolicy = iota
	// FailClosed blocks the request (503 Service Unavailable) if Redis is unavailable.
	FailClosed
)

// ErrNoRateLimitStore is returned when no Redis client is configured.
var ErrNoRateLimitStore = errors.New("redis client is nil")

// windowScript increments the window counter and starts the window on the
// first hit in one round trip, so a counter never outlives its window.
var windowScript = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {n, redis.call("PTTL", KEYS[1])}
`)

// Window is the state of one fixed rate limit window after a hit.
type Window struct {
	Count     int64
	Limit     int
	Remaining int
	ResetIn   time.Duration
}

// Allowed reports whether the hit fits in the window.
func (w Window) Allowed() bool {
	return w.Count <= int64(w.Limit)
}

// Hit counts a request of id against the fixed window of resource, stored
// under rl:<resource>:<id>.
func Hit(ctx context.Context, rdb *redis.Client, resource, id string, limit int, window time.Duration) (Window, error) {
	if rdb == nil {
		return Window{}, ErrNoRateLimitStore
	}
	res, err := windowScript.Run(ctx, rdb, []string{"rl:" + resource + ":" + id}, window.Milliseconds()).Int64Slice()
	if err != nil {
		return Window{}, err
	}
	if len(res) != 2 {
		return Window{}, errors.New("unexpected rate limit script reply")
	}
	return Window{
		Count:     res[0],
		Limit:     limit,
		Remaining: max(limit-int(res[0]), 0),
		ResetIn:   time.Duration(max(res[1], 0)) * time.Millisecond,
	}, nil
}

// CheckRateLimit reports whether another request of id fits the window.
func CheckRateLimit(ctx context.Context, rdb *redis.Client, resource, id string, limit int, window time.Duration) (bool, error) {
	w, err := Hit(ctx, rdb, resource, id, limit, window)
	if err != nil {
		return false, err
	}
	return w.Allowed(), nil
}

// RateLimit returns a Fiber middleware enforcing `limit` requests per `window`.
// It keys by the verified calling service (c.Locals(LocalServiceID)) otherwise by remote IP.
// It defaults to FailOpen policy.
func RateLimit(rdb *redis.Client, limit int, window time.Duration, name string) fiber.Handler {
	return RateLimitWithPolicy(rdb, limit, window, FailOpen, name)
}

// RateLimitWithPolicy returns a Fiber middleware enforcing `limit` requests per `window` with a specific failure policy.
func RateLimitWithPolicy(rdb *redis.Client, limit int, window time.Duration, policy FailPolicy, name string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := "ip:" + c.IP()
		if sid, ok := c.Locals(LocalServiceID).(string); ok && sid != "" {
			id = "service:" + sid
		}

		w, err := Hit(c.UserContext(), rdb, name, id, limit, window)
		if err != nil {
			if policy == FailClosed {
				Logger.WarnContext(c.UserContext(), "rate limit store unavailable",
					"resource", name, "policy", "fail_closed", "error", err)
				return c.Status(fiber.StatusServiceUnavailable).JSON(limitBody("rate limit store is unavailable"))
			}
			return c.Next()
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(w.Limit))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(w.Remaining))
		if !w.Allowed() {
			observability.RateLimitRejections.WithLabelValues(name).Inc()
			Logger.WarnContext(c.UserContext(), "rate limit exceeded", "resource", name, "key", id)
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(w.ResetIn.Round(time.Second)/time.Second)))
			return c.Status(fiber.StatusTooManyRequests).JSON(limitBody("rate limit exceeded"))
		}
		return c.Next()
	}
}

// limitBody has the shape of the service error responses.
func limitBody(msg string) fiber.Map {
	return fiber.Map{"detail": []fiber.Map{{"error": "RATE_LIMITED", "extra": msg}}}
}
