package redisclient

import (
	"context"
	"time"

	"github.com/geocoder89/socialhub/internal/http/middlewares"
	pkgerrors "github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// INCR the counter and arm its expiry on the first hit of a window.
// Returns {count, remaining ttl in ms}.
var incrExpireScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {current, ttl}
`)

// FixedWindowLimiter shares rate-limit counters across API instances.
type FixedWindowLimiter struct {
	rdb    redis.Scripter
	limit  int
	window time.Duration
	prefix string
}

func NewFixedWindowLimiter(rdb redis.Scripter, limit int, window time.Duration) *FixedWindowLimiter {
	return &FixedWindowLimiter{rdb: rdb, limit: limit, window: window, prefix: "socialhub:"}
}

// Allow counts one hit for key. A non-positive limit allows everything without
// touching redis.
func (l *FixedWindowLimiter) Allow(ctx context.Context, key string) (middlewares.Decision, error) {
	if l.limit <= 0 {
		return middlewares.Decision{Allowed: true}, nil
	}

	res, err := incrExpireScript.Run(ctx, l.rdb, []string{l.prefix + key}, l.window.Milliseconds()).Int64Slice()
	if err != nil {
		return middlewares.Decision{}, pkgerrors.Wrap(err, "redis.rate_limit")
	}
	if len(res) != 2 {
		return middlewares.Decision{}, pkgerrors.Errorf("redis.rate_limit: unexpected reply %v", res)
	}

	count, ttl := int(res[0]), time.Duration(res[1])*time.Millisecond
	if ttl < 0 {
		ttl = l.window
	}

	if count > l.limit {
		return middlewares.Decision{Allowed: false, RetryAfter: ttl}, nil
	}
	return middlewares.Decision{Allowed: true, Remaining: l.limit - count}, nil
}
