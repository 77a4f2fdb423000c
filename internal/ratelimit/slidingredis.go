package ratelimit

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// slidingScript trims events older than the window, admits the new event when
// there is room and returns {admitted, count, oldest score}.
var slidingScript = redis.NewScript(`
redis.call("ZREMRANGEBYSCORE", KEYS[1], "-inf", ARGV[2])
local count = redis.call("ZCARD", KEYS[1])
local admitted = 0
if count < tonumber(ARGV[3]) then
  redis.call("ZADD", KEYS[1], ARGV[1], ARGV[4])
  count = count + 1
  admitted = 1
end
redis.call("PEXPIRE", KEYS[1], ARGV[5])
local oldest = redis.call("ZRANGE", KEYS[1], 0, 0, "WITHSCORES")
local first = ARGV[1]
if oldest[2] then first = oldest[2] end
return {admitted, count, first}
`)

// SlidingWindow limits requests over a rolling window using a Redis sorted
// set per key. Rejected requests are not recorded.
type SlidingWindow struct {
	Client *redis.Client
	Prefix string
	Now    func() time.Time
}

func (l SlidingWindow) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}

// Allow records one event for key when fewer than max events fall inside the
// window. reset is when the oldest counted event leaves the window.
func (l SlidingWindow) Allow(ctx context.Context, key string, window time.Duration, max int) (allowed bool, remaining int, reset time.Time, err error) {
	now := l.now()
	if l.Client == nil || max <= 0 || window <= 0 {
		return true, max, now.Add(window), nil
	}

	res, err := slidingScript.Run(ctx, l.Client, []string{l.Prefix + key},
		now.UnixMicro(),
		now.Add(-window).UnixMicro(),
		max,
		strconv.FormatInt(now.UnixMicro(), 10)+"-"+uuid.NewString(),
		window.Milliseconds(),
	).Slice()
	if err != nil {
		return false, 0, now.Add(window), err
	}

	admitted, _ := res[0].(int64)
	count, _ := res[1].(int64)
	oldest, _ := strconv.ParseFloat(toString(res[2]), 64)
	reset = time.UnixMicro(int64(oldest)).Add(window)
	remaining = max - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return admitted == 1, remaining, reset, nil
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return ""
	}
}
