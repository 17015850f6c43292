package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/movie-catalog/internal/config"
	"github.com/iliyamo/movie-catalog/internal/model"
)

// takeTokenScript refills a bucket for the time elapsed since its last
// refill and then tries to take one token.
//
//	KEYS[1]  bucket key
//	ARGV     now_ms, capacity, refill_tokens, interval_ms, ttl_s
//	returns  {allowed (0|1), tokens left, ms until the next refill}
var takeTokenScript = redis.NewScript(`
local now      = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local refill   = tonumber(ARGV[3])
local interval = tonumber(ARGV[4])

local tokens = tonumber(redis.call('HGET', KEYS[1], 'tokens'))
local since  = tonumber(redis.call('HGET', KEYS[1], 'refilled_at'))
if not tokens or not since then
  tokens, since = capacity, now
end

local steps = math.floor(math.max(0, now - since) / interval)
if steps > 0 then
  tokens = math.min(capacity, tokens + steps * refill)
  since = since + steps * interval
end

local allowed, wait = 0, 0
if tokens >= 1 then
  allowed, tokens = 1, tokens - 1
else
  wait = math.max(0, interval - (now - since))
end

redis.call('HSET', KEYS[1], 'tokens', tokens, 'refilled_at', since)
redis.call('EXPIRE', KEYS[1], ARGV[5])
return {allowed, tokens, wait}
`)

// bucketDecision is the outcome of one takeTokenScript run.
type bucketDecision struct {
	Allowed    bool
	Remaining  int64
	RetryAfter time.Duration
}

// tokenBucket is the per-process handle on the shared Redis buckets.
type tokenBucket struct {
	cfg config.RateLimitConfig
	rdb *redis.Client
	log *zap.Logger
}

// NewTokenBucket limits requests with a Redis token bucket shared by every
// API instance. It is a pass-through when disabled or when rdb is nil, and
// lets requests through when Redis fails mid-request.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client, log *zap.Logger) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	if log == nil {
		log = zap.NewNop()
	}
	b := &tokenBucket{cfg: cfg, rdb: rdb, log: log}
	return b.middleware
}

func (b *tokenBucket) middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		key := rateKey(b.cfg, c)
		d, err := b.take(c.Request().Context(), key)
		if err != nil {
			if b.cfg.Debug {
				b.log.Warn("rate limiter unavailable, letting request through", zap.String("key", key), zap.Error(err))
			}
			return next(c)
		}

		h := c.Response().Header()
		h.Set("X-RateLimit-Limit", strconv.Itoa(b.cfg.Capacity))
		h.Set("X-RateLimit-Remaining", strconv.FormatInt(d.Remaining, 10))
		if d.Allowed {
			return next(c)
		}

		h.Set("Retry-After", strconv.Itoa(retryAfterSeconds(d.RetryAfter)))
		if b.cfg.Debug {
			b.log.Info("rate limited", zap.String("key", key), zap.Duration("retry_after", d.RetryAfter))
		}
		return c.JSONPretty(http.StatusTooManyRequests, model.Envelope{
			Status:  model.StatusError,
			Message: "Rate limit exceeded",
		}, "  ")
	}
}

// take runs the bucket script for key.
func (b *tokenBucket) take(ctx context.Context, key string) (bucketDecision, error) {
	reply, err := takeTokenScript.Run(ctx, b.rdb, []string{key},
		time.Now().UnixMilli(),
		b.cfg.Capacity,
		b.cfg.RefillTokens,
		b.cfg.RefillInterval.Milliseconds(),
		int64(b.cfg.TTL/time.Second),
	).Int64Slice()
	if err != nil {
		return bucketDecision{}, errors.Wrap(err, "run token bucket script")
	}
	return decodeBucketReply(reply)
}

// decodeBucketReply turns the script's integer triple into a decision.
func decodeBucketReply(reply []int64) (bucketDecision, error) {
	if len(reply) != 3 {
		return bucketDecision{}, errors.Errorf("token bucket script returned %d values, want 3", len(reply))
	}
	return bucketDecision{
		Allowed:    reply[0] == 1,
		Remaining:  reply[1],
		RetryAfter: time.Duration(reply[2]) * time.Millisecond,
	}, nil
}

// retryAfterSeconds rounds up to whole seconds as Retry-After requires.
func retryAfterSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}

// rateKey names the bucket a request draws from.
func rateKey(cfg config.RateLimitConfig, c echo.Context) string {
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	route := c.Request().Method + " " + c.Path()

	parts := []string{cfg.Prefix}
	switch cfg.KeyStrategy {
	case config.RateKeyIP:
		parts = append(parts, "ip", ip)
	case config.RateKeyRoute:
		parts = append(parts, "route", route)
	default:
		parts = append(parts, "ip", ip, "route", route)
	}
	return strings.Join(parts, ":")
}
