package config

import (
	"strings"
	"time"
)

// RateKeyStrategy selects what a rate limit bucket is keyed on.
type RateKeyStrategy string

const (
	RateKeyIP      RateKeyStrategy = "ip"       // one bucket per client address
	RateKeyRoute   RateKeyStrategy = "route"    // one bucket per method and route template
	RateKeyIPRoute RateKeyStrategy = "ip_route" // one bucket per client and route
)

// RateLimitConfig configures the Redis token bucket in front of the API.
// A bucket holds up to Capacity requests and regains RefillTokens every
// RefillInterval. Idle buckets expire after TTL.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
	KeyStrategy    RateKeyStrategy
	Prefix         string // Redis key prefix
	Debug          bool   // log every limiter decision and Redis failure
}

// LoadRateLimitConfig reads the RATE_LIMIT_* variables.
func LoadRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Enabled:        envBool("RATE_LIMIT_ENABLED", true),
		Capacity:       envInt("RATE_LIMIT_CAPACITY", 60),
		RefillTokens:   envInt("RATE_LIMIT_REFILL_TOKENS", 1),
		RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", time.Second),
		TTL:            envDur("RATE_LIMIT_TTL", 10*time.Minute),
		KeyStrategy:    parseRateKeyStrategy(envStr("RATE_LIMIT_KEY_STRATEGY", string(RateKeyIPRoute))),
		Prefix:         envStr("RATE_LIMIT_PREFIX", "movies:rl"),
		Debug:          envBool("RATE_LIMIT_DEBUG", false),
	}.normalize()
}

// parseRateKeyStrategy is case insensitive; unknown names key on client and
// route.
func parseRateKeyStrategy(s string) RateKeyStrategy {
	switch k := RateKeyStrategy(strings.ToLower(s)); k {
	case RateKeyIP, RateKeyRoute:
		return k
	}
	return RateKeyIPRoute
}

// normalize clamps values the bucket script cannot work with. A bucket must
// outlive a few refill intervals or it would reset to full between requests.
func (c RateLimitConfig) normalize() RateLimitConfig {
	c.Capacity = max(c.Capacity, 1)
	c.RefillTokens = max(c.RefillTokens, 1)
	if c.RefillInterval <= 0 {
		c.RefillInterval = time.Second
	}
	c.TTL = max(c.TTL, 5*c.RefillInterval)
	return c
}
