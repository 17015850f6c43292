package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Every helper treats an unset or empty variable as absent and falls back to
// the default when the value does not parse.

func envStr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// envBool accepts the strconv.ParseBool forms plus yes/no and on/off.
func envBool(key string, def bool) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch v {
	case "":
		return def
	case "yes", "on":
		return true
	case "no", "off":
		return false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envInt(key string, def int) int {
	n, err := strconv.Atoi(envStr(key, ""))
	if err != nil {
		return def
	}
	return n
}

func envDur(key string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(envStr(key, ""))
	if err != nil {
		return def
	}
	return d
}
