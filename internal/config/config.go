package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// RateLimitConfig indicates how many requests are allowed within a given interval.
type RateLimitConfig struct {
	Requests int
	Interval time.Duration
}

// LushaConfig groups the provider connection settings.
type LushaConfig struct {
	APIKey          string
	BaseURL         string
	IDTokenAudience string
	Timeout         time.Duration
}

// Config aggregates application-wide configuration values.
type Config struct {
	Port              string
	DatabaseURL       string
	RedisURL          string
	JWTSecret         string
	TokenTTL          time.Duration
	AdminUsername     string
	AdminPasswordHash string
	Lusha             LushaConfig
	PhoneRegion       string
	UsageCacheTTL     time.Duration
	RateLimitEnrich   RateLimitConfig
}

// Load reads configuration from environment variables and applies sane defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		RedisURL:          os.Getenv("REDIS_URL"),
		JWTSecret:         getEnv("JWT_SECRET", "dev-secret"),
		TokenTTL:          parseDuration(getEnv("JWT_TTL", "24h"), 24*time.Hour),
		AdminUsername:     getEnv("ADMIN_USERNAME", "admin"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		Lusha: LushaConfig{
			APIKey:          strings.TrimSpace(os.Getenv("LUSHA_API_KEY")),
			BaseURL:         getEnv("LUSHA_BASE_URL", "https://api.lusha.com"),
			IDTokenAudience: os.Getenv("LUSHA_ID_TOKEN_AUDIENCE"),
			Timeout:         parseDuration(getEnv("LUSHA_TIMEOUT", "0s"), 0),
		},
		PhoneRegion:   strings.ToUpper(getEnv("PHONE_REGION", "US")),
		UsageCacheTTL: parseDuration(getEnv("USAGE_CACHE_TTL", "1m"), time.Minute),
	}

	rl, err := parseRateLimit(getEnv("RATE_LIMIT_ENRICH", "30/min"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_ENRICH value: %w", err)
	}
	cfg.RateLimitEnrich = rl

	return cfg, nil
}

func parseRateLimit(value string) (RateLimitConfig, error) {
	parts := strings.Split(value, "/")
	if len(parts) != 2 {
		return RateLimitConfig{}, fmt.Errorf("expected format <requests>/<interval>, got %q", value)
	}

	requests, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || requests <= 0 {
		return RateLimitConfig{}, fmt.Errorf("invalid request count: %v", parts[0])
	}

	unit := strings.ToLower(strings.TrimSpace(parts[1]))
	var interval time.Duration
	switch unit {
	case "s", "sec", "second", "seconds":
		interval = time.Second
	case "m", "min", "minute", "minutes":
		interval = time.Minute
	case "h", "hr", "hour", "hours":
		interval = time.Hour
	default:
		return RateLimitConfig{}, fmt.Errorf("unsupported interval unit: %s", unit)
	}

	return RateLimitConfig{Requests: requests, Interval: interval}, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func parseDuration(input string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(input)
	if err != nil || d < 0 {
		return fallback
	}
	return d
}
