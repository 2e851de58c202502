package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"travel-backend/pricing"
)

// Config aggregates settings read from the environment (and .env, when present).
type Config struct {
	Env  string
	Port string

	DBDriver        string
	PostgresDSN     string
	DBSlowThreshold time.Duration
	SeedMealPlans   bool

	CORSOrigins []string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	QuoteCacheTTL time.Duration

	KafkaBrokers []string
	KafkaTopic   string

	PricingFallback pricing.FallbackPolicy

	SearchRateLimit float64
	SearchRateBurst int
}

// Load reads the configuration. Missing optional services (Redis, Kafka) leave
// their fields empty and the app runs without them.
func Load() (Config, error) {
	cfg := Config{
		Env:           envOrDefault("APP_ENV", "dev"),
		Port:          envOrDefault("PORT", "8080"),
		DBDriver:      strings.ToLower(envOrDefault("DB_DRIVER", "mysql")),
		PostgresDSN:   strings.TrimSpace(os.Getenv("DB_CONNECTION_STRING")),
		CORSOrigins:   splitList(os.Getenv("CORS_ORIGINS")),
		RedisAddr:     strings.TrimSpace(os.Getenv("REDIS_URL")),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		KafkaBrokers:  splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:    envOrDefault("KAFKA_TOPIC", "travel.pricing"),
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}

	var err error
	if cfg.DBSlowThreshold, err = parseDurationEnv("DB_SLOW_THRESHOLD", time.Second); err != nil {
		return Config{}, err
	}
	if cfg.QuoteCacheTTL, err = parseDurationEnv("QUOTE_CACHE_TTL", 10*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.SeedMealPlans, err = parseBoolEnv("SEED_MEAL_PLANS", true); err != nil {
		return Config{}, err
	}
	if cfg.RedisDB, err = parseIntEnv("REDIS_DB", 0); err != nil {
		return Config{}, err
	}
	if cfg.SearchRateBurst, err = parseIntEnv("SEARCH_RATE_BURST", 20); err != nil {
		return Config{}, err
	}
	rps := envOrDefault("SEARCH_RATE_LIMIT", "10")
	if cfg.SearchRateLimit, err = strconv.ParseFloat(rps, 64); err != nil {
		return Config{}, fmt.Errorf("invalid SEARCH_RATE_LIMIT %q: %w", rps, err)
	}
	if cfg.PricingFallback, err = pricing.ParseFallbackPolicy(os.Getenv("PRICING_FALLBACK")); err != nil {
		return Config{}, fmt.Errorf("invalid PRICING_FALLBACK: %w", err)
	}

	switch cfg.DBDriver {
	case "mysql":
	case "postgres", "postgresql":
		cfg.DBDriver = "postgres"
		if cfg.PostgresDSN == "" {
			return Config{}, fmt.Errorf("DB_CONNECTION_STRING is required for postgres")
		}
	default:
		return Config{}, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	return cfg, nil
}

func envOrDefault(key, def string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	return value
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s duration: %w", key, err)
	}
	return d, nil
}

func parseIntEnv(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s integer: %w", key, err)
	}
	return n, nil
}

func parseBoolEnv(key string, def bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "t", "true", "yes", "y", "on":
		return true, nil
	case "0", "f", "false", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid %s boolean: %q", key, raw)
	}
}
