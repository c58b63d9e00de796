// Package config reads the server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"instatistics/pkg/log"

	"github.com/joho/godotenv"
)

// Cache backends.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Log formats.
const (
	LogJSON    = "json"
	LogConsole = "console"
)

// ErrInvalidConfig is returned when a setting has an unusable value.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds the server settings.
type Config struct {
	Port            string
	LogLevel        log.Level
	LogFormat       string
	CacheBackend    string
	CacheTTL        time.Duration
	RedisURL        string
	FeedConfigPath  string
	FetchTimeout    time.Duration
	Location        *time.Location
	RateLimitPerMin int
	MaxUploadBytes  int64
	ChromePath      string
	ShutdownTimeout time.Duration
}

// Load reads .env files (when present) and the environment.
// Variables already set in the environment take precedence over .env.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}
	return FromEnv()
}

// FromEnv reads the configuration from environment variables.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:            getEnv("PORT", "3000"),
		LogFormat:       strings.ToLower(getEnv("LOG_FORMAT", LogJSON)),
		CacheBackend:    strings.ToLower(getEnv("CACHE_BACKEND", CacheMemory)),
		RedisURL:        getEnv("REDIS_URL", "redis://localhost:6379/0"),
		FeedConfigPath:  getEnv("FEED_CONFIG", "config/feed.yaml"),
		ChromePath:      os.Getenv("CHROME_PATH"),
		ShutdownTimeout: 10 * time.Second,
	}

	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	level, err := log.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		collect(fmt.Errorf("%w: LOG_LEVEL: %v", ErrInvalidConfig, err))
	}
	cfg.LogLevel = level

	ttl, err := getInt("CACHE_TTL_MINUTES", 5)
	collect(err)
	cfg.CacheTTL = time.Duration(ttl) * time.Minute

	timeout, err := getInt("FETCH_TIMEOUT_SECONDS", 60)
	collect(err)
	cfg.FetchTimeout = time.Duration(timeout) * time.Second

	cfg.RateLimitPerMin, err = getInt("RATE_LIMIT_PER_MINUTE", 10)
	collect(err)

	maxUpload, err := getInt("MAX_UPLOAD_MB", 10)
	collect(err)
	cfg.MaxUploadBytes = int64(maxUpload) << 20

	cfg.Location, err = time.LoadLocation(getEnv("TIMEZONE", "UTC"))
	if err != nil {
		collect(fmt.Errorf("%w: TIMEZONE: %v", ErrInvalidConfig, err))
	}

	if cfg.CacheBackend != CacheMemory && cfg.CacheBackend != CacheRedis {
		collect(fmt.Errorf("%w: CACHE_BACKEND must be %q or %q, got %q", ErrInvalidConfig, CacheMemory, CacheRedis, cfg.CacheBackend))
	}
	if cfg.LogFormat != LogJSON && cfg.LogFormat != LogConsole {
		collect(fmt.Errorf("%w: LOG_FORMAT must be %q or %q, got %q", ErrInvalidConfig, LogJSON, LogConsole, cfg.LogFormat))
	}
	if cfg.FetchTimeout <= 0 {
		collect(fmt.Errorf("%w: FETCH_TIMEOUT_SECONDS must be positive", ErrInvalidConfig))
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback, fmt.Errorf("%w: %s must be a non-negative integer, got %q", ErrInvalidConfig, key, raw)
	}
	return n, nil
}
