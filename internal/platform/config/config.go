package config

import (
	"os"
	"strconv"
	"time"
)

// Config captures process-level configuration. FromEnv keeps main lean.
type Config struct {
	Addr        string
	DatabaseURL string
	Redis       RedisConfig
	// ReportCacheTTL bounds how stale dashboard counts may get.
	ReportCacheTTL time.Duration
}

// RedisConfig configures the optional report-count cache.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	addr := os.Getenv("CIVIQ_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	ttl := 5 * time.Minute
	if raw := os.Getenv("CIVIQ_REPORT_CACHE_TTL"); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil {
			ttl = parsed
		}
	}

	return Config{
		Addr:        addr,
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		ReportCacheTTL: ttl,
	}
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
