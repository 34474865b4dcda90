// Package config reads process configuration from the environment. Command
// line flags override these values.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pable/go-epa-compare/internal/cache"
	"github.com/pable/go-epa-compare/internal/nflverse"
)

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr        string
	CORSOrigins []string
	// RateLimitRPS and RateLimitBurst bound API requests per client IP.
	RateLimitRPS   float64
	RateLimitBurst int
	// TrustProxy reads client IPs from forwarding headers.
	TrustProxy bool
}

// RedisConfig holds the optional shared cache connection.
type RedisConfig struct {
	URL      string
	Password string
}

// CacheConfig holds the local cache settings.
type CacheConfig struct {
	DBPath string
	TTL    time.Duration
}

// Config holds all application configuration.
type Config struct {
	Server          ServerConfig
	Redis           RedisConfig
	Cache           CacheConfig
	NflverseBaseURL string
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:           getEnv("EPA_ADDR", ":8080"),
			CORSOrigins:    getEnvList("EPA_CORS_ORIGINS", []string{"http://localhost:3000"}),
			RateLimitRPS:   getEnvFloat("EPA_RATE_LIMIT_RPS", 5),
			RateLimitBurst: getEnvInt("EPA_RATE_LIMIT_BURST", 10),
			TrustProxy:     getEnvBool("EPA_TRUST_PROXY", false),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		Cache: CacheConfig{
			DBPath: getEnv("EPA_DB", DefaultDBPath()),
			TTL:    getEnvDuration("EPA_CACHE_TTL", cache.DefaultTTL),
		},
		NflverseBaseURL: getEnv("NFLVERSE_BASE_URL", nflverse.DefaultBaseURL),
	}
}

// DefaultDBPath is ~/.epacompare/cache.db.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".epacompare", "cache.db")
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
