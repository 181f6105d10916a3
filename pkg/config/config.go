package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for pitchrank-engine.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8090"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// CORSAllowedOriginsStr is a comma-separated list of allowed origins.
	CORSAllowedOriginsStr string `yaml:"cors_allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-default:"http://localhost:3000"`

	// CORSAllowedOrigins is the parsed list from CORSAllowedOriginsStr (not from config file).
	CORSAllowedOrigins []string `yaml:"-"`

	// Database configuration (PostgreSQL)
	Database DatabaseConfig `yaml:"database"`

	// Redis configuration (optional suggestion cache)
	Redis RedisConfig `yaml:"redis"`

	// Matching configuration (duplicate detection knobs)
	Matching MatchingConfig `yaml:"matching"`
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"pitchrank"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"pitchrank"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	MinConnections int32  `yaml:"min_connections" env:"PGMIN_CONNECTIONS" env-default:"2"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
}

// RedisConfig holds Redis configuration for the suggestion cache.
// Redis is optional; an empty host disables caching entirely.
type RedisConfig struct {
	Host     string `yaml:"host" env:"REDIS_HOST" env-default:""`
	Port     int    `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password string `yaml:"-" env:"REDIS_PASSWORD"` // Secret - not in YAML
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

// MatchingConfig holds the duplicate-detection knobs.
type MatchingConfig struct {
	// MaxPoolSize caps how many teams one cohort scan pools. The pairwise
	// comparison is quadratic in this number.
	MaxPoolSize int `yaml:"max_pool_size" env:"MATCH_MAX_POOL_SIZE" env-default:"200"`

	// MinConfidenceFloor is the lowest confidence callers may request.
	// Requests below the floor are clamped up to it.
	MinConfidenceFloor float64 `yaml:"min_confidence_floor" env:"MATCH_MIN_CONFIDENCE_FLOOR" env-default:"0.50"`

	// DefaultMinConfidence is the threshold used when callers don't supply one.
	DefaultMinConfidence float64 `yaml:"default_min_confidence" env:"MATCH_DEFAULT_MIN_CONFIDENCE" env-default:"0.90"`

	// MaxSuggestions limits how many suggestions one scan returns.
	MaxSuggestions int `yaml:"max_suggestions" env:"MATCH_MAX_SUGGESTIONS" env-default:"100"`

	// CacheTTLSeconds is how long scan results stay in the suggestion cache.
	CacheTTLSeconds int `yaml:"cache_ttl_seconds" env:"MATCH_CACHE_TTL_SECONDS" env-default:"300"`
}

// Load reads configuration from config.yaml with environment variable overrides.
// The version parameter is injected at build time and set on the returned Config.
// When config.yaml is absent, configuration comes from environment variables
// alone. Secrets (PGPASSWORD, REDIS_PASSWORD) must come from environment
// variables (yaml:"-" fields).
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	// Parse complex fields
	cfg.CORSAllowedOrigins = splitAndTrim(cfg.CORSAllowedOriginsStr)

	if err := cfg.Matching.validate(); err != nil {
		return nil, fmt.Errorf("invalid matching configuration: %w", err)
	}

	return cfg, nil
}

// validate ensures the matching thresholds are coherent.
func (m *MatchingConfig) validate() error {
	if m.MinConfidenceFloor < 0 || m.MinConfidenceFloor > 1 {
		return fmt.Errorf("min_confidence_floor must be in [0,1], got %v", m.MinConfidenceFloor)
	}
	if m.DefaultMinConfidence < m.MinConfidenceFloor || m.DefaultMinConfidence > 1 {
		return fmt.Errorf("default_min_confidence must be in [%v,1], got %v", m.MinConfidenceFloor, m.DefaultMinConfidence)
	}
	if m.MaxPoolSize < 2 {
		return fmt.Errorf("max_pool_size must be at least 2, got %d", m.MaxPoolSize)
	}
	if m.MaxSuggestions < 1 {
		return fmt.Errorf("max_suggestions must be at least 1, got %d", m.MaxSuggestions)
	}
	return nil
}

// splitAndTrim parses a comma-separated string into a slice.
func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// Addr returns the Redis host:port address.
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
