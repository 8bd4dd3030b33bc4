package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Drawing store backends
const (
	DrawingsBackendAuto     = "auto"
	DrawingsBackendSupabase = "supabase"
	DrawingsBackendPostgres = "postgres"
	DrawingsBackendMemory   = "memory"
)

// Config holds all application configuration
type Config struct {
	// App
	Port     string
	Env      string
	LogLevel string

	// Neo4j. The credentials are only checked when the driver is first needed.
	Neo4jURI               string
	Neo4jUsername          string
	Neo4jPassword          string
	Neo4jDatabase          string
	Neo4jMaxPoolSize       int
	Neo4jConnectionTimeout time.Duration
	Neo4jMaxRetryTime      time.Duration
	QueryTimeout           time.Duration

	// Drawings row store
	DrawingsBackend string
	DrawingsTable   string
	SupabaseURL     string
	SupabaseKey     string
	DatabaseURL     string

	// Operational
	BreakerEnabled bool
	MetricsEnabled bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		Port:                   getEnv("PORT", "8080"),
		Env:                    getEnv("ENV", "development"),
		LogLevel:               getEnv("LOG_LEVEL", ""),
		Neo4jURI:               getEnv("NEO4J_URI", ""),
		Neo4jUsername:          getEnv("NEO4J_USERNAME", ""),
		Neo4jPassword:          getEnv("NEO4J_PASSWORD", ""),
		Neo4jDatabase:          getEnv("NEO4J_DATABASE", "neo4j"),
		Neo4jMaxPoolSize:       getEnvInt("NEO4J_MAX_POOL_SIZE", 10),
		Neo4jConnectionTimeout: getEnvDuration("NEO4J_CONNECTION_TIMEOUT", 30*time.Second),
		Neo4jMaxRetryTime:      getEnvDuration("NEO4J_MAX_RETRY_TIME", 30*time.Second),
		QueryTimeout:           getEnvDuration("QUERY_TIMEOUT", 30*time.Second),
		DrawingsBackend:        strings.ToLower(getEnv("DRAWINGS_BACKEND", DrawingsBackendAuto)),
		DrawingsTable:          getEnv("DRAWINGS_TABLE", "drawings"),
		SupabaseURL:            getEnv("SUPABASE_URL", ""),
		SupabaseKey:            getEnv("SUPABASE_KEY", ""),
		DatabaseURL:            getEnv("DATABASE_URL", ""),
		BreakerEnabled:         getEnvBool("BREAKER_ENABLED", true),
		MetricsEnabled:         getEnvBool("METRICS_ENABLED", true),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	cfg.DrawingsBackend = cfg.ResolveDrawingsBackend()
	return cfg, nil
}

// Validate checks the values that must be well-formed at startup.
// Missing Neo4j credentials are not an error here; see MissingNeo4jSetting.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.Neo4jMaxPoolSize <= 0 {
		return fmt.Errorf("NEO4J_MAX_POOL_SIZE must be positive")
	}
	switch c.DrawingsBackend {
	case DrawingsBackendAuto, DrawingsBackendMemory:
	case DrawingsBackendSupabase:
		if c.SupabaseURL == "" || c.SupabaseKey == "" {
			return fmt.Errorf("SUPABASE_URL and SUPABASE_KEY are required for the supabase drawings backend")
		}
	case DrawingsBackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres drawings backend")
		}
	default:
		return fmt.Errorf("unknown DRAWINGS_BACKEND %q", c.DrawingsBackend)
	}
	return nil
}

// MissingNeo4jSetting returns the name of the first unset Neo4j credential, or "".
func (c *Config) MissingNeo4jSetting() string {
	switch {
	case c.Neo4jURI == "":
		return "NEO4J_URI"
	case c.Neo4jUsername == "":
		return "NEO4J_USERNAME"
	case c.Neo4jPassword == "":
		return "NEO4J_PASSWORD"
	}
	return ""
}

// ResolveDrawingsBackend picks a concrete backend when "auto" is configured.
func (c *Config) ResolveDrawingsBackend() string {
	if c.DrawingsBackend != DrawingsBackendAuto && c.DrawingsBackend != "" {
		return c.DrawingsBackend
	}
	switch {
	case c.SupabaseURL != "" && c.SupabaseKey != "":
		return DrawingsBackendSupabase
	case c.DatabaseURL != "":
		return DrawingsBackendPostgres
	default:
		return DrawingsBackendMemory
	}
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return defaultValue
}
