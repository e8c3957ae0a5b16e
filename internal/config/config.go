// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Store drivers understood by the server
const (
	StoreDriverMemory   = "memory"
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"
)

// Config holds application configuration
type Config struct {
	GRPCAddr      string
	MetricsAddr   string // empty disables the metrics endpoint
	APIToken      string
	StoreDriver   string
	DBConnStr     string
	SQLitePath    string
	LogLevel      string
	LogPretty     bool
	SeedDemoOwner string // empty disables demo seeding
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		GRPCAddr:      getEnv("GRPC_ADDR", ":8080"),
		MetricsAddr:   os.Getenv("METRICS_ADDR"),
		APIToken:      getEnv("API_TOKEN", "dev-token"),
		StoreDriver:   getEnv("STORE_DRIVER", StoreDriverPostgres),
		DBConnStr:     postgresConnString(),
		SQLitePath:    getEnv("SQLITE_PATH", "patrimony.db"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogPretty:     getEnvAsBool("LOG_PRETTY", false),
		SeedDemoOwner: os.Getenv("SEED_DEMO_OWNER"),
	}
	if _, ok := os.LookupEnv("METRICS_ADDR"); !ok {
		cfg.MetricsAddr = ":9090"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreDriverMemory, StoreDriverPostgres, StoreDriverSQLite:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.GRPCAddr == "" {
		return fmt.Errorf("GRPC_ADDR cannot be empty")
	}
	if c.APIToken == "" {
		return fmt.Errorf("API_TOKEN cannot be empty")
	}
	return nil
}

// postgresConnString returns DB_CONN_STR, or builds it from individual vars (Docker friendly)
func postgresConnString() string {
	if connStr := os.Getenv("DB_CONN_STR"); connStr != "" {
		return connStr
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_USER", "postgres"),
		getEnv("DB_PASSWORD", "postgres"),
		getEnv("DB_NAME", "patrimony"),
	)
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
