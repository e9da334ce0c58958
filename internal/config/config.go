package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime setting, read from the environment
type Config struct {
	Env      string
	Port     string
	GRPCPort string

	LogLevel  string
	LogFormat string

	Database   DatabaseConfig
	NATS       NATSConfig
	ClickHouse ClickHouseConfig
	Redis      RedisConfig
	Sleeper    SleeperConfig
	Match      MatchConfig
	Authentik  AuthentikConfig
}

type DatabaseConfig struct {
	Driver     string // memory, sqlite or postgres
	SQLiteFile string
	URL        string
}

// DSN returns the data source for the configured driver
func (d DatabaseConfig) DSN() string {
	if d.Driver == "sqlite" {
		return d.SQLiteFile
	}
	return d.URL
}

type NATSConfig struct {
	URL     string // empty uses the embedded server in development
	Subject string
}

type ClickHouseConfig struct {
	Addr     string // empty uses the in-memory ADP store
	Database string
	User     string
	Password string
}

type RedisConfig struct {
	Addr       string // empty uses the in-memory catalog cache
	Password   string
	DB         int
	CatalogTTL time.Duration
}

type SleeperConfig struct {
	BaseURL   string
	RateLimit float64
	Timeout   time.Duration
}

type MatchConfig struct {
	Threshold       float64
	SearchThreshold float64
	SurnameFallback bool
}

type AuthentikConfig struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Enabled reports whether Authentik is configured
func (a AuthentikConfig) Enabled() bool {
	return a.BaseURL != "" && a.ClientID != ""
}

// Load reads .env (if present) and the environment
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:       getEnv("ENVIRONMENT", "development"),
		Port:      getEnv("PORT", "3000"),
		GRPCPort:  getEnv("GRPC_PORT", "50051"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
		Database: DatabaseConfig{
			Driver:     strings.ToLower(getEnv("DB_DRIVER", "memory")),
			SQLiteFile: getEnv("SQLITE_FILE", "dev.sqlite"),
			URL:        getEnv("DATABASE_URL", ""),
		},
		NATS: NATSConfig{
			URL:     getEnv("NATS_URL", ""),
			Subject: getEnv("NATS_SUBJECT", "draftaid.events"),
		},
		ClickHouse: ClickHouseConfig{
			Addr:     getEnv("CLICKHOUSE_ADDR", ""),
			Database: getEnv("CLICKHOUSE_DB", "default"),
			User:     getEnv("CLICKHOUSE_USER", "default"),
			Password: getEnv("CLICKHOUSE_PASSWORD", ""),
		},
		Redis: RedisConfig{
			Addr:       getEnv("REDIS_ADDR", ""),
			Password:   getEnv("REDIS_PASSWORD", ""),
			DB:         getEnvAsInt("REDIS_DB", 0),
			CatalogTTL: getEnvAsDuration("CATALOG_CACHE_TTL", "12h"),
		},
		Sleeper: SleeperConfig{
			BaseURL:   getEnv("SLEEPER_BASE_URL", "https://api.sleeper.app/v1"),
			RateLimit: getEnvAsFloat("SLEEPER_RATE_LIMIT", 2),
			Timeout:   getEnvAsDuration("SLEEPER_TIMEOUT", "30s"),
		},
		Match: MatchConfig{
			Threshold:       getEnvAsFloat("MATCH_THRESHOLD", 0.80),
			SearchThreshold: getEnvAsFloat("SEARCH_THRESHOLD", 0.60),
			SurnameFallback: getEnvAsBool("MATCH_SURNAME_FALLBACK", false),
		},
		Authentik: AuthentikConfig{
			BaseURL:      getEnv("AUTHENTIK_URL", ""),
			ClientID:     getEnv("AUTHENTIK_CLIENT_ID", ""),
			ClientSecret: getEnv("AUTHENTIK_CLIENT_SECRET", ""),
			RedirectURL:  getEnv("AUTHENTIK_REDIRECT_URL", ""),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsProduction reports whether ENVIRONMENT is production
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "production" {
		return fmt.Errorf("ENVIRONMENT must be one of: development, production")
	}
	switch c.Database.Driver {
	case "memory", "sqlite":
	case "postgres":
		// development falls back to the SQLite-backed mock
		if c.Database.URL == "" && c.IsProduction() {
			return fmt.Errorf("DATABASE_URL is required for postgres driver")
		}
	default:
		return fmt.Errorf("DB_DRIVER must be one of: memory, sqlite, postgres")
	}
	if c.Match.Threshold <= 0 || c.Match.Threshold > 1 {
		return fmt.Errorf("MATCH_THRESHOLD must be in (0, 1]")
	}
	if c.Match.SearchThreshold <= 0 || c.Match.SearchThreshold > 1 {
		return fmt.Errorf("SEARCH_THRESHOLD must be in (0, 1]")
	}
	if c.Sleeper.RateLimit <= 0 {
		return fmt.Errorf("SLEEPER_RATE_LIMIT must be positive")
	}
	if c.IsProduction() && !c.Authentik.Enabled() {
		return fmt.Errorf("AUTHENTIK_URL and AUTHENTIK_CLIENT_ID are required in production")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	value, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}
	return duration
}
