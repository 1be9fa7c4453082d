package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	SourceFile     = "file"
	SourceHTTP     = "http"
	SourcePostgres = "postgres"
)

var (
	ErrInvalidSource   = errors.New("invalid catalog source")
	ErrMissingURL      = errors.New("catalog url is required for the http source")
	ErrInvalidLogLevel = errors.New("invalid log level")
)

type Config struct {
	Server    ServerConfig
	Catalog   CatalogConfig
	Cart      CartConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
}

type ServerConfig struct {
	Port     string
	Env      string
	LogLevel string
}

type CatalogConfig struct {
	Source       string
	Path         string
	URL          string
	Locale       string
	FetchTimeout time.Duration
}

type CartConfig struct {
	SessionTTL    time.Duration
	SweepInterval time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	Schema   string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type RateLimitConfig struct {
	Enabled  bool
	Requests int
	Window   time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not read .env file: %v", err)
	}

	v := viper.New()
	v.AutomaticEnv()

	// Set defaults
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CATALOG_SOURCE", SourceFile)
	v.SetDefault("CATALOG_PATH", "assets/data/products.json")
	v.SetDefault("CATALOG_LOCALE", "en")
	v.SetDefault("CATALOG_FETCH_TIMEOUT", "10s")
	v.SetDefault("CART_SESSION_TTL", "24h")
	v.SetDefault("CART_SWEEP_INTERVAL", "10m")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SCHEMA", "public")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("RATE_LIMIT_ENABLED", false)
	v.SetDefault("RATE_LIMIT_REQUESTS", 100)
	v.SetDefault("RATE_LIMIT_WINDOW", "1m")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")

	return &Config{
		Server: ServerConfig{
			Port:     v.GetString("SERVER_PORT"),
			Env:      v.GetString("SERVER_ENV"),
			LogLevel: v.GetString("LOG_LEVEL"),
		},
		Catalog: CatalogConfig{
			Source:       strings.ToLower(v.GetString("CATALOG_SOURCE")),
			Path:         v.GetString("CATALOG_PATH"),
			URL:          v.GetString("CATALOG_URL"),
			Locale:       v.GetString("CATALOG_LOCALE"),
			FetchTimeout: v.GetDuration("CATALOG_FETCH_TIMEOUT"),
		},
		Cart: CartConfig{
			SessionTTL:    v.GetDuration("CART_SESSION_TTL"),
			SweepInterval: v.GetDuration("CART_SWEEP_INTERVAL"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Database: v.GetString("DB_DATABASE"),
			Schema:   v.GetString("DB_SCHEMA"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		RateLimit: RateLimitConfig{
			Enabled:  v.GetBool("RATE_LIMIT_ENABLED"),
			Requests: v.GetInt("RATE_LIMIT_REQUESTS"),
			Window:   v.GetDuration("RATE_LIMIT_WINDOW"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
	}
}

// Validate checks values that would otherwise fail late at startup
func (c *Config) Validate() error {
	switch c.Catalog.Source {
	case SourceFile, SourcePostgres:
	case SourceHTTP:
		if c.Catalog.URL == "" {
			return ErrMissingURL
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidSource, c.Catalog.Source)
	}

	switch strings.ToLower(c.Server.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Server.LogLevel)
	}

	return nil
}

// Addr returns the redis address
func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

// DSN returns the postgres connection string
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable&search_path=%s",
		d.User, d.Password, d.Host, d.Port, d.Database, d.Schema)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
