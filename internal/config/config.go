package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrConfig marks a missing or invalid configuration value. Callers match it
// with errors.Is to tell misconfiguration apart from request errors.
var ErrConfig = errors.New("configuration error")

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Gemini   GeminiConfig
}

type ServerConfig struct {
	Port            string
	Env             string // dev or prod
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	TrustedOrigins  []string // CORS allowed origins for cookie auth
}

type DatabaseConfig struct {
	// URL is a postgres:// connection string or a sqlite file: DSN
	URL    string
	DBName string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type AuthConfig struct {
	Secret string
	// TokenFormat is "jwt" (HS256) or "paseto" (v4.local)
	TokenFormat string
	TokenTTL    time.Duration
	// Revocation keeps a Redis denylist of signed-out tokens
	Revocation bool
}

type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Load reads configuration from environment variables.
// A .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			Env:             getEnv("APP_ENV", "dev"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 15*time.Second),
			TrustedOrigins:  getSliceEnv("TRUSTED_ORIGINS", []string{"http://localhost:3000"}),
		},
		Database: DatabaseConfig{
			URL:    getEnv("DATABASE_URL", ""),
			DBName: getEnv("DB_NAME", "healthmate"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		Auth: AuthConfig{
			Secret:      getEnv("JWT_SECRET", ""),
			TokenFormat: strings.ToLower(getEnv("TOKEN_FORMAT", "jwt")),
			TokenTTL:    getDurationEnv("TOKEN_TTL", 7*24*time.Hour),
			Revocation:  getBoolEnv("SESSION_REVOCATION", false),
		},
		Gemini: GeminiConfig{
			APIKey:  getEnv("GEMINI_API_KEY", ""),
			Model:   strings.TrimSpace(getEnv("GEMINI_MODEL", "")),
			BaseURL: getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the values the process cannot start without.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("%w: DATABASE_URL is not set", ErrConfig)
	}
	if c.Database.Driver() == "" {
		return fmt.Errorf("%w: DATABASE_URL must start with postgres://, postgresql://, file: or sqlite://", ErrConfig)
	}
	if c.Auth.Secret == "" {
		return fmt.Errorf("%w: JWT_SECRET is not set", ErrConfig)
	}
	switch c.Auth.TokenFormat {
	case "jwt":
	case "paseto":
		// v4.local needs a 32 byte symmetric key
		if len(c.Auth.Secret) != 32 {
			return fmt.Errorf("%w: JWT_SECRET must be exactly 32 bytes for paseto tokens, got %d", ErrConfig, len(c.Auth.Secret))
		}
	default:
		return fmt.Errorf("%w: unknown TOKEN_FORMAT %q", ErrConfig, c.Auth.TokenFormat)
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("%w: TOKEN_TTL must be positive", ErrConfig)
	}
	return nil
}

// Driver returns the database/sql driver name matching the URL scheme, or
// an empty string when the scheme is not supported.
func (c *DatabaseConfig) Driver() string {
	switch {
	case strings.HasPrefix(c.URL, "postgres://"), strings.HasPrefix(c.URL, "postgresql://"):
		return "postgres"
	case strings.HasPrefix(c.URL, "file:"), strings.HasPrefix(c.URL, "sqlite://"):
		return "sqlite3"
	default:
		return ""
	}
}

// ConnectionString returns the DSN handed to the driver. Postgres URLs
// without a database path get DBName filled in.
func (c *DatabaseConfig) ConnectionString() string {
	if c.Driver() != "postgres" {
		return strings.TrimPrefix(c.URL, "sqlite://")
	}

	u, err := url.Parse(c.URL)
	if err != nil {
		return c.URL
	}
	if strings.Trim(u.Path, "/") == "" && c.DBName != "" {
		u.Path = "/" + c.DBName
	}
	return u.String()
}

// Address returns Redis connection address (host:port)
func (c *RedisConfig) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDevelopment returns true if the environment is set to dev
func (c *ServerConfig) IsDevelopment() bool {
	return c.Env == "dev"
}

// IsProduction drives the Secure attribute of the session cookie.
func (c *ServerConfig) IsProduction() bool {
	return c.Env == "prod" || c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}

	return b
}

// getDurationEnv reads a whole number of seconds.
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	seconds, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return time.Duration(seconds) * time.Second
}

func getSliceEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	if len(result) == 0 {
		return defaultValue
	}

	return result
}
