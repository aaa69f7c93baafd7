package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/giannis84/tunelib/internal/auth"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultConfigPath = "config.yaml"
	defaultEnvPath    = ".env"
	defaultTokenTTL   = 720 * time.Hour
	minSecretLength   = 16
)

// Config holds the application configuration.
type Config struct {
	APIPort    string `yaml:"api_port"`
	HealthPort string `yaml:"health_port"`
	LogLevel   string `yaml:"log_level"`

	// HTTP server timeouts (optional, defaults apply in server.go)
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`

	// TokenTTL bounds the lifetime of issued bearer tokens. Logout revokes earlier.
	TokenTTL time.Duration `yaml:"token_ttl"`

	// JWT signing secret. Env var only, never read from config.yaml.
	JWTSecret string `yaml:"-"`

	// Database configuration (env vars only, secrets must not live in config.yaml)
	DBHost     string `yaml:"-"`
	DBPort     string `yaml:"-"`
	DBUser     string `yaml:"-"`
	DBPassword string `yaml:"-"`
	DBName     string `yaml:"-"`

	// Rate limiting configuration
	RateLimitRequests int           `yaml:"rate_limit_requests"` // Max requests per window (0 = disabled)
	RateLimitWindow   time.Duration `yaml:"rate_limit_window"`   // Time window for rate limiting
}

// Load reads configuration with the following precedence (highest wins):
//  1. Environment variables (including those from a .env file, which never override real ones)
//  2. YAML config file (path from CONFIG_PATH env var, or "config.yaml")
//
// Database settings and the JWT secret are loaded exclusively from environment variables.
func Load() (*Config, error) {
	envPath := os.Getenv("ENV_FILE")
	if envPath == "" {
		envPath = defaultEnvPath
	}
	if err := godotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading env file %s: %w", envPath, err)
	}

	cfg := &Config{}

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = defaultConfigPath
	}

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	overrideString(&cfg.APIPort, "API_PORT")
	overrideString(&cfg.HealthPort, "HEALTH_PORT")
	overrideString(&cfg.LogLevel, "LOG_LEVEL")

	if cfg.APIPort == "" {
		return nil, fmt.Errorf("api_port is required (set via config file or API_PORT env var)")
	}
	if cfg.HealthPort == "" {
		return nil, fmt.Errorf("health_port is required (set via config file or HEALTH_PORT env var)")
	}

	cfg.DBHost = os.Getenv("POSTGRES_HOST")
	cfg.DBPort = os.Getenv("POSTGRES_PORT")
	cfg.DBUser = os.Getenv("POSTGRES_USER")
	cfg.DBPassword = os.Getenv("POSTGRES_PASSWORD")
	cfg.DBName = os.Getenv("POSTGRES_DB")

	cfg.JWTSecret = os.Getenv("JWT_SECRET")

	if err := overrideDuration(&cfg.ReadTimeout, "READ_TIMEOUT"); err != nil {
		return nil, err
	}
	if err := overrideDuration(&cfg.WriteTimeout, "WRITE_TIMEOUT"); err != nil {
		return nil, err
	}
	if err := overrideDuration(&cfg.IdleTimeout, "IDLE_TIMEOUT"); err != nil {
		return nil, err
	}
	if err := overrideDuration(&cfg.TokenTTL, "TOKEN_TTL"); err != nil {
		return nil, err
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}

	for _, req := range []struct{ name, value string }{
		{"POSTGRES_HOST", cfg.DBHost},
		{"POSTGRES_PORT", cfg.DBPort},
		{"POSTGRES_USER", cfg.DBUser},
		{"POSTGRES_PASSWORD", cfg.DBPassword},
		{"POSTGRES_DB", cfg.DBName},
		{"JWT_SECRET", cfg.JWTSecret},
	} {
		if req.value == "" {
			return nil, fmt.Errorf("%s env var is required", req.name)
		}
	}
	if len(cfg.JWTSecret) < minSecretLength {
		return nil, fmt.Errorf("JWT_SECRET must be at least %d bytes", minSecretLength)
	}

	// Rate limiting configuration (env vars override config file)
	if v := os.Getenv("RATE_LIMIT_REQUESTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("RATE_LIMIT_REQUESTS: %w", err)
		}
		cfg.RateLimitRequests = n
	}
	if err := overrideDuration(&cfg.RateLimitWindow, "RATE_LIMIT_WINDOW"); err != nil {
		return nil, err
	}

	// Apply rate limiting defaults if partially configured
	if cfg.RateLimitRequests > 0 && cfg.RateLimitWindow == 0 {
		cfg.RateLimitWindow = time.Minute
	}

	return cfg, nil
}

func overrideString(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

func overrideDuration(dst *time.Duration, env string) error {
	v := os.Getenv(env)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", env, err)
	}
	*dst = d
	return nil
}

// PostgresConnString returns a PostgreSQL connection string.
func (c *Config) PostgresConnString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName,
	)
}

// APIAddr returns the listen address for the API server.
func (c *Config) APIAddr() string {
	return ":" + c.APIPort
}

// HealthAddr returns the listen address for the health check server.
func (c *Config) HealthAddr() string {
	return ":" + c.HealthPort
}

// AuthConfig returns the bearer token configuration.
func (c *Config) AuthConfig() auth.AuthConfig {
	return auth.AuthConfig{
		Secret:   c.JWTSecret,
		TokenTTL: c.TokenTTL,
	}
}

// RateLimitConfig holds rate limiting settings.
type RateLimitConfig struct {
	Requests int           // Max requests per window (0 = disabled)
	Window   time.Duration // Time window for rate limiting
}

// RateLimitConfig returns the rate limiting configuration.
func (c *Config) RateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Requests: c.RateLimitRequests,
		Window:   c.RateLimitWindow,
	}
}
