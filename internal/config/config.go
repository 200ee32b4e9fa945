package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server      ServerConfig    `yaml:"server"`
	Database    DatabaseConfig  `yaml:"database"`
	Auth        AuthConfig      `yaml:"auth"`
	RateLimit   RateLimitConfig `yaml:"rate_limit"`
	Logging     LoggingConfig   `yaml:"logging"`
	Tracing     TracingConfig   `yaml:"tracing"`
	Environment string          `yaml:"environment" env:"ENVIRONMENT"`
}

type ServerConfig struct {
	Host            string        `yaml:"host" env:"SERVER_HOST"`
	Port            int           `yaml:"port" env:"SERVER_PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes" env:"SERVER_MAX_BODY_BYTES"`
}

type DatabaseConfig struct {
	URL            string `yaml:"url" env:"DATABASE_URL"`
	MaxConnections int    `yaml:"max_connections" env:"DATABASE_MAX_CONNECTIONS"`
	MaxIdle        int    `yaml:"max_idle_connections" env:"DATABASE_MAX_IDLE_CONNECTIONS"`
}

type AuthConfig struct {
	JWTSecret  string        `yaml:"jwt_secret" env:"JWT_SECRET"`
	JWTExpiry  time.Duration `yaml:"jwt_expiry" env:"JWT_EXPIRY"`
	CookieName string        `yaml:"cookie_name" env:"AUTH_COOKIE_NAME"`
	// CSRFKey enables CSRF protection on admin form posts when set (32 bytes).
	CSRFKey string `yaml:"csrf_key" env:"CSRF_KEY"`
}

// RateLimitConfig holds per-minute request budgets per client IP. Zero disables the tier.
type RateLimitConfig struct {
	PublicPerMinute int `yaml:"public_per_minute" env:"RATE_LIMIT_PUBLIC"`
	AdminPerMinute  int `yaml:"admin_per_minute" env:"RATE_LIMIT_ADMIN"`

	// TrustedProxyCIDRs lists proxies whose X-Forwarded-For header is honored.
	TrustedProxyCIDRs []string `yaml:"trusted_proxy_cidrs" env:"TRUSTED_PROXY_CIDRS" envSeparator:","`
}

type LoggingConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
}

type TracingConfig struct {
	Enabled      bool    `yaml:"enabled" env:"TRACING_ENABLED"`
	Exporter     string  `yaml:"exporter" env:"TRACING_EXPORTER"`
	ServiceName  string  `yaml:"service_name" env:"TRACING_SERVICE_NAME"`
	OTLPEndpoint string  `yaml:"otlp_endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	SampleRate   float64 `yaml:"sample_rate" env:"TRACING_SAMPLE_RATE"`
}

// Defaults returns the configuration used when neither a file nor the
// environment sets a value.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxBodyBytes:    1 << 20,
		},
		Database: DatabaseConfig{
			MaxConnections: 25,
			MaxIdle:        5,
		},
		Auth: AuthConfig{
			JWTExpiry:  24 * time.Hour,
			CookieName: "brewvote_admin_token",
		},
		RateLimit: RateLimitConfig{
			PublicPerMinute: 120,
			AdminPerMinute:  0,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Tracing: TracingConfig{
			Exporter:    "none",
			ServiceName: "brewvote",
			SampleRate:  1.0,
		},
		Environment: "development",
	}
}

// Load reads the configuration and validates it for serving.
func Load(path string) (Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Read builds the configuration from defaults, then the optional YAML file at
// path, then environment variables. It does not validate, so tools that only
// need part of the configuration can use it.
func Read(path string) (Config, error) {
	cfg := Defaults()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Database.URL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.Environment == "production" && len(c.Auth.JWTSecret) < 32 {
		return errors.New("JWT_SECRET must be at least 32 characters in production")
	}
	if c.Auth.CSRFKey != "" && len(c.Auth.CSRFKey) != 32 {
		return errors.New("CSRF_KEY must be exactly 32 bytes")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	return nil
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}
