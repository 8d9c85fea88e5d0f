package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development" validate:"oneof=development staging production test"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Backend BackendConfig
	Session SessionConfig
	Redis   RedisConfig
	Mongo   MongoConfig
}

type BackendConfig struct {
	URL     string        `env:"BACKEND_URL,     default=http://localhost:8000" validate:"required,url"`
	Timeout time.Duration `env:"BACKEND_TIMEOUT, default=10s"`
}

type SessionConfig struct {
	TokenTTL   time.Duration `env:"TOKEN_TTL,   default=1h" validate:"gt=0"`
	LoginRate  float64       `env:"LOGIN_RATE,  default=0.2" validate:"gt=0"`
	LoginBurst int           `env:"LOGIN_BURST, default=5" validate:"min=1"`
}

// RedisConfig selects the token store. An empty Addr keeps the session in memory.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,     default=0" validate:"min=0"`
	Prefix   string `env:"REDIS_PREFIX, default=console"`
}

// MongoConfig selects the audit store. An empty URI writes the audit trail to the log.
type MongoConfig struct {
	URI       string        `env:"MONGO_URI"`
	Database  string        `env:"MONGO_DB,        default=admin_console"`
	Retention time.Duration `env:"AUDIT_RETENTION, default=2160h"`
	Workers   int           `env:"AUDIT_WORKERS,   default=4" validate:"min=1"`
}

// IsProduction reports whether pretty logging and other dev conveniences
// must be turned off.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration from l and validates it.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
