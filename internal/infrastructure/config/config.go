package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// JWTSecret has no fallback on purpose: a process without an explicit
	// secret must refuse to start.
	JWTSecret     string        `env:"JWT_SECRET"`
	TokenIssuer   string        `env:"TOKEN_ISSUER,   default=russian-intonation-app"`
	TokenAudience string        `env:"TOKEN_AUDIENCE, default=russian-intonation-users"`
	TokenTTL      time.Duration `env:"TOKEN_TTL,      default=168h"`

	DeliveryWorkers int `env:"DELIVERY_WORKERS, default=4"`

	Mongo MongoConfig
	Redis RedisConfig
	Mail  MailConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=intonation_identity"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type MailConfig struct {
	Host     string `env:"MAIL_HOST, default=smtp.gmail.com"`
	Port     int    `env:"MAIL_PORT, default=587"`
	Username string `env:"MAIL_USERNAME"`
	Password string `env:"MAIL_PASSWORD"`
	From     string `env:"MAIL_FROM"`
}

var ErrMissingSecret = errors.New("JWT_SECRET must be set")

// Load reads configuration from environment variables using go-envconfig and
// rejects configurations that would silently run with no signing secret.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	if cfg.JWTSecret == "" {
		return nil, ErrMissingSecret
	}
	return &cfg, nil
}
