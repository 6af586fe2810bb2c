package config

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration.
type Config struct {
	ServerPort   int    `env:"PORT" envDefault:"8080"`
	DatabasePath string `env:"DATABASE_PATH" envDefault:"./mylibrary.db"`
	AppBaseURL   string `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`
	Environment  string `env:"APP_ENV" envDefault:"development"`

	// Token signing and lifetimes. The secret has no default on purpose: a
	// process without one must not start.
	JWTSecret        string        `env:"JWT_SECRET"`
	AccessTokenTTL   time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"24h"`
	RefreshTokenTTL  time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"168h"`
	ActionTokenTTL   time.Duration `env:"ACTION_TOKEN_TTL" envDefault:"30m"`
	UnverifiedMaxAge time.Duration `env:"UNVERIFIED_MAX_AGE" envDefault:"168h"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	SMTPFrom     string `env:"SMTP_FROM" envDefault:"no-reply@mylibrary.local"`
}

// Load parses configuration from environment variables and validates it.
func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsProduction reports whether the process runs with production settings,
// which controls the Secure/SameSite attributes on auth cookies.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is not set")
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 || c.ActionTokenTTL <= 0 {
		return errors.New("token TTLs must be positive")
	}
	return nil
}
