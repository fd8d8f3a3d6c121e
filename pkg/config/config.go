package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"cognito-login/pkg/auth"
)

// Config holds the application configuration
type Config struct {
	UserPoolID  string `env:"COGNITO_USER_POOL_ID,required,notEmpty"`
	AppClientID string `env:"COGNITO_APP_CLIENT_ID,required,notEmpty"`
	Region      string `env:"AWS_REGION"`
	// AWS_DEFAULT_REGION is what the older tooling exports; AWS_REGION wins when both are set.
	DefaultRegion string `env:"AWS_DEFAULT_REGION"`

	Port            string        `env:"PORT" envDefault:"8080"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	SecureCookies   bool          `env:"SECURE_COOKIES" envDefault:"true"`
	SessionMaxAge   time.Duration `env:"SESSION_MAX_AGE" envDefault:"720h"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	LoginRatePerMinute float64 `env:"LOGIN_RATE_PER_MINUTE" envDefault:"30"`
	LoginRateBurst     int     `env:"LOGIN_RATE_BURST" envDefault:"5"`
	// TrustProxy takes client addresses from forwarding headers. Only enable it
	// behind a proxy that overwrites them.
	TrustProxy bool `env:"TRUST_PROXY" envDefault:"false"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read .env: %w", err)
	}
	return parse(env.Options{})
}

// FromMap builds a Config from an explicit environment, ignoring the process one.
func FromMap(environ map[string]string) (*Config, error) {
	return parse(env.Options{Environment: environ})
}

func parse(opts env.Options) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	cfg.UserPoolID = strings.TrimSpace(cfg.UserPoolID)
	cfg.AppClientID = strings.TrimSpace(cfg.AppClientID)
	if cfg.Region == "" {
		cfg.Region = cfg.DefaultRegion
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := c.AuthOptions().Validate(); err != nil {
		return err
	}
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.SessionMaxAge <= 0 {
		return fmt.Errorf("SESSION_MAX_AGE must be positive")
	}
	if c.LoginRatePerMinute <= 0 || c.LoginRateBurst <= 0 {
		return fmt.Errorf("LOGIN_RATE_PER_MINUTE and LOGIN_RATE_BURST must be positive")
	}
	return nil
}

// AuthOptions returns the identity provider settings.
func (c *Config) AuthOptions() auth.Options {
	return auth.Options{
		UserPoolID:  c.UserPoolID,
		AppClientID: c.AppClientID,
		Region:      c.Region,
	}
}
