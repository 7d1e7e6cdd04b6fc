// Package config loads identity service configuration from the
// environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	identity "github.com/goliatone/go-identity"
)

// AppConfig is the environment-backed configuration for the identity
// service. It satisfies the identity.Config contract consumed by the
// service constructor.
type AppConfig struct {
	// SigningKey is the HMAC secret for access tokens.
	SigningKey string `env:"IDENTITY_SIGNING_KEY"`
	// TokenExpiration is the access token lifetime.
	TokenExpiration time.Duration `env:"IDENTITY_TOKEN_EXPIRATION" envDefault:"24h"`
	// Issuer is stamped into the iss claim when set.
	Issuer string `env:"IDENTITY_TOKEN_ISSUER"`
	// UseHashID derives deterministic user ids from the email at signup.
	UseHashID bool `env:"IDENTITY_USE_HASHID" envDefault:"false"`

	RedisAddr     string `env:"IDENTITY_REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"IDENTITY_REDIS_PASSWORD"`
	RedisDB       int    `env:"IDENTITY_REDIS_DB" envDefault:"0"`

	// CacheTTL bounds single-user cache entries.
	CacheTTL time.Duration `env:"IDENTITY_CACHE_TTL" envDefault:"1h"`

	// Workers sizes the deletion worker pool.
	Workers int `env:"IDENTITY_DELETION_WORKERS" envDefault:"3"`
	// MaxRetries is the redelivery budget per deletion event.
	MaxRetries int `env:"IDENTITY_DELETION_MAX_RETRIES" envDefault:"3"`
	// MessageTTL bounds how long a deletion event may wait in the queue.
	MessageTTL time.Duration `env:"IDENTITY_DELETION_MESSAGE_TTL" envDefault:"5m"`
}

var _ identity.Config = (*AppConfig)(nil)

// New loads the configuration from the environment.
func New() (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the values a misconfigured deployment most often gets
// wrong.
func (c *AppConfig) Validate() error {
	if c.SigningKey == "" {
		return fmt.Errorf("IDENTITY_SIGNING_KEY is required")
	}

	if c.TokenExpiration <= 0 {
		return fmt.Errorf("IDENTITY_TOKEN_EXPIRATION must be positive")
	}

	if c.Workers <= 0 {
		return fmt.Errorf("IDENTITY_DELETION_WORKERS must be positive")
	}

	return nil
}

func (c *AppConfig) GetSigningKey() string {
	return c.SigningKey
}

func (c *AppConfig) GetTokenExpiration() time.Duration {
	return c.TokenExpiration
}

func (c *AppConfig) GetIssuer() string {
	return c.Issuer
}

func (c *AppConfig) GetUseHashID() bool {
	return c.UseHashID
}
