package jwtauth

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// MinSecretLength is the minimum HS256 secret size in bytes (256 bits).
const MinSecretLength = 32

// Config holds the immutable signing and validation settings shared by the
// Issuer, the Validator and the Gate. It is safe for concurrent use.
type Config struct {
	secret          []byte
	clockSkewLeeway time.Duration
	cookieName      string
	logger          *zerolog.Logger
	now             func() time.Time
}

// ConfigOption is a functional option for configuring token handling
type ConfigOption func(*Config) error

// NewConfig creates a new immutable configuration with the given options
func NewConfig(opts ...ConfigOption) (*Config, error) {
	cfg := &Config{
		now: time.Now,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, NewValidationError(ErrConfigError, fmt.Sprintf("configuration error: %v", err), err)
		}
	}

	if len(cfg.secret) == 0 {
		return nil, NewValidationError(ErrConfigError, "a signing secret must be configured (use WithHS256)", nil)
	}

	return cfg, nil
}

// WithHS256 configures HMAC-SHA256 signing and validation with the given
// secret. The secret is copied, so later changes to the caller's slice have no
// effect.
func WithHS256(secret []byte) ConfigOption {
	return func(c *Config) error {
		if len(secret) < MinSecretLength {
			return fmt.Errorf("HS256 secret must be at least %d bytes (256 bits), got %d bytes", MinSecretLength, len(secret))
		}
		c.secret = append([]byte(nil), secret...)
		return nil
	}
}

// WithClockSkew sets the tolerance applied to the exp check
func WithClockSkew(skew time.Duration) ConfigOption {
	return func(c *Config) error {
		if skew < 0 {
			return fmt.Errorf("clock skew must be non-negative, got %v", skew)
		}
		c.clockSkewLeeway = skew
		return nil
	}
}

// WithCookie enables token extraction from a cookie with the given name when
// the Authorization header is absent.
func WithCookie(cookieName string) ConfigOption {
	return func(c *Config) error {
		c.cookieName = cookieName
		return nil
	}
}

// WithLogger sets a structured logger for security events
func WithLogger(logger zerolog.Logger) ConfigOption {
	return func(c *Config) error {
		c.logger = &logger
		return nil
	}
}

// WithClock overrides the time source used by the Gate.
func WithClock(now func() time.Time) ConfigOption {
	return func(c *Config) error {
		if now == nil {
			return fmt.Errorf("clock function cannot be nil")
		}
		c.now = now
		return nil
	}
}

// Algorithm returns the only accepted signing algorithm.
func (c *Config) Algorithm() string {
	return "HS256"
}

// ClockSkewLeeway returns the tolerance added to exp.
func (c *Config) ClockSkewLeeway() time.Duration {
	return c.clockSkewLeeway
}

// CookieName returns the fallback cookie name, or "" when disabled.
func (c *Config) CookieName() string {
	return c.cookieName
}

// Logger returns the security event logger, or nil.
func (c *Config) Logger() *zerolog.Logger {
	return c.logger
}

// Now returns the current time according to the configured clock.
func (c *Config) Now() time.Time {
	return c.now()
}
