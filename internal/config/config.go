// Package config loads server configuration from environment variables.
//
// CONFIG AS A STRUCT:
// All tunables live in one Config value constructed once in main() and
// passed explicitly to the components that need them. Nothing reads
// os.Getenv after startup, and nothing holds configuration in package
// globals — the JWT secret in particular travels inside Config, never
// as ambient state.
//
// We use caarlos0/env to map environment variables onto struct fields
// declaratively. Each field's `env` tag names the variable, and
// `envDefault` supplies the fallback when it's unset.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// InsecureDefaultSecret is the JWT signing secret used when JWT_SECRET
// is not set. It is public knowledge by definition — any deployment
// still running on it has effectively no token security. Load() does
// not reject it (local development needs to work out of the box), but
// main() logs a prominent warning when it's in use.
const InsecureDefaultSecret = "insecure-dev-secret-change-me!!!"

// Config holds every tunable the server reads at startup.
type Config struct {
	// Port the HTTP server listens on.
	Port int `env:"PORT" envDefault:"8080"`

	// DBPath is the SQLite database file. ":memory:" gives an
	// in-process database that vanishes on shutdown (tests use this).
	DBPath string `env:"DB_PATH" envDefault:"data/authd.db"`

	// JWTSecret signs session tokens. Set it to at least 32 random
	// bytes in production: JWT_SECRET=$(openssl rand -hex 32)
	JWTSecret string `env:"JWT_SECRET" envDefault:""`

	// OTPTTL is how long a sign-up code stays redeemable.
	OTPTTL time.Duration `env:"OTP_TTL" envDefault:"10m"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// SMTP settings for OTP delivery. When SMTPAddr is empty the
	// server falls back to logging codes instead of emailing them.
	SMTPAddr string `env:"SMTP_ADDR" envDefault:""`
	SMTPFrom string `env:"SMTP_FROM" envDefault:"no-reply@localhost"`

	// GitHub OAuth app credentials for account linking. The
	// /auth/github routes are only registered when both are set.
	GitHubClientID     string `env:"GITHUB_CLIENT_ID" envDefault:""`
	GitHubClientSecret string `env:"GITHUB_CLIENT_SECRET" envDefault:""`
	GitHubCallbackURL  string `env:"GITHUB_CALLBACK_URL" envDefault:""`
}

// Load parses the environment into a Config.
//
// It applies two fixups after parsing:
//   - an unset JWT_SECRET falls back to InsecureDefaultSecret
//   - an unset GITHUB_CALLBACK_URL is derived from the port
//
// Callers must check UsingDefaultSecret and warn loudly.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parsing environment: %w", err)
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("config: invalid PORT %d", cfg.Port)
	}
	if cfg.OTPTTL <= 0 {
		return Config{}, fmt.Errorf("config: OTP_TTL must be positive, got %s", cfg.OTPTTL)
	}

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = InsecureDefaultSecret
	}
	if cfg.GitHubCallbackURL == "" {
		cfg.GitHubCallbackURL = fmt.Sprintf("http://localhost:%d/auth/github/callback", cfg.Port)
	}

	return cfg, nil
}

// UsingDefaultSecret reports whether the config is running on the
// insecure fallback secret.
func (c Config) UsingDefaultSecret() bool {
	return c.JWTSecret == InsecureDefaultSecret
}

// GitHubEnabled reports whether account linking can be wired up.
func (c Config) GitHubEnabled() bool {
	return c.GitHubClientID != "" && c.GitHubClientSecret != ""
}
