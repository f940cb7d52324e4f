// Package config loads application configuration from environment variables.
//
// Config is a plain struct with `env` tags — caarlos0/env parses the
// environment into it, applying the envDefault values for anything unset.
// A local .env file is loaded first (godotenv) so development doesn't need
// a wall of exports; in production the file simply doesn't exist.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every knob the server reads from the environment.
type Config struct {
	Port   int    `env:"PORT" envDefault:"8000"`
	DBPath string `env:"DB_PATH" envDefault:"data/devfolio.db"`

	// OAuth app credentials from https://github.com/settings/developers.
	// If unset, the server still starts but the auth routes return
	// oauth_not_configured.
	GitHubClientID     string `env:"GITHUB_CLIENT_ID"`
	GitHubClientSecret string `env:"GITHUB_CLIENT_SECRET"`

	// BackendURL is this server's public base URL — it forms the OAuth
	// redirect URI, which must match the OAuth app registration exactly.
	// FrontendURL is where the callback sends the browser after login.
	BackendURL  string `env:"BACKEND_URL" envDefault:"http://localhost:8000"`
	FrontendURL string `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`

	// SessionTTL is the absolute session lifetime. 168h = 7 days.
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"168h"`
}

// Load reads the optional .env file and parses the environment.
func Load() (*Config, error) {
	// Missing .env is fine — only a parse failure of an existing file matters,
	// and godotenv folds both into one error, so we ignore it entirely and
	// let env.Parse surface anything that's actually wrong.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("config: parsing environment: %w", err)
	}
	return &cfg, nil
}

// OAuthConfigured reports whether GitHub OAuth is set up. The client ID
// alone decides: the start endpoint only needs the ID to build an authorize
// URL, and a missing secret surfaces later as a failed code exchange.
func (c *Config) OAuthConfigured() bool {
	return c.GitHubClientID != ""
}

// CallbackURL is the OAuth redirect URI registered with GitHub.
func (c *Config) CallbackURL() string {
	return c.BackendURL + "/auth/github/callback"
}
