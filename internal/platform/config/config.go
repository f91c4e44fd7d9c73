// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into strongly-typed
Go structs, providing early validation and default values.

Two independent schemas exist:

  - [Client] (prefix POSTDECK_) for the postdeck CLI and its session manager.
  - [Server] (prefix IDENTITYD_) for the development identity stub server.

Usage:

	cfg, err := config.LoadClient()
	if err != nil {
	    log.Fatal(err)
	}

Once loaded, configuration is read-only and passed down through constructors.
*/
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/taibuivan/postdeck/internal/platform/validate"
)

// Token store backends accepted by [Client.TokenStore].
const (
	StoreFile   = "file"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

// # Client Schema

// Client holds the runtime configuration of the postdeck CLI.
type Client struct {

	// Identity API
	APIBaseURL     string        `env:"API_BASE_URL"    envDefault:"http://localhost:5000"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`

	// Durable session token storage
	TokenStore string        `env:"TOKEN_STORE" envDefault:"file"`
	TokenFile  string        `env:"TOKEN_FILE"`
	RedisURL   string        `env:"REDIS_URL"`
	Profile    string        `env:"PROFILE"     envDefault:"default"`
	TokenTTL   time.Duration `env:"TOKEN_TTL"   envDefault:"0s"`

	// Calendar presentation
	Locale   string `env:"LOCALE"   envDefault:"fr-FR"`
	Timezone string `env:"TIMEZONE" envDefault:"Local"`

	// Assistant simulated latency
	AssistantDelay time.Duration `env:"ASSISTANT_DELAY" envDefault:"1500ms"`

	Debug bool `env:"DEBUG" envDefault:"false"`
}

// LoadClient parses POSTDECK_* environment variables into a [Client] struct.
func LoadClient() (*Client, error) {
	cfg := &Client{}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: "POSTDECK_"}); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// Validate checks cross-field rules that struct tags cannot express.
func (c *Client) Validate() error {
	v := &validate.Validator{}

	v.Required("POSTDECK_API_BASE_URL", c.APIBaseURL).
		OneOf("POSTDECK_TOKEN_STORE", c.TokenStore, StoreFile, StoreRedis, StoreMemory).
		Custom("POSTDECK_REDIS_URL", c.TokenStore == StoreRedis && c.RedisURL == "", "Required when POSTDECK_TOKEN_STORE=redis").
		Custom("POSTDECK_REQUEST_TIMEOUT", c.RequestTimeout <= 0, "Must be a positive duration").
		Custom("POSTDECK_ASSISTANT_DELAY", c.AssistantDelay < 0, "Must not be negative")

	if _, err := c.Location(); err != nil {
		v.Custom("POSTDECK_TIMEZONE", true, err.Error())
	}

	return v.Err()
}

// Location resolves [Client.Timezone] into a [*time.Location].
// "Local" (the default) follows the host zone, the way the dashboard did in the browser.
func (c *Client) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// # Server Schema

// Server holds the runtime configuration for the identity stub server.
type Server struct {
	Port        string `env:"PORT"        envDefault:"5000"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Debug       bool   `env:"DEBUG"       envDefault:"false"`

	// Token signing
	JWTSecret string        `env:"JWT_SECRET,required"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"24h"`

	// Cross-Origin Resource Sharing (the dashboard dev server by default)
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envDefault:"http://localhost:5173" envSeparator:","`

	// SeedDemoUser installs the demo@example.com quick-login account.
	SeedDemoUser bool `env:"SEED_DEMO_USER" envDefault:"true"`
}

// LoadServer parses IDENTITYD_* environment variables into a [Server] struct.
func LoadServer() (*Server, error) {
	cfg := &Server{}

	// This will fail if any field marked with 'required' is missing.
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: "IDENTITYD_"}); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	v := &validate.Validator{}
	v.MinLen("IDENTITYD_JWT_SECRET", cfg.JWTSecret, 16).
		Custom("IDENTITYD_TOKEN_TTL", cfg.TokenTTL <= 0, "Must be a positive duration")
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Server) IsDevelopment() bool {
	return c.Environment == "development"
}
