// Copyright (c) 2026 WebNDB. All rights reserved.
// Author: dev@webndb.app

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis, Meilisearch) via constructors.
  - Zero Hidden State: No global variables are used to store config.

This ensures the application is Twelve-Factor compliant by storing config in the env.
*/
package config

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// Config holds all runtime configuration for the WebNDB API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Cache (Redis)
	RedisURL string `env:"REDIS_URL,required"`

	// Search Index (Meilisearch)
	MeiliURL       string `env:"MEILI_URL,required"`
	MeiliMasterKey string `env:"MEILI_MASTER_KEY"`

	// PageTokenKey is the base64-encoded 32-byte key used to encrypt page
	// tokens. Tokens are encrypted to enforce opacity, not for secrecy.
	PageTokenKey string `env:"PAGE_TOKEN_KEY,required"`

	// PageTokenTTL is the maximum age of an issued page token.
	// AIP-158 suggests 3 days as a good rule of thumb.
	PageTokenTTL time.Duration `env:"PAGE_TOKEN_TTL" envDefault:"72h"`

	// Pagination bounds
	DefaultPageSize int `env:"DEFAULT_PAGE_SIZE" envDefault:"10"`
	MaxPageSize     int `env:"MAX_PAGE_SIZE"     envDefault:"1000"`

	// Public key for verifying access tokens issued by the identity service.
	JWTPubKeyPath string `env:"JWT_PUBLIC_KEY_PATH,required"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if _, err := cfg.DecodePageTokenKey(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// DecodePageTokenKey decodes PAGE_TOKEN_KEY into raw key bytes.
//
// The key must decode to exactly 32 bytes (the AEAD key size).
func (c *Config) DecodePageTokenKey() ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(c.PageTokenKey)
	if err != nil {
		return nil, fmt.Errorf("config: PAGE_TOKEN_KEY is not valid base64: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("config: PAGE_TOKEN_KEY must decode to 32 bytes, got %d", len(key))
	}
	return key, nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
