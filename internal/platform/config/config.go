// Copyright (c) 2026 Vitalink. All rights reserved.
// Author: dev@vitalink.health

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
  - DI-Friendly: Passed to core components (DB, Redis, Stripe, S3) via constructors.
  - Zero Hidden State: No global variables are used to store config.

This ensures the application is Twelve-Factor compliant by storing config in the env.
*/
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// Config holds all runtime configuration for the Vitalink API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// SiteURL is the public base URL used in activation links and mail.
	SiteURL string `env:"SITE_URL" envDefault:"http://localhost:8080"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Cache (Redis)
	RedisURL string `env:"REDIS_URL,required"`

	// Token signing and lifetimes
	JWTSecret         string `env:"JWT_SECRET,required"`
	TokenExpirySec    int    `env:"TOKEN_EXPIRES_IN"          envDefault:"1800"`
	RefreshExpirySec  int    `env:"REFRESH_TOKEN_EXPIRES_IN"  envDefault:"43200"`
	CodeExpirySec     int    `env:"ACTIVATION_CODE_EXPIRES_IN" envDefault:"86400"`
	CodeDigits        int    `env:"ACTIVATION_CODE_DIGITS"    envDefault:"6"`
	AdminTokenExpiry  int    `env:"ADMIN_TOKEN_EXPIRES_IN"    envDefault:"1800"`
	AdminRefreshExpiry int   `env:"ADMIN_REFRESH_EXPIRES_IN"  envDefault:"43200"`

	// Billing (Stripe)
	StripeSecretKey     string `env:"STRIPE_SECRET_KEY,required"`
	StripeWebhookSecret string `env:"STRIPE_WEBHOOK_SECRET"`

	// Chat room bookkeeping (Firestore)
	FirestoreProjectID   string `env:"FIRESTORE_PROJECT_ID"`
	FirestoreCredentials string `env:"FIRESTORE_CREDENTIALS_FILE"`
	ChatFreeAllowance    bool   `env:"CHAT_FREE_FIRST_ROOM" envDefault:"true"`

	// Object Storage (S3-compatible) for waveform files
	S3Bucket    string `env:"S3_BUCKET"`
	S3Region    string `env:"S3_REGION"   envDefault:"us-east-1"`
	S3Endpoint  string `env:"S3_ENDPOINT"`
	S3AccessKey string `env:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `env:"S3_SECRET_ACCESS_KEY"`

	// DefaultPhotoURL is assigned to staff-registered accounts.
	DefaultPhotoURL string `env:"DEFAULT_PHOTO_URL" envDefault:"https://cdn.vitalink.health/assets/default-avatar.png"`

	// Transactional mail (SMTP)
	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"465"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	MailFrom     string `env:"MAIL_FROM"  envDefault:"no-reply@vitalink.health"`
	AdminEmail   string `env:"ADMIN_EMAIL" envDefault:"support@vitalink.health"`

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

	return cfg, nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
