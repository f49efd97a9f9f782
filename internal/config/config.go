// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads the application configuration from environment
// variables.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath        string `env:"CASEDESK_DB_PATH" envDefault:"./data/casedesk.db"`
	SessionSecret string `env:"CASEDESK_SESSION_SECRET,required"`
	ServerHost    string `env:"CASEDESK_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"CASEDESK_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"CASEDESK_ENV" envDefault:"development"`
	LogLevel      string `env:"CASEDESK_LOG_LEVEL" envDefault:"info"`
	UploadsDir    string `env:"CASEDESK_UPLOADS_DIR" envDefault:"./uploads"`

	// Cache configuration
	RedisURL    string `env:"CASEDESK_REDIS_URL"`                          // Optional Redis URL for distributed caching
	CachePrefix string `env:"CASEDESK_CACHE_PREFIX" envDefault:"casedesk:"` // Redis key prefix
	CacheTTL    int    `env:"CASEDESK_CACHE_TTL" envDefault:"3600"`        // Default cache TTL in seconds

	// GeoIP configuration
	GeoIPDBPath string `env:"CASEDESK_GEOIP_DB_PATH"` // Path to GeoLite2-Country.mmdb file

	// Maintenance windows
	BatchMaxAgeHours   int `env:"CASEDESK_BATCH_MAX_AGE_HOURS" envDefault:"168"`
	EventRetentionDays int `env:"CASEDESK_EVENT_RETENTION_DAYS" envDefault:"90"`

	// Legacy import configuration
	LegacyDSN         string `env:"CASEDESK_LEGACY_DSN"`          // MySQL DSN of the old database
	LegacyTablePrefix string `env:"CASEDESK_LEGACY_TABLE_PREFIX"` // Table prefix (e.g. "charity_")

	// Seeding configuration
	DoSeed bool `env:"CASEDESK_DO_SEED" envDefault:"false"` // Enable database seeding
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// GeoIPEnabled returns true if GeoIP database is configured.
func (c Config) GeoIPEnabled() bool {
	return c.GeoIPDBPath != ""
}

// LegacyImportEnabled returns true if the legacy MySQL import is configured.
func (c Config) LegacyImportEnabled() bool {
	return c.LegacyDSN != ""
}

// MinSessionSecretLength is the minimum required length for the session secret.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("CASEDESK_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	for _, weak := range knownWeakSecrets {
		if cfg.SessionSecret == weak {
			return nil, fmt.Errorf("CASEDESK_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("CASEDESK_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	return cfg, nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
