// Karatasi - Library Archive with Real-time Global Access Analytics
// Copyright 2026 H. Massawe (hmassawe)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hmassawe/karatasi

// Package config loads and validates application configuration.
//
// Configuration is layered via Koanf v2 (highest priority wins):
//  1. Built-in defaults
//  2. Optional YAML config file (config.yaml, or CONFIG_PATH)
//  3. Environment variables (HTTP_PORT, DUCKDB_PATH, AUTH_MODE, ...)
package config

import (
	"fmt"
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server      ServerConfig      `koanf:"server"`
	Database    DatabaseConfig    `koanf:"database"`
	Geolocation GeolocationConfig `koanf:"geolocation"`
	Uploads     UploadsConfig     `koanf:"uploads"`
	Security    SecurityConfig    `koanf:"security"`
	Logging     LoggingConfig     `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host        string        `koanf:"host"`
	Port        int           `koanf:"port"`
	Timeout     time.Duration `koanf:"timeout"`
	StaticDir   string        `koanf:"static_dir"`
	Environment string        `koanf:"environment"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	// Path is the DuckDB database file path.
	Path string `koanf:"path"`

	// MaxMemory is DuckDB's memory limit (e.g. "512MB").
	MaxMemory string `koanf:"max_memory"`

	// Threads is the DuckDB thread count. 0 means runtime.NumCPU().
	Threads int `koanf:"threads"`

	// SeedCatalog inserts the initial archive collection when the
	// documents table is empty.
	SeedCatalog bool `koanf:"seed_catalog"`
}

// GeolocationConfig holds visitor-location resolution settings.
//
// Resolution is best-effort: the primary and secondary providers are tried
// in order and every failure falls back to the default location, which
// represents the home institution.
type GeolocationConfig struct {
	Enabled       bool          `koanf:"enabled"`
	LookupTimeout time.Duration `koanf:"lookup_timeout"`

	// CachePath is the BadgerDB directory for cached resolutions.
	// Empty means an in-memory cache.
	CachePath string        `koanf:"cache_path"`
	CacheTTL  time.Duration `koanf:"cache_ttl"`

	DefaultCountry   string  `koanf:"default_country"`
	DefaultRegion    string  `koanf:"default_region"`
	DefaultLatitude  float64 `koanf:"default_latitude"`
	DefaultLongitude float64 `koanf:"default_longitude"`
}

// UploadsConfig holds blob-store settings for uploaded document files.
type UploadsConfig struct {
	// Dir is the local directory backing the blob store.
	Dir string `koanf:"dir"`

	// BaseURL is the public URL prefix for stored files.
	BaseURL string `koanf:"base_url"`

	// MaxSizeMB bounds a single uploaded file.
	MaxSizeMB int64 `koanf:"max_size_mb"`
}

// SecurityConfig holds authentication and HTTP hardening settings.
type SecurityConfig struct {
	// AuthMode is "none" or "basic". Basic auth protects the document
	// upload and admin activity-log endpoints only; browsing, analytics,
	// and event recording stay open.
	AuthMode      string `koanf:"auth_mode"`
	AdminUsername string `koanf:"admin_username"`
	AdminPassword string `koanf:"admin_password"`

	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`

	CORSOrigins []string `koanf:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment != "production"
}

// Validate checks the configuration for inconsistent or unusable values.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535, got %d", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}

	switch c.Security.AuthMode {
	case "none":
	case "basic":
		if c.Security.AdminUsername == "" || c.Security.AdminPassword == "" {
			return fmt.Errorf("basic auth requires security.admin_username and security.admin_password")
		}
		if len(c.Security.AdminPassword) < 8 {
			return fmt.Errorf("security.admin_password must be at least 8 characters")
		}
	default:
		return fmt.Errorf("security.auth_mode must be \"none\" or \"basic\", got %q", c.Security.AuthMode)
	}

	if c.Geolocation.Enabled {
		if c.Geolocation.LookupTimeout <= 0 {
			return fmt.Errorf("geolocation.lookup_timeout must be positive")
		}
		if c.Geolocation.DefaultCountry == "" {
			return fmt.Errorf("geolocation.default_country must not be empty")
		}
	}

	if c.Uploads.MaxSizeMB <= 0 {
		return fmt.Errorf("uploads.max_size_mb must be positive")
	}

	return nil
}
