// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container shared by the
// client and the reference server. It is populated by merging values from
// environment variables, command-line flags, an optional JSON file and the
// built-in defaults.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env: direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds identity and token settings.
	App App `envPrefix:"APP_"`

	// Storage holds the database settings. The client uses a SQLite file,
	// the server a PostgreSQL DSN.
	Storage Storage `envPrefix:"STORAGE_"`

	// Server holds the listen address of the reference server.
	Server Server `envPrefix:"SERVER_"`

	// Adapter holds the remote API endpoint used by the client.
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// Sync holds retry, debounce and scheduling settings of the sync engine.
	Sync Sync `envPrefix:"SYNC_"`

	// Log holds log level and client log file rotation settings.
	Log Log `envPrefix:"LOG_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// Storage groups the configuration for the storage backend.
type Storage struct {
	// DB holds the database connection settings.
	DB DB `envPrefix:"DB_"`
}

// App holds identity and token settings.
type App struct {
	// TokenSignKey is the HMAC key used by the server to verify bearer
	// tokens. Empty disables verification.
	// Env: APP_TOKEN_SIGN_KEY
	TokenSignKey string `env:"TOKEN_SIGN_KEY"`

	// TokenIssuer is the expected "iss" claim.
	// Env: APP_TOKEN_ISSUER
	TokenIssuer string `env:"TOKEN_ISSUER"`

	// AccessToken is the bearer token the client presents to the remote API.
	// Issuing it is the job of the identity collaborator.
	// Env: APP_ACCESS_TOKEN
	AccessToken string `env:"ACCESS_TOKEN"`

	// UserID owns every record written by this client.
	// Env: APP_USER_ID
	UserID string `env:"USER_ID"`

	// HashKey signs request bodies with HMAC-SHA256 (header HashSHA256).
	// Empty disables signing on the client and verification on the server.
	// Env: APP_HASH_KEY
	HashKey string `env:"HASH_KEY"`

	// Version is the semantic version string of the running application.
	// Env: APP_VERSION
	Version string `env:"VERSION"`
}

// Server holds network and timeout settings for the reference server.
type Server struct {
	// HTTPAddress is the TCP address the server listens on, "host:port".
	// Env: SERVER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout bounds a single inbound request.
	// Env: SERVER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// DB holds connection settings for the database backend.
type DB struct {
	// DSN is the SQLite file path on the client and the PostgreSQL
	// connection string on the server.
	// Env: STORAGE_DB_DATABASE_URI
	DSN string `env:"DATABASE_URI"`
}

// Adapter holds the remote API endpoint settings used by the client.
type Adapter struct {
	// HTTPAddress is the base URL or "host:port" of the remote API.
	// Env: ADAPTER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout bounds every outbound call. A timeout counts as a
	// transient failure.
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Sync holds the tuning knobs of the sync engine.
type Sync struct {
	// BaseDelay is the first retry delay. Env: SYNC_BASE_DELAY
	BaseDelay time.Duration `env:"BASE_DELAY"`

	// MaxDelay caps the exponential delay. Env: SYNC_MAX_DELAY
	MaxDelay time.Duration `env:"MAX_DELAY"`

	// MaxRetries is the number of failed attempts after which a queue item
	// is abandoned. Env: SYNC_MAX_RETRIES
	MaxRetries int `env:"MAX_RETRIES"`

	// Concurrency is the number of workers per collection lane.
	// Env: SYNC_CONCURRENCY
	Concurrency int `env:"CONCURRENCY"`

	// SettleWindow is how long connectivity must hold before an online
	// transition is announced. Env: SYNC_SETTLE_WINDOW
	SettleWindow time.Duration `env:"SETTLE_WINDOW"`

	// ProbeInterval is how often the remote API is probed.
	// Env: SYNC_PROBE_INTERVAL
	ProbeInterval time.Duration `env:"PROBE_INTERVAL"`

	// Interval is the period of background drain passes.
	// Env: SYNC_INTERVAL
	Interval time.Duration `env:"INTERVAL"`
}

// Log holds logging settings.
type Log struct {
	// Level is a zerolog level name ("debug", "info", ...). Env: LOG_LEVEL
	Level string `env:"LEVEL"`

	// FilePath is the client log file. Empty means next to the executable.
	// Env: LOG_FILE_PATH
	FilePath string `env:"FILE_PATH"`

	// MaxSizeMB is the rotation threshold. Env: LOG_MAX_SIZE_MB
	MaxSizeMB int `env:"MAX_SIZE_MB"`

	// MaxBackups is the number of rotated files kept. Env: LOG_MAX_BACKUPS
	MaxBackups int `env:"MAX_BACKUPS"`

	// MaxAgeDays removes rotated files older than this. Env: LOG_MAX_AGE_DAYS
	MaxAgeDays int `env:"MAX_AGE_DAYS"`
}

// GetStructuredConfig loads, merges, and validates the configuration from
// all available sources. The first source that sets a field wins:
//  1. Environment variables
//  2. Command-line flags (args, usually os.Args[1:])
//  3. JSON file (path resolved from sources 1 and 2)
//  4. Built-in defaults
func GetStructuredConfig(args []string) (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags(args).
		withJSON().
		withDefaults().
		build()
}
