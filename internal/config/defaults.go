// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import "time"

// Default values applied when no other source sets the field.
const (
	DefaultBaseDelay      = time.Second
	DefaultMaxDelay       = 5 * time.Minute
	DefaultMaxRetries     = 5
	DefaultConcurrency    = 1
	DefaultSettleWindow   = time.Second
	DefaultProbeInterval  = 5 * time.Second
	DefaultSyncInterval   = 30 * time.Second
	DefaultRequestTimeout = 10 * time.Second
	DefaultServerAddress  = "localhost:8080"
	DefaultClientDSN      = "fin-keeper.db"
	DefaultLogLevel       = "info"
	DefaultLogMaxSizeMB   = 10
	DefaultLogMaxBackups  = 3
)

// Defaults returns a config holding only the built-in defaults.
func Defaults() *StructuredConfig {
	return &StructuredConfig{
		Server: Server{
			HTTPAddress:    DefaultServerAddress,
			RequestTimeout: DefaultRequestTimeout,
		},
		Adapter: Adapter{
			HTTPAddress:    DefaultServerAddress,
			RequestTimeout: DefaultRequestTimeout,
		},
		Sync: Sync{
			BaseDelay:     DefaultBaseDelay,
			MaxDelay:      DefaultMaxDelay,
			MaxRetries:    DefaultMaxRetries,
			Concurrency:   DefaultConcurrency,
			SettleWindow:  DefaultSettleWindow,
			ProbeInterval: DefaultProbeInterval,
			Interval:      DefaultSyncInterval,
		},
		Log: Log{
			Level:      DefaultLogLevel,
			MaxSizeMB:  DefaultLogMaxSizeMB,
			MaxBackups: DefaultLogMaxBackups,
		},
	}
}
