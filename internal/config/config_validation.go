// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"strings"
)

// validate checks the relations between merged values. Fields that are still
// zero are left to the client and server views.
func (cfg *StructuredConfig) validate() error {
	s := cfg.Sync
	if s.BaseDelay < 0 || s.MaxDelay < 0 || s.SettleWindow < 0 || s.ProbeInterval < 0 || s.Interval < 0 {
		return fmt.Errorf("%w: negative duration", ErrInvalidSyncConfigs)
	}
	if s.MaxRetries < 0 || s.Concurrency < 0 {
		return fmt.Errorf("%w: negative count", ErrInvalidSyncConfigs)
	}
	if s.MaxDelay > 0 && s.BaseDelay > s.MaxDelay {
		return fmt.Errorf("%w: base delay %s exceeds max delay %s", ErrInvalidSyncConfigs, s.BaseDelay, s.MaxDelay)
	}

	return nil
}

func (cfg *ClientConfig) validate() error {
	if cfg.Storage.DB.DSN == "" || strings.Contains(cfg.Storage.DB.DSN, "memory") {
		return ErrInvalidStorageConfigs
	}

	if cfg.Adapter.HTTPAddress == "" || cfg.Adapter.RequestTimeout <= 0 {
		return ErrInvalidAdapterConfigs
	}

	if cfg.Sync.Interval <= 0 || cfg.Sync.MaxRetries <= 0 || cfg.Sync.Concurrency <= 0 || cfg.Sync.BaseDelay <= 0 {
		return ErrInvalidSyncConfigs
	}

	if cfg.App.UserID == "" {
		return ErrInvalidAppConfigs
	}

	return nil
}

func (cfg *ServerConfig) validate() error {
	if cfg.Storage.DB.DSN == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.Server.HTTPAddress == "" {
		return ErrInvalidServerConfigs
	}

	return nil
}
