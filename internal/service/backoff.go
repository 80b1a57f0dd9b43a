// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"math/rand/v2"
	"time"

	"github.com/MKhiriev/go-fin-keeper/internal/config"
)

// JitterFunc returns a random duration in [0, limit].
type JitterFunc func(limit time.Duration) time.Duration

// Backoff computes retry delays for failed queue items. It is stateless:
// the retry count lives on the queue item, so the schedule survives restarts.
type Backoff struct {
	base       time.Duration
	max        time.Duration
	maxRetries int
	jitter     JitterFunc
}

// NewBackoff builds a Backoff from the sync settings. Zero or negative
// values fall back to the defaults.
func NewBackoff(cfg config.Sync) *Backoff {
	b := &Backoff{
		base:       cfg.BaseDelay,
		max:        cfg.MaxDelay,
		maxRetries: cfg.MaxRetries,
		jitter:     uniformJitter,
	}
	if b.base <= 0 {
		b.base = config.DefaultBaseDelay
	}
	if b.max <= 0 {
		b.max = config.DefaultMaxDelay
	}
	if b.max < b.base {
		b.max = b.base
	}
	if b.maxRetries <= 0 {
		b.maxRetries = config.DefaultMaxRetries
	}

	return b
}

// WithJitter replaces the jitter source. Tests pass a deterministic one.
func (b *Backoff) WithJitter(jitter JitterFunc) *Backoff {
	if jitter != nil {
		b.jitter = jitter
	}
	return b
}

// NextDelay returns the wait before the next attempt of an item that has
// already failed retryCount times:
//
//	min(base * 2^retryCount, max) + jitter, jitter in [0, delay/4]
func (b *Backoff) NextDelay(retryCount int) time.Duration {
	delay := b.base
	for i := 0; i < retryCount && delay < b.max; i++ {
		// doubling past max would overflow for large counts
		if delay > b.max/2 {
			delay = b.max
			break
		}
		delay *= 2
	}
	if delay > b.max {
		delay = b.max
	}

	return delay + b.jitter(delay/4)
}

// Exhausted reports whether an item with retryCount failures must be abandoned.
func (b *Backoff) Exhausted(retryCount int) bool {
	return retryCount >= b.maxRetries
}

// MaxRetries returns the configured retry limit.
func (b *Backoff) MaxRetries() int {
	return b.maxRetries
}

func uniformJitter(limit time.Duration) time.Duration {
	if limit <= 0 {
		return 0
	}
	return rand.N(limit + 1)
}
