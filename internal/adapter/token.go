// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// ErrRefreshUnavailable is returned by [StaticTokenSource.Refresh] when no
// refresh function was configured.
var ErrRefreshUnavailable = errors.New("token refresh unavailable")

// RefreshFunc obtains a fresh bearer token from the identity collaborator.
type RefreshFunc func(ctx context.Context) (string, error)

// StaticTokenSource holds a token set at startup (from config) and optionally
// replaced through refresh or [StaticTokenSource.SetToken].
type StaticTokenSource struct {
	mu      sync.RWMutex
	token   string
	refresh RefreshFunc
}

// NewStaticTokenSource returns a source serving token. refresh may be nil.
func NewStaticTokenSource(token string, refresh RefreshFunc) *StaticTokenSource {
	return &StaticTokenSource{token: strings.TrimSpace(token), refresh: refresh}
}

func (s *StaticTokenSource) Token(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, nil
}

// SetToken replaces the held token.
func (s *StaticTokenSource) SetToken(token string) {
	s.mu.Lock()
	s.token = strings.TrimSpace(token)
	s.mu.Unlock()
}

func (s *StaticTokenSource) Refresh(ctx context.Context) error {
	if s.refresh == nil {
		return ErrRefreshUnavailable
	}

	token, err := s.refresh(ctx)
	if err != nil {
		return err
	}

	s.SetToken(token)
	return nil
}
