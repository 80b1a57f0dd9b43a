// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package server runs the reference remote API over HTTP.
//
// It owns the listener lifecycle: startup, signal handling and graceful
// shutdown with in-flight requests drained.
package server
