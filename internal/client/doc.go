// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client assembles the offline-first sync engine into one runtime.
//
// [App] wires the local store, the remote adapter, the client services, the
// connectivity monitor and the background sync job, and exposes the
// operations a presentation layer calls through [Core].
package client
