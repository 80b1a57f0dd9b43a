// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package http implements the HTTP transport layer of the reference server.
//
// It exposes route wiring, request handlers, and middleware for the record
// API the sync engine talks to. Cross-cutting concerns such as
// authentication, request tracing, access logging, response compression,
// and integrity checks are handled in this package before requests are
// delegated to the service layer.
package http
