// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package app holds the response messages the reference server writes into
// HTTP bodies, so the handlers and the server agree on wording.
package app

const (
	// MsgTokenIsExpired is returned when a bearer token is well formed but
	// past its expiry.
	MsgTokenIsExpired = "token is expired"

	// MsgIntegrityCheckFailed is returned when the body signature does not
	// match the body.
	MsgIntegrityCheckFailed = "Integrity check failed"

	// MsgInvalidGzipBody is returned for a gzip-encoded body that cannot be
	// decompressed.
	MsgInvalidGzipBody = "Invalid gzip data"

	// MsgRequestTimedOut is returned when a request outlives the server's
	// request timeout.
	MsgRequestTimedOut = "request timed out"
)
