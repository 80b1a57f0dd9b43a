// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import "errors"

// Sentinel errors used by the authentication middleware when parsing the
// "Authorization" HTTP header. Callers can match against them with [errors.Is].
var (
	// ErrEmptyAuthorizationHeader is returned by the auth middleware when the
	// incoming request does not include an "Authorization" header at all.
	ErrEmptyAuthorizationHeader = errors.New("empty `Authorization` header")

	// ErrInvalidAuthorizationHeader is returned when the "Authorization"
	// header is present but cannot be split into at least two space-separated
	// parts (i.e. the token value is missing entirely).
	ErrInvalidAuthorizationHeader = errors.New("invalid `Authorization` header")

	// ErrEmptyToken is returned when the "Authorization" header contains the
	// expected scheme prefix but the token value itself is an empty string.
	ErrEmptyToken = errors.New("empty token in `Authorization` header")
)

// Request errors of the record handlers.
var (
	// ErrUnknownCollection is returned when the {collection} path segment
	// names no entity collection.
	ErrUnknownCollection = errors.New("unknown collection")

	// ErrInvalidBody is returned when the request body is not a record.
	ErrInvalidBody = errors.New("invalid record body")

	// ErrIDMismatch is returned when the record id in the body differs from
	// the {id} path segment.
	ErrIDMismatch = errors.New("record id does not match the path")

	// ErrNoOwner is returned when neither the token nor the request names
	// the record owner.
	ErrNoOwner = errors.New("record owner is not specified")
)
