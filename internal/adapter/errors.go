// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import "errors"

// Outcome classes of a remote call. Every error returned by [RemoteAPI]
// wraps exactly one of them.
var (
	// ErrTransient covers timeouts, transport failures and retryable statuses
	// (408, 425, 429, 5xx). The call may be repeated later.
	ErrTransient = errors.New("transient remote failure")

	// ErrPermanentRejection is returned when the server refused the request
	// for good (4xx other than 401, 404 on delete, 408, 425, 429).
	ErrPermanentRejection = errors.New("request permanently rejected")

	// ErrAuthExpired is returned on 401 or when the bearer token is already
	// past its expiry.
	ErrAuthExpired = errors.New("authorization expired")
)

// ErrInvalidAddress is returned by [NewHTTPRemoteAPI] for an unusable base URL.
var ErrInvalidAddress = errors.New("invalid remote address")
