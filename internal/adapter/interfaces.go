// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter is the client side of the remote API contract.
//
// [RemoteAPI] decouples the sync orchestrator from the protocol. The package
// ships an HTTP/REST implementation ([NewHTTPRemoteAPI]) built on resty.
// Every failure is mapped to one of [ErrTransient], [ErrPermanentRejection]
// or [ErrAuthExpired] so that callers decide retry policy with [errors.Is].
package adapter

import (
	"context"

	"github.com/MKhiriev/go-fin-keeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/adapter_mock.go -package=mock

// RemoteAPI applies entity mutations on the remote backend. All calls are
// idempotent on the record identifier.
type RemoteAPI interface {
	// Create sends POST /{collection}. A duplicate id is not an error.
	Create(ctx context.Context, rec models.RemoteRecord) error
	// Update sends PUT /{collection}/{id}, an upsert on the server.
	Update(ctx context.Context, rec models.RemoteRecord) error
	// Delete sends DELETE /{collection}/{id}. A missing record is not an error.
	Delete(ctx context.Context, rec models.RemoteRecord) error
	// Ping reports whether the server answers at all. Any HTTP response
	// counts as reachable.
	Ping(ctx context.Context) error
}

// TokenSource supplies the bearer token. Issuing tokens belongs to the
// identity collaborator, which stays outside this module.
type TokenSource interface {
	// Token returns the current token, or "" when requests go unauthenticated.
	Token(ctx context.Context) (string, error)
	// Refresh asks the collaborator for a new token after [ErrAuthExpired].
	Refresh(ctx context.Context) error
}
