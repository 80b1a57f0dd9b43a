// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"

	"github.com/MKhiriev/go-fin-keeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/service_mock.go -package=mock

// ResourceService is the server side of the remote API contract. Every
// operation is idempotent on the client-generated record id.
type ResourceService interface {
	// Create stores rec. It reports false when the record was already
	// delivered before; that is not an error.
	Create(ctx context.Context, rec models.RemoteRecord) (bool, error)
	// Upsert stores rec, replacing any previous payload.
	Upsert(ctx context.Context, rec models.RemoteRecord) error
	// Delete removes the record. Removing a missing record succeeds.
	Delete(ctx context.Context, collection models.Collection, id, userID string) error
	Get(ctx context.Context, collection models.Collection, id, userID string) (models.RemoteRecord, error)
}

// AppInfoService reports what build of the server is running.
type AppInfoService interface {
	GetAppVersion(ctx context.Context) string
	GetBuildInfo(ctx context.Context) models.AppBuildInfo
}
