// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"

	"github.com/MKhiriev/go-fin-keeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// ResourceRepository is the server-side store of synced records.
type ResourceRepository interface {
	// Create inserts rec. It reports false without error when a record with
	// the same collection and id already exists.
	Create(ctx context.Context, rec models.RemoteRecord) (bool, error)
	// Upsert inserts rec or replaces the stored payload.
	Upsert(ctx context.Context, rec models.RemoteRecord) error
	// Delete removes the record. Deleting a missing record is not an error.
	Delete(ctx context.Context, collection models.Collection, id, userID string) error
	Get(ctx context.Context, collection models.Collection, id, userID string) (models.RemoteRecord, error)
}
