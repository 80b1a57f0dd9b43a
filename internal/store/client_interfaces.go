// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"time"

	"github.com/MKhiriev/go-fin-keeper/models"
)

//go:generate mockgen -source=client_interfaces.go -destination=../mock/client_store_mock.go -package=mock

// EntityRepository is the local store of entity records. Every collection is
// a separate table. All methods are synchronous and durable on return.
type EntityRepository interface {
	// Put inserts or replaces the record with the same identifier.
	Put(ctx context.Context, entity models.Entity) error
	Get(ctx context.Context, collection models.Collection, id string) (models.Entity, error)
	// ListByOwner returns visible (non-tombstoned) records ordered by id.
	ListByOwner(ctx context.Context, collection models.Collection, ownerID string) ([]models.Entity, error)
	// ListByStatus returns records in any of statuses, tombstones included.
	ListByStatus(ctx context.Context, collection models.Collection, statuses ...models.SyncStatus) ([]models.Entity, error)
	SetStatus(ctx context.Context, collection models.Collection, id string, status models.SyncStatus) error
	Tombstone(ctx context.Context, collection models.Collection, id string) error
	Purge(ctx context.Context, collection models.Collection, id string) error
	CountByCollection(ctx context.Context) (map[models.Collection]int, error)
	CountByStatus(ctx context.Context) (map[models.SyncStatus]int, error)
}

// QueueRepository persists sync queue items. It enforces one live row per
// collection+entity; supersede and readiness policy live in the service layer.
type QueueRepository interface {
	// GetLive returns the live item of an entity or [ErrQueueItemNotFound].
	GetLive(ctx context.Context, collection models.Collection, entityID string) (models.QueueItem, error)
	GetByID(ctx context.Context, id string) (models.QueueItem, error)
	Insert(ctx context.Context, item models.QueueItem) error
	// Replace overwrites the live item of item.Collection+item.EntityID in
	// place, keeping its queue position.
	Replace(ctx context.Context, item models.QueueItem) error
	// NextReady returns the oldest queued item with NextRetryAt <= now.
	// An empty collection matches all collections. Items whose ids are in
	// exclude are skipped.
	NextReady(ctx context.Context, collection models.Collection, now time.Time, exclude []string) (models.QueueItem, error)
	// Claim moves a queued item to in_flight. It reports false when the item
	// is gone or not queued.
	Claim(ctx context.Context, id string) (bool, error)
	// UpdateState writes retry bookkeeping and state of the item with id.
	// It reports false when the item was superseded or removed.
	UpdateState(ctx context.Context, item models.QueueItem) (bool, error)
	DeleteByID(ctx context.Context, id string) (bool, error)
	DeleteByEntity(ctx context.Context, collection models.Collection, entityID string) error
	// List returns every live item in queue order.
	List(ctx context.Context) ([]models.QueueItem, error)
	CountByState(ctx context.Context) (models.QueueDepth, error)
	// ResetInFlight returns every in_flight item to queued.
	ResetInFlight(ctx context.Context) (int64, error)
}

// Transactor runs fn with repositories bound to one transaction. The
// transaction commits when fn returns nil and rolls back otherwise, so a
// record and its queue item are written together or not at all.
type Transactor interface {
	InTx(ctx context.Context, fn func(entities EntityRepository, queue QueueRepository) error) error
}
