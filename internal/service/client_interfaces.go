// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"

	"github.com/MKhiriev/go-fin-keeper/models"
)

// ClientEntityService is the write and read path of the presentation layer.
// Writes are durable locally before they return and never wait for the
// network.
type ClientEntityService interface {
	// Record stores a new entity, or edits the existing one when req.ID names
	// it, marks it pending and enqueues the mutation. A missing ID is
	// generated.
	Record(ctx context.Context, collection models.Collection, req models.RecordRequest) (models.Entity, error)

	// Update edits an existing entity. Returns store.ErrEntityNotFound when
	// there is nothing to edit.
	Update(ctx context.Context, collection models.Collection, req models.RecordRequest) (models.Entity, error)

	// Delete tombstones the entity and enqueues the remote delete. The record
	// is purged once the server confirms.
	Delete(ctx context.Context, collection models.Collection, id string) error

	// Retry re-queues abandoned sync work with a fresh retry count.
	// Returns ErrNotAbandoned when there is none.
	Retry(ctx context.Context, collection models.Collection, id string) error

	Get(ctx context.Context, collection models.Collection, id string) (models.Entity, error)
	List(ctx context.Context, collection models.Collection, ownerID string) ([]models.Entity, error)
}

// ClientSyncService drains the sync queue to the remote API.
type ClientSyncService interface {
	// DrainPass runs one pass over the ready queue items. Passes are
	// serialized. A background pass is skipped while offline; a manual one
	// also ignores backoff.
	DrainPass(ctx context.Context, manual bool) (models.PassReport, error)

	// TriggerSync runs a manual pass.
	TriggerSync(ctx context.Context) (models.PassReport, error)

	// NotifyConnectivity feeds the debounced connectivity state. Going
	// offline stops running passes between items.
	NotifyConnectivity(state models.ConnectivityState)

	Online() bool

	// Recover repairs queue and entity state left by an interrupted process.
	// It must run before the first pass.
	Recover(ctx context.Context) error
}

// ClientStatsService computes read-only aggregates.
type ClientStatsService interface {
	GetStats(ctx context.Context) (models.Stats, error)
}

// ConnectivitySource reports debounced connectivity transitions.
type ConnectivitySource interface {
	State() models.ConnectivityState
	// Subscribe returns a channel of transitions and a function that ends
	// the subscription.
	Subscribe() (<-chan models.ConnectivityState, func())
}

// ClientSyncJob runs drain passes in the background: on every online
// transition and on a fixed interval.
type ClientSyncJob interface {
	// Start launches the job. Any previously running job is stopped first.
	Start(ctx context.Context)

	// Stop signals the job to exit and blocks until it has.
	Stop()
}
