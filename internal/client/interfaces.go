// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import (
	"context"

	"github.com/MKhiriev/go-fin-keeper/models"
)

// Client defines the lifecycle contract for runnable client applications.
type Client interface {
	// Run recovers interrupted sync work, then monitors connectivity and
	// drains the queue until ctx is cancelled.
	Run(ctx context.Context) error

	// Close releases the local store.
	Close() error
}

// Core is what the presentation layer sees. Writes return once they are
// durable locally and never wait for the network.
type Core interface {
	RecordEntity(ctx context.Context, collection models.Collection, req models.RecordRequest) (models.Entity, error)
	ListEntities(ctx context.Context, collection models.Collection, ownerID string) ([]models.Entity, error)
	TriggerSync(ctx context.Context) (models.PassReport, error)
	GetStats(ctx context.Context) (models.Stats, error)

	UpdateEntity(ctx context.Context, collection models.Collection, req models.RecordRequest) (models.Entity, error)
	DeleteEntity(ctx context.Context, collection models.Collection, id string) error
	// RetryEntity re-queues delivery that was abandoned.
	RetryEntity(ctx context.Context, collection models.Collection, id string) error
	GetEntity(ctx context.Context, collection models.Collection, id string) (models.Entity, error)

	// Subscribe streams sync status, queue depth and connectivity events.
	Subscribe() (<-chan models.Event, func())
}
