// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MKhiriev/go-fin-keeper/internal/logger"
	"github.com/MKhiriev/go-fin-keeper/internal/store"
	"github.com/MKhiriev/go-fin-keeper/models"
)

// ledger is the single owner of local state transitions. User writes and
// sync outcomes both take mu, so an entity record and its queue item never
// disagree for an observer. Network calls never run under mu.
type ledger struct {
	mu sync.Mutex

	tx       store.Transactor
	entities store.EntityRepository
	queue    *SyncQueue
	notifier *Notifier
	now      func() time.Time

	logger *logger.Logger
}

func newLedger(tx store.Transactor, entities store.EntityRepository, queue *SyncQueue, notifier *Notifier, logger *logger.Logger) *ledger {
	return &ledger{
		tx:       tx,
		entities: entities,
		queue:    queue,
		notifier: notifier,
		now:      time.Now,
		logger:   logger,
	}
}

// atomically runs fn in one store transaction with the entity repository
// and the queue bound to it. Nothing fn wrote survives an error. Events are
// published by the caller once atomically returns nil.
func (l *ledger) atomically(ctx context.Context, fn func(entities store.EntityRepository, queue *SyncQueue) error) error {
	return l.tx.InTx(ctx, func(entities store.EntityRepository, queue store.QueueRepository) error {
		return fn(entities, l.queue.bound(queue))
	})
}

// setStatus writes the entity status and announces it. A missing entity is
// logged and ignored: its queue item is cleaned up by recovery.
func (l *ledger) setStatus(ctx context.Context, collection models.Collection, id string, status models.SyncStatus) error {
	err := l.entities.SetStatus(ctx, collection, id, status)
	if errors.Is(err, store.ErrEntityNotFound) {
		l.logger.Warn().
			Str("func", "ledger.setStatus").
			Str("collection", collection.String()).
			Str("entity_id", id).
			Msg("status change for a missing entity ignored")
		return nil
	}
	if err != nil {
		return err
	}

	l.publishStatus(collection, id, status)
	return nil
}

func (l *ledger) publishStatus(collection models.Collection, id string, status models.SyncStatus) {
	l.notifier.Publish(models.Event{
		Kind:       models.EventSyncStatusChanged,
		EntityID:   id,
		Collection: collection,
		Status:     status,
		At:         l.now().UTC(),
	})
}

// publishDepth announces the number of outstanding queue items. A failed
// count is logged only: the event is advisory.
func (l *ledger) publishDepth(ctx context.Context) {
	depth, err := l.queue.Depth(ctx)
	if err != nil {
		l.logger.Err(err).Str("func", "ledger.publishDepth").Msg("failed to count queue items")
		return
	}

	l.notifier.Publish(models.Event{
		Kind:  models.EventQueueDepthChanged,
		Depth: depth.Outstanding(),
		At:    l.now().UTC(),
	})
}
