// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MKhiriev/go-fin-keeper/internal/logger"
	"github.com/MKhiriev/go-fin-keeper/internal/store"
	"github.com/MKhiriev/go-fin-keeper/models"
)

var (
	errSupersededInFlight = errors.New("superseded while in flight")
	errRevived            = errors.New("retried by user")
)

// IDGenerator issues identifiers for new records and queue items.
type IDGenerator interface {
	Generate() string
}

// SyncQueue applies supersede, readiness and retry policy on top of the
// persisted queue. Every mutation is durable before the method returns.
type SyncQueue struct {
	mu sync.Mutex

	repo    store.QueueRepository
	backoff *Backoff
	ids     IDGenerator
	now     func() time.Time

	logger *logger.Logger
}

// NewSyncQueue wires a queue over repo.
func NewSyncQueue(repo store.QueueRepository, backoff *Backoff, ids IDGenerator, logger *logger.Logger) *SyncQueue {
	return &SyncQueue{
		repo:    repo,
		backoff: backoff,
		ids:     ids,
		now:     time.Now,
		logger:  logger,
	}
}

// bound returns a queue sharing the policy of q but writing through repo,
// typically a repository bound to an open transaction.
func (q *SyncQueue) bound(repo store.QueueRepository) *SyncQueue {
	return &SyncQueue{
		repo:    repo,
		backoff: q.backoff,
		ids:     q.ids,
		now:     q.now,
		logger:  q.logger,
	}
}

// Enqueue records a mutation for item.Collection+item.EntityID. When a live
// item already exists it is replaced in place, keeping its queue position:
//
//   - a create that was never attempted stays a create carrying the new payload;
//   - a create that was attempted (its remote outcome is unknown) followed by
//     an update becomes an update, the remote PUT being an upsert;
//   - anything followed by a delete becomes a delete.
//
// The replacement inherits the smaller of both retry counts and is ready
// immediately. The stored item is returned.
func (q *SyncQueue) Enqueue(ctx context.Context, item models.QueueItem) (models.QueueItem, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now().UTC()
	if item.ID == "" {
		item.ID = q.ids.Generate()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.NextRetryAt = now
	item.State = models.QueueQueued

	existing, err := q.repo.GetLive(ctx, item.Collection, item.EntityID)
	switch {
	case errors.Is(err, store.ErrQueueItemNotFound):
		if err = q.repo.Insert(ctx, item); err != nil {
			return models.QueueItem{}, err
		}
		return item, nil
	case err != nil:
		return models.QueueItem{}, err
	}

	if existing.Operation == models.OpDelete && item.Operation != models.OpDelete {
		return models.QueueItem{}, ErrEntityDeleted
	}

	item.Operation = coalesce(existing, item.Operation)
	item.RetryCount = min(existing.RetryCount, item.RetryCount)
	if item.LastError == nil && existing.Attempted() {
		// an attempted create must never be coalesced back into a create
		item.LastError = existing.LastError
		if item.LastError == nil {
			item.LastError = errorText(errSupersededInFlight)
		}
	}

	if err = q.repo.Replace(ctx, item); err != nil {
		return models.QueueItem{}, err
	}

	q.logger.Debug().
		Str("func", "SyncQueue.Enqueue").
		Str("collection", item.Collection.String()).
		Str("entity_id", item.EntityID).
		Str("superseded", existing.ID).
		Str("operation", string(item.Operation)).
		Msg("queue item superseded")

	return item, nil
}

func coalesce(existing models.QueueItem, next models.Operation) models.Operation {
	if next == models.OpDelete {
		return models.OpDelete
	}
	if existing.Operation == models.OpCreate {
		if existing.Attempted() {
			return models.OpUpdate
		}
		return models.OpCreate
	}
	return next
}

// PeekNextReady returns the oldest queued item whose retry time has come,
// across all collections.
func (q *SyncQueue) PeekNextReady(ctx context.Context, now time.Time) (models.QueueItem, bool, error) {
	return q.PeekNextReadyIn(ctx, "", now, nil)
}

// PeekNextReadyIn is PeekNextReady restricted to one collection, skipping
// the items whose ids are in exclude.
func (q *SyncQueue) PeekNextReadyIn(ctx context.Context, collection models.Collection, now time.Time, exclude []string) (models.QueueItem, bool, error) {
	item, err := q.repo.NextReady(ctx, collection, now, exclude)
	if errors.Is(err, store.ErrQueueItemNotFound) {
		return models.QueueItem{}, false, nil
	}
	if err != nil {
		return models.QueueItem{}, false, err
	}
	return item, true, nil
}

// MarkInFlight claims a queued item. It reports false when the item was
// superseded or is no longer queued.
func (q *SyncQueue) MarkInFlight(ctx context.Context, id string) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.repo.Claim(ctx, id)
}

// MarkSucceeded removes the item. It reports false when the item was
// superseded meanwhile, in which case the newer mutation stays queued.
func (q *SyncQueue) MarkSucceeded(ctx context.Context, id string) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.repo.DeleteByID(ctx, id)
}

// MarkFailed counts a failed attempt and schedules the next one. An item
// that reaches the retry limit is abandoned. The updated item is returned
// with false when it was superseded meanwhile.
func (q *SyncQueue) MarkFailed(ctx context.Context, id string, cause error) (models.QueueItem, bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	item, err := q.repo.GetByID(ctx, id)
	if errors.Is(err, store.ErrQueueItemNotFound) {
		return models.QueueItem{}, false, nil
	}
	if err != nil {
		return models.QueueItem{}, false, err
	}

	now := q.now().UTC()
	delay := q.backoff.NextDelay(item.RetryCount)

	item.RetryCount++
	item.LastError = errorText(cause)
	if q.backoff.Exhausted(item.RetryCount) {
		item.State = models.QueueAbandoned
		item.NextRetryAt = now
	} else {
		item.State = models.QueueQueued
		item.NextRetryAt = now.Add(delay)
	}

	ok, err := q.repo.UpdateState(ctx, item)
	if err != nil || !ok {
		return models.QueueItem{}, false, err
	}

	return item, true, nil
}

// MarkAbandoned stops retrying an item the server rejected. The retry count
// is left as is.
func (q *SyncQueue) MarkAbandoned(ctx context.Context, id string, cause error) (bool, error) {
	return q.transition(ctx, id, func(item *models.QueueItem) {
		item.State = models.QueueAbandoned
		item.LastError = errorText(cause)
	})
}

// Release returns an in-flight item to the queue without counting an
// attempt. It is used when the outcome is unknown for reasons that are not
// the item's fault: the device went offline or the token expired.
func (q *SyncQueue) Release(ctx context.Context, id string, cause error) (bool, error) {
	return q.transition(ctx, id, func(item *models.QueueItem) {
		item.State = models.QueueQueued
		item.NextRetryAt = q.now().UTC()
		item.LastError = errorText(cause)
	})
}

// Revive returns the abandoned item of an entity to the queue with a fresh
// retry count.
func (q *SyncQueue) Revive(ctx context.Context, collection models.Collection, entityID string) (models.QueueItem, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	item, err := q.repo.GetLive(ctx, collection, entityID)
	if errors.Is(err, store.ErrQueueItemNotFound) {
		return models.QueueItem{}, ErrNotAbandoned
	}
	if err != nil {
		return models.QueueItem{}, err
	}
	if item.State != models.QueueAbandoned {
		return models.QueueItem{}, ErrNotAbandoned
	}

	item.State = models.QueueQueued
	item.RetryCount = 0
	item.NextRetryAt = q.now().UTC()
	if item.LastError == nil {
		item.LastError = errorText(errRevived)
	}

	if _, err = q.repo.UpdateState(ctx, item); err != nil {
		return models.QueueItem{}, err
	}

	return item, nil
}

func (q *SyncQueue) transition(ctx context.Context, id string, apply func(item *models.QueueItem)) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	item, err := q.repo.GetByID(ctx, id)
	if errors.Is(err, store.ErrQueueItemNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	apply(&item)
	return q.repo.UpdateState(ctx, item)
}

// Get returns the live item of an entity.
func (q *SyncQueue) Get(ctx context.Context, collection models.Collection, entityID string) (models.QueueItem, bool, error) {
	item, err := q.repo.GetLive(ctx, collection, entityID)
	if errors.Is(err, store.ErrQueueItemNotFound) {
		return models.QueueItem{}, false, nil
	}
	if err != nil {
		return models.QueueItem{}, false, err
	}
	return item, true, nil
}

// Remove drops the live item of an entity, whatever its state.
func (q *SyncQueue) Remove(ctx context.Context, collection models.Collection, entityID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.repo.DeleteByEntity(ctx, collection, entityID)
}

// ListPending returns every live item in queue order.
func (q *SyncQueue) ListPending(ctx context.Context) ([]models.QueueItem, error) {
	return q.repo.List(ctx)
}

// Depth counts live items by state.
func (q *SyncQueue) Depth(ctx context.Context) (models.QueueDepth, error) {
	return q.repo.CountByState(ctx)
}

// ResetInFlight returns items left in flight by an interrupted process to
// the queue. Their attempt is not counted.
func (q *SyncQueue) ResetInFlight(ctx context.Context) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	n, err := q.repo.ResetInFlight(ctx)
	if err != nil {
		return 0, fmt.Errorf("reset in-flight queue items: %w", err)
	}
	return n, nil
}

func errorText(err error) *string {
	if err == nil {
		return nil
	}
	msg := err.Error()
	return &msg
}
