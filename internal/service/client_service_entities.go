// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-fin-keeper/internal/logger"
	"github.com/MKhiriev/go-fin-keeper/internal/store"
	"github.com/MKhiriev/go-fin-keeper/internal/validators"
	"github.com/MKhiriev/go-fin-keeper/models"
)

type clientEntityService struct {
	ledger    *ledger
	validator validators.Validator
	ids       IDGenerator

	logger *logger.Logger
}

// newClientEntityService builds the service behind record, update, delete
// and retry operations.
func newClientEntityService(ledger *ledger, validator validators.Validator, ids IDGenerator, logger *logger.Logger) ClientEntityService {
	return &clientEntityService{
		ledger:    ledger,
		validator: validator,
		ids:       ids,
		logger:    logger,
	}
}

func (s *clientEntityService) Record(ctx context.Context, collection models.Collection, req models.RecordRequest) (models.Entity, error) {
	return s.write(ctx, collection, req, false)
}

func (s *clientEntityService) Update(ctx context.Context, collection models.Collection, req models.RecordRequest) (models.Entity, error) {
	if req.ID == "" {
		return models.Entity{}, fmt.Errorf("%w: %w", ErrInvalidPayload, validators.ErrInvalidID)
	}
	return s.write(ctx, collection, req, true)
}

// write stores the entity as pending and enqueues its mutation in one
// transaction, under the ledger so a concurrent drain pass never sees one
// without the other. A failed write leaves the store as it was.
func (s *clientEntityService) write(ctx context.Context, collection models.Collection, req models.RecordRequest, mustExist bool) (models.Entity, error) {
	log := logger.FromContext(ctx)

	if !collection.IsEntityCollection() {
		return models.Entity{}, fmt.Errorf("%w: %q", ErrUnknownCollection, collection)
	}

	entity := models.Entity{
		ID:         req.ID,
		UserID:     req.UserID,
		Collection: collection,
		Payload:    req.Payload,
		SyncStatus: models.StatusPending,
	}
	if entity.ID == "" {
		entity.ID = s.ids.Generate()
	}

	if err := s.validator.Validate(ctx, entity); err != nil {
		return models.Entity{}, mapValidationError(err)
	}

	s.ledger.mu.Lock()
	defer s.ledger.mu.Unlock()

	now := s.ledger.now().UTC()

	err := s.ledger.atomically(ctx, func(entities store.EntityRepository, queue *SyncQueue) error {
		op := models.OpCreate

		existing, err := entities.Get(ctx, collection, entity.ID)
		switch {
		case err == nil:
			if existing.Deleted {
				return ErrEntityDeleted
			}
			if existing.UserID != entity.UserID {
				return ErrForeignRecord
			}
			op = models.OpUpdate
			entity.CreatedAt = existing.CreatedAt
		case errors.Is(err, store.ErrEntityNotFound):
			if mustExist {
				return err
			}
			entity.CreatedAt = now
		default:
			return err
		}
		entity.UpdatedAt = now

		if err = entities.Put(ctx, entity); err != nil {
			log.Err(err).Str("func", "clientEntityService.write").Msg("failed to store entity")
			return err
		}

		_, err = queue.Enqueue(ctx, models.QueueItem{
			Collection: collection,
			EntityID:   entity.ID,
			UserID:     entity.UserID,
			Operation:  op,
			Payload:    entity.Payload,
			CreatedAt:  now,
		})
		if err != nil {
			log.Err(err).Str("func", "clientEntityService.write").Msg("failed to enqueue mutation")
			return err
		}
		return nil
	})
	if err != nil {
		return models.Entity{}, err
	}

	s.ledger.publishStatus(collection, entity.ID, models.StatusPending)
	s.ledger.publishDepth(ctx)

	return entity, nil
}

// Delete tombstones the entity and enqueues the remote delete in one
// transaction. Deleting an entity that is already tombstoned is a no-op.
func (s *clientEntityService) Delete(ctx context.Context, collection models.Collection, id string) error {
	if !collection.IsEntityCollection() {
		return fmt.Errorf("%w: %q", ErrUnknownCollection, collection)
	}

	s.ledger.mu.Lock()
	defer s.ledger.mu.Unlock()

	changed := false
	err := s.ledger.atomically(ctx, func(entities store.EntityRepository, queue *SyncQueue) error {
		existing, err := entities.Get(ctx, collection, id)
		if err != nil {
			return err
		}
		if existing.Deleted {
			return nil
		}

		if err = entities.SetStatus(ctx, collection, id, models.StatusPending); err != nil {
			return err
		}
		if err = entities.Tombstone(ctx, collection, id); err != nil {
			return err
		}

		_, err = queue.Enqueue(ctx, models.QueueItem{
			Collection: collection,
			EntityID:   id,
			UserID:     existing.UserID,
			Operation:  models.OpDelete,
		})
		if err != nil {
			logger.FromContext(ctx).Err(err).Str("func", "clientEntityService.Delete").Msg("failed to enqueue delete")
			return err
		}

		changed = true
		return nil
	})
	if err != nil || !changed {
		return err
	}

	s.ledger.publishStatus(collection, id, models.StatusPending)
	s.ledger.publishDepth(ctx)

	return nil
}

// Retry puts abandoned sync work of the entity back into the queue with a
// fresh retry count.
func (s *clientEntityService) Retry(ctx context.Context, collection models.Collection, id string) error {
	if !collection.IsEntityCollection() {
		return fmt.Errorf("%w: %q", ErrUnknownCollection, collection)
	}

	s.ledger.mu.Lock()
	defer s.ledger.mu.Unlock()

	entityFound := true
	err := s.ledger.atomically(ctx, func(entities store.EntityRepository, queue *SyncQueue) error {
		if _, err := queue.Revive(ctx, collection, id); err != nil {
			return err
		}

		// the item of a purged entity is still retried; recovery cleans it up
		err := entities.SetStatus(ctx, collection, id, models.StatusPending)
		if errors.Is(err, store.ErrEntityNotFound) {
			entityFound = false
			return nil
		}
		return err
	})
	if err != nil {
		return err
	}

	if entityFound {
		s.ledger.publishStatus(collection, id, models.StatusPending)
	}
	s.ledger.publishDepth(ctx)

	return nil
}

// Get returns a visible entity. Tombstones are reported as not found.
func (s *clientEntityService) Get(ctx context.Context, collection models.Collection, id string) (models.Entity, error) {
	if !collection.IsEntityCollection() {
		return models.Entity{}, fmt.Errorf("%w: %q", ErrUnknownCollection, collection)
	}

	entity, err := s.ledger.entities.Get(ctx, collection, id)
	if err != nil {
		return models.Entity{}, err
	}
	if entity.Deleted {
		return models.Entity{}, store.ErrEntityNotFound
	}

	return entity, nil
}

func (s *clientEntityService) List(ctx context.Context, collection models.Collection, ownerID string) ([]models.Entity, error) {
	if !collection.IsEntityCollection() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCollection, collection)
	}

	return s.ledger.entities.ListByOwner(ctx, collection, ownerID)
}
