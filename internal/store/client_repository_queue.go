// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-fin-keeper/internal/logger"
	"github.com/MKhiriev/go-fin-keeper/models"
)

// queueRepository is the SQLite implementation of [QueueRepository] over the
// sync_queue table. The (collection, entity_id) unique key guarantees a
// single live item per entity.
type queueRepository struct {
	db     querier
	logger *logger.Logger
}

// NewQueueRepository constructs a [QueueRepository] over db.
func NewQueueRepository(db querier, logger *logger.Logger) QueueRepository {
	return &queueRepository{
		db:     db,
		logger: logger,
	}
}

func (r *queueRepository) GetLive(ctx context.Context, collection models.Collection, entityID string) (models.QueueItem, error) {
	query, args, err := buildGetLiveQueueItemQuery(collection, entityID)
	if err != nil {
		return models.QueueItem{}, fmt.Errorf("%w: %w: %w", ErrStorageFailure, ErrBuildingSQLQuery, err)
	}

	return r.getOne(ctx, "queueRepository.GetLive", query, args)
}

func (r *queueRepository) GetByID(ctx context.Context, id string) (models.QueueItem, error) {
	query, args, err := buildGetQueueItemByIDQuery(id)
	if err != nil {
		return models.QueueItem{}, fmt.Errorf("%w: %w: %w", ErrStorageFailure, ErrBuildingSQLQuery, err)
	}

	return r.getOne(ctx, "queueRepository.GetByID", query, args)
}

func (r *queueRepository) NextReady(ctx context.Context, collection models.Collection, now time.Time, exclude []string) (models.QueueItem, error) {
	query, args, err := buildNextReadyQuery(collection, now, exclude)
	if err != nil {
		return models.QueueItem{}, fmt.Errorf("%w: %w: %w", ErrStorageFailure, ErrBuildingSQLQuery, err)
	}

	return r.getOne(ctx, "queueRepository.NextReady", query, args)
}

func (r *queueRepository) getOne(ctx context.Context, fn, query string, args []any) (models.QueueItem, error) {
	item, err := scanQueueItem(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.QueueItem{}, ErrQueueItemNotFound
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", fn).Msg("failed to read queue item")
		return models.QueueItem{}, fmt.Errorf("%w: %w: %w", ErrStorageFailure, ErrScanningRow, err)
	}

	return item, nil
}

func (r *queueRepository) Insert(ctx context.Context, item models.QueueItem) error {
	query, args, err := buildInsertQueueItemQuery(item)
	if err != nil {
		return fmt.Errorf("%w: %w: %w", ErrStorageFailure, ErrBuildingSQLQuery, err)
	}

	if _, err = r.db.ExecContext(ctx, query, args...); err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "queueRepository.Insert").
			Str("collection", item.Collection.String()).
			Str("entity_id", item.EntityID).
			Msg("failed to insert queue item")
		return fmt.Errorf("%w: %w: %w", ErrStorageFailure, ErrExecutingStatement, err)
	}

	return nil
}

func (r *queueRepository) Replace(ctx context.Context, item models.QueueItem) error {
	query, args, err := buildReplaceQueueItemQuery(item)
	if err != nil {
		return fmt.Errorf("%w: %w: %w", ErrStorageFailure, ErrBuildingSQLQuery, err)
	}

	affected, err := r.exec(ctx, "queueRepository.Replace", query, args)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrQueueItemNotFound
	}

	return nil
}

func (r *queueRepository) Claim(ctx context.Context, id string) (bool, error) {
	query, args, err := buildClaimQueueItemQuery(id)
	if err != nil {
		return false, fmt.Errorf("%w: %w: %w", ErrStorageFailure, ErrBuildingSQLQuery, err)
	}

	affected, err := r.exec(ctx, "queueRepository.Claim", query, args)
	return affected == 1, err
}

func (r *queueRepository) UpdateState(ctx context.Context, item models.QueueItem) (bool, error) {
	query, args, err := buildUpdateQueueStateQuery(item)
	if err != nil {
		return false, fmt.Errorf("%w: %w: %w", ErrStorageFailure, ErrBuildingSQLQuery, err)
	}

	affected, err := r.exec(ctx, "queueRepository.UpdateState", query, args)
	return affected == 1, err
}

func (r *queueRepository) DeleteByID(ctx context.Context, id string) (bool, error) {
	query, args, err := buildDeleteQueueItemQuery(id)
	if err != nil {
		return false, fmt.Errorf("%w: %w: %w", ErrStorageFailure, ErrBuildingSQLQuery, err)
	}

	affected, err := r.exec(ctx, "queueRepository.DeleteByID", query, args)
	return affected == 1, err
}

func (r *queueRepository) DeleteByEntity(ctx context.Context, collection models.Collection, entityID string) error {
	query, args, err := buildDeleteQueueItemByEntityQuery(collection, entityID)
	if err != nil {
		return fmt.Errorf("%w: %w: %w", ErrStorageFailure, ErrBuildingSQLQuery, err)
	}

	_, err = r.exec(ctx, "queueRepository.DeleteByEntity", query, args)
	return err
}

func (r *queueRepository) ResetInFlight(ctx context.Context) (int64, error) {
	query, args, err := buildResetInFlightQuery()
	if err != nil {
		return 0, fmt.Errorf("%w: %w: %w", ErrStorageFailure, ErrBuildingSQLQuery, err)
	}

	return r.exec(ctx, "queueRepository.ResetInFlight", query, args)
}

func (r *queueRepository) exec(ctx context.Context, fn, query string, args []any) (int64, error) {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", fn).Msg("failed to execute statement")
		return 0, fmt.Errorf("%w: %w: %w", ErrStorageFailure, ErrExecutingStatement, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: %w: %w", ErrStorageFailure, ErrExecutingStatement, err)
	}

	return affected, nil
}

func (r *queueRepository) List(ctx context.Context) ([]models.QueueItem, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildListQueueQuery()
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %w", ErrStorageFailure, ErrBuildingSQLQuery, err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "queueRepository.List").Msg("failed to execute query")
		return nil, fmt.Errorf("%w: %w: %w", ErrStorageFailure, ErrExecutingQuery, err)
	}
	defer rows.Close()

	items := make([]models.QueueItem, 0, 16)
	for rows.Next() {
		item, scanErr := scanQueueItem(rows)
		if scanErr != nil {
			log.Err(scanErr).Str("func", "queueRepository.List").Msg("failed to scan queue row")
			return nil, fmt.Errorf("%w: %w: %w", ErrStorageFailure, ErrScanningRow, scanErr)
		}
		items = append(items, item)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("%w: %w: %w", ErrStorageFailure, ErrScanningRows, rowsErr)
	}

	return items, nil
}

func (r *queueRepository) CountByState(ctx context.Context) (models.QueueDepth, error) {
	query, args, err := buildCountQueueByStateQuery()
	if err != nil {
		return models.QueueDepth{}, fmt.Errorf("%w: %w: %w", ErrStorageFailure, ErrBuildingSQLQuery, err)
	}

	var depth models.QueueDepth
	err = countGrouped(ctx, r.db, query, args, func(key string, n int) {
		switch models.QueueState(key) {
		case models.QueueQueued:
			depth.Queued = n
		case models.QueueInFlight:
			depth.InFlight = n
		case models.QueueAbandoned:
			depth.Abandoned = n
		}
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "queueRepository.CountByState").Msg("failed to count queue items")
		return models.QueueDepth{}, err
	}

	return depth, nil
}

func scanQueueItem(row rowScanner) (models.QueueItem, error) {
	var (
		item                   models.QueueItem
		collection, op, state  string
		payload, lastError     sql.NullString
		createdAt, nextRetryAt int64
	)

	err := row.Scan(
		&item.ID,
		&collection,
		&item.EntityID,
		&item.UserID,
		&op,
		&payload,
		&createdAt,
		&item.RetryCount,
		&nextRetryAt,
		&lastError,
		&state,
	)
	if err != nil {
		return models.QueueItem{}, err
	}

	item.Collection = models.Collection(collection)
	item.Operation = models.Operation(op)
	item.State = models.QueueState(state)
	item.CreatedAt = time.UnixMilli(createdAt).UTC()
	item.NextRetryAt = time.UnixMilli(nextRetryAt).UTC()
	if payload.Valid {
		item.Payload = json.RawMessage(payload.String)
	}
	if lastError.Valid {
		msg := lastError.String
		item.LastError = &msg
	}

	return item, nil
}
