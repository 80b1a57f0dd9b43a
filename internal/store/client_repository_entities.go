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

// entityRepository is the SQLite implementation of [EntityRepository].
// Every failure is wrapped with [ErrStorageFailure].
type entityRepository struct {
	db     querier
	logger *logger.Logger
}

// NewEntityRepository constructs an [EntityRepository] over db.
func NewEntityRepository(db querier, logger *logger.Logger) EntityRepository {
	return &entityRepository{
		db:     db,
		logger: logger,
	}
}

func (r *entityRepository) Put(ctx context.Context, entity models.Entity) error {
	log := logger.FromContext(ctx)

	table, err := tableFor(entity.Collection)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStorageFailure, err)
	}

	query, args, err := buildPutEntityQuery(table, entity)
	if err != nil {
		return fmt.Errorf("%w: %w: %w", ErrStorageFailure, ErrBuildingSQLQuery, err)
	}

	if _, err = r.db.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).
			Str("func", "entityRepository.Put").
			Str("collection", entity.Collection.String()).
			Str("id", entity.ID).
			Msg("failed to upsert entity")
		return fmt.Errorf("%w: %w: %w", ErrStorageFailure, ErrExecutingStatement, err)
	}

	return nil
}

func (r *entityRepository) Get(ctx context.Context, collection models.Collection, id string) (models.Entity, error) {
	log := logger.FromContext(ctx)

	table, err := tableFor(collection)
	if err != nil {
		return models.Entity{}, fmt.Errorf("%w: %w", ErrStorageFailure, err)
	}

	query, args, err := buildGetEntityQuery(table, id)
	if err != nil {
		return models.Entity{}, fmt.Errorf("%w: %w: %w", ErrStorageFailure, ErrBuildingSQLQuery, err)
	}

	entity, err := scanEntity(r.db.QueryRowContext(ctx, query, args...), collection)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Entity{}, ErrEntityNotFound
	}
	if err != nil {
		log.Err(err).
			Str("func", "entityRepository.Get").
			Str("collection", collection.String()).
			Str("id", id).
			Msg("failed to read entity")
		return models.Entity{}, fmt.Errorf("%w: %w: %w", ErrStorageFailure, ErrScanningRow, err)
	}

	return entity, nil
}

func (r *entityRepository) ListByOwner(ctx context.Context, collection models.Collection, ownerID string) ([]models.Entity, error) {
	table, err := tableFor(collection)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageFailure, err)
	}

	query, args, err := buildListByOwnerQuery(table, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %w", ErrStorageFailure, ErrBuildingSQLQuery, err)
	}

	return r.list(ctx, "entityRepository.ListByOwner", collection, query, args)
}

func (r *entityRepository) ListByStatus(ctx context.Context, collection models.Collection, statuses ...models.SyncStatus) ([]models.Entity, error) {
	table, err := tableFor(collection)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageFailure, err)
	}

	query, args, err := buildListByStatusQuery(table, statuses)
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %w", ErrStorageFailure, ErrBuildingSQLQuery, err)
	}

	return r.list(ctx, "entityRepository.ListByStatus", collection, query, args)
}

func (r *entityRepository) list(ctx context.Context, fn string, collection models.Collection, query string, args []any) ([]models.Entity, error) {
	log := logger.FromContext(ctx)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", fn).Str("collection", collection.String()).Msg("failed to execute query")
		return nil, fmt.Errorf("%w: %w: %w", ErrStorageFailure, ErrExecutingQuery, err)
	}
	defer rows.Close()

	entities := make([]models.Entity, 0, 16)
	for rows.Next() {
		entity, scanErr := scanEntity(rows, collection)
		if scanErr != nil {
			log.Err(scanErr).Str("func", fn).Str("collection", collection.String()).Msg("failed to scan entity row")
			return nil, fmt.Errorf("%w: %w: %w", ErrStorageFailure, ErrScanningRow, scanErr)
		}
		entities = append(entities, entity)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).Str("func", fn).Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w: %w", ErrStorageFailure, ErrScanningRows, rowsErr)
	}

	return entities, nil
}

func (r *entityRepository) SetStatus(ctx context.Context, collection models.Collection, id string, status models.SyncStatus) error {
	table, err := tableFor(collection)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStorageFailure, err)
	}

	query, args, err := buildSetStatusQuery(table, id, status)
	if err != nil {
		return fmt.Errorf("%w: %w: %w", ErrStorageFailure, ErrBuildingSQLQuery, err)
	}

	return r.execOne(ctx, "entityRepository.SetStatus", collection, id, query, args)
}

func (r *entityRepository) Tombstone(ctx context.Context, collection models.Collection, id string) error {
	table, err := tableFor(collection)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStorageFailure, err)
	}

	query, args, err := buildTombstoneQuery(table, id, time.Now())
	if err != nil {
		return fmt.Errorf("%w: %w: %w", ErrStorageFailure, ErrBuildingSQLQuery, err)
	}

	return r.execOne(ctx, "entityRepository.Tombstone", collection, id, query, args)
}

// Purge physically removes the record. A missing record is not an error.
func (r *entityRepository) Purge(ctx context.Context, collection models.Collection, id string) error {
	log := logger.FromContext(ctx)

	table, err := tableFor(collection)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStorageFailure, err)
	}

	query, args, err := buildPurgeQuery(table, id)
	if err != nil {
		return fmt.Errorf("%w: %w: %w", ErrStorageFailure, ErrBuildingSQLQuery, err)
	}

	if _, err = r.db.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).
			Str("func", "entityRepository.Purge").
			Str("collection", collection.String()).
			Str("id", id).
			Msg("failed to purge entity")
		return fmt.Errorf("%w: %w: %w", ErrStorageFailure, ErrExecutingStatement, err)
	}

	return nil
}

// execOne runs a statement that must touch exactly one record.
func (r *entityRepository) execOne(ctx context.Context, fn string, collection models.Collection, id, query string, args []any) error {
	log := logger.FromContext(ctx)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", fn).Str("collection", collection.String()).Str("id", id).Msg("failed to execute statement")
		return fmt.Errorf("%w: %w: %w", ErrStorageFailure, ErrExecutingStatement, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w: %w", ErrStorageFailure, ErrExecutingStatement, err)
	}
	if affected == 0 {
		return ErrEntityNotFound
	}

	return nil
}

func (r *entityRepository) CountByCollection(ctx context.Context) (map[models.Collection]int, error) {
	log := logger.FromContext(ctx)

	counts := make(map[models.Collection]int, len(models.EntityCollections))
	for _, collection := range models.EntityCollections {
		query, args, err := buildCountVisibleQuery(collectionTables[collection])
		if err != nil {
			return nil, fmt.Errorf("%w: %w: %w", ErrStorageFailure, ErrBuildingSQLQuery, err)
		}

		var count int
		if err = r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
			log.Err(err).
				Str("func", "entityRepository.CountByCollection").
				Str("collection", collection.String()).
				Msg("failed to count entities")
			return nil, fmt.Errorf("%w: %w: %w", ErrStorageFailure, ErrExecutingQuery, err)
		}
		counts[collection] = count
	}

	return counts, nil
}

func (r *entityRepository) CountByStatus(ctx context.Context) (map[models.SyncStatus]int, error) {
	log := logger.FromContext(ctx)

	counts := make(map[models.SyncStatus]int, len(models.AllSyncStatuses))
	for _, status := range models.AllSyncStatuses {
		counts[status] = 0
	}

	for _, collection := range models.EntityCollections {
		query, args, err := buildCountByStatusQuery(collectionTables[collection])
		if err != nil {
			return nil, fmt.Errorf("%w: %w: %w", ErrStorageFailure, ErrBuildingSQLQuery, err)
		}

		if err = countGrouped(ctx, r.db, query, args, func(key string, n int) {
			counts[models.SyncStatus(key)] += n
		}); err != nil {
			log.Err(err).
				Str("func", "entityRepository.CountByStatus").
				Str("collection", collection.String()).
				Msg("failed to count entities by status")
			return nil, err
		}
	}

	return counts, nil
}

// countGrouped reads (key, count) rows.
func countGrouped(ctx context.Context, db querier, query string, args []any, add func(key string, n int)) error {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %w: %w", ErrStorageFailure, ErrExecutingQuery, err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var n int
		if err = rows.Scan(&key, &n); err != nil {
			return fmt.Errorf("%w: %w: %w", ErrStorageFailure, ErrScanningRow, err)
		}
		add(key, n)
	}

	if err = rows.Err(); err != nil {
		return fmt.Errorf("%w: %w: %w", ErrStorageFailure, ErrScanningRows, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntity(row rowScanner, collection models.Collection) (models.Entity, error) {
	var (
		entity  models.Entity
		payload string
		status  string
	)

	err := row.Scan(
		&entity.ID,
		&entity.UserID,
		&payload,
		&status,
		&entity.Deleted,
		&entity.CreatedAt,
		&entity.UpdatedAt,
	)
	if err != nil {
		return models.Entity{}, err
	}

	entity.Collection = collection
	entity.Payload = json.RawMessage(payload)
	entity.SyncStatus = models.SyncStatus(status)

	return entity, nil
}
