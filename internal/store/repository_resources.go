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

// resourceRepository is the PostgreSQL-backed implementation of
// [ResourceRepository] over the "resources" table.
type resourceRepository struct {
	*DB
	logger *logger.Logger
}

// NewResourceRepository constructs a [ResourceRepository] backed by db.
func NewResourceRepository(db *DB, logger *logger.Logger) ResourceRepository {
	return &resourceRepository{
		DB:     db,
		logger: logger,
	}
}

// Create inserts rec. A unique_violation means the client already delivered
// this record and is reported as (false, nil).
func (r *resourceRepository) Create(ctx context.Context, rec models.RemoteRecord) (bool, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildCreateResourceQuery(rec)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = r.DB.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			log.Debug().
				Str("func", "resourceRepository.Create").
				Str("collection", rec.Collection.String()).
				Str("id", rec.ID).
				Msg("record already exists")
			return false, nil
		}

		log.Err(err).
			Str("func", "resourceRepository.Create").
			Str("collection", rec.Collection.String()).
			Str("id", rec.ID).
			Msg("failed to insert record")
		return false, r.classify(ErrExecutingStatement, err)
	}

	return true, nil
}

func (r *resourceRepository) Upsert(ctx context.Context, rec models.RemoteRecord) error {
	query, args, err := buildUpsertResourceQuery(rec)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = r.DB.ExecContext(ctx, query, args...); err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "resourceRepository.Upsert").
			Str("collection", rec.Collection.String()).
			Str("id", rec.ID).
			Msg("failed to upsert record")
		return r.classify(ErrExecutingStatement, err)
	}

	return nil
}

func (r *resourceRepository) Delete(ctx context.Context, collection models.Collection, id, userID string) error {
	query, args, err := buildDeleteResourceQuery(collection, id, userID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = r.DB.ExecContext(ctx, query, args...); err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "resourceRepository.Delete").
			Str("collection", collection.String()).
			Str("id", id).
			Msg("failed to delete record")
		return r.classify(ErrExecutingStatement, err)
	}

	return nil
}

func (r *resourceRepository) Get(ctx context.Context, collection models.Collection, id, userID string) (models.RemoteRecord, error) {
	query, args, err := buildGetResourceQuery(collection, id, userID)
	if err != nil {
		return models.RemoteRecord{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var (
		rec       models.RemoteRecord
		coll      string
		payload   []byte
		updatedAt time.Time
	)
	err = r.DB.QueryRowContext(ctx, query, args...).Scan(&coll, &rec.ID, &rec.UserID, &payload, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.RemoteRecord{}, ErrResourceNotFound
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "resourceRepository.Get").
			Str("collection", collection.String()).
			Str("id", id).
			Msg("failed to read record")
		return models.RemoteRecord{}, r.classify(ErrScanningRow, err)
	}

	rec.Collection = models.Collection(coll)
	rec.Payload = json.RawMessage(payload)
	rec.UpdatedAt = &updatedAt

	return rec, nil
}

// classify marks transient database failures with [ErrStorageUnavailable] so
// the transport can answer with a retryable status.
func (r *resourceRepository) classify(kind, err error) error {
	if r.errorClassificator != nil && r.errorClassificator.Classify(err) == Retryable {
		return fmt.Errorf("%w: %w: %w", ErrStorageUnavailable, kind, err)
	}
	return fmt.Errorf("%w: %w", kind, err)
}
