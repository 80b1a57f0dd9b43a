// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-fin-keeper/internal/config"
	"github.com/MKhiriev/go-fin-keeper/internal/logger"
)

// ClientStorages groups all client-side repositories over one SQLite handle.
// It is created once at startup and injected into the service layer.
type ClientStorages struct {
	Entities EntityRepository
	Queue    QueueRepository

	db     *DB
	logger *logger.Logger
}

// NewClientStorages opens the SQLite file named by cfg.DB.DSN, applies the
// schema migrations and wires the repositories.
func NewClientStorages(ctx context.Context, cfg config.ClientStorage, logger *logger.Logger) (*ClientStorages, error) {
	logger.Info().Msg("creating new storages...")

	db, err := NewConnectSQLite(ctx, cfg.DB, logger)
	if err != nil {
		return nil, fmt.Errorf("sqlite connection error: %w", err)
	}

	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: migration failed: %w", ErrStorageFailure, err)
	}

	return NewClientStoragesFromDB(db, logger), nil
}

// NewClientStoragesFromDB wires the repositories over an open handle.
func NewClientStoragesFromDB(db *DB, logger *logger.Logger) *ClientStorages {
	return &ClientStorages{
		Entities: NewEntityRepository(db, logger),
		Queue:    NewQueueRepository(db, logger),
		db:       db,
		logger:   logger,
	}
}

// InTx implements [Transactor] over the SQLite handle. Repositories passed
// to fn must not be used after fn returns.
func (s *ClientStorages) InTx(ctx context.Context, fn func(entities EntityRepository, queue QueueRepository) error) error {
	log := logger.FromContext(ctx)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).Str("func", "ClientStorages.InTx").Msg("failed to begin transaction")
		return fmt.Errorf("%w: begin transaction: %w", ErrStorageFailure, err)
	}

	if err = fn(NewEntityRepository(tx, s.logger), NewQueueRepository(tx, s.logger)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Err(rbErr).Str("func", "ClientStorages.InTx").Msg("failed to roll back transaction")
		}
		return err
	}

	if err = tx.Commit(); err != nil {
		log.Err(err).Str("func", "ClientStorages.InTx").Msg("failed to commit transaction")
		return fmt.Errorf("%w: commit transaction: %w", ErrStorageFailure, err)
	}

	return nil
}

// Close releases the database handle.
func (s *ClientStorages) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
