// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/MKhiriev/go-fin-keeper/internal/logger"
)

// DB is a database handle together with the migration set and error
// classifier of its dialect.
type DB struct {
	*sql.DB
	errorClassificator ErrorClassificator
	migrate            func(*sql.DB) error
	logger             *logger.Logger
}

// Migrate applies the pending schema migrations of the dialect.
func (db *DB) Migrate() error {
	if db.migrate == nil {
		return fmt.Errorf("no migrations configured for database")
	}
	return db.migrate(db.DB)
}

// querier is the part of *sql.DB and *sql.Tx the repositories use, so the
// same repository code runs on the pool or inside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
