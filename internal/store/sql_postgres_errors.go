// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrorClassification tells the resource repository whether a database
// failure is worth a retry from the sync client.
type ErrorClassification int

const (
	// NonRetryable failures are answered with a 500 and never marked as
	// unavailable. Unknown errors land here.
	NonRetryable ErrorClassification = iota

	// Retryable failures are wrapped in [ErrStorageUnavailable] so the
	// handler answers 503 and the client keeps the queue item.
	Retryable
)

// ErrorClassificator decides how a failed statement is reported upstream.
type ErrorClassificator interface {
	Classify(err error) ErrorClassification
}

// PostgresErrorClassifier classifies pgx driver errors by SQLSTATE.
type PostgresErrorClassifier struct{}

func NewPostgresErrorClassifier() *PostgresErrorClassifier {
	return &PostgresErrorClassifier{}
}

func (c *PostgresErrorClassifier) Classify(err error) ErrorClassification {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return NonRetryable
	}
	return ClassifyPgError(pgErr)
}

// ClassifyPgError treats lost connections, rolled back transactions and a
// server that is still starting up as retryable. Constraint, data and
// syntax errors will fail the same way on every attempt.
func ClassifyPgError(pgErr *pgconn.PgError) ErrorClassification {
	if pgErr == nil {
		return NonRetryable
	}

	switch {
	case pgerrcode.IsConnectionException(pgErr.Code),
		pgerrcode.IsTransactionRollback(pgErr.Code):
		return Retryable
	case pgErr.Code == pgerrcode.CannotConnectNow,
		pgErr.Code == pgerrcode.AdminShutdown,
		pgErr.Code == pgerrcode.TooManyConnections:
		return Retryable
	default:
		return NonRetryable
	}
}

// isUniqueViolation reports a duplicate primary key on create.
func isUniqueViolation(err error) bool {
	return postgresError(err) == pgerrcode.UniqueViolation
}
