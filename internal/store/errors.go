// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrStorageFailure wraps every failure of the local store. It is
	// surfaced to the caller immediately and never retried.
	ErrStorageFailure = errors.New("local storage failure")

	// ErrEntityNotFound is returned when no record with the given identifier
	// exists in the collection.
	ErrEntityNotFound = errors.New("entity not found")

	// ErrQueueItemNotFound is returned when no live queue item matches.
	ErrQueueItemNotFound = errors.New("queue item not found")

	// ErrUnknownCollection is returned for a collection without a table.
	ErrUnknownCollection = errors.New("unknown collection")

	// ErrResourceNotFound is returned by the server repository when a record
	// does not exist.
	ErrResourceNotFound = errors.New("resource not found")

	// ErrStorageUnavailable is returned by the server repository when the
	// database failure is transient (connection loss, serialization failure).
	ErrStorageUnavailable = errors.New("storage temporarily unavailable")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrExecutingStatement is returned when executing a DML statement
	// (INSERT, UPDATE, DELETE) fails.
	ErrExecutingStatement = errors.New("failed to executing statement")

	// ErrScanningRow is returned when scanning a single result row fails.
	ErrScanningRow = errors.New("failed to scan row")

	// ErrScanningRows is returned when multi-row iteration fails.
	ErrScanningRows = errors.New("failed to scan rows")
)
