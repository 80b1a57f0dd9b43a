// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import "errors"

// Client-side business errors returned to the presentation layer.
var (
	// ErrInvalidPayload is returned when a record request fails validation.
	// The wrapped validator error names the offending field.
	ErrInvalidPayload = errors.New("invalid payload")

	// ErrUnknownCollection is returned for a collection that holds no entities.
	ErrUnknownCollection = errors.New("unknown collection")

	// ErrEntityDeleted is returned when a record or update targets an entity
	// whose delete has not been confirmed by the server yet.
	ErrEntityDeleted = errors.New("entity is deleted")

	// ErrNotAbandoned is returned by an explicit retry of an entity that has
	// no abandoned queue item.
	ErrNotAbandoned = errors.New("entity has no abandoned sync work")

	// ErrNoOwner is returned when a record request carries no user id.
	ErrNoOwner = errors.New("no owner for record was given")

	// ErrForeignRecord is returned when a write targets a record owned by
	// another user.
	ErrForeignRecord = errors.New("record belongs to a different user")
)

// Server-side errors.
var (
	ErrInvalidDataProvided   = errors.New("invalid data provided")
	ErrVersionIsNotSpecified = errors.New("app version is not specified")
)
