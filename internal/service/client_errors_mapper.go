// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"errors"
	"fmt"

	"github.com/MKhiriev/go-fin-keeper/internal/adapter"
	"github.com/MKhiriev/go-fin-keeper/internal/validators"
)

// outcome is what the orchestrator does with the result of a remote call.
type outcome int

const (
	outcomeSucceeded outcome = iota
	outcomeTransient
	outcomePermanent
	outcomeAuthExpired
)

func (o outcome) String() string {
	switch o {
	case outcomeSucceeded:
		return "succeeded"
	case outcomePermanent:
		return "permanent"
	case outcomeAuthExpired:
		return "auth_expired"
	default:
		return "transient"
	}
}

// classifyRemoteError maps an adapter error to an outcome. Anything the
// adapter did not classify, a context deadline included, is transient.
func classifyRemoteError(err error) outcome {
	switch {
	case err == nil:
		return outcomeSucceeded
	case errors.Is(err, adapter.ErrAuthExpired):
		return outcomeAuthExpired
	case errors.Is(err, adapter.ErrPermanentRejection):
		return outcomePermanent
	default:
		return outcomeTransient
	}
}

// mapValidationError translates a validator error into a business error
// for the presentation layer. The validator error stays wrapped so the
// offending field is still visible.
func mapValidationError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, validators.ErrUnknownCollection):
		return fmt.Errorf("%w: %w", ErrUnknownCollection, err)
	case errors.Is(err, validators.ErrInvalidUserID):
		return fmt.Errorf("%w: %w", ErrNoOwner, err)
	default:
		return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
}
