// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	ErrInvalidID         = errors.New("invalid id")
	ErrInvalidUserID     = errors.New("invalid user ID")
	ErrUnknownCollection = errors.New("unknown collection")
	ErrEmptyPayload      = errors.New("payload is required")
	ErrMalformedPayload  = errors.New("payload is not valid for the collection")

	ErrInvalidAmount           = errors.New("amount must be positive")
	ErrNegativeAmount          = errors.New("amount must not be negative")
	ErrEmptyCategory           = errors.New("category is required")
	ErrInvalidTransactionType  = errors.New("type must be expense or income")
	ErrMissingTimestamp        = errors.New("timestamp is required")
	ErrEmptyName               = errors.New("name is required")
	ErrEmptyCounterparty       = errors.New("counterparty is required")
	ErrInvalidDirection        = errors.New("direction must be lent or borrowed")
	ErrInvalidMembers          = errors.New("a chit fund needs at least two members")
	ErrInvalidDuration         = errors.New("duration must be positive")
	ErrMissingStartDate        = errors.New("start date is required")
	ErrInvalidPaidInstallments = errors.New("paid installments out of range")
)
