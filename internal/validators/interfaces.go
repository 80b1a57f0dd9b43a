// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package validators checks finance records before they are stored.
//
// The client validates the typed payload of every collection before a write
// reaches the local store. The reference server only checks the fields it
// needs to address a record.
package validators

import "context"

//go:generate mockgen -source=interfaces.go -destination=../mock/validator_mock.go -package=mock

// Validator validates a value. When fields are given only those fields are
// checked.
type Validator interface {
	Validate(context.Context, any, ...string) error
}
