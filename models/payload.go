// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownCollection is returned when a payload is decoded for a
// collection that does not hold entities.
var ErrUnknownCollection = errors.New("unknown collection")

// DecodePayload unmarshals raw into the typed payload of collection and
// returns it as a pointer ([*Transaction], [*Saving], [*Debt] or [*ChitFund]).
func DecodePayload(collection Collection, raw json.RawMessage) (any, error) {
	var target any
	switch collection {
	case Transactions:
		target = new(Transaction)
	case Savings:
		target = new(Saving)
	case Debts:
		target = new(Debt)
	case ChitFunds:
		target = new(ChitFund)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCollection, collection)
	}

	if err := json.Unmarshal(raw, target); err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", collection, err)
	}

	return target, nil
}
