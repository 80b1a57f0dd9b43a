// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DebtDirection tells who owes whom.
type DebtDirection string

const (
	// Lent means the counterparty owes the user.
	Lent DebtDirection = "lent"
	// Borrowed means the user owes the counterparty.
	Borrowed DebtDirection = "borrowed"
)

// Debt is the payload of a record in the [Debts] collection.
type Debt struct {
	Counterparty string          `json:"counterparty"`
	Amount       decimal.Decimal `json:"amount"`
	Direction    DebtDirection   `json:"direction"`
	DueDate      *time.Time      `json:"dueDate,omitempty"`
	Settled      bool            `json:"settled"`
	Note         string          `json:"note,omitempty"`
}
