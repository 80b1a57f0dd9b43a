// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType separates money going out from money coming in.
type TransactionType string

const (
	Expense TransactionType = "expense"
	Income  TransactionType = "income"
)

// Transaction is the payload of a record in the [Transactions] collection.
type Transaction struct {
	// Amount is always positive; the direction is given by Type.
	Amount decimal.Decimal `json:"amount"`

	Category    string          `json:"category"`
	Description string          `json:"description,omitempty"`
	Type        TransactionType `json:"type"`

	// Timestamp is when the transaction happened, not when it was recorded.
	Timestamp time.Time `json:"timestamp"`

	// PaymentMethod is free text such as "cash", "upi" or "card".
	PaymentMethod string `json:"paymentMethod,omitempty"`
}
