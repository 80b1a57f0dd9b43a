// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Saving is the payload of a savings goal in the [Savings] collection.
type Saving struct {
	Name          string          `json:"name"`
	TargetAmount  decimal.Decimal `json:"targetAmount"`
	CurrentAmount decimal.Decimal `json:"currentAmount"`
	Category      string          `json:"category,omitempty"`
	Deadline      *time.Time      `json:"deadline,omitempty"`
}
