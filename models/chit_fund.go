// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ChitFund is a group-savings membership: every member pays Installment each
// month for DurationMonths and one member takes the pot each cycle.
type ChitFund struct {
	Name             string          `json:"name"`
	Organizer        string          `json:"organizer,omitempty"`
	Installment      decimal.Decimal `json:"installment"`
	Members          int             `json:"members"`
	DurationMonths   int             `json:"durationMonths"`
	StartDate        time.Time       `json:"startDate"`
	PaidInstallments int             `json:"paidInstallments"`
}

// PotValue is the amount collected from all members in one cycle.
func (c ChitFund) PotValue() decimal.Decimal {
	return c.Installment.Mul(decimal.NewFromInt(int64(c.Members)))
}
