// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// Collection names a group of entity records that share a payload shape and
// a remote resource. The string value is used verbatim in remote URLs.
type Collection string

const (
	// Transactions holds income and expense records.
	Transactions Collection = "transactions"
	// Savings holds savings goals.
	Savings Collection = "savings"
	// Debts holds money lent to or borrowed from other people.
	Debts Collection = "debts"
	// ChitFunds holds group-savings (chit fund) memberships.
	ChitFunds Collection = "chitFunds"
	// SyncQueue is the collection of pending mutations. It is never synced
	// itself and is listed here only so stats can name it.
	SyncQueue Collection = "syncQueue"
)

// EntityCollections lists the collections that hold user entities, in the
// order used by stats and recovery.
var EntityCollections = []Collection{Transactions, Savings, Debts, ChitFunds}

// IsEntityCollection reports whether c holds user entity records.
func (c Collection) IsEntityCollection() bool {
	for _, known := range EntityCollections {
		if c == known {
			return true
		}
	}
	return false
}

func (c Collection) String() string {
	return string(c)
}
