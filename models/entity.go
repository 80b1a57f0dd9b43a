// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"encoding/json"
	"time"
)

// SyncStatus describes how far a local entity record is from the remote copy.
type SyncStatus string

const (
	// StatusPending means the latest local mutation waits in the sync queue.
	StatusPending SyncStatus = "pending"
	// StatusSyncing means the latest mutation is being sent right now.
	StatusSyncing SyncStatus = "syncing"
	// StatusSynced means the remote copy matches the local record.
	StatusSynced SyncStatus = "synced"
	// StatusFailed means delivery was abandoned. The record stays editable and
	// can be retried explicitly.
	StatusFailed SyncStatus = "failed"
)

// AllSyncStatuses lists every status in lifecycle order.
var AllSyncStatuses = []SyncStatus{StatusPending, StatusSyncing, StatusSynced, StatusFailed}

// Entity is a user-owned financial item (transaction, saving, debt or
// chit-fund entry) held in the local store.
//
// Payload keeps the domain fields as JSON so that the store, the queue and
// the remote adapter can treat all collections uniformly; the typed shapes
// live in [Transaction], [Saving], [Debt] and [ChitFund].
type Entity struct {
	// ID is the client-generated identifier, unique within the collection.
	ID string `json:"id"`

	// UserID is the owner of the record.
	UserID string `json:"userId"`

	// Collection the record belongs to.
	Collection Collection `json:"collection"`

	// Payload holds the domain fields (amounts, categories, free text, dates).
	Payload json.RawMessage `json:"payload"`

	// SyncStatus is changed by the sync orchestrator and reset to pending by
	// every user mutation.
	SyncStatus SyncStatus `json:"syncStatus"`

	// Deleted marks a tombstone: the user deleted the record but the remote
	// delete is not confirmed yet. Tombstones are hidden from listings.
	Deleted bool `json:"deleted"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RecordRequest is the input of a record operation coming from the
// presentation layer.
type RecordRequest struct {
	// ID is optional. When empty a new identifier is generated; when it names
	// an existing record the call is treated as an edit of that record.
	ID string `json:"id,omitempty"`

	// UserID is the owner of the record. Required.
	UserID string `json:"userId"`

	// Payload carries the domain fields for the target collection.
	Payload json.RawMessage `json:"payload"`
}
