// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// Stats is a read-only aggregate computed on demand from the local store and
// the sync queue. It is never persisted.
type Stats struct {
	// PerCollectionCounts counts visible (non-tombstoned) records.
	PerCollectionCounts map[Collection]int `json:"perCollectionCounts"`

	// PerStatusCounts counts records of every collection, tombstones included,
	// by sync status. A tombstone awaiting its remote delete is still sync
	// work, so while deletes are pending this total exceeds the sum of
	// PerCollectionCounts by the number of tombstones.
	PerStatusCounts map[SyncStatus]int `json:"perStatusCounts"`

	// QueueDepth is the number of mutations still expected to reach the server
	// (queued and in flight).
	QueueDepth int `json:"queueDepth"`

	InFlight  int `json:"inFlight"`
	Abandoned int `json:"abandoned"`
}
