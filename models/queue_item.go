// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"encoding/json"
	"time"
)

// Operation is the kind of remote mutation a queue item describes.
type Operation string

const (
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// QueueState is the lifecycle state of a queue item.
type QueueState string

const (
	// QueueQueued items wait for their next eligible retry time.
	QueueQueued QueueState = "queued"
	// QueueInFlight items are being sent by a drain pass.
	QueueInFlight QueueState = "in_flight"
	// QueueAbandoned items exhausted their retries or were rejected by the
	// server. They are kept until the user retries or edits the entity.
	QueueAbandoned QueueState = "abandoned"
)

// QueueItem is a persisted description of one pending mutation to be applied
// remotely. There is at most one live item per Collection+EntityID.
type QueueItem struct {
	ID         string          `json:"id"`
	Collection Collection      `json:"collection"`
	EntityID   string          `json:"entityId"`
	UserID     string          `json:"userId"`
	Operation  Operation       `json:"operation"`
	Payload    json.RawMessage `json:"payload,omitempty"`

	// CreatedAt is the enqueue time; it defines FIFO order among ready items.
	CreatedAt time.Time `json:"createdAt"`

	RetryCount  int        `json:"retryCount"`
	NextRetryAt time.Time  `json:"nextRetryAt"`
	LastError   *string    `json:"lastError,omitempty"`
	State       QueueState `json:"state"`
}

// Attempted reports whether the item was ever sent to the server, which
// means its outcome on the remote side may be unknown.
func (q QueueItem) Attempted() bool {
	return q.State == QueueInFlight || q.RetryCount > 0 || q.LastError != nil
}

// QueueDepth groups live queue items by state.
type QueueDepth struct {
	Queued    int `json:"queued"`
	InFlight  int `json:"inFlight"`
	Abandoned int `json:"abandoned"`
}

// Outstanding is the number of items still expected to reach the server.
func (d QueueDepth) Outstanding() int {
	return d.Queued + d.InFlight
}
