// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// ConnectivityState is the network reachability seen by the client.
type ConnectivityState string

const (
	Online  ConnectivityState = "online"
	Offline ConnectivityState = "offline"
)

// EventKind tells which fields of an [Event] are meaningful.
type EventKind string

const (
	// EventSyncStatusChanged carries EntityID, Collection and Status.
	EventSyncStatusChanged EventKind = "sync_status_changed"
	// EventQueueDepthChanged carries Depth.
	EventQueueDepthChanged EventKind = "queue_depth_changed"
	// EventConnectivityChanged carries Connectivity.
	EventConnectivityChanged EventKind = "connectivity_changed"
)

// Event is a notification for UI badges and indicators.
type Event struct {
	Kind         EventKind         `json:"kind"`
	EntityID     string            `json:"entityId,omitempty"`
	Collection   Collection        `json:"collection,omitempty"`
	Status       SyncStatus        `json:"status,omitempty"`
	Depth        int               `json:"depth,omitempty"`
	Connectivity ConnectivityState `json:"connectivity,omitempty"`
	At           time.Time         `json:"at"`
}
