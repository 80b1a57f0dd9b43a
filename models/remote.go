// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"encoding/json"
	"time"
)

// RemoteRecord is the body exchanged with the remote API for one entity.
// It is addressed by Collection and ID; both are part of the URL and are not
// serialized twice.
type RemoteRecord struct {
	Collection Collection      `json:"-"`
	ID         string          `json:"id"`
	UserID     string          `json:"userId"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	UpdatedAt  *time.Time      `json:"updatedAt,omitempty"`
}

// RemoteRecordFromQueueItem builds the request body for a queue item.
func RemoteRecordFromQueueItem(item QueueItem) RemoteRecord {
	updatedAt := item.CreatedAt
	return RemoteRecord{
		Collection: item.Collection,
		ID:         item.EntityID,
		UserID:     item.UserID,
		Payload:    item.Payload,
		UpdatedAt:  &updatedAt,
	}
}
