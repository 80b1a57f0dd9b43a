// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// PassReport summarizes one drain pass of the sync queue.
type PassReport struct {
	// Manual is set for passes started by an explicit user request.
	Manual bool `json:"manual"`

	// Skipped is set when a background pass found the device offline.
	Skipped bool `json:"skipped"`

	// Attempted counts items sent to the server, auth retries excluded.
	Attempted int `json:"attempted"`
	Succeeded int `json:"succeeded"`
	// Retrying counts transient failures scheduled for a later pass.
	Retrying  int `json:"retrying"`
	Abandoned int `json:"abandoned"`
	// Released counts items returned to the queue without a counted attempt.
	Released int `json:"released"`

	// Interrupted is set when the pass stopped early because the device went
	// offline, the token could not be refreshed or the caller cancelled.
	Interrupted bool `json:"interrupted"`
}
