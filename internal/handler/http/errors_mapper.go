// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-fin-keeper/internal/service"
	"github.com/MKhiriev/go-fin-keeper/internal/store"
)

// errorStatuses is matched in order. A storage outage comes first: it wraps
// the query error that caused it and the client must see 503 to retry.
var errorStatuses = []struct {
	err    error
	status int
}{
	{store.ErrStorageUnavailable, http.StatusServiceUnavailable},

	{ErrUnknownCollection, http.StatusNotFound},
	{store.ErrUnknownCollection, http.StatusNotFound},
	{service.ErrForeignRecord, http.StatusForbidden},
	{service.ErrInvalidDataProvided, http.StatusBadRequest},
	{ErrInvalidBody, http.StatusBadRequest},
	{ErrIDMismatch, http.StatusBadRequest},
	{ErrNoOwner, http.StatusBadRequest},
	{store.ErrResourceNotFound, http.StatusNotFound},

	{store.ErrBuildingSQLQuery, http.StatusInternalServerError},
	{store.ErrExecutingQuery, http.StatusInternalServerError},
	{store.ErrExecutingStatement, http.StatusInternalServerError},
	{store.ErrScanningRow, http.StatusInternalServerError},
	{store.ErrScanningRows, http.StatusInternalServerError},
}

func statusFromError(err error) int {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}
