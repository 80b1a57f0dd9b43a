// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"bytes"
	"io"
	"net/http"

	"github.com/MKhiriev/go-fin-keeper/internal/app"
	"github.com/MKhiriev/go-fin-keeper/internal/utils"
)

// verifyHash checks the HMAC-SHA256 signature the client puts in
// [utils.HashHeader] against the raw request body. Requests without a body
// are not checked, and neither is anything when no hash key is configured.
func (h *Handler) verifyHash(next http.Handler) http.Handler {
	if !h.hasher.Enabled() {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body == nil || r.Body == http.NoBody {
			next.ServeHTTP(w, r)
			return
		}

		// read bytes from body
		body, err := io.ReadAll(r.Body)
		if err != nil {
			h.logger.Err(err).Str("func", "*Handler.verifyHash").Msg("failed to read request body")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		// restore request body
		r.Body = io.NopCloser(bytes.NewReader(body))

		if len(body) == 0 {
			next.ServeHTTP(w, r)
			return
		}

		hashFromRequest := r.Header.Get(utils.HashHeader)
		if !h.hasher.Verify(body, hashFromRequest) {
			h.logger.Error().Str("func", "*Handler.verifyHash").
				Str("hash from request", hashFromRequest).
				Msg("hashes are not equal")
			http.Error(w, app.MsgIntegrityCheckFailed, http.StatusBadRequest)
			return
		}

		next.ServeHTTP(w, r)
	})
}
