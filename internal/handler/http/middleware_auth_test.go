// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-fin-keeper/internal/app"
	"github.com/MKhiriev/go-fin-keeper/internal/config"
	"github.com/MKhiriev/go-fin-keeper/internal/logger"
	"github.com/MKhiriev/go-fin-keeper/internal/utils"
)

func serveAuth(t *testing.T, cfg config.App, authHeader string) (*httptest.ResponseRecorder, string) {
	t.Helper()
	h := NewHandler(nil, cfg, logger.Nop())

	var seenUser string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenUser, _ = utils.GetUserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/transactions/tx-1", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	h.auth(next).ServeHTTP(rec, req)

	return rec, seenUser
}

func TestAuth(t *testing.T) {
	cfg := config.App{TokenSignKey: "sign", TokenIssuer: "fin-keeper"}

	valid, err := utils.GenerateJWTToken("fin-keeper", "user-1", time.Hour, "sign")
	require.NoError(t, err)
	expired, err := utils.GenerateJWTToken("fin-keeper", "user-1", -time.Minute, "sign")
	require.NoError(t, err)
	foreign, err := utils.GenerateJWTToken("other", "user-1", time.Hour, "sign")
	require.NoError(t, err)

	tests := []struct {
		name     string
		header   string
		status   int
		wantBody string
		wantUser string
	}{
		{name: "valid token", header: "Bearer " + valid.SignedString, status: http.StatusOK, wantUser: "user-1"},
		{name: "no header", status: http.StatusUnauthorized, wantBody: ErrEmptyAuthorizationHeader.Error()},
		{name: "no token", header: "Bearer", status: http.StatusUnauthorized, wantBody: ErrInvalidAuthorizationHeader.Error()},
		{name: "blank token", header: "Bearer ", status: http.StatusUnauthorized, wantBody: ErrEmptyToken.Error()},
		{name: "expired", header: "Bearer " + expired.SignedString, status: http.StatusUnauthorized, wantBody: app.MsgTokenIsExpired},
		{name: "wrong issuer", header: "Bearer " + foreign.SignedString, status: http.StatusUnauthorized},
		{name: "garbage", header: "Bearer a.b.c", status: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, user := serveAuth(t, cfg, tt.header)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.wantUser, user)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, strings.TrimSpace(rec.Body.String()))
			}
		})
	}
}

func TestAuth_DisabledWithoutSignKey(t *testing.T) {
	rec, user := serveAuth(t, config.App{}, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, user)
}
