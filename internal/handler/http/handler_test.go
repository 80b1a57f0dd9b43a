// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-fin-keeper/internal/config"
	"github.com/MKhiriev/go-fin-keeper/internal/logger"
	"github.com/MKhiriev/go-fin-keeper/internal/mock"
	"github.com/MKhiriev/go-fin-keeper/internal/service"
	"github.com/MKhiriev/go-fin-keeper/models"
)

type testHandler struct {
	h         *Handler
	router    http.Handler
	resources *mock.MockResourceService
	appInfo   *mock.MockAppInfoService
}

func newTestHandler(t *testing.T, cfg config.App) *testHandler {
	t.Helper()
	ctrl := gomock.NewController(t)

	resources := mock.NewMockResourceService(ctrl)
	appInfo := mock.NewMockAppInfoService(ctrl)
	h := NewHandler(&service.Services{ResourceService: resources, AppInfoService: appInfo}, cfg, logger.Nop())

	return &testHandler{h: h, router: h.Init(), resources: resources, appInfo: appInfo}
}

func (th *testHandler) do(method, target, body string, headers ...string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	th.router.ServeHTTP(rec, req)
	return rec
}

func TestPing(t *testing.T) {
	th := newTestHandler(t, config.App{TokenSignKey: "key"})

	// пинг доступен без токена
	assert.Equal(t, http.StatusOK, th.do(http.MethodGet, "/ping", "").Code)
	assert.Equal(t, http.StatusOK, th.do(http.MethodHead, "/ping", "").Code)
}

func TestGetServerVersion(t *testing.T) {
	th := newTestHandler(t, config.App{})
	th.appInfo.EXPECT().GetAppVersion(gomock.Any()).Return("v1.4.0")

	rec := th.do(http.MethodGet, "/version", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain", rec.Header().Get("Content-Type"))
	assert.Equal(t, "v1.4.0", rec.Body.String())
}

func TestGetServerVersion_JSON(t *testing.T) {
	th := newTestHandler(t, config.App{})
	th.appInfo.EXPECT().GetBuildInfo(gomock.Any()).Return(models.NewAppBuildInfo("v1.4.0", "2026-10-01", "abc"))

	rec := th.do(http.MethodGet, "/version", "", "Accept", "application/json")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"version":"v1.4.0","date":"2026-10-01","commit":"abc"}`, rec.Body.String())
}

func TestUnsupportedMethodIsNotFound(t *testing.T) {
	th := newTestHandler(t, config.App{})

	rec := th.do(http.MethodPatch, "/transactions/tx-1", `{}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTraceID(t *testing.T) {
	th := newTestHandler(t, config.App{})

	rec := th.do(http.MethodGet, "/ping", "", traceIDHeader, "trace-42")
	assert.Equal(t, "trace-42", rec.Header().Get(traceIDHeader))

	rec = th.do(http.MethodGet, "/ping", "")
	_, err := uuid.Parse(rec.Header().Get(traceIDHeader))
	require.NoError(t, err, "generated trace id")

	long := strings.Repeat("x", maxTraceIDLength+1)
	rec = th.do(http.MethodGet, "/ping", "", traceIDHeader, long)
	assert.NotEqual(t, long, rec.Header().Get(traceIDHeader))
}
