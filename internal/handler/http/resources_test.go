// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-fin-keeper/internal/config"
	"github.com/MKhiriev/go-fin-keeper/internal/service"
	"github.com/MKhiriev/go-fin-keeper/internal/store"
	"github.com/MKhiriev/go-fin-keeper/internal/utils"
	"github.com/MKhiriev/go-fin-keeper/models"
)

const txBody = `{"id":"tx-1","userId":"user-1","payload":{"amount":"12.50","category":"food","type":"expense"}}`

func TestCreateRecord(t *testing.T) {
	t.Run("new record", func(t *testing.T) {
		th := newTestHandler(t, config.App{})
		th.resources.EXPECT().Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, rec models.RemoteRecord) (bool, error) {
				assert.Equal(t, models.Transactions, rec.Collection)
				assert.Equal(t, "tx-1", rec.ID)
				assert.Equal(t, "user-1", rec.UserID)
				assert.JSONEq(t, `{"amount":"12.50","category":"food","type":"expense"}`, string(rec.Payload))
				return true, nil
			})

		assert.Equal(t, http.StatusCreated, th.do(http.MethodPost, "/transactions", txBody).Code)
	})

	t.Run("duplicate delivery", func(t *testing.T) {
		th := newTestHandler(t, config.App{})
		th.resources.EXPECT().Create(gomock.Any(), gomock.Any()).Return(false, nil)

		assert.Equal(t, http.StatusOK, th.do(http.MethodPost, "/transactions", txBody).Code)
	})

	t.Run("unknown collection", func(t *testing.T) {
		th := newTestHandler(t, config.App{})
		assert.Equal(t, http.StatusNotFound, th.do(http.MethodPost, "/accounts", txBody).Code)
		assert.Equal(t, http.StatusNotFound, th.do(http.MethodPost, "/syncQueue", txBody).Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		th := newTestHandler(t, config.App{})
		assert.Equal(t, http.StatusBadRequest, th.do(http.MethodPost, "/transactions", `{"id":`).Code)
	})
}

func TestUpsertRecord(t *testing.T) {
	th := newTestHandler(t, config.App{})
	th.resources.EXPECT().Upsert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, rec models.RemoteRecord) error {
			assert.Equal(t, models.Debts, rec.Collection)
			assert.Equal(t, "d-1", rec.ID, "path id fills an empty body id")
			return nil
		})

	rec := th.do(http.MethodPut, "/debts/d-1", `{"userId":"user-1","payload":{"amount":"5"}}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	// id в теле не совпадает с путём
	rec = th.do(http.MethodPut, "/debts/d-1", `{"id":"d-2","userId":"user-1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteRecord(t *testing.T) {
	th := newTestHandler(t, config.App{})

	th.resources.EXPECT().Delete(gomock.Any(), models.Savings, "s-1", "user-1").Return(nil).Times(2)
	assert.Equal(t, http.StatusNoContent, th.do(http.MethodDelete, "/savings/s-1", `{"id":"s-1","userId":"user-1"}`).Code)
	assert.Equal(t, http.StatusNoContent, th.do(http.MethodDelete, "/savings/s-1?userId=user-1", "").Code)

	assert.Equal(t, http.StatusBadRequest, th.do(http.MethodDelete, "/savings/s-1", "").Code, "no owner")
	assert.Equal(t, http.StatusBadRequest, th.do(http.MethodDelete, "/savings/s-1", `{"id":`).Code)
}

func TestGetRecord(t *testing.T) {
	th := newTestHandler(t, config.App{})
	updatedAt := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	stored := models.RemoteRecord{
		Collection: models.ChitFunds,
		ID:         "c-1",
		UserID:     "user-1",
		Payload:    json.RawMessage(`{"name":"office"}`),
		UpdatedAt:  &updatedAt,
	}

	th.resources.EXPECT().Get(gomock.Any(), models.ChitFunds, "c-1", "user-1").Return(stored, nil)
	th.resources.EXPECT().Get(gomock.Any(), models.ChitFunds, "c-2", "user-1").
		Return(models.RemoteRecord{}, store.ErrResourceNotFound)

	rec := th.do(http.MethodGet, "/chitFunds/c-1?userId=user-1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got models.RemoteRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "c-1", got.ID)
	assert.JSONEq(t, `{"name":"office"}`, string(got.Payload))

	assert.Equal(t, http.StatusNotFound, th.do(http.MethodGet, "/chitFunds/c-2?userId=user-1", "").Code)
}

func TestRecordErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"storage down", fmt.Errorf("%w: %w", store.ErrStorageUnavailable, store.ErrExecutingStatement), http.StatusServiceUnavailable},
		{"foreign record", service.ErrForeignRecord, http.StatusForbidden},
		{"invalid data", service.ErrInvalidDataProvided, http.StatusBadRequest},
		{"query failure", store.ErrExecutingStatement, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th := newTestHandler(t, config.App{})
			th.resources.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(tt.err)

			assert.Equal(t, tt.status, th.do(http.MethodPut, "/transactions/tx-1", txBody).Code)
		})
	}
}

func TestRecordOwnerFromToken(t *testing.T) {
	th := newTestHandler(t, config.App{TokenSignKey: "sign", TokenIssuer: "fin-keeper"})
	token, err := utils.GenerateJWTToken("fin-keeper", "user-9", time.Hour, "sign")
	require.NoError(t, err)

	th.resources.EXPECT().Delete(gomock.Any(), models.Transactions, "tx-1", "user-9").Return(nil)
	th.resources.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, rec models.RemoteRecord) (bool, error) {
			userID, ok := utils.GetUserIDFromContext(ctx)
			assert.True(t, ok)
			assert.Equal(t, "user-9", userID)
			return true, nil
		})

	// владелец из токена важнее query-параметра
	rec := th.do(http.MethodDelete, "/transactions/tx-1?userId=user-1", "", "Authorization", "Bearer "+token.SignedString)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = th.do(http.MethodPost, "/transactions", txBody, "Authorization", "Bearer "+token.SignedString)
	assert.Equal(t, http.StatusCreated, rec.Code)

	assert.Equal(t, http.StatusUnauthorized, th.do(http.MethodPost, "/transactions", txBody).Code)
}
