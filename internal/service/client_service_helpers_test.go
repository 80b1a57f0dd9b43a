// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/MKhiriev/go-fin-keeper/internal/adapter"
	"github.com/MKhiriev/go-fin-keeper/internal/config"
	"github.com/MKhiriev/go-fin-keeper/internal/logger"
	"github.com/MKhiriev/go-fin-keeper/internal/store"
	"github.com/MKhiriev/go-fin-keeper/internal/utils"
	"github.com/MKhiriev/go-fin-keeper/internal/validators"
	"github.com/MKhiriev/go-fin-keeper/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// fakeClock: управляемые часы для очереди и леджера.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// testEngine собирает клиентские сервисы поверх настоящего SQLite.
type testEngine struct {
	storages *store.ClientStorages
	clock    *fakeClock
	ledger   *ledger
	notifier *Notifier
	queue    *SyncQueue
	entities ClientEntityService
	sync     *clientSyncService
	stats    ClientStatsService
}

func testSyncConfig() config.Sync {
	return config.Sync{
		BaseDelay:   time.Second,
		MaxDelay:    time.Minute,
		MaxRetries:  5,
		Concurrency: 1,
	}
}

func newTestEngine(t *testing.T, storages *store.ClientStorages, remote adapter.RemoteAPI, tokens adapter.TokenSource, syncCfg config.Sync) *testEngine {
	t.Helper()

	clock := &fakeClock{now: testClock}
	ids := utils.NewUUIDGenerator()

	queue := NewSyncQueue(storages.Queue, NewBackoff(syncCfg).WithJitter(noJitter), ids, logger.Nop())
	queue.now = clock.Now

	notifier := NewNotifier(256, logger.Nop())
	l := newLedger(storages, storages.Entities, queue, notifier, logger.Nop())
	l.now = clock.Now

	adapterCfg := config.ClientAdapter{RequestTimeout: 200 * time.Millisecond}

	return &testEngine{
		storages: storages,
		clock:    clock,
		ledger:   l,
		notifier: notifier,
		queue:    queue,
		entities: newClientEntityService(l, validators.NewEntityValidator(), ids, logger.Nop()),
		sync:     newClientSyncService(l, remote, tokens, adapterCfg, syncCfg, logger.Nop()),
		stats:    newClientStatsService(storages.Entities, queue),
	}
}

func txPayload(t *testing.T, amount, category string) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(models.Transaction{
		Amount:    decimal.RequireFromString(amount),
		Category:  category,
		Type:      models.Expense,
		Timestamp: time.Date(2026, 4, 30, 18, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return b
}

func debtPayload(t *testing.T, counterparty string) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(models.Debt{
		Counterparty: counterparty,
		Amount:       decimal.NewFromInt(300),
		Direction:    models.Borrowed,
	})
	require.NoError(t, err)
	return b
}

func (e *testEngine) record(t *testing.T, collection models.Collection, id string, payload json.RawMessage) models.Entity {
	t.Helper()
	entity, err := e.entities.Record(context.Background(), collection, models.RecordRequest{
		ID:      id,
		UserID:  "user-1",
		Payload: payload,
	})
	require.NoError(t, err)
	return entity
}

func (e *testEngine) status(t *testing.T, collection models.Collection, id string) models.SyncStatus {
	t.Helper()
	entity, err := e.storages.Entities.Get(context.Background(), collection, id)
	require.NoError(t, err)
	return entity.SyncStatus
}

func (e *testEngine) liveItem(t *testing.T, collection models.Collection, id string) models.QueueItem {
	t.Helper()
	item, ok, err := e.queue.Get(context.Background(), collection, id)
	require.NoError(t, err)
	require.True(t, ok, "expected a live queue item for %s/%s", collection, id)
	return item
}

func (e *testEngine) assertNoLiveItem(t *testing.T, collection models.Collection, id string) {
	t.Helper()
	_, ok, err := e.queue.Get(context.Background(), collection, id)
	require.NoError(t, err)
	require.False(t, ok, "expected no live queue item for %s/%s", collection, id)
}

func mustSaving(t *testing.T, name, target string) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(models.Saving{
		Name:          name,
		TargetAmount:  decimal.RequireFromString(target),
		CurrentAmount: decimal.Zero,
	})
	require.NoError(t, err)
	return b
}

func mustChitFund(t *testing.T) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(models.ChitFund{
		Name:           "Street chit",
		Installment:    decimal.NewFromInt(2000),
		Members:        10,
		DurationMonths: 10,
		StartDate:      time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return b
}
