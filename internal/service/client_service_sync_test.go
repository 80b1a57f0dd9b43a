// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/MKhiriev/go-fin-keeper/internal/adapter"
	"github.com/MKhiriev/go-fin-keeper/internal/mock"
	"github.com/MKhiriev/go-fin-keeper/internal/store"
	"github.com/MKhiriev/go-fin-keeper/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// captured: записи, дошедшие до мока сервера.
type captured struct {
	mu   sync.Mutex
	recs []models.RemoteRecord
}

func (c *captured) add(rec models.RemoteRecord) {
	c.mu.Lock()
	c.recs = append(c.recs, rec)
	c.mu.Unlock()
}

func (c *captured) all() []models.RemoteRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.RemoteRecord(nil), c.recs...)
}

// ── Офлайн-запись и первая синхронизация ─────────────────────────────────────

func TestDrainPass_OfflineRecordSyncsWhenOnline(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ctx := context.Background()

	remote := mock.NewMockRemoteAPI(ctrl)
	e := newTestEngine(t, newTestStorages(t), remote, nil, testSyncConfig())

	entity := e.record(t, models.Transactions, "tx-1", txPayload(t, "120.00", "groceries"))
	assert.Equal(t, models.StatusPending, entity.SyncStatus)

	// офлайн: фоновый проход ничего не отправляет
	report, err := e.sync.DrainPass(ctx, false)
	require.NoError(t, err)
	assert.True(t, report.Skipped)
	assert.Equal(t, models.StatusPending, e.status(t, models.Transactions, "tx-1"))

	got := &captured{}
	remote.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, rec models.RemoteRecord) error {
			got.add(rec)
			return nil
		}).Times(1)

	e.sync.NotifyConnectivity(models.Online)
	report, err = e.sync.DrainPass(ctx, false)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Attempted)
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, models.StatusSynced, e.status(t, models.Transactions, "tx-1"))
	e.assertNoLiveItem(t, models.Transactions, "tx-1")

	recs := got.all()
	require.Len(t, recs, 1)
	assert.Equal(t, "tx-1", recs[0].ID)
	assert.Equal(t, "user-1", recs[0].UserID)
	assert.Equal(t, models.Transactions, recs[0].Collection)
	assert.JSONEq(t, string(entity.Payload), string(recs[0].Payload))
}

func TestDrainPass_CollectionsDrainIndependently(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ctx := context.Background()

	remote := mock.NewMockRemoteAPI(ctrl)
	e := newTestEngine(t, newTestStorages(t), remote, nil, testSyncConfig())

	e.record(t, models.Transactions, "tx-1", txPayload(t, "10", "fuel"))
	e.record(t, models.Debts, "d-1", debtPayload(t, "Ravi"))

	// отказ по транзакциям не мешает долгам
	remote.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, rec models.RemoteRecord) error {
			if rec.Collection == models.Transactions {
				return adapter.ErrTransient
			}
			return nil
		}).Times(2)

	e.sync.NotifyConnectivity(models.Online)
	report, err := e.sync.DrainPass(ctx, false)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Attempted)
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 1, report.Retrying)
	assert.Equal(t, models.StatusPending, e.status(t, models.Transactions, "tx-1"))
	assert.Equal(t, models.StatusSynced, e.status(t, models.Debts, "d-1"))
}

// ── Повторы и отказ от доставки ──────────────────────────────────────────────

func TestDrainPass_TransientFailuresAbandonAfterMaxRetries(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ctx := context.Background()

	cfg := testSyncConfig()
	cfg.MaxRetries = 3
	remote := mock.NewMockRemoteAPI(ctrl)
	e := newTestEngine(t, newTestStorages(t), remote, nil, cfg)

	e.record(t, models.Transactions, "tx-1", txPayload(t, "55", "rent"))
	e.sync.NotifyConnectivity(models.Online)

	// таймаут: мок ждёт отмены контекста вызова
	remote.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(callCtx context.Context, _ models.RemoteRecord) error {
			<-callCtx.Done()
			return callCtx.Err()
		}).Times(3)

	for attempt := 1; attempt <= 3; attempt++ {
		report, err := e.sync.DrainPass(ctx, false)
		require.NoError(t, err)
		require.Equal(t, 1, report.Attempted, "attempt %d", attempt)

		if attempt < 3 {
			item := e.liveItem(t, models.Transactions, "tx-1")
			assert.Equal(t, attempt, item.RetryCount)
			assert.Equal(t, models.QueueQueued, item.State)
			assert.True(t, item.NextRetryAt.After(e.clock.Now()), "next retry is in the future")
			require.NotNil(t, item.LastError)
			assert.Equal(t, models.StatusPending, e.status(t, models.Transactions, "tx-1"))

			// до истечения задержки элемент не готов
			report, err = e.sync.DrainPass(ctx, false)
			require.NoError(t, err)
			assert.Zero(t, report.Attempted)

			e.clock.Advance(time.Minute)
		}
	}

	item := e.liveItem(t, models.Transactions, "tx-1")
	assert.Equal(t, models.QueueAbandoned, item.State)
	assert.Equal(t, 3, item.RetryCount)
	assert.Equal(t, models.StatusFailed, e.status(t, models.Transactions, "tx-1"))

	// брошенный элемент не трогает даже ручной проход
	report, err := e.sync.TriggerSync(ctx)
	require.NoError(t, err)
	assert.Zero(t, report.Attempted)

	// явный повтор возвращает элемент в очередь со сброшенным счётчиком
	require.NoError(t, e.entities.Retry(ctx, models.Transactions, "tx-1"))
	item = e.liveItem(t, models.Transactions, "tx-1")
	assert.Equal(t, models.QueueQueued, item.State)
	assert.Zero(t, item.RetryCount)
	assert.Equal(t, models.StatusPending, e.status(t, models.Transactions, "tx-1"))

	// create уже пробовали, но Retry сохраняет исходную операцию
	remote.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	report, err = e.sync.DrainPass(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, models.StatusSynced, e.status(t, models.Transactions, "tx-1"))
	e.assertNoLiveItem(t, models.Transactions, "tx-1")
}

func TestDrainPass_PermanentRejectionAbandonsImmediately(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ctx := context.Background()

	remote := mock.NewMockRemoteAPI(ctrl)
	e := newTestEngine(t, newTestStorages(t), remote, nil, testSyncConfig())

	e.record(t, models.Debts, "d-1", debtPayload(t, "Anil"))
	e.sync.NotifyConnectivity(models.Online)

	remote.EXPECT().Create(gomock.Any(), gomock.Any()).
		Return(errors.Join(adapter.ErrPermanentRejection, errors.New("400 Bad Request"))).
		Times(1)

	report, err := e.sync.DrainPass(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Abandoned)

	item := e.liveItem(t, models.Debts, "d-1")
	assert.Equal(t, models.QueueAbandoned, item.State)
	assert.Zero(t, item.RetryCount, "a rejection is not a retry")
	require.NotNil(t, item.LastError)
	assert.Contains(t, *item.LastError, "400")
	assert.Equal(t, models.StatusFailed, e.status(t, models.Debts, "d-1"))

	report, err = e.sync.TriggerSync(ctx)
	require.NoError(t, err)
	assert.Zero(t, report.Attempted)
}

func TestDrainPass_EditOfFailedEntityRequeues(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ctx := context.Background()

	remote := mock.NewMockRemoteAPI(ctrl)
	e := newTestEngine(t, newTestStorages(t), remote, nil, testSyncConfig())

	e.record(t, models.Debts, "d-1", debtPayload(t, "Anil"))
	e.sync.NotifyConnectivity(models.Online)

	gomock.InOrder(
		remote.EXPECT().Create(gomock.Any(), gomock.Any()).Return(adapter.ErrPermanentRejection),
		remote.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil),
	)

	_, err := e.sync.DrainPass(ctx, false)
	require.NoError(t, err)
	require.Equal(t, models.StatusFailed, e.status(t, models.Debts, "d-1"))

	// правка брошенной записи ставит её обратно в очередь как update
	_, err = e.entities.Update(ctx, models.Debts, models.RecordRequest{ID: "d-1", UserID: "user-1", Payload: debtPayload(t, "Anil K.")})
	require.NoError(t, err)

	item := e.liveItem(t, models.Debts, "d-1")
	assert.Equal(t, models.QueueQueued, item.State)
	assert.Equal(t, models.OpUpdate, item.Operation)

	report, err := e.sync.DrainPass(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, models.StatusSynced, e.status(t, models.Debts, "d-1"))
}

// ── Ручной проход ────────────────────────────────────────────────────────────

func TestTriggerSync_IgnoresBackoffAndConnectivity(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ctx := context.Background()

	remote := mock.NewMockRemoteAPI(ctrl)
	e := newTestEngine(t, newTestStorages(t), remote, nil, testSyncConfig())

	e.record(t, models.Transactions, "tx-1", txPayload(t, "9.99", "coffee"))

	gomock.InOrder(
		remote.EXPECT().Create(gomock.Any(), gomock.Any()).Return(adapter.ErrTransient),
		remote.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil),
	)

	// офлайн, но ручной проход всё равно пробует; элемент пробуется один раз за проход
	report, err := e.sync.TriggerSync(ctx)
	require.NoError(t, err)
	assert.True(t, report.Manual)
	assert.Equal(t, 1, report.Attempted)
	assert.Equal(t, 1, report.Retrying)

	item := e.liveItem(t, models.Transactions, "tx-1")
	assert.Equal(t, 1, item.RetryCount, "manual failures count")
	assert.True(t, item.NextRetryAt.After(e.clock.Now()))

	// задержка ещё не истекла, ручной проход её игнорирует
	report, err = e.sync.TriggerSync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, models.StatusSynced, e.status(t, models.Transactions, "tx-1"))
}

func TestDrainPass_FIFOWithinCollection(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ctx := context.Background()

	remote := mock.NewMockRemoteAPI(ctrl)
	e := newTestEngine(t, newTestStorages(t), remote, nil, testSyncConfig())

	for _, id := range []string{"tx-a", "tx-b", "tx-c"} {
		e.record(t, models.Transactions, id, txPayload(t, "1", "misc"))
		e.clock.Advance(time.Second)
	}

	got := &captured{}
	remote.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, rec models.RemoteRecord) error {
			got.add(rec)
			return nil
		}).Times(3)

	e.sync.NotifyConnectivity(models.Online)
	_, err := e.sync.DrainPass(ctx, false)
	require.NoError(t, err)

	var order []string
	for _, rec := range got.all() {
		order = append(order, rec.ID)
	}
	assert.Equal(t, []string{"tx-a", "tx-b", "tx-c"}, order)
}

// ── Замена элемента во время отправки ────────────────────────────────────────

func TestDrainPass_SupersededWhileInFlight(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ctx := context.Background()

	remote := mock.NewMockRemoteAPI(ctrl)
	e := newTestEngine(t, newTestStorages(t), remote, nil, testSyncConfig())
	e.sync.timeout = 5 * time.Second

	e.record(t, models.Savings, "s-1", mustSaving(t, "Trip", "100"))

	started := make(chan struct{})
	release := make(chan struct{})
	got := &captured{}

	gomock.InOrder(
		remote.EXPECT().Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, rec models.RemoteRecord) error {
				got.add(rec)
				close(started)
				<-release
				return nil
			}),
		remote.EXPECT().Update(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, rec models.RemoteRecord) error {
				got.add(rec)
				return nil
			}),
	)

	type result struct {
		report models.PassReport
		err    error
	}
	done := make(chan result, 1)
	go func() {
		report, err := e.sync.TriggerSync(ctx)
		done <- result{report, err}
	}()

	<-started
	assert.Equal(t, models.StatusSyncing, e.status(t, models.Savings, "s-1"))

	// пользователь правит запись, пока create в полёте
	_, err := e.entities.Update(ctx, models.Savings, models.RecordRequest{ID: "s-1", UserID: "user-1", Payload: mustSaving(t, "Trip", "250")})
	require.NoError(t, err)

	item := e.liveItem(t, models.Savings, "s-1")
	assert.Equal(t, models.OpUpdate, item.Operation, "attempted create is upgraded to update")
	assert.Equal(t, models.StatusPending, e.status(t, models.Savings, "s-1"))

	close(release)
	res := <-done
	require.NoError(t, res.err)

	assert.Equal(t, 2, res.report.Attempted)
	assert.Equal(t, 2, res.report.Succeeded)
	assert.Equal(t, models.StatusSynced, e.status(t, models.Savings, "s-1"))
	e.assertNoLiveItem(t, models.Savings, "s-1")

	recs := got.all()
	require.Len(t, recs, 2)
	assert.Contains(t, string(recs[1].Payload), "250")
}

// ── Потеря связи и отмена ────────────────────────────────────────────────────

func TestDrainPass_GoingOfflineReleasesWithoutCountingAttempt(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ctx := context.Background()

	remote := mock.NewMockRemoteAPI(ctrl)
	e := newTestEngine(t, newTestStorages(t), remote, nil, testSyncConfig())

	e.record(t, models.Transactions, "tx-1", txPayload(t, "1", "a"))
	e.record(t, models.Transactions, "tx-2", txPayload(t, "2", "b"))
	e.sync.NotifyConnectivity(models.Online)

	remote.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ models.RemoteRecord) error {
			e.sync.NotifyConnectivity(models.Offline)
			return adapter.ErrTransient
		}).Times(1)

	report, err := e.sync.DrainPass(ctx, false)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Attempted)
	assert.Equal(t, 1, report.Released)
	assert.True(t, report.Interrupted)
	assert.False(t, e.sync.Online())

	first := e.liveItem(t, models.Transactions, "tx-1")
	assert.Equal(t, models.QueueQueued, first.State)
	assert.Zero(t, first.RetryCount, "going offline is not the item's fault")
	assert.False(t, first.NextRetryAt.After(e.clock.Now()), "released item is ready at once")
	assert.Equal(t, models.StatusPending, e.status(t, models.Transactions, "tx-1"))

	second := e.liveItem(t, models.Transactions, "tx-2")
	assert.Equal(t, models.QueueQueued, second.State)
	assert.Nil(t, second.LastError)
}

func TestDrainPass_CancelledContextReleasesItem(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	remote := mock.NewMockRemoteAPI(ctrl)
	e := newTestEngine(t, newTestStorages(t), remote, nil, testSyncConfig())
	e.sync.timeout = 5 * time.Second

	e.record(t, models.Transactions, "tx-1", txPayload(t, "1", "a"))
	e.record(t, models.Transactions, "tx-2", txPayload(t, "2", "b"))
	e.sync.NotifyConnectivity(models.Online)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	remote.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(callCtx context.Context, _ models.RemoteRecord) error {
			cancel()
			<-callCtx.Done()
			return errors.Join(adapter.ErrTransient, callCtx.Err())
		}).Times(1)

	report, err := e.sync.DrainPass(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Released)
	assert.True(t, report.Interrupted)

	item := e.liveItem(t, models.Transactions, "tx-1")
	assert.Equal(t, models.QueueQueued, item.State)
	assert.Zero(t, item.RetryCount)
	assert.Equal(t, models.StatusPending, e.status(t, models.Transactions, "tx-1"))
}

// ── Истёкший токен ───────────────────────────────────────────────────────────

func TestDrainPass_AuthExpiredRefreshesAndRetries(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ctx := context.Background()

	remote := mock.NewMockRemoteAPI(ctrl)
	tokens := mock.NewMockTokenSource(ctrl)
	e := newTestEngine(t, newTestStorages(t), remote, tokens, testSyncConfig())

	e.record(t, models.ChitFunds, "c-1", mustChitFund(t))
	e.sync.NotifyConnectivity(models.Online)

	gomock.InOrder(
		remote.EXPECT().Create(gomock.Any(), gomock.Any()).Return(adapter.ErrAuthExpired),
		tokens.EXPECT().Refresh(gomock.Any()).Return(nil),
		remote.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil),
	)

	report, err := e.sync.DrainPass(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Attempted)
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, models.StatusSynced, e.status(t, models.ChitFunds, "c-1"))
}

func TestDrainPass_AuthExpiredWithoutRefreshStopsPass(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ctx := context.Background()

	remote := mock.NewMockRemoteAPI(ctrl)
	tokens := mock.NewMockTokenSource(ctrl)
	e := newTestEngine(t, newTestStorages(t), remote, tokens, testSyncConfig())

	e.record(t, models.ChitFunds, "c-1", mustChitFund(t))
	e.record(t, models.ChitFunds, "c-2", mustChitFund(t))
	e.sync.NotifyConnectivity(models.Online)

	// после неудачного обновления токена проход останавливается, c-2 не отправляется
	remote.EXPECT().Create(gomock.Any(), gomock.Any()).Return(adapter.ErrAuthExpired).Times(1)
	tokens.EXPECT().Refresh(gomock.Any()).Return(errors.New("identity provider down")).Times(1)

	report, err := e.sync.DrainPass(ctx, false)
	require.ErrorIs(t, err, adapter.ErrAuthExpired)
	assert.True(t, report.Interrupted)
	assert.Equal(t, 1, report.Released)

	item := e.liveItem(t, models.ChitFunds, "c-1")
	assert.Equal(t, models.QueueQueued, item.State)
	assert.Zero(t, item.RetryCount)
	assert.Equal(t, models.StatusPending, e.status(t, models.ChitFunds, "c-1"))

	untouched := e.liveItem(t, models.ChitFunds, "c-2")
	assert.Nil(t, untouched.LastError)
}

func TestDrainPass_AuthExpiredWithoutTokenSource(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ctx := context.Background()

	remote := mock.NewMockRemoteAPI(ctrl)
	e := newTestEngine(t, newTestStorages(t), remote, nil, testSyncConfig())

	e.record(t, models.Savings, "s-1", mustSaving(t, "Bike", "400"))
	remote.EXPECT().Create(gomock.Any(), gomock.Any()).Return(adapter.ErrAuthExpired).Times(1)

	_, err := e.sync.TriggerSync(ctx)
	require.ErrorIs(t, err, adapter.ErrAuthExpired)
	assert.Equal(t, models.StatusPending, e.status(t, models.Savings, "s-1"))
}

// ── Удаление ─────────────────────────────────────────────────────────────────

func TestDrainPass_DeletePurgesTombstone(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ctx := context.Background()

	remote := mock.NewMockRemoteAPI(ctrl)
	e := newTestEngine(t, newTestStorages(t), remote, nil, testSyncConfig())

	e.record(t, models.Debts, "d-1", debtPayload(t, "Meena"))
	e.sync.NotifyConnectivity(models.Online)

	gomock.InOrder(
		remote.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil),
		remote.EXPECT().Delete(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, rec models.RemoteRecord) error {
				assert.Equal(t, "d-1", rec.ID)
				assert.Empty(t, rec.Payload)
				return nil
			}),
	)

	_, err := e.sync.DrainPass(ctx, false)
	require.NoError(t, err)

	require.NoError(t, e.entities.Delete(ctx, models.Debts, "d-1"))
	_, err = e.entities.Get(ctx, models.Debts, "d-1")
	assert.ErrorIs(t, err, store.ErrEntityNotFound, "tombstone is hidden")

	_, err = e.sync.DrainPass(ctx, false)
	require.NoError(t, err)

	_, err = e.storages.Entities.Get(ctx, models.Debts, "d-1")
	assert.ErrorIs(t, err, store.ErrEntityNotFound, "tombstone is purged after the remote delete")
	e.assertNoLiveItem(t, models.Debts, "d-1")
}

func TestDrainPass_DeleteBeforeFirstSyncSendsOnlyDelete(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ctx := context.Background()

	remote := mock.NewMockRemoteAPI(ctrl)
	e := newTestEngine(t, newTestStorages(t), remote, nil, testSyncConfig())

	e.record(t, models.Debts, "d-1", debtPayload(t, "Meena"))
	require.NoError(t, e.entities.Delete(ctx, models.Debts, "d-1"))

	// delete поглощает неотправленный create, сервер отвечает как на отсутствующую запись
	remote.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	_, err := e.sync.TriggerSync(ctx)
	require.NoError(t, err)

	_, err = e.storages.Entities.Get(ctx, models.Debts, "d-1")
	assert.ErrorIs(t, err, store.ErrEntityNotFound)
}

// ── Перезапуск и восстановление ──────────────────────────────────────────────

func TestRecover_RestoresInterruptedState(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "client.db")
	remote := mock.NewMockRemoteAPI(ctrl)

	// первый процесс: запись и «падение» посреди отправки
	before := newTestEngine(t, openTestStorages(t, path), remote, nil, testSyncConfig())
	before.record(t, models.Transactions, "tx-1", txPayload(t, "700", "school"))
	before.record(t, models.Savings, "s-1", mustSaving(t, "Gold", "1000"))

	item := before.liveItem(t, models.Transactions, "tx-1")
	claimed, err := before.queue.MarkInFlight(ctx, item.ID)
	require.NoError(t, err)
	require.True(t, claimed)
	require.NoError(t, before.storages.Entities.SetStatus(ctx, models.Transactions, "tx-1", models.StatusSyncing))

	// потерянный элемент очереди и элемент без сущности
	require.NoError(t, before.queue.Remove(ctx, models.Savings, "s-1"))
	_, err = before.queue.Enqueue(ctx, queueItem(models.Debts, "ghost", models.OpUpdate, `{}`))
	require.NoError(t, err)
	require.NoError(t, before.storages.Close())

	// второй процесс
	after := newTestEngine(t, openTestStorages(t, path), remote, nil, testSyncConfig())
	require.NoError(t, after.sync.Recover(ctx))

	restored := after.liveItem(t, models.Transactions, "tx-1")
	assert.Equal(t, models.QueueQueued, restored.State)
	assert.Equal(t, models.OpCreate, restored.Operation)
	assert.Zero(t, restored.RetryCount)
	require.NotNil(t, restored.LastError)
	assert.True(t, restored.Attempted(), "outcome of the interrupted call is unknown")
	assert.Equal(t, models.StatusPending, after.status(t, models.Transactions, "tx-1"))

	requeued := after.liveItem(t, models.Savings, "s-1")
	assert.Equal(t, models.OpUpdate, requeued.Operation, "unknown remote state is upserted")

	after.assertNoLiveItem(t, models.Debts, "ghost")

	got := &captured{}
	remote.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, rec models.RemoteRecord) error {
			got.add(rec)
			return nil
		}).Times(1)
	remote.EXPECT().Update(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, rec models.RemoteRecord) error {
			got.add(rec)
			return nil
		}).Times(1)

	after.sync.NotifyConnectivity(models.Online)
	report, err := after.sync.DrainPass(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Succeeded)
	assert.Len(t, got.all(), 2)
}

func TestRecover_FailedEntityStaysAbandoned(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, newTestStorages(t), nil, nil, testSyncConfig())

	e.record(t, models.Debts, "d-1", debtPayload(t, "Sita"))
	require.NoError(t, e.queue.Remove(ctx, models.Debts, "d-1"))
	require.NoError(t, e.storages.Entities.SetStatus(ctx, models.Debts, "d-1", models.StatusFailed))

	require.NoError(t, e.sync.Recover(ctx))

	item := e.liveItem(t, models.Debts, "d-1")
	assert.Equal(t, models.QueueAbandoned, item.State)
	assert.Equal(t, models.StatusFailed, e.status(t, models.Debts, "d-1"))

	require.NoError(t, e.entities.Retry(ctx, models.Debts, "d-1"))
	assert.Equal(t, models.QueueQueued, e.liveItem(t, models.Debts, "d-1").State)
}

func TestRecover_TombstoneRequeuesDelete(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, newTestStorages(t), nil, nil, testSyncConfig())

	e.record(t, models.Debts, "d-1", debtPayload(t, "Sita"))
	require.NoError(t, e.entities.Delete(ctx, models.Debts, "d-1"))
	require.NoError(t, e.queue.Remove(ctx, models.Debts, "d-1"))

	require.NoError(t, e.sync.Recover(ctx))

	item := e.liveItem(t, models.Debts, "d-1")
	assert.Equal(t, models.OpDelete, item.Operation)
	assert.Empty(t, item.Payload)
}

func TestQueue_SurvivesRestart(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "client.db")

	first := newTestEngine(t, openTestStorages(t, path), nil, nil, testSyncConfig())
	first.record(t, models.Transactions, "tx-1", txPayload(t, "1", "a"))
	first.record(t, models.Debts, "d-1", debtPayload(t, "b"))
	require.NoError(t, first.storages.Close())

	second := newTestEngine(t, openTestStorages(t, path), nil, nil, testSyncConfig())
	items, err := second.queue.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "tx-1", items[0].EntityID)
	assert.Equal(t, "d-1", items[1].EntityID)
}

// ── События ──────────────────────────────────────────────────────────────────

func TestDrainPass_PublishesEvents(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ctx := context.Background()

	remote := mock.NewMockRemoteAPI(ctrl)
	e := newTestEngine(t, newTestStorages(t), remote, nil, testSyncConfig())

	events, unsubscribe := e.notifier.Subscribe()
	defer unsubscribe()

	e.record(t, models.Transactions, "tx-1", txPayload(t, "3", "tea"))
	remote.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

	e.sync.NotifyConnectivity(models.Online)
	_, err := e.sync.DrainPass(ctx, false)
	require.NoError(t, err)

	var statuses []models.SyncStatus
	var depths []int
	var connectivity []models.ConnectivityState
	for len(events) > 0 {
		ev := <-events
		switch ev.Kind {
		case models.EventSyncStatusChanged:
			assert.Equal(t, "tx-1", ev.EntityID)
			statuses = append(statuses, ev.Status)
		case models.EventQueueDepthChanged:
			depths = append(depths, ev.Depth)
		case models.EventConnectivityChanged:
			connectivity = append(connectivity, ev.Connectivity)
		}
	}

	assert.Equal(t, []models.SyncStatus{models.StatusPending, models.StatusSyncing, models.StatusSynced}, statuses)
	assert.Equal(t, []int{1, 0}, depths)
	assert.Equal(t, []models.ConnectivityState{models.Online}, connectivity)
}

func TestNotifyConnectivity_PublishesOnlyChanges(t *testing.T) {
	e := newTestEngine(t, newTestStorages(t), nil, nil, testSyncConfig())
	events, unsubscribe := e.notifier.Subscribe()
	defer unsubscribe()

	e.sync.NotifyConnectivity(models.Offline)
	e.sync.NotifyConnectivity(models.Online)
	e.sync.NotifyConnectivity(models.Online)
	e.sync.NotifyConnectivity(models.Offline)

	var got []models.ConnectivityState
	for len(events) > 0 {
		got = append(got, (<-events).Connectivity)
	}
	assert.Equal(t, []models.ConnectivityState{models.Online, models.Offline}, got)
}

// ── Параллельные воркеры ─────────────────────────────────────────────────────

func TestDrainPass_ConcurrentWorkersSendEachItemOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ctx := context.Background()

	cfg := testSyncConfig()
	cfg.Concurrency = 3
	remote := mock.NewMockRemoteAPI(ctrl)
	e := newTestEngine(t, newTestStorages(t), remote, nil, cfg)

	const n = 12
	for i := range n {
		e.record(t, models.Transactions, "", txPayload(t, "1", "bulk"))
		if i%2 == 0 {
			e.record(t, models.Debts, "", debtPayload(t, "bulk"))
		}
	}

	seen := make(map[string]int)
	var mu sync.Mutex
	remote.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, rec models.RemoteRecord) error {
			mu.Lock()
			seen[rec.ID]++
			mu.Unlock()
			return nil
		}).Times(n + n/2)

	e.sync.NotifyConnectivity(models.Online)
	report, err := e.sync.DrainPass(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, n+n/2, report.Succeeded)

	for id, count := range seen {
		assert.Equal(t, 1, count, id)
	}

	depth, err := e.queue.Depth(ctx)
	require.NoError(t, err)
	assert.Zero(t, depth.Outstanding())
}
