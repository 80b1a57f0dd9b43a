// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-fin-keeper/internal/adapter"
	"github.com/MKhiriev/go-fin-keeper/internal/config"
	"github.com/MKhiriev/go-fin-keeper/internal/logger"
	"github.com/MKhiriev/go-fin-keeper/internal/service"
	"github.com/MKhiriev/go-fin-keeper/internal/store"
	"github.com/MKhiriev/go-fin-keeper/internal/workers"
	"github.com/MKhiriev/go-fin-keeper/models"
)

var (
	_ Client = (*App)(nil)
	_ Core   = (*App)(nil)
)

type App struct {
	services *service.ClientServices
	storages *store.ClientStorages
	monitor  *workers.Monitor
	job      service.ClientSyncJob

	// userID owns records whose request names no owner.
	userID string

	logger *logger.Logger
}

// NewApp opens the local store and wires the engine against the remote API
// named in cfg.Adapter. Nothing runs in the background until Run.
func NewApp(ctx context.Context, cfg *config.ClientConfig, logger *logger.Logger) (*App, error) {
	storages, err := store.NewClientStorages(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("create local storage: %w", err)
	}

	tokens := adapter.NewStaticTokenSource(cfg.App.AccessToken, nil)
	remote, err := adapter.NewHTTPRemoteAPI(cfg.Adapter, cfg.App, tokens, logger)
	if err != nil {
		storages.Close()
		return nil, fmt.Errorf("create remote adapter: %w", err)
	}

	return newApp(storages, remote, tokens, cfg, logger), nil
}

func newApp(storages *store.ClientStorages, remote adapter.RemoteAPI, tokens adapter.TokenSource, cfg *config.ClientConfig, logger *logger.Logger) *App {
	services := service.NewClientServices(storages, remote, tokens, cfg, logger)
	monitor := workers.NewMonitor(remote, cfg.Sync, logger)

	return &App{
		services: services,
		storages: storages,
		monitor:  monitor,
		job:      service.NewClientSyncJob(services.SyncService, monitor, cfg.Sync.Interval, logger),
		userID:   cfg.App.UserID,
		logger:   logger,
	}
}

// Run recovers state left by a previous process, then probes connectivity
// and drains the queue in the background until ctx is done.
func (a *App) Run(ctx context.Context) error {
	if err := a.services.SyncService.Recover(ctx); err != nil {
		return fmt.Errorf("recover sync state: %w", err)
	}

	a.job.Start(ctx)
	defer a.job.Stop()

	a.logger.Info().Str("func", "*App.Run").Msg("sync engine started")

	err := workers.NewWorkers(a.monitor).Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("connectivity monitor: %w", err)
	}

	a.logger.Info().Str("func", "*App.Run").Msg("sync engine stopped")
	return nil
}

// Recover repairs interrupted sync state without starting the background
// loop. One-shot commands call it before a manual pass.
func (a *App) Recover(ctx context.Context) error {
	return a.services.SyncService.Recover(ctx)
}

func (a *App) Close() error {
	a.services.Notifier.Close()
	return a.storages.Close()
}

func (a *App) RecordEntity(ctx context.Context, collection models.Collection, req models.RecordRequest) (models.Entity, error) {
	return a.services.EntityService.Record(ctx, collection, a.withOwner(req))
}

// ListEntities lists the visible records of ownerID, or of the configured
// user when ownerID is empty.
func (a *App) ListEntities(ctx context.Context, collection models.Collection, ownerID string) ([]models.Entity, error) {
	if ownerID == "" {
		ownerID = a.userID
	}
	return a.services.EntityService.List(ctx, collection, ownerID)
}

func (a *App) TriggerSync(ctx context.Context) (models.PassReport, error) {
	return a.services.SyncService.TriggerSync(ctx)
}

func (a *App) GetStats(ctx context.Context) (models.Stats, error) {
	return a.services.StatsService.GetStats(ctx)
}

func (a *App) UpdateEntity(ctx context.Context, collection models.Collection, req models.RecordRequest) (models.Entity, error) {
	return a.services.EntityService.Update(ctx, collection, a.withOwner(req))
}

func (a *App) DeleteEntity(ctx context.Context, collection models.Collection, id string) error {
	return a.services.EntityService.Delete(ctx, collection, id)
}

func (a *App) RetryEntity(ctx context.Context, collection models.Collection, id string) error {
	return a.services.EntityService.Retry(ctx, collection, id)
}

func (a *App) GetEntity(ctx context.Context, collection models.Collection, id string) (models.Entity, error) {
	return a.services.EntityService.Get(ctx, collection, id)
}

func (a *App) Subscribe() (<-chan models.Event, func()) {
	return a.services.Notifier.Subscribe()
}

func (a *App) withOwner(req models.RecordRequest) models.RecordRequest {
	if req.UserID == "" {
		req.UserID = a.userID
	}
	return req
}
