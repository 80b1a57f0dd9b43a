// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"github.com/MKhiriev/go-fin-keeper/internal/adapter"
	"github.com/MKhiriev/go-fin-keeper/internal/config"
	"github.com/MKhiriev/go-fin-keeper/internal/logger"
	"github.com/MKhiriev/go-fin-keeper/internal/store"
	"github.com/MKhiriev/go-fin-keeper/internal/utils"
	"github.com/MKhiriev/go-fin-keeper/internal/validators"
)

// ClientServices groups the client-side services. They share one ledger,
// so local state transitions of user writes and sync outcomes are
// serialized.
type ClientServices struct {
	EntityService ClientEntityService
	SyncService   ClientSyncService
	StatsService  ClientStatsService
	Queue         *SyncQueue
	Notifier      *Notifier
}

func NewClientServices(storages *store.ClientStorages, remote adapter.RemoteAPI, tokens adapter.TokenSource, cfg *config.ClientConfig, logger *logger.Logger) *ClientServices {
	ids := utils.NewUUIDGenerator()
	notifier := NewNotifier(0, logger)
	queue := NewSyncQueue(storages.Queue, NewBackoff(cfg.Sync), ids, logger)
	l := newLedger(storages, storages.Entities, queue, notifier, logger)

	return &ClientServices{
		EntityService: newClientEntityService(l, validators.NewEntityValidator(), ids, logger),
		SyncService:   newClientSyncService(l, remote, tokens, cfg.Adapter, cfg.Sync, logger),
		StatsService:  newClientStatsService(storages.Entities, queue),
		Queue:         queue,
		Notifier:      notifier,
	}
}
