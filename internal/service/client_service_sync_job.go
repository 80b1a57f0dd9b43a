// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"sync"
	"time"

	"github.com/MKhiriev/go-fin-keeper/internal/config"
	"github.com/MKhiriev/go-fin-keeper/internal/logger"
	"github.com/MKhiriev/go-fin-keeper/models"
)

type clientSyncJob struct {
	syncService  ClientSyncService
	connectivity ConnectivitySource
	interval     time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup

	logger *logger.Logger
}

// NewClientSyncJob creates a job that feeds connectivity transitions into
// syncService and runs a drain pass on every online transition and every
// interval. If interval is zero or negative it defaults to
// config.DefaultSyncInterval. The job is idle until Start is called.
func NewClientSyncJob(syncService ClientSyncService, connectivity ConnectivitySource, interval time.Duration, logger *logger.Logger) ClientSyncJob {
	if interval <= 0 {
		interval = config.DefaultSyncInterval
	}

	return &clientSyncJob{
		syncService:  syncService,
		connectivity: connectivity,
		interval:     interval,
		logger:       logger,
	}
}

// Start implements ClientSyncJob. It stops any previously running job, then
// launches two goroutines: one forwarding connectivity transitions, one
// running drain passes. Both exit when ctx is cancelled or Stop is called.
func (j *clientSyncJob) Start(ctx context.Context) {
	j.Stop()

	j.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.wg.Add(2)
	j.mu.Unlock()

	states, unsubscribe := j.connectivity.Subscribe()
	kick := make(chan struct{}, 1)

	j.syncService.NotifyConnectivity(j.connectivity.State())
	if j.syncService.Online() {
		kick <- struct{}{}
	}

	go func() {
		defer j.wg.Done()
		defer unsubscribe()

		for {
			select {
			case <-jobCtx.Done():
				return
			case state, ok := <-states:
				if !ok {
					return
				}
				j.syncService.NotifyConnectivity(state)
				if state == models.Online {
					select {
					case kick <- struct{}{}:
					default:
					}
				}
			}
		}
	}()

	go func() {
		defer j.wg.Done()
		t := time.NewTicker(j.interval)
		defer t.Stop()

		for {
			select {
			case <-jobCtx.Done():
				return
			case <-kick:
				j.drain(jobCtx)
			case <-t.C:
				j.drain(jobCtx)
			}
		}
	}()
}

func (j *clientSyncJob) drain(ctx context.Context) {
	report, err := j.syncService.DrainPass(ctx, false)
	if err != nil && ctx.Err() == nil {
		j.logger.Err(err).Str("func", "clientSyncJob.drain").Msg("background drain pass failed")
		return
	}
	if report.Attempted > 0 {
		j.logger.Debug().
			Str("func", "clientSyncJob.drain").
			Int("attempted", report.Attempted).
			Int("succeeded", report.Succeeded).
			Msg("background drain pass done")
	}
}

// Stop implements ClientSyncJob. It cancels the background goroutines and
// blocks until they have fully exited. Safe to call when the job is not
// running (no-op in that case).
func (j *clientSyncJob) Stop() {
	j.mu.Lock()
	cancel := j.cancel
	j.cancel = nil
	j.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	j.wg.Wait()
}
