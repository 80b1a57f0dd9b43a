// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MKhiriev/go-fin-keeper/internal/adapter"
	"github.com/MKhiriev/go-fin-keeper/internal/config"
	"github.com/MKhiriev/go-fin-keeper/internal/logger"
	"github.com/MKhiriev/go-fin-keeper/internal/store"
	"github.com/MKhiriev/go-fin-keeper/models"
)

// manualHorizon is the readiness cutoff of a manual pass: every queued item
// is eligible regardless of its backoff.
var manualHorizon = time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)

var (
	errWentOffline  = errors.New("connectivity lost during the call")
	errCancelled    = errors.New("sync cancelled during the call")
	errRecoveredAbn = errors.New("abandoned before restart")
)

type clientSyncService struct {
	ledger  *ledger
	remote  adapter.RemoteAPI
	tokens  adapter.TokenSource
	timeout time.Duration
	workers int

	// passMu serializes drain passes.
	passMu sync.Mutex

	online     atomic.Bool
	offlineGen atomic.Uint64

	logger *logger.Logger
}

func newClientSyncService(ledger *ledger, remote adapter.RemoteAPI, tokens adapter.TokenSource, adapterCfg config.ClientAdapter, syncCfg config.Sync, logger *logger.Logger) *clientSyncService {
	timeout := adapterCfg.RequestTimeout
	if timeout <= 0 {
		timeout = config.DefaultRequestTimeout
	}
	workers := syncCfg.Concurrency
	if workers <= 0 {
		workers = config.DefaultConcurrency
	}

	return &clientSyncService{
		ledger:  ledger,
		remote:  remote,
		tokens:  tokens,
		timeout: timeout,
		workers: workers,
		logger:  logger,
	}
}

// NotifyConnectivity records the debounced connectivity state. Going
// offline bumps the offline generation, which makes running workers stop
// taking new items.
func (s *clientSyncService) NotifyConnectivity(state models.ConnectivityState) {
	online := state == models.Online
	if !online {
		s.offlineGen.Add(1)
	}

	if s.online.Swap(online) == online {
		return
	}

	s.logger.Info().
		Str("func", "clientSyncService.NotifyConnectivity").
		Str("state", string(state)).
		Msg("connectivity changed")

	s.ledger.notifier.Publish(models.Event{
		Kind:         models.EventConnectivityChanged,
		Connectivity: state,
		At:           s.ledger.now().UTC(),
	})
}

func (s *clientSyncService) Online() bool {
	return s.online.Load()
}

// TriggerSync runs one exploratory pass now, ignoring connectivity and
// backoff. Abandoned items are left alone.
func (s *clientSyncService) TriggerSync(ctx context.Context) (models.PassReport, error) {
	return s.DrainPass(ctx, true)
}

// passState is shared by the workers of one drain pass.
type passState struct {
	gen     uint64
	horizon time.Time

	stopped atomic.Bool

	mu     sync.Mutex
	report models.PassReport
}

func (p *passState) count(fn func(r *models.PassReport)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn(&p.report)
}

// lane holds the per-collection bookkeeping of a pass. seen makes every
// item eligible at most once per pass; busy keeps two workers off the same
// entity when a superseding item shows up while the old one is in flight.
type lane struct {
	collection models.Collection

	mu   sync.Mutex
	seen []string
	busy map[string]struct{}
}

// DrainPass sends ready queue items to the server. Collections drain
// concurrently, each with the configured number of workers. A background
// pass (manual false) does nothing while offline.
func (s *clientSyncService) DrainPass(ctx context.Context, manual bool) (models.PassReport, error) {
	s.passMu.Lock()
	defer s.passMu.Unlock()

	log := logger.FromContext(ctx)

	if !manual && !s.online.Load() {
		return models.PassReport{Skipped: true}, nil
	}

	pass := &passState{
		gen:     s.offlineGen.Load(),
		horizon: s.ledger.now().UTC(),
	}
	pass.report.Manual = manual
	if manual {
		pass.horizon = manualHorizon
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, collection := range models.EntityCollections {
		l := &lane{collection: collection, busy: make(map[string]struct{})}
		for range s.workers {
			g.Go(func() error {
				return s.runWorker(gctx, pass, l)
			})
		}
	}

	err := g.Wait()
	if err == nil && pass.stopped.Load() {
		err = fmt.Errorf("drain pass stopped: %w", adapter.ErrAuthExpired)
	}

	pass.mu.Lock()
	report := pass.report
	pass.mu.Unlock()

	if report.Attempted > 0 || err != nil {
		log.Info().
			Str("func", "clientSyncService.DrainPass").
			Bool("manual", manual).
			Int("attempted", report.Attempted).
			Int("succeeded", report.Succeeded).
			Int("retrying", report.Retrying).
			Int("abandoned", report.Abandoned).
			Int("released", report.Released).
			Bool("interrupted", report.Interrupted).
			Err(err).
			Msg("drain pass finished")
	}

	return report, err
}

func (s *clientSyncService) runWorker(ctx context.Context, pass *passState, l *lane) error {
	for {
		if s.shouldStop(ctx, pass) {
			pass.count(func(r *models.PassReport) { r.Interrupted = true })
			return nil
		}

		item, ok, err := s.claimNext(ctx, pass, l)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		err = s.process(ctx, pass, item)
		l.mu.Lock()
		delete(l.busy, item.EntityID)
		l.mu.Unlock()
		if err != nil {
			return err
		}
	}
}

// shouldStop is checked between items: a call already dispatched is
// always allowed to complete.
func (s *clientSyncService) shouldStop(ctx context.Context, pass *passState) bool {
	return ctx.Err() != nil || pass.stopped.Load() || s.offlineGen.Load() != pass.gen
}

// claimNext finds the next eligible item of the lane and claims it,
// moving its entity to syncing.
func (s *clientSyncService) claimNext(ctx context.Context, pass *passState, l *lane) (models.QueueItem, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for {
		item, ok, err := s.ledger.queue.PeekNextReadyIn(ctx, l.collection, pass.horizon, l.seen)
		if err != nil || !ok {
			return models.QueueItem{}, false, err
		}
		l.seen = append(l.seen, item.ID)

		if _, busy := l.busy[item.EntityID]; busy {
			continue
		}

		claimed, err := s.claim(ctx, item)
		if err != nil {
			return models.QueueItem{}, false, err
		}
		if !claimed {
			continue
		}

		l.busy[item.EntityID] = struct{}{}
		item.State = models.QueueInFlight
		return item, true, nil
	}
}

func (s *clientSyncService) claim(ctx context.Context, item models.QueueItem) (bool, error) {
	s.ledger.mu.Lock()
	defer s.ledger.mu.Unlock()

	claimed, err := s.ledger.queue.MarkInFlight(ctx, item.ID)
	if err != nil || !claimed {
		return false, err
	}

	return true, s.ledger.setStatus(ctx, item.Collection, item.EntityID, models.StatusSyncing)
}

// process sends one claimed item and applies the outcome. An expired token
// is refreshed once and the same item retried; when that fails too the
// item is released and the whole pass stops.
func (s *clientSyncService) process(ctx context.Context, pass *passState, item models.QueueItem) error {
	log := logger.FromContext(ctx)
	pass.count(func(r *models.PassReport) { r.Attempted++ })

	rec := models.RemoteRecordFromQueueItem(item)
	callErr := s.call(ctx, item.Operation, rec)

	if classifyRemoteError(callErr) == outcomeAuthExpired {
		if refreshErr := s.refreshToken(ctx); refreshErr != nil {
			log.Warn().
				Err(refreshErr).
				Str("func", "clientSyncService.process").
				Msg("token refresh failed")
		} else {
			callErr = s.call(ctx, item.Operation, rec)
		}
	}

	return s.applyOutcome(ctx, pass, item, callErr)
}

func (s *clientSyncService) refreshToken(ctx context.Context) error {
	if s.tokens == nil {
		return adapter.ErrRefreshUnavailable
	}
	return s.tokens.Refresh(ctx)
}

func (s *clientSyncService) call(ctx context.Context, op models.Operation, rec models.RemoteRecord) error {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	switch op {
	case models.OpCreate:
		return s.remote.Create(callCtx, rec)
	case models.OpUpdate:
		return s.remote.Update(callCtx, rec)
	case models.OpDelete:
		return s.remote.Delete(callCtx, rec)
	default:
		return fmt.Errorf("%w: unknown operation %q", adapter.ErrPermanentRejection, op)
	}
}

// applyOutcome records the result of a call under the ledger. It runs on a
// context detached from cancellation so a shutdown never loses a result
// that the server already has.
func (s *clientSyncService) applyOutcome(ctx context.Context, pass *passState, item models.QueueItem, callErr error) error {
	cancelled := ctx.Err() != nil
	ctx = context.WithoutCancel(ctx)
	log := logger.FromContext(ctx)

	s.ledger.mu.Lock()
	defer s.ledger.mu.Unlock()
	defer s.ledger.publishDepth(ctx)

	result := classifyRemoteError(callErr)
	release := false
	switch {
	case result == outcomeAuthExpired:
		pass.stopped.Store(true)
		pass.count(func(r *models.PassReport) { r.Interrupted = true })
		release = true
	case result == outcomeTransient && s.offlineGen.Load() != pass.gen:
		callErr = fmt.Errorf("%w: %w", errWentOffline, callErr)
		release = true
	case result == outcomeTransient && cancelled:
		callErr = fmt.Errorf("%w: %w", errCancelled, callErr)
		release = true
	}

	log.Debug().
		Str("func", "clientSyncService.applyOutcome").
		Str("collection", item.Collection.String()).
		Str("entity_id", item.EntityID).
		Str("operation", string(item.Operation)).
		Str("outcome", result.String()).
		Bool("release", release).
		Err(callErr).
		Msg("sync outcome")

	if release {
		// not the item's fault: no attempt is counted
		current, err := s.ledger.queue.Release(ctx, item.ID, callErr)
		if err != nil || !current {
			return err
		}
		pass.count(func(r *models.PassReport) { r.Released++ })
		return s.ledger.setStatus(ctx, item.Collection, item.EntityID, models.StatusPending)
	}

	switch result {
	case outcomeSucceeded:
		current, err := s.ledger.queue.MarkSucceeded(ctx, item.ID)
		if err != nil {
			return err
		}
		pass.count(func(r *models.PassReport) { r.Succeeded++ })
		if !current {
			// superseded: the newer mutation keeps the entity pending
			return nil
		}
		if item.Operation == models.OpDelete {
			return s.ledger.entities.Purge(ctx, item.Collection, item.EntityID)
		}
		return s.ledger.setStatus(ctx, item.Collection, item.EntityID, models.StatusSynced)

	case outcomePermanent:
		current, err := s.ledger.queue.MarkAbandoned(ctx, item.ID, callErr)
		if err != nil || !current {
			return err
		}
		pass.count(func(r *models.PassReport) { r.Abandoned++ })
		log.Warn().
			Err(callErr).
			Str("collection", item.Collection.String()).
			Str("entity_id", item.EntityID).
			Msg("server rejected mutation, abandoned")
		return s.ledger.setStatus(ctx, item.Collection, item.EntityID, models.StatusFailed)

	default:
		failed, current, err := s.ledger.queue.MarkFailed(ctx, item.ID, callErr)
		if err != nil || !current {
			return err
		}
		status := models.StatusPending
		if failed.State == models.QueueAbandoned {
			status = models.StatusFailed
			pass.count(func(r *models.PassReport) { r.Abandoned++ })
		} else {
			pass.count(func(r *models.PassReport) { r.Retrying++ })
		}
		return s.ledger.setStatus(ctx, item.Collection, item.EntityID, status)
	}
}

// Recover repairs the local state after an interrupted process: in-flight
// items go back to the queue, syncing entities back to pending, entities
// that lost their queue item get a new one and queue items whose entity
// vanished are dropped.
func (s *clientSyncService) Recover(ctx context.Context) error {
	log := logger.FromContext(ctx)

	s.ledger.mu.Lock()
	defer s.ledger.mu.Unlock()

	reset, err := s.ledger.queue.ResetInFlight(ctx)
	if err != nil {
		return err
	}

	var requeued, dropped int
	for _, collection := range models.EntityCollections {
		syncing, err := s.ledger.entities.ListByStatus(ctx, collection, models.StatusSyncing)
		if err != nil {
			return err
		}
		for _, e := range syncing {
			if err = s.ledger.entities.SetStatus(ctx, collection, e.ID, models.StatusPending); err != nil {
				return err
			}
		}

		unsynced, err := s.ledger.entities.ListByStatus(ctx, collection, models.StatusPending, models.StatusFailed)
		if err != nil {
			return err
		}
		for _, e := range unsynced {
			restored, err := s.restoreQueueItem(ctx, e)
			if err != nil {
				return err
			}
			if restored {
				requeued++
			}
		}
	}

	items, err := s.ledger.queue.ListPending(ctx)
	if err != nil {
		return err
	}
	for _, item := range items {
		_, err = s.ledger.entities.Get(ctx, item.Collection, item.EntityID)
		if errors.Is(err, store.ErrEntityNotFound) {
			if err = s.ledger.queue.Remove(ctx, item.Collection, item.EntityID); err != nil {
				return err
			}
			dropped++
			continue
		}
		if err != nil {
			return err
		}
	}

	log.Info().
		Str("func", "clientSyncService.Recover").
		Int64("reset_in_flight", reset).
		Int("requeued", requeued).
		Int("dropped", dropped).
		Msg("local state recovered")

	s.ledger.publishDepth(ctx)
	return nil
}

// restoreQueueItem enqueues the mutation of an unsynced entity that has no
// live queue item. Whether the record exists remotely is unknown, so the
// mutation is an upsert; a failed entity gets an abandoned item so it keeps
// waiting for an explicit retry.
func (s *clientSyncService) restoreQueueItem(ctx context.Context, e models.Entity) (bool, error) {
	_, ok, err := s.ledger.queue.Get(ctx, e.Collection, e.ID)
	if err != nil || ok {
		return false, err
	}

	item := models.QueueItem{
		Collection: e.Collection,
		EntityID:   e.ID,
		UserID:     e.UserID,
		Operation:  models.OpUpdate,
		Payload:    e.Payload,
		CreatedAt:  e.UpdatedAt,
	}
	if e.Deleted {
		item.Operation = models.OpDelete
		item.Payload = nil
	}

	item, err = s.ledger.queue.Enqueue(ctx, item)
	if err != nil {
		return false, err
	}

	if e.SyncStatus == models.StatusFailed {
		if _, err = s.ledger.queue.MarkAbandoned(ctx, item.ID, errRecoveredAbn); err != nil {
			return false, err
		}
	}

	return true, nil
}
