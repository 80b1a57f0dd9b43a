// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"sync"
	"time"

	"github.com/MKhiriev/go-fin-keeper/internal/config"
	"github.com/MKhiriev/go-fin-keeper/internal/logger"
	"github.com/MKhiriev/go-fin-keeper/models"
)

// Monitor tracks whether the remote API is reachable. Raw observations come
// from periodic probes and from Report. A switch to online is published
// only after the raw state stayed online for the settle window; a switch to
// offline is published at once. The monitor never retries anything itself.
type Monitor struct {
	prober        Prober
	probeInterval time.Duration
	settle        time.Duration

	raw chan models.ConnectivityState

	mu     sync.Mutex
	state  models.ConnectivityState
	subs   map[int]chan models.ConnectivityState
	nextID int

	logger *logger.Logger
}

// NewMonitor creates a monitor that starts offline. prober may be nil, in
// which case only Report feeds it.
func NewMonitor(prober Prober, cfg config.Sync, logger *logger.Logger) *Monitor {
	probeInterval := cfg.ProbeInterval
	if probeInterval <= 0 {
		probeInterval = config.DefaultProbeInterval
	}
	settle := cfg.SettleWindow
	if settle < 0 {
		settle = 0
	}

	return &Monitor{
		prober:        prober,
		probeInterval: probeInterval,
		settle:        settle,
		raw:           make(chan models.ConnectivityState, 16),
		state:         models.Offline,
		subs:          make(map[int]chan models.ConnectivityState),
		logger:        logger,
	}
}

// State returns the debounced state.
func (m *Monitor) State() models.ConnectivityState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Subscribe returns a channel of debounced transitions. A subscriber that
// falls behind only sees the latest state. The returned func unsubscribes
// and closes the channel.
func (m *Monitor) Subscribe() (<-chan models.ConnectivityState, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	ch := make(chan models.ConnectivityState, 1)
	m.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			if sub, ok := m.subs[id]; ok {
				delete(m.subs, id)
				close(sub)
			}
		})
	}
}

// Report feeds a platform connectivity signal into the monitor. It never
// blocks; when the backlog is full the signal is dropped and the next probe
// corrects the state.
func (m *Monitor) Report(state models.ConnectivityState) {
	select {
	case m.raw <- state:
	default:
		m.logger.Warn().Str("func", "Monitor.Report").Msg("connectivity backlog full, signal dropped")
	}
}

// Run probes the remote API and debounces raw observations until ctx is
// cancelled.
func (m *Monitor) Run(ctx context.Context) error {
	if m.prober != nil {
		go m.probeLoop(ctx)
	}

	var (
		settleTimer *time.Timer
		settled     <-chan time.Time
	)
	stopSettle := func() {
		if settleTimer != nil {
			settleTimer.Stop()
			settleTimer, settled = nil, nil
		}
	}
	defer stopSettle()

	for {
		select {
		case <-ctx.Done():
			return nil

		case state := <-m.raw:
			if state == models.Offline {
				stopSettle()
				m.publish(models.Offline)
				continue
			}
			if m.State() == models.Online || settleTimer != nil {
				continue
			}
			if m.settle == 0 {
				m.publish(models.Online)
				continue
			}
			settleTimer = time.NewTimer(m.settle)
			settled = settleTimer.C

		case <-settled:
			settleTimer, settled = nil, nil
			m.publish(models.Online)
		}
	}
}

func (m *Monitor) probeLoop(ctx context.Context) {
	t := time.NewTicker(m.probeInterval)
	defer t.Stop()

	for {
		m.Report(m.probe(ctx))

		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}

func (m *Monitor) probe(ctx context.Context) models.ConnectivityState {
	probeCtx, cancel := context.WithTimeout(ctx, m.probeInterval)
	defer cancel()

	if err := m.prober.Ping(probeCtx); err != nil {
		m.logger.Debug().Err(err).Str("func", "Monitor.probe").Msg("remote api unreachable")
		return models.Offline
	}
	return models.Online
}

// publish stores the debounced state and tells subscribers when it changed.
func (m *Monitor) publish(state models.ConnectivityState) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == state {
		return
	}
	m.state = state

	m.logger.Info().
		Str("func", "Monitor.publish").
		Str("state", string(state)).
		Msg("connectivity changed")

	for _, ch := range m.subs {
		// latest wins: replace an undelivered state
		select {
		case ch <- state:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- state:
			default:
			}
		}
	}
}
