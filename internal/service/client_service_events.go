// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"sync"

	"github.com/MKhiriev/go-fin-keeper/internal/logger"
	"github.com/MKhiriev/go-fin-keeper/models"
)

// defaultEventBuffer is the per-subscriber channel capacity.
const defaultEventBuffer = 64

// Notifier fans events out to subscribers. Publish never blocks: when a
// subscriber's buffer is full the event is dropped for that subscriber and a
// warning is logged.
type Notifier struct {
	mu     sync.RWMutex
	subs   map[int]chan models.Event
	nextID int
	closed bool
	buffer int

	logger *logger.Logger
}

// NewNotifier returns a Notifier whose subscribers buffer up to buffer
// events. A non-positive buffer selects the default.
func NewNotifier(buffer int, logger *logger.Logger) *Notifier {
	if buffer <= 0 {
		buffer = defaultEventBuffer
	}
	return &Notifier{
		subs:   make(map[int]chan models.Event),
		buffer: buffer,
		logger: logger,
	}
}

// Subscribe registers a new subscriber. The returned function unsubscribes
// and closes the channel; it is safe to call more than once.
func (n *Notifier) Subscribe() (<-chan models.Event, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	ch := make(chan models.Event, n.buffer)
	if n.closed {
		close(ch)
		return ch, func() {}
	}

	id := n.nextID
	n.nextID++
	n.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			if sub, ok := n.subs[id]; ok {
				delete(n.subs, id)
				close(sub)
			}
		})
	}
}

// Publish delivers event to every subscriber without blocking.
func (n *Notifier) Publish(event models.Event) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for id, ch := range n.subs {
		select {
		case ch <- event:
		default:
			n.logger.Warn().
				Str("func", "Notifier.Publish").
				Int("subscriber", id).
				Str("kind", string(event.Kind)).
				Msg("subscriber is slow, event dropped")
		}
	}
}

// Close closes every subscriber channel. Later Publish calls are no-ops.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return
	}
	n.closed = true
	for id, ch := range n.subs {
		delete(n.subs, id)
		close(ch)
	}
}
