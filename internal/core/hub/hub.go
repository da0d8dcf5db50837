// Package hub provides the broadcast hub for issuemesh.
package hub

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/yndnr/issuemesh-go/internal/core/domain"
)

// ErrObserverNotFound is returned by Send for an unknown observer id.
var ErrObserverNotFound = errors.New("hub: observer not found")

// Hub is the registry of observers.
type Hub struct {
	logger *slog.Logger

	mu        sync.RWMutex
	observers map[string]domain.Observer

	// order keeps registration order so fan-out is deterministic.
	order []string
}

// New creates an empty hub.
func New(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		logger:    logger.With("component", "hub"),
		observers: make(map[string]domain.Observer),
	}
}

// Register adds an observer. Registering an id twice replaces the previous
// observer.
func (h *Hub) Register(o domain.Observer) {
	id := o.ID()

	h.mu.Lock()
	if _, exists := h.observers[id]; !exists {
		h.order = append(h.order, id)
	}
	h.observers[id] = o
	n := len(h.observers)
	h.mu.Unlock()

	h.logger.Debug("observer registered", "observer_id", id, "observers", n)
}

// Unregister removes an observer. Unknown ids are ignored.
func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	if _, exists := h.observers[id]; !exists {
		h.mu.Unlock()
		return
	}
	delete(h.observers, id)
	for i, oid := range h.order {
		if oid == id {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
	n := len(h.observers)
	h.mu.Unlock()

	h.logger.Debug("observer unregistered", "observer_id", id, "observers", n)
}

// Broadcast sends ev to every registered observer and returns the number of
// successful deliveries. Failed deliveries are logged at debug level and
// otherwise ignored.
func (h *Hub) Broadcast(ev domain.Event) int {
	targets := h.snapshot()

	delivered := 0
	for _, o := range targets {
		if err := o.Send(ev); err != nil {
			h.logger.Debug("broadcast delivery failed",
				"observer_id", o.ID(),
				"event", ev.Type,
				"error", err,
			)
			continue
		}
		delivered++
	}
	return delivered
}

// Send delivers ev to a single observer.
func (h *Hub) Send(id string, ev domain.Event) error {
	h.mu.RLock()
	o, ok := h.observers[id]
	h.mu.RUnlock()
	if !ok {
		return ErrObserverNotFound
	}
	return o.Send(ev)
}

// Len returns the number of registered observers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.observers)
}

// snapshot copies the observer list so Send runs without the lock held.
func (h *Hub) snapshot() []domain.Observer {
	h.mu.RLock()
	defer h.mu.RUnlock()

	targets := make([]domain.Observer, 0, len(h.order))
	for _, id := range h.order {
		targets = append(targets, h.observers[id])
	}
	return targets
}
