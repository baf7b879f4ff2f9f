package thread

import (
	"context"
	"sync"
)

// Hub tracks live listeners per thread. A notification is only a "something
// changed" signal: listeners re-read the thread from the store, so pending
// signals are coalesced and a slow listener never blocks Publish.
type Hub struct {
	mu        sync.RWMutex
	listeners map[Key]map[int64]chan struct{}
	nextID    int64
}

// NewHub creates a new hub instance.
func NewHub() *Hub {
	return &Hub{listeners: make(map[Key]map[int64]chan struct{})}
}

// Listen registers a listener for key and returns its signal channel and a
// function that unregisters it.
func (h *Hub) Listen(key Key) (<-chan struct{}, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.listeners[key]; !ok {
		h.listeners[key] = make(map[int64]chan struct{})
	}
	h.nextID++
	id := h.nextID
	ch := make(chan struct{}, 1)
	h.listeners[key][id] = ch

	var once sync.Once
	return ch, func() { once.Do(func() { h.unregister(key, id) }) }
}

func (h *Hub) unregister(key Key, id int64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conns, ok := h.listeners[key]; ok {
		delete(conns, id)
		if len(conns) == 0 {
			delete(h.listeners, key)
		}
	}
}

// Notify signals every listener of key and returns how many are registered.
func (h *Hub) Notify(key Key) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	conns := h.listeners[key]
	for _, ch := range conns {
		select {
		case ch <- struct{}{}:
		default:
			// a signal is already pending for this listener
		}
	}
	return len(conns)
}

// Publish implements Broker for a single process.
func (h *Hub) Publish(_ context.Context, key Key) error {
	h.Notify(key)
	return nil
}

// Listeners returns the number of listeners registered for key.
func (h *Hub) Listeners(key Key) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.listeners[key])
}
