package domain

import (
	"log/slog"
	"sync"
)

// Emitter is a subscribe/fire channel for payload-less events.
type Emitter struct {
	mu        sync.Mutex
	listeners map[uint64]func()
	order     []uint64
	nextID    uint64
	disposed  bool
}

// NewEmitter creates an empty Emitter.
func NewEmitter() *Emitter {
	return &Emitter{listeners: make(map[uint64]func())}
}

// Subscribe registers fn and returns a function removing it again.
// Subscribing to a disposed emitter is a no-op.
func (e *Emitter) Subscribe(fn func()) (unsubscribe func()) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.disposed || fn == nil {
		return func() {}
	}

	id := e.nextID
	e.nextID++
	e.listeners[id] = fn
	e.order = append(e.order, id)

	var once sync.Once

	return func() {
		once.Do(func() { e.remove(id) })
	}
}

func (e *Emitter) remove(id uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	delete(e.listeners, id)

	for i, existing := range e.order {
		if existing == id {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
}

// Fire invokes every listener in subscription order. Listeners run outside
// the lock so they may subscribe or unsubscribe.
func (e *Emitter) Fire() {
	e.mu.Lock()

	if e.disposed {
		e.mu.Unlock()
		return
	}

	listeners := make([]func(), 0, len(e.order))
	for _, id := range e.order {
		listeners = append(listeners, e.listeners[id])
	}

	e.mu.Unlock()

	slog.Debug("firing event", "listeners", len(listeners))

	for _, fn := range listeners {
		fn()
	}
}

// Len returns the number of active listeners.
func (e *Emitter) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return len(e.order)
}

// Dispose drops all listeners; later Fire and Subscribe calls do nothing.
func (e *Emitter) Dispose() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.disposed = true
	e.listeners = make(map[uint64]func())
	e.order = nil
}
