package core

import "sync"

// Handler receives a decoded event.
type Handler func(Event)

type handlerEntry struct {
	id uint64
	fn Handler
}

// handlerRegistry keeps handlers per event type in registration order.
type handlerRegistry struct {
	mu     sync.Mutex
	byType map[string][]handlerEntry
	nextID uint64
}

func newHandlerRegistry() *handlerRegistry {
	return &handlerRegistry{byType: make(map[string][]handlerEntry)}
}

func (r *handlerRegistry) add(eventType string, fn Handler) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	r.byType[eventType] = append(r.byType[eventType], handlerEntry{id: r.nextID, fn: fn})
	return r.nextID
}

func (r *handlerRegistry) remove(eventType string, id uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries := r.byType[eventType]
	for i := range entries {
		if entries[i].id != id {
			continue
		}
		// Copy rather than shift in place: dispatch may be iterating a
		// previous snapshot of this slice.
		next := make([]handlerEntry, 0, len(entries)-1)
		next = append(next, entries[:i]...)
		next = append(next, entries[i+1:]...)
		r.byType[eventType] = next
		return true
	}
	return false
}

// snapshot returns the handlers for eventType; the slice is never mutated
// afterwards.
func (r *handlerRegistry) snapshot(eventType string) []handlerEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byType[eventType]
}

func (r *handlerRegistry) count(eventType string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byType[eventType])
}

// Registration detaches one handler.
type Registration struct {
	reg       *handlerRegistry
	eventType string
	id        uint64
}

// Remove unregisters the handler. Later events no longer reach it; calling
// Remove again is a no-op. It reports whether the handler was still attached.
func (h Registration) Remove() bool {
	if h.reg == nil {
		return false
	}
	return h.reg.remove(h.eventType, h.id)
}

// EventType returns the event the handler listens to.
func (h Registration) EventType() string { return h.eventType }
